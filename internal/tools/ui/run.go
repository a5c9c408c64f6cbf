package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type actionMsg struct {
	details []string
	err     error
}

type tickMsg time.Time

type model struct {
	ctx     context.Context
	title   string
	details []string
	err     error
	done    bool
	started time.Time
	elapsed time.Duration
	action  func(context.Context) ([]string, error)
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd {
	run := func() tea.Msg {
		details, err := m.action(m.ctx)
		return actionMsg{details: details, err: err}
	}
	return tea.Batch(run, tick())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = context.Canceled
			m.done = true
			return m, tea.Quit
		}
	case tickMsg:
		if m.done {
			return m, nil
		}
		m.elapsed = time.Time(msg).Sub(m.started)
		return m, tick()
	case actionMsg:
		m.details = msg.details
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	title := titleStyle.Render(m.title)
	if !m.done {
		return fmt.Sprintf("%s\n\nWorking %s\n", title, m.elapsed.Truncate(100*time.Millisecond))
	}
	var b strings.Builder
	b.WriteString(title + "\n")
	if m.err != nil {
		fmt.Fprintf(&b, "%s: %v\n", errorStyle.Render("FAILED"), m.err)
	} else {
		b.WriteString(okStyle.Render("OK") + "\n")
	}
	for _, d := range m.details {
		b.WriteString("- " + d + "\n")
	}
	return b.String()
}

// Run shows a progress view while action runs and leaves its result on screen.
func Run(ctx context.Context, title string, action func(context.Context) ([]string, error)) ([]string, error) {
	m := model{ctx: ctx, title: title, action: action, started: time.Now()}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, err
	}
	res := final.(model)
	return res.details, res.err
}
