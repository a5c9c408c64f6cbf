package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/invotrac/internal/catalog"
	"github.com/sandeepkv93/invotrac/internal/domain"
	"github.com/sandeepkv93/invotrac/internal/session"
)

type consoleMode int

const (
	modeBrowse consoleMode = iota
	modeSearch
	modeForm
	modeConfirmDelete
)

var formFields = []string{"ID", "Name", "Description", "Price", "Quantity"}

type refreshedMsg struct{ err error }

type opDoneMsg struct{ err error }

type bannerMsg struct{}

// Console is the interactive terminal view over one session.
type Console struct {
	ctx       context.Context
	sess      *session.Session
	opTimeout time.Duration

	mode        consoleMode
	cursor      int
	field       int
	priorQuery  string
	pendingID   int64
	busy        bool
	rows        []domain.Product
	lastRefresh error
}

func NewConsole(ctx context.Context, sess *session.Session, opTimeout time.Duration) *Console {
	if opTimeout <= 0 {
		opTimeout = 10 * time.Second
	}
	return &Console{ctx: ctx, sess: sess, opTimeout: opTimeout}
}

func (c *Console) Init() tea.Cmd {
	c.busy = true
	return c.refreshCmd()
}

func (c *Console) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(c.ctx, c.opTimeout)
		defer cancel()
		return refreshedMsg{err: c.sess.Refresh(ctx)}
	}
}

func (c *Console) submitCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(c.ctx, c.opTimeout)
		defer cancel()
		return opDoneMsg{err: c.sess.Submit(ctx)}
	}
}

func (c *Console) deleteCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(c.ctx, c.opTimeout)
		defer cancel()
		return opDoneMsg{err: c.sess.Delete(ctx, id, nil)}
	}
}

func (c *Console) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshedMsg:
		c.busy = false
		c.lastRefresh = msg.err
		c.reload()
		return c, nil
	case opDoneMsg:
		c.busy = false
		if msg.err == nil && c.mode == modeForm {
			c.mode = modeBrowse
		}
		c.reload()
		return c, nil
	case bannerMsg:
		return c, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return c, tea.Quit
		}
		switch c.mode {
		case modeSearch:
			return c.updateSearch(msg)
		case modeForm:
			return c.updateForm(msg)
		case modeConfirmDelete:
			return c.updateConfirm(msg)
		default:
			return c.updateBrowse(msg)
		}
	}
	return c, nil
}

func (c *Console) reload() {
	c.rows = c.sess.Rows()
	if c.cursor >= len(c.rows) {
		c.cursor = max(len(c.rows)-1, 0)
	}
}

func (c *Console) selected() (domain.Product, bool) {
	if c.cursor < 0 || c.cursor >= len(c.rows) {
		return domain.Product{}, false
	}
	return c.rows[c.cursor], true
}

func (c *Console) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q":
		return c, tea.Quit
	case "/":
		c.priorQuery = c.sess.Query()
		c.mode = modeSearch
	case "1", "2", "3", "4", "5":
		idx := int(key[0] - '1')
		c.rows = c.sess.ToggleSort(catalog.Keys[idx])
	case "up", "k":
		if c.cursor > 0 {
			c.cursor--
		}
	case "down", "j":
		if c.cursor < len(c.rows)-1 {
			c.cursor++
		}
	case "r":
		if !c.busy {
			c.busy = true
			return c, c.refreshCmd()
		}
	case "a":
		c.sess.CancelEdit()
		c.field = 0
		c.mode = modeForm
	case "e":
		if p, ok := c.selected(); ok {
			c.sess.BeginEdit(p)
			c.field = 1
			c.mode = modeForm
		}
	case "d":
		if p, ok := c.selected(); ok {
			c.pendingID = p.ID
			c.mode = modeConfirmDelete
		}
	}
	return c, nil
}

func (c *Console) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	q := c.sess.Query()
	switch msg.Type {
	case tea.KeyEnter:
		c.mode = modeBrowse
		return c, nil
	case tea.KeyEsc:
		q = c.priorQuery
		c.mode = modeBrowse
	case tea.KeyBackspace:
		if r := []rune(q); len(r) > 0 {
			q = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		q += " "
	case tea.KeyRunes:
		q += string(msg.Runes)
	default:
		return c, nil
	}
	c.rows = c.sess.SetQuery(q)
	c.cursor = 0
	return c, nil
}

func (c *Console) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := c.sess.Form()
	_, editing := c.sess.Editing()
	values := []*string{&form.ID, &form.Name, &form.Description, &form.Price, &form.Quantity}
	switch msg.Type {
	case tea.KeyEsc:
		c.sess.CancelEdit()
		c.mode = modeBrowse
		return c, nil
	case tea.KeyEnter:
		if c.busy {
			return c, nil
		}
		c.busy = true
		return c, c.submitCmd()
	case tea.KeyTab, tea.KeyDown:
		c.field = c.nextField(1, editing)
		return c, nil
	case tea.KeyShiftTab, tea.KeyUp:
		c.field = c.nextField(-1, editing)
		return c, nil
	case tea.KeyBackspace:
		if r := []rune(*values[c.field]); len(r) > 0 {
			*values[c.field] = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		*values[c.field] += " "
	case tea.KeyRunes:
		*values[c.field] += string(msg.Runes)
	default:
		return c, nil
	}
	c.sess.SetForm(form)
	return c, nil
}

// nextField cycles through the form fields, skipping the locked id while
// editing.
func (c *Console) nextField(step int, editing bool) int {
	n := len(formFields)
	f := c.field
	for range n {
		f = (f + step + n) % n
		if !(editing && f == 0) {
			return f
		}
	}
	return c.field
}

func (c *Console) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		c.mode = modeBrowse
		c.busy = true
		return c, c.deleteCmd(c.pendingID)
	case "n", "N", "esc":
		c.mode = modeBrowse
	}
	return c, nil
}

func (c *Console) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Invo Trac") + "  " + mutedStyle.Render(fmt.Sprintf("Total: %d", len(c.sess.Snapshot()))))
	if c.busy {
		b.WriteString("  " + mutedStyle.Render("Loading..."))
	}
	b.WriteString("\n")

	searchLabel := "Search: "
	if c.mode == modeSearch {
		searchLabel = focusStyle.Render("Search: ")
	}
	b.WriteString(searchLabel + c.sess.Query() + "\n")
	b.WriteString(ProductTable(c.rows, c.sess.Sort(), c.cursor) + "\n")

	if c.mode == modeForm {
		b.WriteString(c.formView())
	}
	if c.mode == modeConfirmDelete {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Delete this product (id %d)? [y/N]", c.pendingID)) + "\n")
	}
	if msg := c.sess.Message.Text(); msg != "" {
		b.WriteString(messageStyle.Render(msg) + "\n")
	}
	if msg := c.sess.Error.Text(); msg != "" {
		b.WriteString(errorStyle.Render(msg) + "\n")
	}
	b.WriteString(mutedStyle.Render(c.help()) + "\n")
	return b.String()
}

func (c *Console) formView() string {
	form := c.sess.Form()
	_, editing := c.sess.Editing()
	values := []string{form.ID, form.Name, form.Description, form.Price, form.Quantity}
	title := "Add Product"
	if editing {
		title = "Edit Product"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n")
	for i, name := range formFields {
		label := fmt.Sprintf("%-12s", name)
		if i == c.field {
			label = focusStyle.Render(label)
		}
		value := values[i]
		if editing && i == 0 {
			value = mutedStyle.Render(value + " (locked)")
		}
		b.WriteString("  " + label + " " + value + "\n")
	}
	return b.String()
}

func (c *Console) help() string {
	switch c.mode {
	case modeSearch:
		return "type to filter • enter keep • esc restore"
	case modeForm:
		return "tab/shift+tab move • enter save • esc cancel"
	case modeConfirmDelete:
		return "y delete • n cancel"
	default:
		return "/ search • 1-5 sort id/name/description/price/quantity • r refresh • a add • e edit • d delete • q quit"
	}
}

// RunConsole runs the interactive console until the user quits.
func RunConsole(ctx context.Context, sess *session.Session, opTimeout time.Duration) error {
	c := NewConsole(ctx, sess, opTimeout)
	p := tea.NewProgram(c, tea.WithAltScreen(), tea.WithContext(ctx))
	// Banners change from inside Update too, so Send must not block the loop.
	rerender := func(string) { go p.Send(bannerMsg{}) }
	sess.Message.OnChange(rerender)
	sess.Error.OnChange(rerender)
	defer func() {
		sess.Message.OnChange(nil)
		sess.Error.OnChange(nil)
	}()
	_, err := p.Run()
	return err
}
