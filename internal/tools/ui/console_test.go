package ui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/invotrac/internal/catalog"
	"github.com/sandeepkv93/invotrac/internal/client"
	"github.com/sandeepkv93/invotrac/internal/client/clienttest"
	"github.com/sandeepkv93/invotrac/internal/domain"
	"github.com/sandeepkv93/invotrac/internal/service"
	"github.com/sandeepkv93/invotrac/internal/session"
)

func consoleProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Nut", Description: "hex nut", Price: domain.NumberFromFloat(0.1), Quantity: domain.NumberFromInt(50)},
		{ID: 2, Name: "Bolt", Description: "m6 bolt", Price: domain.NumberFromFloat(0.25), Quantity: domain.NumberFromInt(100)},
	}
}

func newTestConsole(t *testing.T) (*Console, *clienttest.Backend) {
	t.Helper()
	backend := clienttest.NewBackend(consoleProducts()...)
	t.Cleanup(backend.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	inv := service.NewInventoryService(client.NewProductClient(backend.URL, time.Second, logger), nil, 0, nil, logger)
	sess := session.New(inv, time.Minute, logger)
	t.Cleanup(sess.Close)
	c := NewConsole(context.Background(), sess, time.Second)
	exec(t, c, c.Init())
	return c, backend
}

// exec runs cmd synchronously and feeds its message back into the console.
func exec(t *testing.T, c *Console, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	_, next := c.Update(cmd())
	require.Nil(t, next)
}

func press(t *testing.T, c *Console, keys ...tea.KeyMsg) {
	t.Helper()
	for _, k := range keys {
		_, cmd := c.Update(k)
		exec(t, c, cmd)
	}
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestConsoleLoadsAndSorts(t *testing.T) {
	c, _ := newTestConsole(t)
	require.Len(t, c.rows, 2)
	assert.Equal(t, int64(1), c.rows[0].ID)

	press(t, c, runes("2"))
	assert.Equal(t, catalog.SortState{Key: catalog.KeyName, Direction: catalog.Asc}, c.sess.Sort())
	assert.Equal(t, "Bolt", c.rows[0].Name)

	press(t, c, runes("2"))
	assert.Equal(t, "Nut", c.rows[0].Name)
	assert.Contains(t, c.View(), "Total: 2")
}

func TestConsoleSearchAndRestore(t *testing.T) {
	c, _ := newTestConsole(t)
	press(t, c, runes("/"), runes("m"), runes("6"))
	assert.Equal(t, modeSearch, c.mode)
	require.Len(t, c.rows, 1)
	assert.Equal(t, "Bolt", c.rows[0].Name)

	press(t, c, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeBrowse, c.mode)
	assert.Equal(t, "", c.sess.Query())
	assert.Len(t, c.rows, 2)
}

func TestConsoleAddProduct(t *testing.T) {
	c, backend := newTestConsole(t)
	press(t, c, runes("a"))
	require.Equal(t, modeForm, c.mode)

	for _, v := range []string{"3", "Washer", "flat washer", "0.05", "500"} {
		press(t, c, runes(v), tea.KeyMsg{Type: tea.KeyTab})
	}
	press(t, c, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, modeBrowse, c.mode)
	assert.Equal(t, session.MsgCreated, c.sess.Message.Text())
	assert.Len(t, backend.Snapshot(), 3)
	assert.Len(t, c.rows, 3)
}

func TestConsoleEditSkipsLockedID(t *testing.T) {
	c, backend := newTestConsole(t)
	press(t, c, tea.KeyMsg{Type: tea.KeyDown}, runes("e"))
	require.Equal(t, modeForm, c.mode)
	assert.Equal(t, 1, c.field)

	press(t, c, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 4, c.field, "id field is skipped while editing")

	press(t, c, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyBackspace}, runes("7"))
	press(t, c, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, session.MsgUpdated, c.sess.Message.Text())
	assert.Equal(t, "7", backend.Snapshot()[1].Quantity.String())
}

func TestConsoleDeleteNeedsConfirmation(t *testing.T) {
	c, backend := newTestConsole(t)
	press(t, c, runes("d"))
	require.Equal(t, modeConfirmDelete, c.mode)
	assert.True(t, strings.Contains(c.View(), "Delete this product (id 1)?"))

	press(t, c, runes("n"))
	assert.Len(t, backend.Snapshot(), 2)

	press(t, c, runes("d"), runes("y"))
	assert.Equal(t, session.MsgDeleted, c.sess.Message.Text())
	assert.Len(t, backend.Snapshot(), 1)
	assert.Len(t, c.rows, 1)
}

func TestConsoleQuit(t *testing.T) {
	c, _ := newTestConsole(t)
	_, cmd := c.Update(runes("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestProductTableMarksSortColumn(t *testing.T) {
	out := ProductTable(consoleProducts(), catalog.SortState{Key: catalog.KeyPrice, Direction: catalog.Desc}, 0)
	assert.Contains(t, out, "Price ↓")
	assert.Contains(t, out, "0.25")
	assert.Contains(t, out, "›")
	assert.NotContains(t, out, "No products found.")
}

func TestProductTableShowsEmptyState(t *testing.T) {
	out := ProductTable(nil, catalog.SortState{Key: catalog.KeyID, Direction: catalog.Asc}, -1)
	assert.Contains(t, out, "ID ↑")
	assert.Contains(t, out, "No products found.")
}
