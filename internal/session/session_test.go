package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/invotrac/internal/catalog"
	"github.com/sandeepkv93/invotrac/internal/client"
	"github.com/sandeepkv93/invotrac/internal/client/clienttest"
	"github.com/sandeepkv93/invotrac/internal/domain"
	"github.com/sandeepkv93/invotrac/internal/service"
)

func seedProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Nut", Description: "hex nut", Price: domain.NumberFromFloat(0.1), Quantity: domain.NumberFromInt(50)},
		{ID: 2, Name: "Bolt", Description: "m6 bolt", Price: domain.NumberFromFloat(0.25), Quantity: domain.NumberFromInt(100)},
		{ID: 3, Name: "Washer", Description: "for a bolt", Price: domain.NumberFromFloat(0.05), Quantity: domain.NumberFromInt(500)},
	}
}

func newTestSession(t *testing.T, seed ...domain.Product) (*Session, *clienttest.Backend) {
	t.Helper()
	backend := clienttest.NewBackend(seed...)
	t.Cleanup(backend.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	inv := service.NewInventoryService(client.NewProductClient(backend.URL, 2*time.Second, logger), nil, 0, nil, logger)
	s := New(inv, time.Minute, logger)
	t.Cleanup(s.Close)
	return s, backend
}

func ids(rows []domain.Product) []int64 {
	out := make([]int64, len(rows))
	for i, p := range rows {
		out[i] = p.ID
	}
	return out
}

func TestRefreshQueryAndSort(t *testing.T) {
	s, _ := newTestSession(t, seedProducts()...)
	require.NoError(t, s.Refresh(context.Background()))
	assert.False(t, s.Loading())

	assert.Equal(t, []int64{1, 2, 3}, ids(s.Rows()))
	assert.Equal(t, []int64{2, 3}, ids(s.SetQuery("BOLT")))

	rows := s.ToggleSort(catalog.KeyPrice)
	assert.Equal(t, []int64{3, 2}, ids(rows))
	rows = s.ToggleSort(catalog.KeyPrice)
	assert.Equal(t, []int64{2, 3}, ids(rows))
	assert.Equal(t, catalog.SortState{Key: catalog.KeyPrice, Direction: catalog.Desc}, s.Sort())

	assert.Len(t, s.Snapshot(), 3, "filtering never shrinks the snapshot")
}

func TestRefreshFailureKeepsSnapshot(t *testing.T) {
	s, backend := newTestSession(t, seedProducts()...)
	ctx := context.Background()
	require.NoError(t, s.Refresh(ctx))

	backend.FailNext(http.MethodGet, http.StatusInternalServerError, "db down")
	err := s.Refresh(ctx)
	require.Error(t, err)
	assert.Len(t, s.Snapshot(), 3)
	assert.Equal(t, MsgFetchFailed, s.Error.Text())
}

func TestSubmitCreateRefreshesAndResetsForm(t *testing.T) {
	s, backend := newTestSession(t, seedProducts()...)
	ctx := context.Background()
	require.NoError(t, s.Refresh(ctx))

	s.SetForm(domain.ProductForm{ID: "4", Name: " Spring ", Description: "coil", Price: "1.5", Quantity: "20"})
	require.NoError(t, s.Submit(ctx))

	assert.Equal(t, MsgCreated, s.Message.Text())
	assert.Empty(t, s.Error.Text())
	assert.True(t, s.Form().IsZero())
	assert.Len(t, s.Snapshot(), 4)
	assert.Equal(t, "Spring", backend.Snapshot()[3].Name)
}

func TestSubmitEditLocksIDAndUpdates(t *testing.T) {
	s, backend := newTestSession(t, seedProducts()...)
	ctx := context.Background()
	require.NoError(t, s.Refresh(ctx))

	s.BeginEdit(seedProducts()[1])
	id, editing := s.Editing()
	require.True(t, editing)
	require.Equal(t, int64(2), id)

	f := s.Form()
	f.ID = "99"
	f.Name = "Bolt M8"
	s.SetForm(f)
	assert.Equal(t, "2", s.Form().ID)

	require.NoError(t, s.Submit(ctx))
	assert.Equal(t, MsgUpdated, s.Message.Text())
	assert.Equal(t, "Bolt M8", backend.Snapshot()[1].Name)
	_, editing = s.Editing()
	assert.False(t, editing)
}

func TestSubmitShowsBackendDetailOrFallback(t *testing.T) {
	s, backend := newTestSession(t, seedProducts()...)
	ctx := context.Background()

	s.SetForm(domain.ProductForm{ID: "1", Name: "Dup", Description: "dup", Price: "1", Quantity: "1"})
	require.Error(t, s.Submit(ctx))
	assert.Equal(t, "Product with this ID already exists", s.Error.Text())
	assert.Equal(t, "1", s.Form().ID, "form is kept on failure")

	backend.FailNext(http.MethodPost, http.StatusInternalServerError, "")
	s.SetForm(domain.ProductForm{ID: "8", Name: "X", Description: "x", Price: "1", Quantity: "1"})
	require.Error(t, s.Submit(ctx))
	assert.Equal(t, MsgOperationFailed, s.Error.Text())
}

func TestSubmitValidationErrorSkipsBackend(t *testing.T) {
	s, backend := newTestSession(t)
	s.SetForm(domain.ProductForm{ID: "1", Name: "Nut", Description: "hex", Price: "cheap", Quantity: "1"})

	err := s.Submit(context.Background())
	assert.ErrorIs(t, err, domain.ErrProductInvalidPrice)
	assert.Equal(t, domain.ErrProductInvalidPrice.Error(), s.Error.Text())
	assert.Zero(t, backend.Hits(http.MethodPost))
}

func TestBeginEditClearsBanners(t *testing.T) {
	s, _ := newTestSession(t)
	s.Message.Set("hello")
	s.Error.Set("oops")
	s.BeginEdit(seedProducts()[0])
	assert.Empty(t, s.Message.Text())
	assert.Empty(t, s.Error.Text())
	assert.Equal(t, "hex nut", s.Form().Description)
}

func TestCancelEditClearsFormAndBanners(t *testing.T) {
	s, _ := newTestSession(t)
	s.BeginEdit(seedProducts()[0])
	s.Message.Set("hello")
	s.Error.Set("oops")

	s.CancelEdit()
	assert.True(t, s.Form().IsZero())
	assert.Empty(t, s.Message.Text())
	assert.Empty(t, s.Error.Text())
	_, editing := s.Editing()
	assert.False(t, editing)
}

func TestDeleteConfirmation(t *testing.T) {
	s, backend := newTestSession(t, seedProducts()...)
	ctx := context.Background()
	require.NoError(t, s.Refresh(ctx))

	err := s.Delete(ctx, 2, func() bool { return false })
	assert.True(t, errors.Is(err, ErrDeleteDeclined))
	assert.Zero(t, backend.Hits(http.MethodDelete))

	require.NoError(t, s.Delete(ctx, 2, func() bool { return true }))
	assert.Equal(t, MsgDeleted, s.Message.Text())
	assert.Equal(t, []int64{1, 3}, ids(s.Rows()))
}

func TestDeleteFailureShowsGenericMessage(t *testing.T) {
	s, _ := newTestSession(t, seedProducts()...)
	err := s.Delete(context.Background(), 42, func() bool { return true })
	require.Error(t, err)
	assert.Equal(t, MsgDeleteFailed, s.Error.Text())
}

func TestBannersClearAfterTTL(t *testing.T) {
	backend := clienttest.NewBackend(seedProducts()...)
	defer backend.Close()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	inv := service.NewInventoryService(client.NewProductClient(backend.URL, time.Second, logger), nil, 0, nil, logger)
	s := New(inv, 30*time.Millisecond, logger)
	defer s.Close()

	require.NoError(t, s.Delete(context.Background(), 1, nil))
	assert.Equal(t, MsgDeleted, s.Message.Text())
	assert.Eventually(t, func() bool { return s.Message.Text() == "" }, time.Second, 5*time.Millisecond)
}
