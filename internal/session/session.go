// Package session holds the state of one interactive inventory session: the
// fetched snapshot, the query, the sort state, the add/edit form and the
// transient banners. Displayed rows are always derived on demand.
package session

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/sandeepkv93/invotrac/internal/catalog"
	"github.com/sandeepkv93/invotrac/internal/client"
	"github.com/sandeepkv93/invotrac/internal/domain"
	"github.com/sandeepkv93/invotrac/internal/notice"
	"github.com/sandeepkv93/invotrac/internal/observability"
)

const (
	MsgFetchFailed     = "Failed to fetch products"
	MsgCreated         = "Product created successfully"
	MsgUpdated         = "Product updated successfully"
	MsgDeleted         = "Product deleted successfully"
	MsgOperationFailed = "Operation failed"
	MsgDeleteFailed    = "Delete failed"
)

// Inventory is the backend surface a session drives.
type Inventory interface {
	List(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Update(ctx context.Context, id int64, p domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

type Session struct {
	inv    Inventory
	logger *slog.Logger

	Message *notice.Banner
	Error   *notice.Banner

	mu       sync.Mutex
	products []domain.Product
	query    string
	sort     catalog.SortState
	form     domain.ProductForm
	editID   int64
	editing  bool
	loading  bool
}

func New(inv Inventory, bannerTTL time.Duration, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		inv:     inv,
		logger:  logger,
		Message: notice.NewBanner(bannerTTL),
		Error:   notice.NewBanner(bannerTTL),
	}
}

// Refresh replaces the snapshot with the backend's current collection. On
// failure the previous snapshot is kept.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	products, err := s.inv.List(ctx)

	s.mu.Lock()
	s.loading = false
	if err == nil {
		s.products = products
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.WarnContext(ctx, "product refresh failed", "error", err)
		s.Error.Set(MsgFetchFailed)
		return err
	}
	return nil
}

func (s *Session) SetQuery(q string) []domain.Product {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
	return s.Rows()
}

func (s *Session) ToggleSort(key catalog.SortKey) []domain.Product {
	s.mu.Lock()
	s.sort = s.sort.Toggle(key)
	s.mu.Unlock()
	return s.Rows()
}

// Rows derives the displayed sequence from the current snapshot, query and
// sort state.
func (s *Session) Rows() []domain.Product {
	s.mu.Lock()
	products, query, state := s.products, s.query, s.sort
	s.mu.Unlock()

	rows := catalog.Derive(products, query, state)
	observability.RecordDeriveRows(context.Background(), string(state.Key), len(rows))
	return rows
}

func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

func (s *Session) Sort() catalog.SortState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sort
}

// Snapshot returns a copy of the last fetched collection.
func (s *Session) Snapshot() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.products)
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Session) Form() domain.ProductForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// SetForm replaces the form contents. While editing, the id stays locked to
// the product being edited.
func (s *Session) SetForm(f domain.ProductForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing {
		f.ID = s.form.ID
	}
	s.form = f
}

func (s *Session) Editing() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editID, s.editing
}

// BeginEdit loads p into the form, locks its id and clears both banners.
func (s *Session) BeginEdit(p domain.Product) {
	s.mu.Lock()
	s.form = domain.FormFromProduct(p)
	s.editID = p.ID
	s.editing = true
	s.mu.Unlock()
	s.Message.Clear()
	s.Error.Clear()
}

func (s *Session) CancelEdit() {
	s.mu.Lock()
	s.resetFormLocked()
	s.mu.Unlock()
	s.Message.Clear()
	s.Error.Clear()
}

func (s *Session) resetFormLocked() {
	s.form = domain.ProductForm{}
	s.editID = 0
	s.editing = false
}

// Submit validates the form and updates the product being edited, or creates
// a new one. On success the form resets and the snapshot is refreshed.
func (s *Session) Submit(ctx context.Context) error {
	s.Message.Clear()
	s.Error.Clear()

	s.mu.Lock()
	form, editID, editing := s.form, s.editID, s.editing
	s.mu.Unlock()

	p, err := form.ToProduct()
	if err != nil {
		s.Error.Set(err.Error())
		return err
	}

	msg := MsgCreated
	if editing {
		p.ID = editID
		_, err = s.inv.Update(ctx, editID, p)
		msg = MsgUpdated
	} else {
		_, err = s.inv.Create(ctx, p)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "product submit failed", "editing", editing, "product_id", p.ID, "error", err)
		s.Error.Set(client.DetailOf(err, MsgOperationFailed))
		return err
	}

	s.Message.Set(msg)
	s.mu.Lock()
	s.resetFormLocked()
	s.mu.Unlock()
	if err := s.Refresh(ctx); err != nil {
		s.logger.DebugContext(ctx, "refresh after submit failed", "error", err)
	}
	return nil
}

// ErrDeleteDeclined is returned when the confirmation callback declines.
var ErrDeleteDeclined = errors.New("delete not confirmed")

// Delete removes the product after confirm approves. A declined confirmation
// issues no request.
func (s *Session) Delete(ctx context.Context, id int64, confirm func() bool) error {
	if confirm != nil && !confirm() {
		return ErrDeleteDeclined
	}
	s.Message.Clear()
	s.Error.Clear()
	if err := s.inv.Delete(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "product delete failed", "product_id", id, "error", err)
		s.Error.Set(MsgDeleteFailed)
		return err
	}
	s.Message.Set(MsgDeleted)
	if err := s.Refresh(ctx); err != nil {
		s.logger.DebugContext(ctx, "refresh after delete failed", "error", err)
	}
	return nil
}

// Close stops pending banner timers.
func (s *Session) Close() {
	s.Message.Stop()
	s.Error.Stop()
}
