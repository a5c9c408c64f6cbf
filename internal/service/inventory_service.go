package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/sandeepkv93/invotrac/internal/client"
	"github.com/sandeepkv93/invotrac/internal/domain"
	"github.com/sandeepkv93/invotrac/internal/observability"
	"github.com/sandeepkv93/invotrac/internal/repository"
	"golang.org/x/sync/singleflight"
)

const (
	productsNamespace = "products"
	productsCacheKey  = "all"
)

var ErrMirrorDisabled = errors.New("product mirror is not enabled")

type InventoryService struct {
	gateway  ProductGateway
	cache    ProductListCacheStore
	cacheTTL time.Duration
	mirror   repository.ProductMirror
	logger   *slog.Logger
	sf       singleflight.Group
}

// NewInventoryService wires the backend gateway with an optional list cache
// and an optional offline mirror. A nil cache disables caching and a nil
// mirror disables offline listing.
func NewInventoryService(gateway ProductGateway, cache ProductListCacheStore, cacheTTL time.Duration, mirror repository.ProductMirror, logger *slog.Logger) *InventoryService {
	if cache == nil {
		cache = NewNoopProductListCacheStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &InventoryService{gateway: gateway, cache: cache, cacheTTL: cacheTTL, mirror: mirror, logger: logger}
}

func (s *InventoryService) List(ctx context.Context) ([]domain.Product, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordProductOperation(ctx, "list", outcome, time.Since(start)) }()

	if cached, ok := s.cachedList(ctx); ok {
		outcome = "cache_hit"
		return cached, nil
	}

	result, err, shared := s.sf.Do(productsCacheKey, func() (any, error) {
		return s.fetchList(ctx)
	})
	if shared {
		observability.RecordProductListCacheEvent(ctx, "singleflight_shared")
	}
	if err != nil {
		outcome = classifyOutcome(err)
		return nil, err
	}
	// Callers may keep the slice, so sharers get their own copy.
	return slices.Clone(result.([]domain.Product)), nil
}

func (s *InventoryService) fetchList(ctx context.Context) ([]domain.Product, error) {
	products, err := s.gateway.List(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}

	if payload, err := json.Marshal(products); err == nil {
		if err := s.cache.Set(ctx, productsNamespace, productsCacheKey, payload, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "product list cache store failed", "error", err)
		}
	}
	if s.mirror != nil {
		if err := s.mirror.ReplaceAll(ctx, products); err != nil {
			s.logger.WarnContext(ctx, "product mirror refresh failed", "error", err)
		}
	}
	return products, nil
}

func (s *InventoryService) cachedList(ctx context.Context) ([]domain.Product, bool) {
	payload, ok, age, err := s.cache.GetWithAge(ctx, productsNamespace, productsCacheKey)
	if err != nil {
		observability.RecordProductListCacheEvent(ctx, "error")
		s.logger.WarnContext(ctx, "product list cache read failed", "error", err)
		return nil, false
	}
	if !ok {
		observability.RecordProductListCacheEvent(ctx, "miss")
		return nil, false
	}
	var products []domain.Product
	if err := json.Unmarshal(payload, &products); err != nil {
		observability.RecordProductListCacheEvent(ctx, "corrupt")
		s.logger.WarnContext(ctx, "product list cache payload undecodable", "error", err)
		return nil, false
	}
	observability.RecordProductListCacheEvent(ctx, "hit")
	s.logger.DebugContext(ctx, "product list served from cache", "age_ms", age.Milliseconds(), "rows", len(products))
	if products == nil {
		products = []domain.Product{}
	}
	return products, true
}

// ListOffline returns the last mirrored snapshot and the time it was taken.
func (s *InventoryService) ListOffline(ctx context.Context) ([]domain.Product, time.Time, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordProductOperation(ctx, "list_offline", outcome, time.Since(start)) }()

	if s.mirror == nil {
		outcome = "bad_request"
		return nil, time.Time{}, ErrMirrorDisabled
	}
	products, err := s.mirror.List(ctx)
	if err != nil {
		outcome = "error"
		return nil, time.Time{}, err
	}
	syncedAt, err := s.mirror.SyncedAt(ctx)
	if err != nil && !errors.Is(err, repository.ErrMirrorNeverSynced) {
		outcome = "error"
		return nil, time.Time{}, err
	}
	return products, syncedAt, nil
}

func (s *InventoryService) Get(ctx context.Context, id int64) (domain.Product, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordProductOperation(ctx, "get", outcome, time.Since(start)) }()

	p, err := s.gateway.Get(ctx, id)
	if err != nil {
		outcome = classifyOutcome(err)
		return domain.Product{}, err
	}
	return p, nil
}

func (s *InventoryService) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordProductOperation(ctx, "create", outcome, time.Since(start)) }()

	created, err := s.gateway.Create(ctx, p)
	s.audit(ctx, "create", p.ID, err)
	if err != nil {
		outcome = classifyOutcome(err)
		return domain.Product{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *InventoryService) Update(ctx context.Context, id int64, p domain.Product) (domain.Product, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordProductOperation(ctx, "update", outcome, time.Since(start)) }()

	updated, err := s.gateway.Update(ctx, id, p)
	s.audit(ctx, "update", id, err)
	if err != nil {
		outcome = classifyOutcome(err)
		return domain.Product{}, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *InventoryService) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordProductOperation(ctx, "delete", outcome, time.Since(start)) }()

	err := s.gateway.Delete(ctx, id)
	s.audit(ctx, "delete", id, err)
	if err != nil {
		outcome = classifyOutcome(err)
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *InventoryService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateNamespace(ctx, productsNamespace); err != nil {
		s.logger.WarnContext(ctx, "product list cache invalidation failed", "error", err)
	}
}

func (s *InventoryService) audit(ctx context.Context, action string, id int64, err error) {
	in := observability.AuditInput{Action: action, ProductID: strconv.FormatInt(id, 10), Outcome: "success"}
	if err != nil {
		in.Outcome = "failure"
		in.Reason = classifyOutcome(err)
	}
	observability.Audit(ctx, s.logger, in)
}

func classifyOutcome(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrProductNotFound):
		return "not_found"
	case errors.As(err, &apiErr) && apiErr.StatusCode >= http.StatusBadRequest && apiErr.StatusCode < http.StatusInternalServerError:
		return "bad_request"
	default:
		return "error"
	}
}
