package service

import (
	"context"
	"sync"
	"time"
)

// ProductListCacheStore keeps encoded product snapshots grouped in namespaces
// so a mutation can drop every cached view at once.
type ProductListCacheStore interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	GetWithAge(ctx context.Context, namespace, key string) ([]byte, bool, time.Duration, error)
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error
	InvalidateNamespace(ctx context.Context, namespace string) error
}

type NoopProductListCacheStore struct{}

func NewNoopProductListCacheStore() *NoopProductListCacheStore {
	return &NoopProductListCacheStore{}
}

func (NoopProductListCacheStore) Get(context.Context, string, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopProductListCacheStore) GetWithAge(context.Context, string, string) ([]byte, bool, time.Duration, error) {
	return nil, false, 0, nil
}

func (NoopProductListCacheStore) Set(context.Context, string, string, []byte, time.Duration) error {
	return nil
}

func (NoopProductListCacheStore) InvalidateNamespace(context.Context, string) error {
	return nil
}

type cachedSnapshot struct {
	payload  []byte
	storedAt time.Time
	ttl      time.Duration
}

type InMemoryProductListCacheStore struct {
	mu         sync.Mutex
	namespaces map[string]map[string]cachedSnapshot
	now        func() time.Time
}

func NewInMemoryProductListCacheStore() *InMemoryProductListCacheStore {
	return &InMemoryProductListCacheStore{
		namespaces: make(map[string]map[string]cachedSnapshot),
		now:        time.Now,
	}
}

func (s *InMemoryProductListCacheStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	payload, ok, _, err := s.GetWithAge(ctx, namespace, key)
	return payload, ok, err
}

func (s *InMemoryProductListCacheStore) GetWithAge(_ context.Context, namespace, key string) ([]byte, bool, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.namespaces[namespace][key]
	if !ok {
		return nil, false, 0, nil
	}
	age := max(s.now().Sub(entry.storedAt), 0)
	if age >= entry.ttl {
		delete(s.namespaces[namespace], key)
		if len(s.namespaces[namespace]) == 0 {
			delete(s.namespaces, namespace)
		}
		return nil, false, 0, nil
	}
	return append([]byte(nil), entry.payload...), true, age, nil
}

func (s *InMemoryProductListCacheStore) Set(_ context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.namespaces[namespace]
	if !ok {
		ns = make(map[string]cachedSnapshot)
		s.namespaces[namespace] = ns
	}
	ns[key] = cachedSnapshot{payload: append([]byte(nil), value...), storedAt: s.now(), ttl: ttl}
	return nil
}

func (s *InMemoryProductListCacheStore) InvalidateNamespace(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.namespaces, namespace)
	return nil
}
