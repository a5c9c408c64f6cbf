package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestInMemoryProductListCacheStoreGetSetInvalidate(t *testing.T) {
	store := NewInMemoryProductListCacheStore()
	ctx := context.Background()

	if err := store.Set(ctx, productsNamespace, "all", []byte(`[{"id":1}]`), time.Minute); err != nil {
		t.Fatalf("set cache: %v", err)
	}
	got, ok, age, err := store.GetWithAge(ctx, productsNamespace, "all")
	if err != nil {
		t.Fatalf("get cache: %v", err)
	}
	if !ok || string(got) != `[{"id":1}]` {
		t.Fatalf("expected cache hit, ok=%v payload=%s", ok, got)
	}
	if age < 0 {
		t.Fatalf("expected non-negative age, got %v", age)
	}

	if err := store.InvalidateNamespace(ctx, productsNamespace); err != nil {
		t.Fatalf("invalidate namespace: %v", err)
	}
	if _, ok, _ := store.Get(ctx, productsNamespace, "all"); ok {
		t.Fatal("expected cache miss after invalidation")
	}
}

func TestInMemoryProductListCacheStoreExpiry(t *testing.T) {
	store := NewInMemoryProductListCacheStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.Set(ctx, productsNamespace, "all", []byte(`[]`), 30*time.Second); err != nil {
		t.Fatalf("set cache: %v", err)
	}
	now = now.Add(29 * time.Second)
	if _, ok, age, _ := store.GetWithAge(ctx, productsNamespace, "all"); !ok || age != 29*time.Second {
		t.Fatalf("expected hit aged 29s, ok=%v age=%v", ok, age)
	}
	now = now.Add(time.Second)
	if _, ok, _ := store.Get(ctx, productsNamespace, "all"); ok {
		t.Fatal("expected cache entry to expire")
	}
}

func TestInMemoryProductListCacheStoreIgnoresNonPositiveTTL(t *testing.T) {
	store := NewInMemoryProductListCacheStore()
	ctx := context.Background()
	if err := store.Set(ctx, productsNamespace, "all", []byte(`[]`), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := store.Get(ctx, productsNamespace, "all"); ok {
		t.Fatal("expected zero ttl to skip caching")
	}
}

func TestNoopProductListCacheStoreAlwaysMisses(t *testing.T) {
	store := NewNoopProductListCacheStore()
	ctx := context.Background()
	if err := store.Set(ctx, productsNamespace, "all", []byte(`[]`), time.Minute); err != nil {
		t.Fatalf("set noop cache: %v", err)
	}
	if _, ok, _, err := store.GetWithAge(ctx, productsNamespace, "all"); err != nil || ok {
		t.Fatalf("expected noop miss, ok=%v err=%v", ok, err)
	}
	if err := store.InvalidateNamespace(ctx, productsNamespace); err != nil {
		t.Fatalf("invalidate noop: %v", err)
	}
}

func TestRedisProductListCacheStoreRoundTripAndInvalidate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewRedisProductListCacheStore(client, "test")
	ctx := context.Background()

	if err := store.Set(ctx, productsNamespace, "all", []byte(`[{"id":2}]`), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, age, err := store.GetWithAge(ctx, productsNamespace, "all")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || string(got) != `[{"id":2}]` {
		t.Fatalf("expected redis hit, ok=%v payload=%s", ok, got)
	}
	if age < 0 {
		t.Fatalf("expected non-negative age, got %v", age)
	}
	if !mr.Exists("test:products-index:" + productsNamespace) {
		t.Fatal("expected namespace index key")
	}

	if err := store.InvalidateNamespace(ctx, productsNamespace); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok, err := store.Get(ctx, productsNamespace, "all"); err != nil || ok {
		t.Fatalf("expected miss after invalidate, ok=%v err=%v", ok, err)
	}
	if mr.Exists("test:products-index:" + productsNamespace) {
		t.Fatal("expected namespace index removed")
	}
}

func TestRedisProductListCacheStoreExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewRedisProductListCacheStore(client, "")
	ctx := context.Background()

	if err := store.Set(ctx, productsNamespace, "all", []byte(`[]`), 10*time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(11 * time.Second)
	if _, ok, err := store.Get(ctx, productsNamespace, "all"); err != nil || ok {
		t.Fatalf("expected expired entry, ok=%v err=%v", ok, err)
	}
}

func TestRedisProductListCacheStoreMissOnEmptyHash(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewRedisProductListCacheStore(client, "test")

	if _, ok, err := store.Get(context.Background(), productsNamespace, "missing"); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
}
