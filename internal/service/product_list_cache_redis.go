package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	snapshotField   = "payload"
	storedAtField   = "stored_at_ns"
	indexGraceExtra = time.Minute
)

// RedisProductListCacheStore keeps each snapshot in a hash next to its store
// time. A set per namespace indexes the hashes for invalidation.
type RedisProductListCacheStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisProductListCacheStore(client redis.UniversalClient, prefix string) *RedisProductListCacheStore {
	if prefix == "" {
		prefix = "invotrac"
	}
	return &RedisProductListCacheStore{client: client, prefix: prefix}
}

func (s *RedisProductListCacheStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	value, ok, _, err := s.GetWithAge(ctx, namespace, key)
	return value, ok, err
}

func (s *RedisProductListCacheStore) GetWithAge(ctx context.Context, namespace, key string) ([]byte, bool, time.Duration, error) {
	if s.client == nil {
		return nil, false, 0, nil
	}
	vals, err := s.client.HMGet(ctx, s.entryKey(namespace, key), snapshotField, storedAtField).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, 0, nil
	}
	if err != nil {
		return nil, false, 0, err
	}
	payload, ok := vals[0].(string)
	if !ok {
		return nil, false, 0, nil
	}
	var age time.Duration
	if raw, ok := vals[1].(string); ok {
		if nanos, err := strconv.ParseInt(raw, 10, 64); err == nil {
			age = max(time.Since(time.Unix(0, nanos)), 0)
		}
	}
	return []byte(payload), true, age, nil
}

func (s *RedisProductListCacheStore) Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	if s.client == nil || ttl <= 0 {
		return nil
	}
	entry := s.entryKey(namespace, key)
	index := s.indexKey(namespace)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, entry, snapshotField, value, storedAtField, strconv.FormatInt(time.Now().UnixNano(), 10))
	pipe.Expire(ctx, entry, ttl)
	pipe.SAdd(ctx, index, entry)
	pipe.Expire(ctx, index, ttl+indexGraceExtra)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisProductListCacheStore) InvalidateNamespace(ctx context.Context, namespace string) error {
	if s.client == nil {
		return nil
	}
	index := s.indexKey(namespace)
	keys, err := s.client.SMembers(ctx, index).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	pipe := s.client.TxPipeline()
	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, index)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisProductListCacheStore) entryKey(namespace, key string) string {
	if key == "" {
		key = "all"
	}
	return fmt.Sprintf("%s:products:%s:%s", s.prefix, namespace, key)
}

func (s *RedisProductListCacheStore) indexKey(namespace string) string {
	return fmt.Sprintf("%s:products-index:%s", s.prefix, namespace)
}
