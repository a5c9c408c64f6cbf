package health

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Pinger is anything that can prove the products backend answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type BackendChecker struct {
	backend Pinger
	target  string
}

func NewBackendChecker(backend Pinger, target string) Checker {
	if backend == nil {
		return nil
	}
	return &BackendChecker{backend: backend, target: target}
}

func (c *BackendChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "backend", Healthy: true, Detail: c.target}
	if err := c.backend.Ping(ctx); err != nil {
		res.Healthy = false
		res.Error = err.Error()
	}
	return res
}

type MirrorChecker struct {
	db *gorm.DB
}

func NewMirrorChecker(db *gorm.DB) Checker {
	if db == nil {
		return nil
	}
	return &MirrorChecker{db: db}
}

func (c *MirrorChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "mirror", Healthy: true}
	sqlDB, err := c.db.DB()
	if err != nil {
		res.Healthy = false
		res.Error = err.Error()
		return res
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		res.Healthy = false
		res.Error = err.Error()
		return res
	}
	var rows int64
	if err := c.db.WithContext(ctx).Table("mirrored_products").Count(&rows).Error; err != nil {
		res.Healthy = false
		res.Error = err.Error()
		return res
	}
	res.Detail = fmt.Sprintf("%d rows", rows)
	return res
}

type RedisChecker struct {
	client redis.UniversalClient
}

func NewRedisChecker(client redis.UniversalClient) Checker {
	if client == nil {
		return nil
	}
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "redis", Healthy: true}
	if err := c.client.Ping(ctx).Err(); err != nil {
		res.Healthy = false
		res.Error = err.Error()
	}
	return res
}

type ObjectStoreChecker struct {
	client *minio.Client
	bucket string
}

func NewObjectStoreChecker(client *minio.Client, bucket string) Checker {
	if client == nil {
		return nil
	}
	return &ObjectStoreChecker{client: client, bucket: bucket}
}

func (c *ObjectStoreChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "object_store", Healthy: true, Detail: c.bucket}
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		res.Healthy = false
		res.Error = err.Error()
		return res
	}
	if !exists {
		res.Detail = c.bucket + " (created on first export)"
	}
	return res
}
