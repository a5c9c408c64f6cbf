package health

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type mockChecker struct {
	result CheckResult
}

func (m mockChecker) Check(context.Context) CheckResult {
	return m.result
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestRunnerAllHealthy(t *testing.T) {
	runner := NewRunner(200*time.Millisecond,
		mockChecker{result: CheckResult{Name: "backend", Healthy: true}},
		nil,
		mockChecker{result: CheckResult{Name: "redis", Healthy: true}},
	)
	ok, results := runner.Run(context.Background())
	if !ok {
		t.Fatal("expected healthy")
	}
	if len(results) != 2 {
		t.Fatalf("expected nil checker skipped, got %d results", len(results))
	}
}

func TestRunnerReportsUnhealthy(t *testing.T) {
	runner := NewRunner(200*time.Millisecond,
		mockChecker{result: CheckResult{Name: "backend", Healthy: true}},
		mockChecker{result: CheckResult{Name: "redis", Healthy: false, Error: errors.New("down").Error()}},
	)
	ok, results := runner.Run(context.Background())
	if ok {
		t.Fatal("expected unhealthy")
	}
	if results[1].Error != "down" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestBackendCheckerAppliesTimeout(t *testing.T) {
	slow := pingFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	runner := NewRunner(20*time.Millisecond, NewBackendChecker(slow, "http://backend"))
	ok, results := runner.Run(context.Background())
	if ok || len(results) != 1 {
		t.Fatalf("expected one unhealthy result, got ok=%v %+v", ok, results)
	}
	if !strings.Contains(results[0].Error, "deadline") {
		t.Fatalf("expected deadline error, got %q", results[0].Error)
	}
}

func TestConstructorsReturnNilWhenUnconfigured(t *testing.T) {
	if NewBackendChecker(nil, "") != nil || NewRedisChecker(nil) != nil || NewMirrorChecker(nil) != nil || NewObjectStoreChecker(nil, "b") != nil {
		t.Fatal("expected nil checkers for missing dependencies")
	}
}

func TestRedisChecker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	if res := NewRedisChecker(client).Check(context.Background()); !res.Healthy {
		t.Fatalf("expected healthy redis, got %+v", res)
	}
	mr.Close()
	if res := NewRedisChecker(client).Check(context.Background()); res.Healthy {
		t.Fatal("expected unhealthy redis after shutdown")
	}
}

func TestMirrorCheckerCountsRows(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Exec("CREATE TABLE mirrored_products (id INTEGER PRIMARY KEY)").Error; err != nil {
		t.Fatalf("create table: %v", err)
	}
	if err := db.Exec("INSERT INTO mirrored_products (id) VALUES (1), (2)").Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	res := NewMirrorChecker(db).Check(context.Background())
	if !res.Healthy || res.Detail != "2 rows" {
		t.Fatalf("unexpected mirror result: %+v", res)
	}
}
