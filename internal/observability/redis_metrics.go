package observability

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var redisInstrumentationOnce sync.Once

// InstrumentRedisClient adds command counters and latency to the product
// list cache client. Instrumentation is installed once per process.
func InstrumentRedisClient(client redis.UniversalClient, logger *slog.Logger) {
	if client == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	redisInstrumentationOnce.Do(func() {
		hook, err := newRedisCommandHook(otel.Meter(meterName))
		if err != nil {
			logger.Warn("redis instrumentation disabled", "error", err)
			return
		}
		client.AddHook(hook)
		logger.Debug("redis instrumentation enabled")
	})
}

type redisCommandHook struct {
	commands metric.Int64Counter
	latency  metric.Float64Histogram
}

func newRedisCommandHook(meter metric.Meter) (*redisCommandHook, error) {
	commands, err := meter.Int64Counter("redis.command.total", metric.WithDescription("Redis commands issued by the product list cache"))
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram("redis.command.duration", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &redisCommandHook{commands: commands, latency: latency}, nil
}

func (h *redisCommandHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h *redisCommandHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.observe(ctx, strings.ToLower(cmd.Name()), err, time.Since(start))
		return err
	}
}

func (h *redisCommandHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		h.observe(ctx, "pipeline", err, time.Since(start))
		return err
	}
}

func (h *redisCommandHook) observe(ctx context.Context, command string, err error, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("status", redisCommandStatus(err)),
	)
	h.commands.Add(ctx, 1, attrs)
	h.latency.Record(ctx, d.Seconds(), attrs)
}

func redisCommandStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, redis.Nil):
		return "miss"
	default:
		return "error"
	}
}
