package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalid marks configuration problems the user has to fix.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Env string

	BackendBaseURL string
	BackendTimeout time.Duration
	NoticeTTL      time.Duration

	CacheBackend  string
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	MirrorEnabled bool
	MirrorDriver  string
	MirrorDSN     string

	ExportMinIOEndpoint  string
	ExportMinIOAccessKey string
	ExportMinIOSecretKey string
	ExportMinIOBucket    string
	ExportMinIOUseSSL    bool

	ImportRPS         float64
	ImportConcurrency int

	LogLevel string
	LogFile  string

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("BACKEND_BASE_URL", "http://localhost:8000")
	v.SetDefault("BACKEND_TIMEOUT", "10s")
	v.SetDefault("NOTICE_TTL", "5s")
	v.SetDefault("CACHE_BACKEND", "none")
	v.SetDefault("CACHE_TTL", "30s")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PREFIX", "invotrac")
	v.SetDefault("MIRROR_ENABLED", false)
	v.SetDefault("MIRROR_DRIVER", "sqlite")
	v.SetDefault("MIRROR_DSN", "file:invotrac-mirror.db")
	v.SetDefault("EXPORT_MINIO_ENDPOINT", "")
	v.SetDefault("EXPORT_MINIO_ACCESS_KEY", "")
	v.SetDefault("EXPORT_MINIO_SECRET_KEY", "")
	v.SetDefault("EXPORT_MINIO_BUCKET", "")
	v.SetDefault("EXPORT_MINIO_USE_SSL", false)
	v.SetDefault("IMPORT_RPS", 5.0)
	v.SetDefault("IMPORT_CONCURRENCY", 4)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("OTEL_SERVICE_NAME", "invotrac")
	v.SetDefault("OTEL_ENVIRONMENT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", true)
	v.SetDefault("OTEL_METRICS_EXPORT_INTERVAL", "10s")
	v.SetDefault("OTEL_TRACE_SAMPLING_RATIO", 1.0)
	v.SetDefault("OTEL_METRICS_ENABLED", false)
	v.SetDefault("OTEL_TRACING_ENABLED", false)
	v.SetDefault("OTEL_LOGS_ENABLED", false)
}

// Load reads configuration from defaults, an optional dotenv file and the
// process environment, in increasing order of precedence.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read env file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat env file: %w", err)
		}
	}
	v.AutomaticEnv()
	return FromViper(v)
}

func FromViper(v *viper.Viper) (*Config, error) {
	env := v.GetString("APP_ENV")
	cfg := &Config{
		Env:                      env,
		BackendBaseURL:           strings.TrimRight(strings.TrimSpace(v.GetString("BACKEND_BASE_URL")), "/"),
		CacheBackend:             strings.ToLower(strings.TrimSpace(v.GetString("CACHE_BACKEND"))),
		RedisAddr:                v.GetString("REDIS_ADDR"),
		RedisPassword:            v.GetString("REDIS_PASSWORD"),
		RedisDB:                  v.GetInt("REDIS_DB"),
		RedisPrefix:              v.GetString("REDIS_PREFIX"),
		MirrorEnabled:            v.GetBool("MIRROR_ENABLED"),
		MirrorDriver:             strings.ToLower(strings.TrimSpace(v.GetString("MIRROR_DRIVER"))),
		MirrorDSN:                v.GetString("MIRROR_DSN"),
		ExportMinIOEndpoint:      v.GetString("EXPORT_MINIO_ENDPOINT"),
		ExportMinIOAccessKey:     v.GetString("EXPORT_MINIO_ACCESS_KEY"),
		ExportMinIOSecretKey:     v.GetString("EXPORT_MINIO_SECRET_KEY"),
		ExportMinIOBucket:        v.GetString("EXPORT_MINIO_BUCKET"),
		ExportMinIOUseSSL:        v.GetBool("EXPORT_MINIO_USE_SSL"),
		ImportRPS:                v.GetFloat64("IMPORT_RPS"),
		ImportConcurrency:        v.GetInt("IMPORT_CONCURRENCY"),
		LogLevel:                 strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFile:                  v.GetString("LOG_FILE"),
		OTELServiceName:          v.GetString("OTEL_SERVICE_NAME"),
		OTELEnvironment:          v.GetString("OTEL_ENVIRONMENT"),
		OTELExporterOTLPEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTELExporterOTLPInsecure: v.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
		OTELTraceSamplingRatio:   v.GetFloat64("OTEL_TRACE_SAMPLING_RATIO"),
		OTELMetricsEnabled:       v.GetBool("OTEL_METRICS_ENABLED"),
		OTELTracingEnabled:       v.GetBool("OTEL_TRACING_ENABLED"),
		OTELLogsEnabled:          v.GetBool("OTEL_LOGS_ENABLED"),
	}
	if cfg.OTELEnvironment == "" {
		cfg.OTELEnvironment = env
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"BACKEND_TIMEOUT", &cfg.BackendTimeout},
		{"NOTICE_TTL", &cfg.NoticeTTL},
		{"CACHE_TTL", &cfg.CacheTTL},
		{"OTEL_METRICS_EXPORT_INTERVAL", &cfg.OTELMetricsExportInterval},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalid, d.key, err)
		}
		*d.dst = parsed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if u, err := url.Parse(c.BackendBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "BACKEND_BASE_URL must be an absolute http(s) URL")
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, "BACKEND_BASE_URL must use http or https")
	}
	if c.BackendTimeout <= 0 {
		errs = append(errs, "BACKEND_TIMEOUT must be > 0")
	}
	if c.NoticeTTL <= 0 {
		errs = append(errs, "NOTICE_TTL must be > 0")
	}
	switch c.CacheBackend {
	case "none", "memory":
	case "redis":
		if c.RedisAddr == "" {
			errs = append(errs, "REDIS_ADDR is required when CACHE_BACKEND=redis")
		}
	default:
		errs = append(errs, "CACHE_BACKEND must be one of none, memory, redis")
	}
	if c.CacheBackend != "none" && c.CacheTTL <= 0 {
		errs = append(errs, "CACHE_TTL must be > 0 when caching is enabled")
	}
	if c.MirrorEnabled {
		switch c.MirrorDriver {
		case "sqlite":
		case "postgres":
			if !strings.Contains(c.MirrorDSN, "://") && !strings.Contains(c.MirrorDSN, "host=") {
				errs = append(errs, "MIRROR_DSN must be a postgres DSN when MIRROR_DRIVER=postgres")
			}
		default:
			errs = append(errs, "MIRROR_DRIVER must be one of sqlite, postgres")
		}
		if strings.TrimSpace(c.MirrorDSN) == "" {
			errs = append(errs, "MIRROR_DSN is required when MIRROR_ENABLED=true")
		}
	}
	if c.anyMinIOSet() && !c.ExportMinIOConfigured() {
		errs = append(errs, "EXPORT_MINIO_ENDPOINT, EXPORT_MINIO_ACCESS_KEY, EXPORT_MINIO_SECRET_KEY and EXPORT_MINIO_BUCKET must be set together")
	}
	if c.ImportRPS <= 0 {
		errs = append(errs, "IMPORT_RPS must be > 0")
	}
	if c.ImportConcurrency <= 0 {
		errs = append(errs, "IMPORT_CONCURRENCY must be > 0")
	}
	if !isValidLogLevel(c.LogLevel) {
		errs = append(errs, "LOG_LEVEL must be one of debug, info, warn, error")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) ExportMinIOConfigured() bool {
	return c.ExportMinIOEndpoint != "" && c.ExportMinIOAccessKey != "" &&
		c.ExportMinIOSecretKey != "" && c.ExportMinIOBucket != ""
}

func (c *Config) anyMinIOSet() bool {
	return c.ExportMinIOEndpoint != "" || c.ExportMinIOAccessKey != "" ||
		c.ExportMinIOSecretKey != "" || c.ExportMinIOBucket != ""
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}
