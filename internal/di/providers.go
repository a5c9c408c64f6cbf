package di

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/invotrac/internal/app"
	"github.com/sandeepkv93/invotrac/internal/client"
	"github.com/sandeepkv93/invotrac/internal/config"
	"github.com/sandeepkv93/invotrac/internal/database"
	"github.com/sandeepkv93/invotrac/internal/health"
	"github.com/sandeepkv93/invotrac/internal/observability"
	"github.com/sandeepkv93/invotrac/internal/repository"
	"github.com/sandeepkv93/invotrac/internal/service"
)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideProductClient,
	provideRedisClient,
	provideMirrorDB,
	provideExportStore,
	provideHealthRunner,
)

var RepositorySet = wire.NewSet(
	provideProductMirror,
)

var ServiceSet = wire.NewSet(
	provideProductListCache,
	provideInventoryService,
	provideImporter,
)

var AppSet = wire.NewSet(provideApp)

func provideObservabilityRuntime(cfg *config.Config, out io.Writer) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg, out)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime, out io.Writer) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider, out)
}

func provideProductClient(cfg *config.Config, logger *slog.Logger) *client.ProductClient {
	return client.NewProductClient(cfg.BackendBaseURL, cfg.BackendTimeout, logger)
}

func provideRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	if cfg.CacheBackend != "redis" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	observability.InstrumentRedisClient(client, logger)
	return client
}

func provideMirrorDB(cfg *config.Config) (*gorm.DB, error) {
	if !cfg.MirrorEnabled {
		return nil, nil
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func provideProductMirror(db *gorm.DB) repository.ProductMirror {
	if db == nil {
		return nil
	}
	return repository.NewProductMirror(db)
}

func provideExportStore(cfg *config.Config) (*service.MinIOExportStore, error) {
	if !cfg.ExportMinIOConfigured() {
		return nil, nil
	}
	return service.NewMinIOExportStore(
		cfg.ExportMinIOEndpoint,
		cfg.ExportMinIOAccessKey,
		cfg.ExportMinIOSecretKey,
		cfg.ExportMinIOBucket,
		cfg.ExportMinIOUseSSL,
	)
}

func provideProductListCache(cfg *config.Config, redisClient redis.UniversalClient) service.ProductListCacheStore {
	switch cfg.CacheBackend {
	case "memory":
		return service.NewInMemoryProductListCacheStore()
	case "redis":
		if redisClient != nil {
			return service.NewRedisProductListCacheStore(redisClient, cfg.RedisPrefix)
		}
	}
	return service.NewNoopProductListCacheStore()
}

func provideInventoryService(
	cfg *config.Config,
	productClient *client.ProductClient,
	cache service.ProductListCacheStore,
	mirror repository.ProductMirror,
	logger *slog.Logger,
) *service.InventoryService {
	return service.NewInventoryService(productClient, cache, cfg.CacheTTL, mirror, logger)
}

func provideImporter(cfg *config.Config, inventory *service.InventoryService, logger *slog.Logger) *service.Importer {
	return service.NewImporter(inventory, cfg.ImportRPS, cfg.ImportConcurrency, logger)
}

func provideHealthRunner(
	cfg *config.Config,
	productClient *client.ProductClient,
	redisClient redis.UniversalClient,
	db *gorm.DB,
	exportStore *service.MinIOExportStore,
) *health.Runner {
	checkers := []health.Checker{health.NewBackendChecker(productClient, productClient.BaseURL())}
	if redisClient != nil {
		checkers = append(checkers, health.NewRedisChecker(redisClient))
	}
	checkers = append(checkers, health.NewMirrorChecker(db))
	if exportStore != nil {
		checkers = append(checkers, health.NewObjectStoreChecker(exportStore.Client(), exportStore.Bucket()))
	}
	return health.NewRunner(cfg.BackendTimeout, checkers...)
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	runtime *observability.Runtime,
	productClient *client.ProductClient,
	inventory *service.InventoryService,
	importer *service.Importer,
	exportStore *service.MinIOExportStore,
	healthRunner *health.Runner,
	db *gorm.DB,
	redisClient redis.UniversalClient,
) *app.App {
	deps := app.Dependencies{
		Config:        cfg,
		Logger:        logger,
		Observability: runtime,
		Client:        productClient,
		Inventory:     inventory,
		Importer:      importer,
		Health:        healthRunner,
		MirrorDB:      db,
		Redis:         redisClient,
	}
	if exportStore != nil {
		deps.ExportStore = exportStore
	}
	return app.New(deps)
}
