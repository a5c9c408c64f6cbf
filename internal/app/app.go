package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/invotrac/internal/client"
	"github.com/sandeepkv93/invotrac/internal/config"
	"github.com/sandeepkv93/invotrac/internal/health"
	"github.com/sandeepkv93/invotrac/internal/observability"
	"github.com/sandeepkv93/invotrac/internal/service"
)

// App is the assembled dependency graph for one CLI invocation.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Observability *observability.Runtime
	Client        *client.ProductClient
	Inventory     *service.InventoryService
	Importer      *service.Importer
	ExportStore   service.ExportStore
	Health        *health.Runner
	MirrorDB      *gorm.DB
	Redis         redis.UniversalClient
}

type Dependencies struct {
	Config        *config.Config
	Logger        *slog.Logger
	Observability *observability.Runtime
	Client        *client.ProductClient
	Inventory     *service.InventoryService
	Importer      *service.Importer
	ExportStore   service.ExportStore
	Health        *health.Runner
	MirrorDB      *gorm.DB
	Redis         redis.UniversalClient
}

func New(deps Dependencies) *App {
	return &App{
		Config:        deps.Config,
		Logger:        deps.Logger,
		Observability: deps.Observability,
		Client:        deps.Client,
		Inventory:     deps.Inventory,
		Importer:      deps.Importer,
		ExportStore:   deps.ExportStore,
		Health:        deps.Health,
		MirrorDB:      deps.MirrorDB,
		Redis:         deps.Redis,
	}
}

// Close releases connections and flushes telemetry.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.MirrorDB != nil {
		if sqlDB, err := a.MirrorDB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := a.Observability.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
