package database

import (
	"fmt"

	"github.com/sandeepkv93/invotrac/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the product mirror database selected by MIRROR_DRIVER.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.MirrorDriver {
	case "postgres":
		dialector = postgres.Open(cfg.MirrorDSN)
	case "", "sqlite":
		dialector = sqlite.Open(cfg.MirrorDSN)
	default:
		return nil, fmt.Errorf("unsupported mirror driver %q", cfg.MirrorDriver)
	}
	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}
