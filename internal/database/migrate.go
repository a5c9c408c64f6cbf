package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/sandeepkv93/invotrac/internal/domain"
)

// mirrorModels are the tables behind list --offline.
var mirrorModels = []any{
	&domain.Product{},
	&domain.MirrorSync{},
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(mirrorModels...); err != nil {
		return fmt.Errorf("migrate mirror schema: %w", err)
	}
	return nil
}
