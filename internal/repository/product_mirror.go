package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sandeepkv93/invotrac/internal/domain"
	"github.com/sandeepkv93/invotrac/internal/observability"
)

var ErrMirrorNeverSynced = errors.New("product mirror has never been synced")

// ProductMirror keeps the last fetched product snapshot for offline browsing.
type ProductMirror interface {
	ReplaceAll(ctx context.Context, products []domain.Product) error
	List(ctx context.Context) ([]domain.Product, error)
	Count(ctx context.Context) (int64, error)
	SyncedAt(ctx context.Context) (time.Time, error)
}

type GormProductMirror struct{ db *gorm.DB }

func NewProductMirror(db *gorm.DB) *GormProductMirror {
	return &GormProductMirror{db: db}
}

// ReplaceAll swaps the mirror contents in one transaction. Duplicate ids in
// the input keep the last occurrence.
func (r *GormProductMirror) ReplaceAll(ctx context.Context, products []domain.Product) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.Product{}).Error; err != nil {
			return err
		}
		if rows := dedupeByID(products); len(rows) > 0 {
			if err := tx.CreateInBatches(rows, 200).Error; err != nil {
				return err
			}
		}
		sync := domain.MirrorSync{ID: 1, SyncedAt: time.Now().UTC(), Rows: len(products)}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&sync).Error
	})
	if err != nil {
		observability.RecordMirrorOperation(ctx, "replace_all", "error")
		return err
	}
	observability.RecordMirrorOperation(ctx, "replace_all", "success")
	return nil
}

func (r *GormProductMirror) List(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := r.db.WithContext(ctx).Order("id asc").Find(&products).Error; err != nil {
		observability.RecordMirrorOperation(ctx, "list", "error")
		return nil, err
	}
	observability.RecordMirrorOperation(ctx, "list", "success")
	return products, nil
}

func (r *GormProductMirror) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *GormProductMirror) SyncedAt(ctx context.Context) (time.Time, error) {
	var sync domain.MirrorSync
	if err := r.db.WithContext(ctx).First(&sync, 1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, ErrMirrorNeverSynced
		}
		return time.Time{}, err
	}
	return sync.SyncedAt, nil
}

func dedupeByID(products []domain.Product) []domain.Product {
	index := make(map[int64]int, len(products))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if i, ok := index[p.ID]; ok {
			out[i] = p
			continue
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	return out
}
