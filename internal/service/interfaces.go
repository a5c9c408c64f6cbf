package service

import (
	"context"
	"io"

	"github.com/sandeepkv93/invotrac/internal/domain"
)

//go:generate mockgen -destination=gomock/product_gateway_mock.go -package=gomock github.com/sandeepkv93/invotrac/internal/service ProductGateway

// ProductGateway is the products backend as seen by the service layer.
type ProductGateway interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (domain.Product, error)
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Update(ctx context.Context, id int64, p domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

// ExportStore publishes a rendered export and returns where it can be fetched.
type ExportStore interface {
	Put(ctx context.Context, body io.Reader, size int64) (ExportLocation, error)
}

type ExportLocation struct {
	Key string
	URL string
}
