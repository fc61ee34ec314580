package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

type CatalogRepository interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListProducts(ctx context.Context, categoryName string) ([]domain.Product, error)

	GetProductByID(ctx context.Context, productID uuid.UUID) (domain.Product, error)
	GetProductByName(ctx context.Context, name string) (domain.Product, error)
}
