package repositories

import (
	"context"

	"storefront/internal/models"
)

// ProductFilter narrows a product listing. Take is the maximum number of rows returned.
// Cursor is the ID of the first row of the requested page.
type ProductFilter struct {
	CategoryID string
	Status     models.ProductStatus
	Search     string
	Cursor     string
	Take       int
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	// SlugExists reports whether slug is used by any product other than excludeID.
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	Upsert(ctx context.Context, category *models.Category) error
}

// ProductImageRepository defines the interface for product image data access.
type ProductImageRepository interface {
	GetByID(ctx context.Context, id string) (*models.ProductImage, error)
	Create(ctx context.Context, image *models.ProductImage) error
	Update(ctx context.Context, image *models.ProductImage) error
	Delete(ctx context.Context, id string) error
}
