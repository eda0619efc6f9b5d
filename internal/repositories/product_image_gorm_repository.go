package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storefront/internal/models"
)

// GORMProductImageRepository is a GORM implementation of ProductImageRepository.
type GORMProductImageRepository struct {
	db *gorm.DB
}

var _ ProductImageRepository = (*GORMProductImageRepository)(nil)

// NewGORMProductImageRepository creates a new instance of GORMProductImageRepository.
func NewGORMProductImageRepository(db *gorm.DB) *GORMProductImageRepository {
	return &GORMProductImageRepository{db: db}
}

func (r *GORMProductImageRepository) GetByID(ctx context.Context, id string) (*models.ProductImage, error) {
	var image models.ProductImage
	if err := r.db.WithContext(ctx).First(&image, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("image with ID %s: %w", id, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get image by ID %s: %w", id, err)
	}
	return &image, nil
}

func (r *GORMProductImageRepository) Create(ctx context.Context, image *models.ProductImage) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	return nil
}

// Update persists url, alt and order of an existing image.
func (r *GORMProductImageRepository) Update(ctx context.Context, image *models.ProductImage) error {
	res := r.db.WithContext(ctx).
		Model(&models.ProductImage{ID: image.ID}).
		Select("url", "alt", "position", "updated_at").
		Updates(image)
	if res.Error != nil {
		return fmt.Errorf("failed to update image: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("image with ID %s not found for update: %w", image.ID, ErrRecordNotFound)
	}
	return nil
}

func (r *GORMProductImageRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.ProductImage{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete image: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("image with ID %s not found for deletion: %w", id, ErrRecordNotFound)
	}
	return nil
}
