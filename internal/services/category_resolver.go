package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// CategoryResolver maps a category token from a request to a stored category.
// The slug is the canonical key; an exact name match is accepted when no slug matches,
// so both the listing filters and the admin forms resolve the same way.
type CategoryResolver struct {
	categories repositories.CategoryRepository
}

func NewCategoryResolver(categories repositories.CategoryRepository) *CategoryResolver {
	return &CategoryResolver{categories: categories}
}

// Resolve returns nil without error when token matches no category.
func (r *CategoryResolver) Resolve(ctx context.Context, token string) (*models.Category, error) {
	if token == "" {
		return nil, nil
	}
	category, err := r.categories.GetBySlug(ctx, token)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to resolve category %q: %w", token, err)
	}

	category, err = r.categories.GetByName(ctx, token)
	if err == nil {
		return category, nil
	}
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to resolve category %q: %w", token, err)
}
