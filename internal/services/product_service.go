package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/retry"
)

const (
	// maxSlugAttempts bounds the suffix search: the base slug plus suffixes -1 .. -99.
	maxSlugAttempts = 100
	// fallbackSlug replaces a base slug that normalizes to nothing.
	fallbackSlug = "product"
	// priceLimit is the first value that no longer fits the int64 price column.
	priceLimit = float64(math.MaxInt64)
)

// Form-facing status tokens.
const (
	FormStatusDraft     = "draft"
	FormStatusPublished = "published"
)

// CreateProductInput mirrors the admin product form. Price and stock arrive as strings.
type CreateProductInput struct {
	Name            string   `json:"name" validate:"required,min=1,max=100"`
	Description     string   `json:"description" validate:"required,min=1,max=1000"`
	Category        string   `json:"category" validate:"required"`
	Price           string   `json:"price" validate:"required,positive_number"`
	Stock           string   `json:"stock" validate:"required,non_negative_int"`
	Status          string   `json:"status" validate:"required,oneof=draft published"`
	Tags            string   `json:"tags"`
	MetaTitle       string   `json:"metaTitle" validate:"max=60"`
	MetaDescription string   `json:"metaDescription" validate:"max=160"`
	ImageURLs       []string `json:"imageUrls" validate:"omitempty,dive,url"`
}

// UpdateProductInput is the create form plus the target product ID. ImageURLs is ignored.
type UpdateProductInput struct {
	ID string `json:"id" validate:"required"`
	CreateProductInput
}

// ProductService handles product creation, update and deletion.
type ProductService struct {
	products repositories.ProductRepository
	resolver *CategoryResolver
	policy   Policy
	validate *validator.Validate
	notify   notifier
	log      *zap.Logger
	retry    retry.Config
	now      func() time.Time
}

// ProductServiceOption customizes a ProductService.
type ProductServiceOption func(*ProductService)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) ProductServiceOption {
	return func(s *ProductService) { s.now = now }
}

// WithSlugRetry overrides how slug conflicts reported by the store are retried.
func WithSlugRetry(attempts int, backoff retry.Backoff) ProductServiceOption {
	return func(s *ProductService) {
		s.retry.MaxAttempts = attempts
		s.retry.Backoff = backoff
	}
}

// NewProductService creates a new ProductService. publisher and cache may be nil.
func NewProductService(
	products repositories.ProductRepository,
	categories repositories.CategoryRepository,
	policy Policy,
	publisher EventPublisher,
	cache Cache,
	log *zap.Logger,
	opts ...ProductServiceOption,
) *ProductService {
	s := &ProductService{
		products: products,
		resolver: NewCategoryResolver(categories),
		policy:   policy,
		validate: newValidator(),
		notify:   notifier{publisher: publisher, cache: cache, log: log},
		log:      log,
		retry: retry.Config{
			MaxAttempts: 3,
			Backoff:     retry.ExponentialBackoff(20 * time.Millisecond),
			ShouldRetry: func(err error) bool { return errors.Is(err, repositories.ErrDuplicateSlug) },
		},
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProduct validates the form, assigns a unique slug and stores the product with its initial images.
func (s *ProductService) CreateProduct(ctx context.Context, caller *Caller, in CreateProductInput) (*models.Product, error) {
	const op = "ProductService.CreateProduct"

	if err := s.policy(caller); err != nil {
		return nil, err
	}
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	price, err := normalizePrice(in.Price, 100)
	if err != nil {
		return nil, err
	}

	category, err := s.requireCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}

	stock, _ := strconv.Atoi(strings.TrimSpace(in.Stock))
	now := s.now()

	product := &models.Product{
		Name:            in.Name,
		Description:     in.Description,
		Price:           price,
		Stock:           stock,
		Status:          statusFromForm(in.Status),
		Tags:            ParseTags(in.Tags),
		MetaTitle:       optional(in.MetaTitle),
		MetaDescription: optional(in.MetaDescription),
		CategoryID:      category.ID,
		CreatedByID:     caller.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for i, url := range in.ImageURLs {
		alt := in.Name
		product.Images = append(product.Images, models.ProductImage{URL: url, Alt: &alt, Order: i})
	}

	err = retry.Do(ctx, s.retry, func() error {
		slug, err := s.uniqueSlug(ctx, in.Name, "")
		if err != nil {
			return err
		}
		product.Slug = slug
		return s.products.Create(ctx, product)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("product created",
		zap.String("product_id", product.ID),
		zap.String("slug", product.Slug),
		zap.Int("images", len(product.Images)))

	created, err := s.products.GetByID(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.notify.changed(ctx, Event{Type: EventProductCreated, ProductID: created.ID, Slug: created.Slug, OccurredAt: now, Data: created})
	return created, nil
}

// UpdateProduct rewrites the product's editable fields. The slug is recomputed only on rename.
//
// Unlike CreateProduct, the price is rounded as given and not scaled to cents.
func (s *ProductService) UpdateProduct(ctx context.Context, caller *Caller, in UpdateProductInput) (*models.Product, error) {
	const op = "ProductService.UpdateProduct"

	if err := s.policy(caller); err != nil {
		return nil, err
	}
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	price, err := normalizePrice(in.Price, 1)
	if err != nil {
		return nil, err
	}

	existing, err := s.products.GetByID(ctx, in.ID)
	if err != nil {
		return nil, notFound(err, "product with ID %s not found", in.ID)
	}

	category, err := s.requireCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}

	stock, _ := strconv.Atoi(strings.TrimSpace(in.Stock))
	renamed := in.Name != existing.Name

	updated := &models.Product{
		ID:              existing.ID,
		Name:            in.Name,
		Slug:            existing.Slug,
		Description:     in.Description,
		Price:           price,
		Stock:           stock,
		Status:          statusFromForm(in.Status),
		Tags:            ParseTags(in.Tags),
		MetaTitle:       optional(in.MetaTitle),
		MetaDescription: optional(in.MetaDescription),
		CategoryID:      category.ID,
		UpdatedAt:       s.now(),
	}

	err = retry.Do(ctx, s.retry, func() error {
		if renamed {
			slug, err := s.uniqueSlug(ctx, in.Name, existing.ID)
			if err != nil {
				return err
			}
			updated.Slug = slug
		}
		return s.products.Update(ctx, updated)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err, "product with ID %s not found", in.ID))
	}

	s.log.Info("product updated",
		zap.String("product_id", updated.ID),
		zap.String("slug", updated.Slug),
		zap.Bool("renamed", renamed))

	product, err := s.products.GetByID(ctx, updated.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.notify.changed(ctx, Event{Type: EventProductUpdated, ProductID: product.ID, Slug: product.Slug, OccurredAt: updated.UpdatedAt, Data: product})
	return product, nil
}

// DeleteProduct hard-deletes the product together with its images.
func (s *ProductService) DeleteProduct(ctx context.Context, caller *Caller, id string) error {
	if err := s.policy(caller); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return notFound(err, "product with ID %s not found", id)
	}

	s.log.Info("product deleted", zap.String("product_id", id))
	s.notify.changed(ctx, Event{Type: EventProductDeleted, ProductID: id, OccurredAt: s.now()})
	return nil
}

func (s *ProductService) requireCategory(ctx context.Context, token string) (*models.Category, error) {
	category, err := s.resolver.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("specified category %q not found: %w", token, ErrBadRequest)
	}
	return category, nil
}

// uniqueSlug returns the first free slug among base, base-1, base-2, ... ignoring excludeID.
func (s *ProductService) uniqueSlug(ctx context.Context, name, excludeID string) (string, error) {
	base := GenerateSlug(name)
	if base == "" {
		base = fallbackSlug
	}
	for n := 0; n < maxSlugAttempts; n++ {
		candidate := base
		if n > 0 {
			candidate = fmt.Sprintf("%s-%d", base, n)
		}
		taken, err := s.products.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free slug for %q after %d attempts: %w", base, maxSlugAttempts, ErrSlugExhausted)
}

// normalizePrice scales an already validated price string and rounds it to an integer.
func normalizePrice(raw string, scale float64) (int64, error) {
	n, _ := parseNumber(raw)
	scaled := math.Round(n * scale)
	if scaled >= priceLimit {
		return 0, &ValidationError{Fields: map[string]string{
			"price": "Field 'price' failed on the 'max' tag",
		}}
	}
	return int64(scaled), nil
}

func statusFromForm(status string) models.ProductStatus {
	if status == FormStatusPublished {
		return models.StatusPublished
	}
	return models.StatusDraft
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
