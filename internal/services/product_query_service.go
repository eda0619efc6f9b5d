package services

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

const defaultListLimit = 10

// ListProductsInput carries listing filters. A zero Limit means the default page size.
type ListProductsInput struct {
	Category string               `json:"category" query:"category"`
	Status   models.ProductStatus `json:"status" query:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	Search   string               `json:"search" query:"search"`
	Limit    int                  `json:"limit" query:"limit" validate:"min=1,max=100"`
	Cursor   string               `json:"cursor" query:"cursor"`
}

// ProductPage is one page of a listing. NextCursor is set only when more rows exist.
type ProductPage struct {
	Products   []models.Product `json:"products"`
	NextCursor *string          `json:"nextCursor,omitempty"`
}

// ProductQueryService serves read-only catalog queries.
type ProductQueryService struct {
	products   repositories.ProductRepository
	categories repositories.CategoryRepository
	resolver   *CategoryResolver
	policy     Policy
	cache      Cache
	validate   *validator.Validate
	log        *zap.Logger
}

// NewProductQueryService creates a new ProductQueryService. cache may be nil.
func NewProductQueryService(
	products repositories.ProductRepository,
	categories repositories.CategoryRepository,
	policy Policy,
	cache Cache,
	log *zap.Logger,
) *ProductQueryService {
	return &ProductQueryService{
		products:   products,
		categories: categories,
		resolver:   NewCategoryResolver(categories),
		policy:     policy,
		cache:      cache,
		validate:   newValidator(),
		log:        log,
	}
}

// List returns a page of products for the storefront.
func (s *ProductQueryService) List(ctx context.Context, in ListProductsInput) (*ProductPage, error) {
	return s.cachedList(ctx, "public", in, s.list)
}

// AdminList is List for the admin console: each product carries at most its first image.
func (s *ProductQueryService) AdminList(ctx context.Context, caller *Caller, in ListProductsInput) (*ProductPage, error) {
	if err := s.policy(caller); err != nil {
		return nil, err
	}
	return s.cachedList(ctx, "admin", in, func(ctx context.Context, in ListProductsInput) (*ProductPage, error) {
		page, err := s.list(ctx, in)
		if err != nil {
			return nil, err
		}
		for i := range page.Products {
			if len(page.Products[i].Images) > 1 {
				page.Products[i].Images = page.Products[i].Images[:1]
			}
		}
		return page, nil
	})
}

func (s *ProductQueryService) cachedList(
	ctx context.Context,
	audience string,
	in ListProductsInput,
	load func(context.Context, ListProductsInput) (*ProductPage, error),
) (*ProductPage, error) {
	if in.Limit == 0 {
		in.Limit = defaultListLimit
	}
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	key := listCacheKey(audience, in)
	if s.cache != nil && key != "" {
		var cached ProductPage
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.Warn("product list cache read failed", zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	page, err := load(ctx, in)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && key != "" {
		if err := s.cache.Set(ctx, key, page); err != nil {
			s.log.Warn("product list cache write failed", zap.Error(err))
		}
	}
	return page, nil
}

func (s *ProductQueryService) list(ctx context.Context, in ListProductsInput) (*ProductPage, error) {
	filter := repositories.ProductFilter{
		Status: in.Status,
		Search: in.Search,
		Cursor: in.Cursor,
		Take:   in.Limit + 1,
	}

	// An unknown category drops the filter instead of failing the listing.
	category, err := s.resolver.Resolve(ctx, in.Category)
	if err != nil {
		return nil, err
	}
	if category != nil {
		filter.CategoryID = category.ID
	}

	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	page := &ProductPage{Products: products}
	if len(products) > in.Limit {
		next := products[in.Limit].ID
		page.Products = products[:in.Limit]
		page.NextCursor = &next
	}
	return page, nil
}

func listCacheKey(audience string, in ListProductsInput) string {
	data, err := json.Marshal(in)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s%s:%x", listCachePrefix, audience, md5.Sum(data))
}

// GetByID retrieves a product with its category, ordered images and creator.
func (s *ProductQueryService) GetByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product with ID %s not found", id)
	}
	return product, nil
}

// GetBySlug retrieves a product by its slug.
func (s *ProductQueryService) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "product with slug %s not found", slug)
	}
	return product, nil
}

// GetCategories returns every category ordered by name.
func (s *ProductQueryService) GetCategories(ctx context.Context) ([]models.Category, error) {
	if s.cache != nil {
		var cached []models.Category
		hit, err := s.cache.Get(ctx, categoriesCacheKey, &cached)
		if err != nil {
			s.log.Warn("category cache read failed", zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, categoriesCacheKey, categories); err != nil {
			s.log.Warn("category cache write failed", zap.Error(err))
		}
	}
	return categories, nil
}

// notFound converts a repository miss into ErrNotFound and passes other errors through.
func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
	}
	return err
}
