package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

var _ ProductRepository = (*GORMProductRepository)(nil)

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC").Order("created_at ASC")
}

func (r *GORMProductRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", orderedImages).
		Preload("CreatedBy")
}

// List returns products newest first, starting at the cursor row when one is given.
// An unknown cursor yields an empty page.
func (r *GORMProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := r.withRelations(ctx).Model(&models.Product{})

	if f.CategoryID != "" {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		q = q.Where(r.searchCondition(), searchArgs(f.Search)...)
	}
	if f.Cursor != "" {
		var anchor models.Product
		err := r.db.WithContext(ctx).Select("id", "created_at").First(&anchor, "id = ?", f.Cursor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.Product{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load cursor product %s: %w", f.Cursor, err)
		}
		q = q.Where("(created_at < ? OR (created_at = ? AND id <= ?))", anchor.CreatedAt, anchor.CreatedAt, anchor.ID)
	}

	q = q.Order("created_at DESC").Order("id DESC")
	if f.Take > 0 {
		q = q.Limit(f.Take)
	}

	products := []models.Product{}
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product with its category, ordered images and creator.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.withRelations(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// GetBySlug retrieves a single product by its slug.
func (r *GORMProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.withRelations(ctx).First(&product, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with slug %s: %w", slug, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get product by slug %s: %w", slug, err)
	}
	return &product, nil
}

func (r *GORMProductRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", slug)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check slug %s: %w", slug, err)
	}
	return count > 0, nil
}

// Create inserts the product together with its images in one transaction.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	err := r.db.WithContext(ctx).Omit("Category", "CreatedBy").Create(product).Error
	if err != nil {
		return fmt.Errorf("failed to create product: %w", translate(err))
	}
	return nil
}

// Update writes every editable column of the product. Images are left untouched.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{ID: product.ID}).
		Omit(clause.Associations).
		Select("name", "slug", "description", "price", "stock", "status", "tags",
			"meta_title", "meta_description", "category_id", "updated_at").
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for update: %w", product.ID, ErrRecordNotFound)
	}
	return nil
}

// Delete removes the product and its images atomically.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return fmt.Errorf("failed to delete images of product %s: %w", id, err)
		}
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("product with ID %s not found for deletion: %w", id, ErrRecordNotFound)
		}
		return nil
	})
}

// searchCondition matches a case-insensitive substring of name or description, or a tag
// equal to the search term.
func (r *GORMProductRepository) searchCondition() string {
	if r.db.Dialector.Name() == "postgres" {
		return `(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR ` +
			`tags::jsonb @> jsonb_build_array(?::text))`
	}
	return `(unicode_lower(name) LIKE ? ESCAPE '\' OR unicode_lower(description) LIKE ? ESCAPE '\' OR ` +
		`EXISTS (SELECT 1 FROM json_each(products.tags) WHERE json_each.value = ?))`
}

func searchArgs(search string) []interface{} {
	like := "%" + escapeLike(strings.ToLower(search)) + "%"
	return []interface{}{like, like, search}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
