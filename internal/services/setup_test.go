package services_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

// newTestDB opens an isolated in-memory SQLite database with the catalog schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	db, err := repositories.OpenDatabase("sqlite", dsn, nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, repositories.Migrate(db))
	return db
}

// stepClock returns strictly increasing timestamps, one second apart.
func stepClock() func() time.Time {
	var mu sync.Mutex
	current := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(routingKey string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, routingKey)
	return nil
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type fixture struct {
	db         *gorm.DB
	products   *repositories.GORMProductRepository
	categories *repositories.GORMCategoryRepository
	images     *repositories.GORMProductImageRepository
	query      *services.ProductQueryService
	svc        *services.ProductService
	imageSvc   *services.ImageService
	publisher  *recordingPublisher
	admin      *services.Caller
	clothing   models.Category
	shoes      models.Category
}

func newFixture(t *testing.T, cache services.Cache) *fixture {
	t.Helper()
	ctx := context.Background()
	db := newTestDB(t)

	f := &fixture{
		db:         db,
		products:   repositories.NewGORMProductRepository(db),
		categories: repositories.NewGORMCategoryRepository(db),
		images:     repositories.NewGORMProductImageRepository(db),
		publisher:  &recordingPublisher{},
	}

	users := repositories.NewGORMUserRepository(db)
	admin := &models.User{Name: "Administrator", Email: "admin@example.com", Role: models.RoleAdmin}
	require.NoError(t, users.Upsert(ctx, admin))
	f.admin = &services.Caller{UserID: admin.ID, Email: admin.Email, Role: admin.Role}

	f.clothing = models.Category{Name: "衣類", Slug: "clothing", Description: "衣類・ファッションアイテム"}
	f.shoes = models.Category{Name: "靴", Slug: "shoes", Description: "スニーカー、ブーツ、サンダルなど"}
	require.NoError(t, f.categories.Upsert(ctx, &f.clothing))
	require.NoError(t, f.categories.Upsert(ctx, &f.shoes))

	log := zap.NewNop()
	policy := services.AllowAuthenticated
	f.query = services.NewProductQueryService(f.products, f.categories, policy, cache, log)
	f.svc = services.NewProductService(f.products, f.categories, policy, f.publisher, cache, log,
		services.WithClock(stepClock()))
	f.imageSvc = services.NewImageService(f.products, f.images, policy, f.publisher, cache, log)
	return f
}

func validInput(name string) services.CreateProductInput {
	return services.CreateProductInput{
		Name:        name,
		Description: "高品質なコットン100%のプレミアムTシャツです。",
		Category:    "衣類",
		Price:       "2980",
		Stock:       "45",
		Status:      "published",
		Tags:        "カジュアル, 夏物, コットン",
	}
}

func (f *fixture) create(t *testing.T, in services.CreateProductInput) *models.Product {
	t.Helper()
	p, err := f.svc.CreateProduct(context.Background(), f.admin, in)
	require.NoError(t, err)
	return p
}
