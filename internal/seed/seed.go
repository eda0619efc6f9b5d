// Package seed loads the reference categories, the admin accounts and sample products.
package seed

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

// Categories are the storefront's fixed top-level categories.
var Categories = []models.Category{
	{Name: "衣類", Slug: "clothing", Description: "衣類・ファッションアイテム"},
	{Name: "靴", Slug: "shoes", Description: "スニーカー、ブーツ、サンダルなど"},
	{Name: "アクセサリー", Slug: "accessories", Description: "バッグ、時計、ジュエリーなど"},
	{Name: "電子機器", Slug: "electronics", Description: "スマートフォン、パソコン、家電製品"},
	{Name: "本・雑誌", Slug: "books", Description: "書籍、雑誌、電子書籍"},
	{Name: "スポーツ", Slug: "sports", Description: "スポーツ用品、フィットネス機器"},
	{Name: "その他", Slug: "others", Description: "その他のアイテム"},
}

type sampleProduct struct {
	categorySlug string
	product      models.Product
}

func str(s string) *string { return &s }

var samples = []sampleProduct{
	{"clothing", models.Product{
		Name:            "プレミアムTシャツ",
		Slug:            "premium-tshirt",
		Description:     "高品質なコットン100%のプレミアムTシャツです。肌触りが良く、着心地抜群です。",
		Price:           2980,
		Stock:           45,
		Status:          models.StatusPublished,
		Tags:            []string{"カジュアル", "夏物", "コットン"},
		MetaTitle:       str("プレミアムTシャツ - 高品質コットン100%"),
		MetaDescription: str("肌触りの良いコットン100%のプレミアムTシャツ。着心地抜群で普段使いに最適です。"),
	}},
	{"clothing", models.Product{
		Name:            "デニムジャケット",
		Slug:            "denim-jacket",
		Description:     "クラシックなデザインのデニムジャケット。どんなスタイルにも合わせやすい定番アイテムです。",
		Price:           8980,
		Stock:           12,
		Status:          models.StatusPublished,
		Tags:            []string{"デニム", "アウター", "クラシック"},
		MetaTitle:       str("デニムジャケット - クラシックデザイン"),
		MetaDescription: str("どんなスタイルにも合わせやすいクラシックなデニムジャケット。定番アイテムです。"),
	}},
	{"shoes", models.Product{
		Name:            "スニーカー",
		Slug:            "sneakers",
		Description:     "快適な履き心地のスニーカー。毎日の通勤や散歩に最適です。",
		Price:           12800,
		Stock:           8,
		Status:          models.StatusDraft,
		Tags:            []string{"スニーカー", "快適", "通勤"},
		MetaTitle:       str("スニーカー - 快適な履き心地"),
		MetaDescription: str("毎日の通勤や散歩に最適な快適な履き心地のスニーカーです。"),
	}},
	{"accessories", models.Product{
		Name:            "レザーバッグ",
		Slug:            "leather-bag",
		Description:     "上質なレザーを使用したエレガントなバッグ。ビジネスシーンにも普段使いにも最適です。",
		Price:           24800,
		Stock:           0,
		Status:          models.StatusPublished,
		Tags:            []string{"レザー", "バッグ", "ビジネス", "エレガント"},
		MetaTitle:       str("レザーバッグ - 上質なレザー使用"),
		MetaDescription: str("ビジネスシーンから普段使いまで、上質なレザーを使用したエレガントなバッグです。"),
	}},
	{"accessories", models.Product{
		Name:            "腕時計",
		Slug:            "wristwatch",
		Description:     "シンプルで洗練されたデザインの腕時計。どんな服装にも合わせやすいです。",
		Price:           45000,
		Stock:           23,
		Status:          models.StatusPublished,
		Tags:            []string{"時計", "シンプル", "洗練"},
		MetaTitle:       str("腕時計 - シンプルで洗練されたデザイン"),
		MetaDescription: str("どんな服装にも合わせやすい、シンプルで洗練されたデザインの腕時計です。"),
	}},
}

// Admin describes an account created for the admin console.
type Admin struct {
	Email    string
	Password string
}

// Seeder inserts reference data. Every step is idempotent.
type Seeder struct {
	categories repositories.CategoryRepository
	users      repositories.UserRepository
	products   repositories.ProductRepository
	log        *zap.Logger
}

func NewSeeder(
	categories repositories.CategoryRepository,
	users repositories.UserRepository,
	products repositories.ProductRepository,
	log *zap.Logger,
) *Seeder {
	return &Seeder{categories: categories, users: users, products: products, log: log}
}

// Run seeds categories, the ADMIN and SUPER_ADMIN accounts and the sample catalog.
// Sample products are owned by the ADMIN account. A super admin without an email is skipped.
func (s *Seeder) Run(ctx context.Context, admin, superAdmin Admin) error {
	bySlug := make(map[string]string, len(Categories))
	for _, c := range Categories {
		category := c
		if err := s.categories.Upsert(ctx, &category); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", c.Slug, err)
		}
		bySlug[category.Slug] = category.ID
	}
	s.log.Info("categories seeded", zap.Int("count", len(Categories)))

	user, err := s.seedAdmin(ctx, "Administrator", models.RoleAdmin, admin)
	if err != nil {
		return err
	}
	if superAdmin.Email != "" {
		if _, err := s.seedAdmin(ctx, "Super Administrator", models.RoleSuperAdmin, superAdmin); err != nil {
			return err
		}
	}

	created := 0
	for _, sample := range samples {
		_, err := s.products.GetBySlug(ctx, sample.product.Slug)
		if err == nil {
			continue
		}
		if !errors.Is(err, repositories.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up sample product %s: %w", sample.product.Slug, err)
		}

		product := sample.product
		product.Tags = append([]string(nil), sample.product.Tags...)
		product.CategoryID = bySlug[sample.categorySlug]
		product.CreatedByID = user.ID
		if err := s.products.Create(ctx, &product); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", product.Slug, err)
		}
		created++
	}
	s.log.Info("sample products seeded", zap.Int("created", created))
	return nil
}

func (s *Seeder) seedAdmin(ctx context.Context, name string, role models.UserRole, admin Admin) (*models.User, error) {
	user := &models.User{Name: name, Email: admin.Email, Role: role}
	if admin.Password != "" {
		hashed, err := services.HashPassword(admin.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	} else {
		s.log.Warn("no password configured, the seeded account cannot log in",
			zap.String("email", admin.Email),
			zap.String("role", string(role)))
	}

	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to seed admin %s: %w", admin.Email, err)
	}
	s.log.Info("admin user seeded",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)))
	return user, nil
}
