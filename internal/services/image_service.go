package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// AddImageInput attaches one image to a product. An empty Alt defaults to the product name.
type AddImageInput struct {
	ProductID string  `json:"productId" validate:"required"`
	URL       string  `json:"url" validate:"required,url"`
	Alt       *string `json:"alt"`
	Order     int     `json:"order"`
}

// UpdateImageInput patches an image; nil fields keep their stored value.
type UpdateImageInput struct {
	ID    string  `json:"id" validate:"required"`
	URL   *string `json:"url" validate:"omitempty,url"`
	Alt   *string `json:"alt"`
	Order *int    `json:"order"`
}

// ImageService manages the ordered images of a product.
type ImageService struct {
	products repositories.ProductRepository
	images   repositories.ProductImageRepository
	policy   Policy
	validate *validator.Validate
	notify   notifier
	log      *zap.Logger
}

// NewImageService creates a new ImageService. publisher and cache may be nil.
func NewImageService(
	products repositories.ProductRepository,
	images repositories.ProductImageRepository,
	policy Policy,
	publisher EventPublisher,
	cache Cache,
	log *zap.Logger,
) *ImageService {
	return &ImageService{
		products: products,
		images:   images,
		policy:   policy,
		validate: newValidator(),
		notify:   notifier{publisher: publisher, cache: cache, log: log},
		log:      log,
	}
}

func (s *ImageService) AddImage(ctx context.Context, caller *Caller, in AddImageInput) (*models.ProductImage, error) {
	if err := s.policy(caller); err != nil {
		return nil, err
	}
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, notFound(err, "product with ID %s not found", in.ProductID)
	}

	alt := product.Name
	if in.Alt != nil && *in.Alt != "" {
		alt = *in.Alt
	}
	image := &models.ProductImage{
		URL:       in.URL,
		Alt:       &alt,
		Order:     in.Order,
		ProductID: product.ID,
	}
	if err := s.images.Create(ctx, image); err != nil {
		return nil, err
	}

	s.log.Info("product image added", zap.String("product_id", product.ID), zap.String("image_id", image.ID))
	s.notify.changed(ctx, Event{Type: EventProductImageAdded, ProductID: product.ID, ImageID: image.ID, OccurredAt: time.Now().UTC(), Data: image})
	return image, nil
}

func (s *ImageService) UpdateImage(ctx context.Context, caller *Caller, in UpdateImageInput) (*models.ProductImage, error) {
	if err := s.policy(caller); err != nil {
		return nil, err
	}
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	image, err := s.images.GetByID(ctx, in.ID)
	if err != nil {
		return nil, notFound(err, "image with ID %s not found", in.ID)
	}

	if in.URL != nil && *in.URL != "" {
		image.URL = *in.URL
	}
	if in.Alt != nil {
		alt := *in.Alt
		image.Alt = &alt
	}
	if in.Order != nil {
		image.Order = *in.Order
	}

	if err := s.images.Update(ctx, image); err != nil {
		return nil, notFound(err, "image with ID %s not found", in.ID)
	}

	s.notify.changed(ctx, Event{Type: EventProductImageUpdated, ProductID: image.ProductID, ImageID: image.ID, OccurredAt: time.Now().UTC(), Data: image})
	return image, nil
}

// DeleteImage removes a single image. Sibling orders are not compacted.
func (s *ImageService) DeleteImage(ctx context.Context, caller *Caller, id string) error {
	if err := s.policy(caller); err != nil {
		return err
	}

	image, err := s.images.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "image with ID %s not found", id)
	}
	if err := s.images.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete image %s: %w", id, notFound(err, "image with ID %s not found", id))
	}

	s.log.Info("product image deleted", zap.String("product_id", image.ProductID), zap.String("image_id", id))
	s.notify.changed(ctx, Event{Type: EventProductImageDeleted, ProductID: image.ProductID, ImageID: id, OccurredAt: time.Now().UTC()})
	return nil
}
