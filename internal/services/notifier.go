package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Routing keys of catalog events.
const (
	EventProductCreated      = "product.created"
	EventProductUpdated      = "product.updated"
	EventProductDeleted      = "product.deleted"
	EventProductImageAdded   = "product.image.added"
	EventProductImageUpdated = "product.image.updated"
	EventProductImageDeleted = "product.image.deleted"
)

// EventPublisher delivers catalog events to a broker.
type EventPublisher interface {
	Publish(routingKey string, payload interface{}) error
}

// Cache stores query responses. Get reports whether key was present.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	DeletePrefix(ctx context.Context, prefix string) error
}

const (
	listCachePrefix    = "catalog:list:"
	categoriesCacheKey = "catalog:categories"
)

// Event is the payload published for every catalog mutation.
type Event struct {
	Type       string      `json:"type"`
	ProductID  string      `json:"productId"`
	ImageID    string      `json:"imageId,omitempty"`
	Slug       string      `json:"slug,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
	Data       interface{} `json:"data,omitempty"`
}

// notifier runs the best-effort side effects of a committed mutation.
// Failures are logged and never reach the caller.
type notifier struct {
	publisher EventPublisher
	cache     Cache
	log       *zap.Logger
}

func (n notifier) changed(ctx context.Context, event Event) {
	if n.cache != nil {
		if err := n.cache.DeletePrefix(ctx, listCachePrefix); err != nil {
			n.log.Warn("failed to invalidate product list cache", zap.Error(err))
		}
	}
	if n.publisher != nil {
		if err := n.publisher.Publish(event.Type, event); err != nil {
			n.log.Warn("failed to publish catalog event",
				zap.String("type", event.Type),
				zap.String("product_id", event.ProductID),
				zap.Error(err))
		}
	}
}
