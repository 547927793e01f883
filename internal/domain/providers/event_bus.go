package providers

import (
	"context"

	"github.com/localdeck/directory-backend/internal/domain/entities"
)

// SitemapEventsChannel is the default pub/sub channel for generation events.
const SitemapEventsChannel = "sitemap.events"

// EventBus defines the interface for publishing and subscribing to
// sitemap generation events.
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.SitemapEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.SitemapEvent, error)

	// Close shuts down the bus and all subscriptions
	Close() error
}
