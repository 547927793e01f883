package entities

import (
	"time"

	"github.com/google/uuid"
)

// SitemapEventType represents the type of sitemap generation event
type SitemapEventType string

const (
	SitemapEventTypeGenerated SitemapEventType = "sitemap_generated"
	SitemapEventTypeFailed    SitemapEventType = "sitemap_failed"
)

// SitemapEvent represents a generation-run event published for downstream
// consumers (cache warmers, search-engine ping jobs).
type SitemapEvent struct {
	ID        string           `json:"id"`
	RunID     string           `json:"run_id"`
	EventType SitemapEventType `json:"event_type"`
	Timestamp time.Time        `json:"timestamp"`
	URLCount  int              `json:"url_count"`
	Degraded  bool             `json:"degraded"`
}

// NewSitemapEvent creates a new sitemap event
func NewSitemapEvent(runID string, eventType SitemapEventType, urlCount int, degraded bool) *SitemapEvent {
	return &SitemapEvent{
		ID:        uuid.NewString(),
		RunID:     runID,
		EventType: eventType,
		Timestamp: time.Now(),
		URLCount:  urlCount,
		Degraded:  degraded,
	}
}
