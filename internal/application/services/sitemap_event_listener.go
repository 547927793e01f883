package services

import (
	"context"
	"fmt"

	"github.com/localdeck/directory-backend/internal/domain/entities"
	"github.com/localdeck/directory-backend/internal/domain/providers"
	"github.com/localdeck/directory-backend/internal/infrastructure/observability"
)

// SitemapEventListener consumes generation events published on the event bus.
// When generation runs out of process (the standalone generator or another
// replica), this gives every process a log trail of what was published and
// when the shared cached document changed underneath it.
type SitemapEventListener struct {
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewSitemapEventListener creates a new sitemap event listener
func NewSitemapEventListener(eventBus providers.EventBus) *SitemapEventListener {
	ctx, cancel := context.WithCancel(context.Background())
	return &SitemapEventListener{
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for generation events
func (s *SitemapEventListener) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.SitemapEventsChannel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to sitemap events: %w", err)
	}

	go s.processEvents(eventChan)
	return nil
}

// Stop stops the listener
func (s *SitemapEventListener) Stop() {
	s.cancel()
}

func (s *SitemapEventListener) processEvents(eventChan <-chan *entities.SitemapEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event := <-eventChan:
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *SitemapEventListener) handleEvent(event *entities.SitemapEvent) {
	logger := observability.GetLogger()

	switch event.EventType {
	case entities.SitemapEventTypeGenerated:
		logger.Info().
			Str("event_id", event.ID).
			Str("run_id", event.RunID).
			Int("url_count", event.URLCount).
			Bool("degraded", event.Degraded).
			Time("timestamp", event.Timestamp).
			Msg("Sitemap generated")
	case entities.SitemapEventTypeFailed:
		logger.Warn().
			Str("event_id", event.ID).
			Str("run_id", event.RunID).
			Time("timestamp", event.Timestamp).
			Msg("Sitemap generation failed")
	default:
		logger.Debug().
			Str("event_id", event.ID).
			Str("event_type", string(event.EventType)).
			Msg("Ignoring unknown sitemap event")
	}
}
