package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/localdeck/directory-backend/internal/application/services"
	"github.com/localdeck/directory-backend/internal/infrastructure/observability"
)

// SitemapHandler handles sitemap-related HTTP requests
type SitemapHandler struct {
	sitemapService *services.SitemapService
	cacheTTL       int
	metrics        *observability.Metrics
}

// NewSitemapHandler creates a new sitemap handler. metrics may be nil.
func NewSitemapHandler(sitemapService *services.SitemapService, cacheTTLSeconds int, metrics *observability.Metrics) *SitemapHandler {
	return &SitemapHandler{
		sitemapService: sitemapService,
		cacheTTL:       cacheTTLSeconds,
		metrics:        metrics,
	}
}

// GetSitemap handles GET /sitemap-listings.xml. It serves the cached document
// when one exists; otherwise it runs a full generation. Crawlers always
// receive either a valid (possibly empty) document or an explicit error.
func (h *SitemapHandler) GetSitemap(w http.ResponseWriter, r *http.Request) {
	if doc, ok := h.sitemapService.CachedDocument(r.Context()); ok {
		if h.metrics != nil {
			observability.RecordCacheHit(r.Context(), h.metrics, services.SitemapCacheKey)
		}
		h.writeSitemap(w, doc, "HIT")
		return
	}

	if h.metrics != nil {
		observability.RecordCacheMiss(r.Context(), h.metrics, services.SitemapCacheKey)
	}

	doc, _, err := h.sitemapService.Generate(r.Context())
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("Sitemap generation failed")
		respondWithError(w, http.StatusInternalServerError, "sitemap generation failed")
		return
	}

	h.writeSitemap(w, doc, "MISS")
}

// RegenerateSitemap handles POST /api/sitemap/regenerate. It forces a fresh
// generation run and refreshes the cached document.
func (h *SitemapHandler) RegenerateSitemap(w http.ResponseWriter, r *http.Request) {
	_, report, err := h.sitemapService.Generate(r.Context())
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("Sitemap regeneration failed")
		respondWithError(w, http.StatusInternalServerError, "sitemap generation failed")
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}

// GetStats handles GET /api/sitemap/stats. It exposes the diagnostics of the
// most recent generation run.
func (h *SitemapHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	report := h.sitemapService.LastReport()
	if report == nil {
		respondWithError(w, http.StatusNotFound, "no generation run has completed yet")
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}

func (h *SitemapHandler) writeSitemap(w http.ResponseWriter, doc []byte, cacheState string) {
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", h.cacheTTL))
	w.Header().Set("X-Cache", cacheState)
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
