package routes

import (
	"net/http"

	"github.com/localdeck/directory-backend/internal/api/handlers"
	"github.com/localdeck/directory-backend/internal/api/middleware"
	"github.com/localdeck/directory-backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	sitemapHandler *handlers.SitemapHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	sitemapHandler *handlers.SitemapHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		sitemapHandler: sitemapHandler,

		metrics: metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {

	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Sitemap document served to crawlers
	r.mux.HandleFunc("GET /sitemap-listings.xml", r.sitemapHandler.GetSitemap)

	// Sitemap management endpoints
	r.mux.HandleFunc("POST /api/sitemap/regenerate", r.sitemapHandler.RegenerateSitemap)
	r.mux.HandleFunc("GET /api/sitemap/stats", r.sitemapHandler.GetStats)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.Logging(handler)
	handler = middleware.Observability(r.metrics)(handler)

	// Compression wraps everything so the XML body is gzipped for crawlers
	handler = middleware.Compression(handler)

	return handler
}
