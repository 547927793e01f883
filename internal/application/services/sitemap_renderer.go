package services

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/localdeck/directory-backend/internal/domain/entities"
	apperrors "github.com/localdeck/directory-backend/pkg/errors"
)

// SitemapRenderer serializes an assembled listing set into a sitemap protocol
// document.
type SitemapRenderer struct {
	baseURL    string
	changeFreq string
}

// NewSitemapRenderer creates a new renderer. baseURL is prefixed to every
// listing path; a trailing slash is tolerated.
func NewSitemapRenderer(baseURL string) *SitemapRenderer {
	return &SitemapRenderer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		changeFreq: "monthly",
	}
}

// Render produces the XML document for the ordered listing set. An empty input
// renders a valid empty urlset so callers always receive parseable output.
func (r *SitemapRenderer) Render(listings []TieredListing, lastMod time.Time) ([]byte, error) {
	urlset := entities.URLSet{
		XMLNS: entities.SitemapXMLNS,
		URLs:  make([]entities.SitemapURL, 0, len(listings)),
	}

	lastModValue := lastMod.UTC().Format("2006-01-02")
	for _, listing := range listings {
		urlset.URLs = append(urlset.URLs, entities.SitemapURL{
			Loc:        r.baseURL + listing.URL,
			LastMod:    lastModValue,
			ChangeFreq: r.changeFreq,
			Priority:   fmt.Sprintf("%.1f", listing.Priority),
		})
	}

	body, err := xml.MarshalIndent(urlset, "", "  ")
	if err != nil {
		return nil, apperrors.NewInternalError("failed to render sitemap document", err)
	}

	return append([]byte(xml.Header), body...), nil
}
