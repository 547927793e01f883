package entities

import "time"

// EnrichedIndexEntry is one entry of the precomputed enriched sitemap index:
// a listing already exhaustively represented by the higher-priority sitemap.
type EnrichedIndexEntry struct {
	URL          string    `json:"url"`
	Score        int       `json:"score"`
	LastModified time.Time `json:"lastmod"`
}

// EnrichedIndex is the full precomputed index blob.
type EnrichedIndex struct {
	Items []EnrichedIndexEntry `json:"items"`
}

// ExclusionSet returns the set of URLs that must not be re-emitted by any
// other sitemap tier.
func (i *EnrichedIndex) ExclusionSet() map[string]struct{} {
	set := make(map[string]struct{}, len(i.Items))
	for _, item := range i.Items {
		set[item.URL] = struct{}{}
	}
	return set
}
