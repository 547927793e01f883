package entities

// BusinessStatusOperational marks a listing whose upstream status check confirmed
// it is open for business.
const BusinessStatusOperational = "OPERATIONAL"

// Listing represents a single business listing in the catalog. Listings are
// read-only inputs owned by the upstream catalog; the sitemap pipeline never
// mutates them.
type Listing struct {
	Name            string   `json:"name"`
	Slug            string   `json:"slug"`
	State           string   `json:"state"`
	StateSlug       string   `json:"state_slug"`
	City            string   `json:"city"`
	CitySlug        string   `json:"city_slug"`
	Rating          *float64 `json:"rating,omitempty"`
	ReviewCount     *int     `json:"review_count,omitempty"`
	Photos          []string `json:"photos,omitempty"`
	PhoneNumber     string   `json:"phone_number,omitempty"`
	Website         string   `json:"website,omitempty"`
	HasOpeningHours bool     `json:"has_opening_hours,omitempty"`
	BusinessStatus  string   `json:"business_status,omitempty"`
}

// IsOperational reports whether the upstream status check confirmed the listing
// as open.
func (l *Listing) IsOperational() bool {
	return l.BusinessStatus == BusinessStatusOperational
}

// URL returns the deterministic site path for the listing.
func (l *Listing) URL() string {
	return "/" + l.StateSlug + "/" + l.CitySlug + "/" + l.Slug
}

// ScoredListing is a listing plus its derived quality score and site path.
// Instances are created during a catalog walk and immutable thereafter.
type ScoredListing struct {
	Listing *Listing `json:"listing"`
	Score   int      `json:"score"`
	URL     string   `json:"url"`
}
