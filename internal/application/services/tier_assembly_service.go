package services

import (
	"sort"

	"github.com/localdeck/directory-backend/internal/domain/entities"
)

// TierDefinition is one score band and the sitemap priority assigned to
// listings in it. Definitions are ordered highest MinScore first.
type TierDefinition struct {
	Name     string
	MinScore int
	Priority float64
}

// DefaultTiers returns the standard two-tier banding.
func DefaultTiers() []TierDefinition {
	return []TierDefinition{
		{Name: "premium", MinScore: 80, Priority: 0.9},
		{Name: "standard", MinScore: 60, Priority: 0.7},
	}
}

// TieredListing is a scored listing with its tier-assigned sitemap priority.
type TieredListing struct {
	*entities.ScoredListing
	Priority float64
}

// TierSummary describes one tier's share of the assembled output.
type TierSummary struct {
	Name     string  `json:"name"`
	MinScore int     `json:"min_score"`
	Priority float64 `json:"priority"`
	Count    int     `json:"count"`
}

// TierStats summarizes one assembly for observability.
type TierStats struct {
	Tiers        []TierSummary `json:"tiers"`
	TotalOutput  int           `json:"total_output"`
	Dropped      int           `json:"dropped"`
	Truncated    int           `json:"truncated"`
	AverageScore float64       `json:"average_score"`
	HighestScore int           `json:"highest_score"`
	LowestScore  int           `json:"lowest_score"`
}

// TierAssemblyService partitions scored listings into disjoint priority tiers,
// orders them and caps the total output.
type TierAssemblyService struct {
	tiers   []TierDefinition
	maxURLs int
}

// NewTierAssemblyService creates a new tier assembly service. Tiers must be
// ordered highest MinScore first.
func NewTierAssemblyService(tiers []TierDefinition, maxURLs int) *TierAssemblyService {
	return &TierAssemblyService{
		tiers:   tiers,
		maxURLs: maxURLs,
	}
}

// Assemble partitions listings into tiers, sorts each tier by descending score
// (URL ascending on ties, so output is reproducible), concatenates tiers in
// priority order and truncates at the output cap. Listings below every tier's
// minimum are dropped: low-quality listings do not spend crawl budget.
func (s *TierAssemblyService) Assemble(listings []*entities.ScoredListing) ([]TieredListing, TierStats) {
	stats := TierStats{}

	var assembled []TieredListing
	for i, tier := range s.tiers {
		upperBound := 101
		if i > 0 {
			upperBound = s.tiers[i-1].MinScore
		}

		var band []*entities.ScoredListing
		for _, listing := range listings {
			if listing.Score >= tier.MinScore && listing.Score < upperBound {
				band = append(band, listing)
			}
		}

		sort.Slice(band, func(a, b int) bool {
			if band[a].Score != band[b].Score {
				return band[a].Score > band[b].Score
			}
			return band[a].URL < band[b].URL
		})

		taken := 0
		for _, listing := range band {
			if s.maxURLs > 0 && len(assembled) >= s.maxURLs {
				break
			}
			assembled = append(assembled, TieredListing{
				ScoredListing: listing,
				Priority:      tier.Priority,
			})
			taken++
		}
		stats.Truncated += len(band) - taken

		stats.Tiers = append(stats.Tiers, TierSummary{
			Name:     tier.Name,
			MinScore: tier.MinScore,
			Priority: tier.Priority,
			Count:    taken,
		})
	}

	stats.TotalOutput = len(assembled)
	stats.Dropped = len(listings) - stats.TotalOutput - stats.Truncated

	if len(assembled) > 0 {
		sum := 0
		stats.HighestScore = assembled[0].Score
		stats.LowestScore = assembled[0].Score
		for _, listing := range assembled {
			sum += listing.Score
			if listing.Score > stats.HighestScore {
				stats.HighestScore = listing.Score
			}
			if listing.Score < stats.LowestScore {
				stats.LowestScore = listing.Score
			}
		}
		stats.AverageScore = float64(sum) / float64(len(assembled))
	}

	return assembled, stats
}
