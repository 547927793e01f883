package services

import (
	"math"

	"github.com/localdeck/directory-backend/internal/domain/entities"
)

// QualityScoringService computes a deterministic 0-100 quality score for a
// listing from its sparse attributes. Scoring is pure and side-effect-free.
type QualityScoringService struct {
	ratingWeight     float64
	reviewWeight     float64
	reviewSaturation float64
	photoPoints      float64
	phonePoints      float64
	websitePoints    float64
	hoursPoints      float64
	statusPoints     float64
}

// NewQualityScoringService creates a scoring service with the standard weights:
// up to 40 points for rating, up to 30 for review volume, up to 30 for
// completeness signals.
func NewQualityScoringService() *QualityScoringService {
	return &QualityScoringService{
		ratingWeight:     40,
		reviewWeight:     30,
		reviewSaturation: 200,
		photoPoints:      10,
		phonePoints:      5,
		websitePoints:    5,
		hoursPoints:      5,
		statusPoints:     5,
	}
}

// Score returns the quality score for one listing. A listing with no optional
// fields at all scores 0. Out-of-range ratings from upstream are clamped to
// [0, 5] before scoring.
func (s *QualityScoringService) Score(listing *entities.Listing) int {
	total := 0.0

	if listing.Rating != nil {
		rating := *listing.Rating
		if rating < 0 {
			rating = 0
		}
		if rating > 5 {
			rating = 5
		}
		total += (rating / 5) * s.ratingWeight
	}

	if listing.ReviewCount != nil && *listing.ReviewCount > 0 {
		volume := (float64(*listing.ReviewCount) / s.reviewSaturation) * s.reviewWeight
		if volume > s.reviewWeight {
			volume = s.reviewWeight
		}
		total += volume
	}

	if len(listing.Photos) > 0 {
		total += s.photoPoints
	}
	if listing.PhoneNumber != "" {
		total += s.phonePoints
	}
	if listing.Website != "" {
		total += s.websitePoints
	}
	if listing.HasOpeningHours {
		total += s.hoursPoints
	}
	if listing.IsOperational() {
		total += s.statusPoints
	}

	// Round half away from zero pins 39.5 to 40.
	return int(math.Round(total))
}
