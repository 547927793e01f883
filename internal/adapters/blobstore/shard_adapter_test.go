package blobstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localdeck/directory-backend/internal/domain/entities"
	apperrors "github.com/localdeck/directory-backend/pkg/errors"
)

func testLocality() *entities.Locality {
	return &entities.Locality{
		State:     "California",
		StateSlug: "california",
		City:      "San Francisco",
		CitySlug:  "san-francisco",
	}
}

func TestParseShard(t *testing.T) {
	blob := []byte(`[
		{"name":"Golden Gate Diner","slug":"golden-gate-diner","rating":4.6,"review_count":412,"phone_number":"+1-415-555-0134","has_opening_hours":true,"business_status":"OPERATIONAL"},
		{"name":"Sunset Shoe Repair","slug":"sunset-shoe-repair"}
	]`)

	listings, err := parseShard(blob, testLocality())
	require.NoError(t, err)
	require.Len(t, listings, 2)

	first := listings[0]
	assert.Equal(t, "Golden Gate Diner", first.Name)
	assert.Equal(t, "california", first.StateSlug)
	assert.Equal(t, "san-francisco", first.CitySlug)
	require.NotNil(t, first.Rating)
	assert.InDelta(t, 4.6, *first.Rating, 0.001)
	require.NotNil(t, first.ReviewCount)
	assert.Equal(t, 412, *first.ReviewCount)
	assert.True(t, first.HasOpeningHours)
	assert.Equal(t, entities.BusinessStatusOperational, first.BusinessStatus)

	// Omitted fields decode to their zero values.
	second := listings[1]
	assert.Nil(t, second.Rating)
	assert.Nil(t, second.ReviewCount)
	assert.Empty(t, second.BusinessStatus)
}

func TestParseShardEmpty(t *testing.T) {
	listings, err := parseShard([]byte(`[]`), testLocality())
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestParseShardMalformedJSON(t *testing.T) {
	_, err := parseShard([]byte(`{"not":"an array"`), testLocality())
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
}

func TestParseShardRecordWithoutIdentity(t *testing.T) {
	blob := []byte(`[{"name":"Nameless","slug":""}]`)

	_, err := parseShard(blob, testLocality())
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
}
