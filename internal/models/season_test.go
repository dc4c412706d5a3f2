package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeason(t *testing.T) {
	season, err := ParseSeason("20192020")
	require.NoError(t, err)
	assert.Equal(t, "2019", season.StartYear())
	assert.Equal(t, "2020", season.EndYear())
	assert.Equal(t, "2019-2020", season.Dir())
}

func TestParseSeason_Invalid(t *testing.T) {
	for _, code := range []string{"", "2019", "2019202", "201920201", "2019abcd", "20192021", "20202019", "+201+202", "-201-200", " 201 202"} {
		_, err := ParseSeason(code)
		assert.True(t, errors.Is(err, ErrInvalidSeason), "code %q should be rejected", code)
	}
}

func TestParseSeasons_KeepsOrder(t *testing.T) {
	seasons, err := ParseSeasons([]string{"20182019", "20162017", "20172018"})
	require.NoError(t, err)
	assert.Equal(t, []Season{"20182019", "20162017", "20172018"}, seasons)

	_, err = ParseSeasons([]string{"20182019", "bad"})
	assert.Error(t, err)
}
