package planner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
)

func TestPlanNormalizesQueryAndPlatforms(t *testing.T) {
	spec, err := Plan(Request{
		Query:     "  Wireless Headphones  ",
		Platforms: []string{" eBay", "AMAZON", "ebay", ""},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Wireless Headphones", spec.QueryText)
	assert.Equal(t, []string{"amazon", "ebay"}, spec.Platforms)
	assert.Equal(t, DefaultMaxResults, spec.MaxResults)
}

func TestPlanFallsBackToActivePlatforms(t *testing.T) {
	spec, err := Plan(Request{Query: "laptop"}, []string{"jumia", "amazon"})
	require.NoError(t, err)

	assert.Equal(t, []string{"amazon", "jumia"}, spec.Platforms)
}

func TestPlanRejectsEmptyQuery(t *testing.T) {
	_, err := Plan(Request{Query: "   "}, []string{"ebay"})
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "query", vErr.Field)
}

func TestPlanRejectsOverlongQuery(t *testing.T) {
	_, err := Plan(Request{Query: strings.Repeat("a", MaxQueryLength+1)}, []string{"ebay"})
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "query", vErr.Field)
}

func TestPlanRejectsNoPlatforms(t *testing.T) {
	_, err := Plan(Request{Query: "laptop"}, nil)
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "platforms", vErr.Field)
}

func TestPlanClampsMaxResults(t *testing.T) {
	spec, err := Plan(Request{Query: "laptop", MaxResults: MaxResults + 100}, []string{"ebay"})
	require.NoError(t, err)
	assert.Equal(t, MaxResults, spec.MaxResults)

	spec, err = Plan(Request{Query: "laptop", MaxResults: -5}, []string{"ebay"})
	require.NoError(t, err)
	assert.Equal(t, MinResults, spec.MaxResults)
}

func TestFingerprintIsDeterministic(t *testing.T) {
	a := Fingerprint(&domain.SearchSpec{
		QueryText: "wireless headphones",
		Platforms: []string{"ebay", "amazon"},
	})
	b := Fingerprint(&domain.SearchSpec{
		QueryText: "wireless headphones",
		Platforms: []string{"amazon", "ebay"},
	})

	assert.Equal(t, a, b, "platform order must not change the fingerprint")
	assert.Len(t, a, 32)
}

func TestFingerprintVariesWithInputs(t *testing.T) {
	base := Fingerprint(&domain.SearchSpec{
		QueryText: "wireless headphones",
		Platforms: []string{"ebay"},
	})
	differentQuery := Fingerprint(&domain.SearchSpec{
		QueryText: "wired headphones",
		Platforms: []string{"ebay"},
	})
	differentPlatforms := Fingerprint(&domain.SearchSpec{
		QueryText: "wireless headphones",
		Platforms: []string{"ebay", "amazon"},
	})

	assert.NotEqual(t, base, differentQuery)
	assert.NotEqual(t, base, differentPlatforms)
}
