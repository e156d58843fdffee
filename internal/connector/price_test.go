package connector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    float64
		wantErr bool
	}{
		{"dollar amount", "$89.99", 89.99, false},
		{"naira with thousands separator", "₦ 125,000", 125000, false},
		{"kenyan shilling", "KSh 1,299", 1299, false},
		{"range takes first value", "USD 12.50 - 14.00", 12.50, false},
		{"plain number", "42", 42, false},
		{"no digits", "Call for price", 0, true},
		{"empty", "", 0, true},
		{"zero price", "$0.00", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestParseRating(t *testing.T) {
	r := ParseRating("4.5 out of 5 stars")
	require.NotNil(t, r)
	assert.InDelta(t, 4.5, *r, 0.001)

	r = ParseRating("3/5")
	require.NotNil(t, r)
	assert.InDelta(t, 3, *r, 0.001)

	assert.Nil(t, ParseRating("no rating yet"))
	assert.Nil(t, ParseRating("9.9 out of 5 stars"), "out-of-range ratings are dropped")
}

func TestParseReviewCount(t *testing.T) {
	c := ParseReviewCount("(1,234)")
	require.NotNil(t, c)
	assert.Equal(t, 1234, *c)

	c = ParseReviewCount("87 ratings")
	require.NotNil(t, c)
	assert.Equal(t, 87, *c)

	assert.Nil(t, ParseReviewCount("be the first to review"))
}

func TestParseShipping(t *testing.T) {
	s := ParseShipping("+$12.99 shipping")
	require.NotNil(t, s)
	assert.InDelta(t, 12.99, *s, 0.001)

	s = ParseShipping("Free shipping")
	require.NotNil(t, s)
	assert.Zero(t, *s)

	assert.Nil(t, ParseShipping("shipping calculated at checkout"))
}
