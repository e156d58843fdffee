package connector

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// priceRe matches the first decimal number in a price string, after
	// currency symbols and thousands separators are stripped.
	priceRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

	// ratingRe matches "4.5 out of 5 stars" style fragments.
	ratingRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:out of|/)?`)

	// digitsRe matches a run of digits, used for review counts.
	digitsRe = regexp.MustCompile(`\d+`)
)

// ParsePrice extracts a numeric price from marketplace price text such as
// "₦ 125,000", "KSh 1,299", "$89.99" or "USD 12.50 - 14.00" (first value
// of a range wins).
func ParsePrice(text string) (float64, error) {
	cleaned := strings.ReplaceAll(text, ",", "")
	match := priceRe.FindString(cleaned)
	if match == "" {
		return 0, fmt.Errorf("no price in %q", text)
	}

	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", match, err)
	}
	if price <= 0 {
		return 0, fmt.Errorf("non-positive price in %q", text)
	}

	return price, nil
}

// ParseRating extracts a star rating from text like "4.5 out of 5 stars".
// Returns nil when no rating is present.
func ParseRating(text string) *float64 {
	match := ratingRe.FindStringSubmatch(text)
	if match == nil {
		return nil
	}

	rating, err := strconv.ParseFloat(match[1], 64)
	if err != nil || rating < 0 || rating > 5 {
		return nil
	}

	return &rating
}

// ParseReviewCount extracts a review count from text like "(1,234)" or
// "1234 ratings". Returns nil when no count is present.
func ParseReviewCount(text string) *int {
	cleaned := strings.ReplaceAll(text, ",", "")
	match := digitsRe.FindString(cleaned)
	if match == "" {
		return nil
	}

	count, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}

	return &count
}

// ParseShipping extracts a shipping cost from text like "+$12.99 shipping".
// "Free shipping" maps to zero; unknown text maps to nil.
func ParseShipping(text string) *float64 {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "free") {
		zero := 0.0
		return &zero
	}

	cost, err := ParsePrice(text)
	if err != nil {
		return nil
	}

	return &cost
}
