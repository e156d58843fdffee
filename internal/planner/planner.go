// Package planner normalizes raw search requests into canonical search specs
// and computes the fingerprint used for caching and job reconciliation.
package planner

import (
	"crypto/md5" //nolint:gosec // cache key, not a security boundary
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
)

// Limits applied during normalization.
const (
	MaxQueryLength    = 500
	MinResults        = 1
	MaxResults        = 50
	DefaultMaxResults = 20
)

// ValidationError describes a rejected request field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Request is a raw, untrusted search request.
type Request struct {
	Query      string   `json:"query"`
	Platforms  []string `json:"platforms,omitempty"`
	MaxResults int      `json:"max_results,omitempty"`
}

// Plan validates and normalizes a request into a SearchSpec.
// activePlatforms is the default platform set when the request names none.
func Plan(req Request, activePlatforms []string) (*domain.SearchSpec, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, &ValidationError{Field: "query", Message: "must not be empty"}
	}
	if len(query) > MaxQueryLength {
		return nil, &ValidationError{
			Field:   "query",
			Message: fmt.Sprintf("must be at most %d characters", MaxQueryLength),
		}
	}

	platforms := normalizePlatforms(req.Platforms)
	if len(platforms) == 0 {
		platforms = normalizePlatforms(activePlatforms)
	}
	if len(platforms) == 0 {
		return nil, &ValidationError{Field: "platforms", Message: "no active platforms available"}
	}

	maxResults := req.MaxResults
	if maxResults == 0 {
		maxResults = DefaultMaxResults
	}
	if maxResults < MinResults {
		maxResults = MinResults
	}
	if maxResults > MaxResults {
		maxResults = MaxResults
	}

	return &domain.SearchSpec{
		QueryText:  query,
		Platforms:  platforms,
		MaxResults: maxResults,
	}, nil
}

// normalizePlatforms trims, lowercases, deduplicates, and sorts platform names.
func normalizePlatforms(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, p := range in {
		name := strings.ToLower(strings.TrimSpace(p))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Fingerprint computes the deterministic key for a normalized spec.
// The md5 hex digest keeps the key free of characters that would break
// the underlying cache store.
func Fingerprint(spec *domain.SearchSpec) string {
	platforms := make([]string, len(spec.Platforms))
	copy(platforms, spec.Platforms)
	sort.Strings(platforms)

	raw := fmt.Sprintf("search_%s_%s", spec.QueryText, strings.Join(platforms, "_"))
	sum := md5.Sum([]byte(raw)) //nolint:gosec // cache key, not a security boundary
	return hex.EncodeToString(sum[:])
}
