// Package connector implements the platform connector capability: given a
// query, a connector returns the raw listings one marketplace shows for it.
// One connector variant exists per marketplace, selected through a registry.
package connector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
)

// ErrUnknownPlatform is returned when no connector exists for a platform.
// This failure is fatal and never retried.
var ErrUnknownPlatform = errors.New("unknown platform")

// Connector is the capability one marketplace variant implements.
type Connector interface {
	// Platform returns the marketplace name this connector scrapes.
	Platform() string
	// Search returns up to maxResults raw listings for the query.
	Search(ctx context.Context, query string, maxResults int) ([]domain.RawListing, error)
}

// FatalError marks a connector failure that must not be retried.
type FatalError struct {
	Err error
}

// Error implements the error interface.
func (e *FatalError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether a connector error should skip the retry loop.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.Is(err, ErrUnknownPlatform) || errors.As(err, &fatal)
}

// Registry resolves platform names to connectors.
type Registry struct {
	mu         sync.RWMutex
	connectors map[string]Connector
}

// NewRegistry creates an empty connector registry.
func NewRegistry() *Registry {
	return &Registry{connectors: make(map[string]Connector)}
}

// Register adds a connector, replacing any previous one for the platform.
func (r *Registry) Register(c Connector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors[c.Platform()] = c
}

// Get resolves a connector by platform name.
func (r *Registry) Get(platform string) (Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.connectors[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, platform)
	}
	return c, nil
}

// Platforms returns the registered platform names, sorted.
func (r *Registry) Platforms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.connectors))
	for name := range r.connectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
