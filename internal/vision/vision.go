// Package vision implements the vision identifier capability: given image
// bytes, it returns a candidate product description usable as a search query.
package vision

import (
	"context"
	"errors"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
)

// ErrIdentificationFailed is returned when no product could be derived from
// the image. The image-search flow aborts on this error; there is nothing
// to dispatch without a query.
var ErrIdentificationFailed = errors.New("could not identify product from image")

// ErrDisabled is returned when the identifier is not configured.
var ErrDisabled = errors.New("vision identifier is not configured")

// Identifier is the capability an image-identification backend implements.
type Identifier interface {
	// Identify derives a product description from image bytes.
	Identify(ctx context.Context, imageData []byte, mimeType string) (*domain.ProductIdentification, error)
}
