package domain

import "errors"

// Validation errors. These are rejected synchronously and surfaced to the
// caller; they are never coerced into defaults.
var (
	ErrInvalidBounds       = errors.New("bounds out of range")
	ErrDegenerateBounds    = errors.New("degenerate bounds: north must be greater than south")
	ErrUnsupportedTileSize = errors.New("unsupported tile size")
	ErrMalformedTileID     = errors.New("malformed tile id")
	ErrInvalidZoom         = errors.New("zoom must be a non-negative integer")
)
