// Package cellindex maps geographic points to hierarchical cell identifiers
// and enumerates the cells visible in a viewport.
//
// Cell IDs are quadkeys: one base-4 digit per level of recursive quadrant
// subdivision of the Web Mercator tile pyramid. A coarser cell's ID is by
// construction a prefix of every finer cell ID for the same point, so the
// indexing is hierarchical rather than independent per level.
package cellindex

import (
	"github.com/etxarri/terragrid/internal/core/domain"
	"github.com/etxarri/terragrid/internal/pkg/geospatial"
)

// Indexing levels saturate at both ends: zooms below the table return
// MinLevel, zooms above it return MaxLevel.
const (
	MinLevel = 4
	MaxLevel = 20
)

// LevelFromZoom maps a UI zoom (roughly 0-20, fractional allowed) to a
// discrete indexing level. Monotonic non-decreasing, clamped to
// [MinLevel, MaxLevel].
func LevelFromZoom(zoom float64) int {
	switch {
	case zoom < 3:
		return MinLevel
	case zoom < 5:
		return 6
	case zoom < 7:
		return 8
	case zoom < 9:
		return 10
	case zoom < 11:
		return 12
	case zoom < 13:
		return 14
	case zoom < 15:
		return 16
	case zoom < 17:
		return 18
	default:
		return MaxLevel
	}
}

// CellID returns the quadkey of the cell containing (lat, lon) at the given
// level. Latitude is clamped to [-90, 90] first; identical clamped inputs
// produce byte-identical IDs.
func CellID(lat, lon float64, level int) string {
	lat = domain.ClampLat(lat)
	x, y := geospatial.LonLatToTile(lon, lat, level)
	return quadkey(x, y, level)
}

// CellBounds returns the geographic bounding box of a cell ID, or false for
// a malformed ID.
func CellBounds(id string) (domain.Bounds, bool) {
	x, y, level, ok := parseQuadkey(id)
	if !ok {
		return domain.Bounds{}, false
	}
	tb := geospatial.TileToBounds(level, x, y)
	return domain.Bounds{North: tb.North, South: tb.South, East: tb.East, West: tb.West}, true
}

// CellsInViewport returns the set of cell IDs whose tiles intersect the
// bounds at LevelFromZoom(zoom). The full tile rectangle between the corner
// tile coordinates is walked — corner-only sampling drops interior cells as
// soon as the viewport spans more than two columns or rows. Boxes that wrap
// the antimeridian are split into two sub-boxes and enumerated as a union.
// A degenerate box yields an empty set, not an error.
func CellsInViewport(bounds domain.Bounds, zoom float64) map[string]struct{} {
	cells := make(map[string]struct{})
	if bounds.IsDegenerate() {
		return cells
	}

	level := LevelFromZoom(zoom)
	for _, box := range bounds.SplitAtAntimeridian() {
		enumerate(box, level, cells)
	}
	return cells
}

func enumerate(box domain.Bounds, level int, cells map[string]struct{}) {
	// Northwest and southeast corners bound the tile rectangle; tile rows
	// grow southward.
	xMin, yMin := geospatial.LonLatToTile(box.West, box.North, level)
	xMax, yMax := geospatial.LonLatToTile(box.East, box.South, level)

	for x := xMin; x <= xMax; x++ {
		for y := yMin; y <= yMax; y++ {
			cells[quadkey(x, y, level)] = struct{}{}
		}
	}
}

// quadkey interleaves the bits of (x, y) into base-4 digits, most
// significant zoom level first.
func quadkey(x, y, level int) string {
	key := make([]byte, level)
	for i := level; i > 0; i-- {
		digit := byte('0')
		mask := 1 << (i - 1)
		if x&mask != 0 {
			digit++
		}
		if y&mask != 0 {
			digit += 2
		}
		key[level-i] = digit
	}
	return string(key)
}

func parseQuadkey(key string) (x, y, level int, ok bool) {
	level = len(key)
	if level == 0 {
		return 0, 0, 0, false
	}
	for i := level; i > 0; i-- {
		mask := 1 << (i - 1)
		switch key[level-i] {
		case '0':
		case '1':
			x |= mask
		case '2':
			y |= mask
		case '3':
			x |= mask
			y |= mask
		default:
			return 0, 0, 0, false
		}
	}
	return x, y, level, true
}
