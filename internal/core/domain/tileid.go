package domain

import (
	"math"
	"strconv"
	"strings"
)

// Tile IDs encode the southwest corner of a land tile as grid-step indices,
// e.g. "g25:173:-12" for a 0.25° tile. The ID is stable for a given
// (lat, lon, tileSize) and reversible given the same tileSize.

// GenerateTileID returns the ID of the tile whose grid cell contains
// (lat, lon) on the tileSize grid. The corner is snapped to the grid, so any
// point inside a cell produces the same ID.
func GenerateTileID(lat, lon, tileSize float64) string {
	code := sizeCode(tileSize)
	latSteps := gridSteps(lat, tileSize)
	lonSteps := gridSteps(lon, tileSize)

	var sb strings.Builder
	sb.WriteByte('g')
	sb.WriteString(strconv.Itoa(code))
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(latSteps))
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(lonSteps))
	return sb.String()
}

// ParseTileID recovers the southwest corner encoded in id, which must have
// been generated with the same tileSize. Malformed input, a size mismatch,
// or a corner outside the globe all return nil — never an error or a panic.
func ParseTileID(id string, tileSize float64) *GeoPoint {
	if len(id) < 2 || id[0] != 'g' {
		return nil
	}
	parts := strings.Split(id[1:], ":")
	if len(parts) != 3 {
		return nil
	}

	code, err := strconv.Atoi(parts[0])
	if err != nil || code != sizeCode(tileSize) {
		return nil
	}
	latSteps, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil
	}
	lonSteps, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil
	}

	lat := float64(latSteps) * tileSize
	lon := float64(lonSteps) * tileSize
	if lat < -90 || lat >= 90 || lon < -180 || lon >= 180 {
		return nil
	}
	return &GeoPoint{Lat: lat, Lon: lon}
}

// sizeCode packs a tile size into its centidegree integer form (0.25 -> 25).
func sizeCode(tileSize float64) int {
	return int(math.Round(tileSize * 100))
}

// gridSteps returns the grid index of the cell containing deg. The epsilon
// keeps corners that were themselves computed as index*tileSize from
// falling one cell short under floating-point division.
func gridSteps(deg, tileSize float64) int {
	return int(math.Floor(deg/tileSize + 1e-9))
}
