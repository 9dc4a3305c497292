package geospatial

import "math"

// MercatorMaxLat is the latitude limit of the Web Mercator projection.
// Beyond it the projection is undefined; callers clamp before projecting.
const MercatorMaxLat = 85.05112878

// ClampMercatorLat clamps a latitude into the Mercator-valid range.
func ClampMercatorLat(lat float64) float64 {
	return math.Max(-MercatorMaxLat, math.Min(MercatorMaxLat, lat))
}

// NormalizeLon folds a longitude into (-180, 180], keeping 180 as 180 so
// that points on the antimeridian are not silently flipped to -180.
func NormalizeLon(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon <= -180 {
		lon += 360
	} else if lon > 180 {
		lon -= 360
	}
	return lon
}

// LonLatToTile converts a WGS 84 coordinate into slippy-tile column/row at
// the given zoom. The result is clamped into [0, 2^zoom-1] on both axes:
// x wraps with longitude, y saturates near the poles.
func LonLatToTile(lon, lat float64, zoom int) (x, y int) {
	n := math.Exp2(float64(zoom))
	lon = NormalizeLon(lon)
	lat = ClampMercatorLat(lat)

	fx := math.Floor((lon + 180) / 360 * n)
	latRad := lat * math.Pi / 180
	fy := math.Floor((1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n)

	x = int(math.Max(0, math.Min(fx, n-1)))
	y = int(math.Max(0, math.Min(fy, n-1)))
	return x, y
}

// TileBounds are the geographic edges of one slippy tile, in degrees.
type TileBounds struct {
	North float64
	South float64
	East  float64
	West  float64
}

// TileToBounds returns the geographic bounding box of tile (x, y) at the
// given zoom. West is the column's left edge, East the next column's West;
// North/South come from the inverse Mercator.
func TileToBounds(zoom, x, y int) TileBounds {
	n := math.Exp2(float64(zoom))
	return TileBounds{
		West:  float64(x)/n*360 - 180,
		East:  float64(x+1)/n*360 - 180,
		North: tileLat(float64(y), n),
		South: tileLat(float64(y+1), n),
	}
}

func tileLat(y, n float64) float64 {
	return math.Atan(math.Sinh(math.Pi*(1-2*y/n))) * 180 / math.Pi
}
