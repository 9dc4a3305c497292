package geospatial_test

import (
	"math"
	"testing"

	"github.com/etxarri/terragrid/internal/pkg/geospatial"
)

func TestLonLatToTile_Origin(t *testing.T) {
	// (0, 0) at zoom 1 falls in the southeast quadrant tile (1, 1)
	// because tile rows count from the top.
	x, y := geospatial.LonLatToTile(0, 0, 1)
	if x != 1 || y != 1 {
		t.Fatalf("expected (1,1), got (%d,%d)", x, y)
	}
}

func TestLonLatToTile_ZoomZero(t *testing.T) {
	// Everything maps to the single zoom-0 tile.
	for _, p := range [][2]float64{{0, 0}, {-179, 80}, {179, -80}, {43.263, -2.935}} {
		x, y := geospatial.LonLatToTile(p[1], p[0], 0)
		if x != 0 || y != 0 {
			t.Errorf("point %v: expected (0,0), got (%d,%d)", p, x, y)
		}
	}
}

func TestLonLatToTile_PolarClamp(t *testing.T) {
	// Latitudes beyond the Mercator limit clamp to the edge rows
	// instead of going out of range.
	_, yTop := geospatial.LonLatToTile(0, 89.9, 4)
	if yTop != 0 {
		t.Errorf("expected top row 0, got %d", yTop)
	}
	_, yBottom := geospatial.LonLatToTile(0, -89.9, 4)
	if yBottom != 15 {
		t.Errorf("expected bottom row 15, got %d", yBottom)
	}
}

func TestLonLatToTile_WrapLongitude(t *testing.T) {
	x1, _ := geospatial.LonLatToTile(190, 0, 3)
	x2, _ := geospatial.LonLatToTile(-170, 0, 3)
	if x1 != x2 {
		t.Errorf("190° and -170° should land in the same column, got %d and %d", x1, x2)
	}
}

func TestTileToBounds_WholeWorld(t *testing.T) {
	b := geospatial.TileToBounds(0, 0, 0)
	if b.West != -180 || b.East != 180 {
		t.Errorf("expected west/east ±180, got %f/%f", b.West, b.East)
	}
	if math.Abs(b.North-geospatial.MercatorMaxLat) > 1e-6 {
		t.Errorf("expected north %f, got %f", geospatial.MercatorMaxLat, b.North)
	}
	if math.Abs(b.South+geospatial.MercatorMaxLat) > 1e-6 {
		t.Errorf("expected south %f, got %f", -geospatial.MercatorMaxLat, b.South)
	}
}

func TestTileToBounds_AdjacentColumnsShareEdge(t *testing.T) {
	left := geospatial.TileToBounds(5, 10, 12)
	right := geospatial.TileToBounds(5, 11, 12)
	if left.East != right.West {
		t.Errorf("adjacent tiles must share an edge: %f vs %f", left.East, right.West)
	}
}

func TestTileRoundTrip(t *testing.T) {
	// A point projected to a tile must fall inside that tile's bounds.
	points := []struct{ lat, lon float64 }{
		{43.263, -2.935},
		{-33.86, 151.21},
		{64.13, -21.9},
		{0.5, 0.5},
	}
	for _, p := range points {
		for _, zoom := range []int{2, 8, 14} {
			x, y := geospatial.LonLatToTile(p.lon, p.lat, zoom)
			b := geospatial.TileToBounds(zoom, x, y)
			if p.lat > b.North || p.lat < b.South || p.lon < b.West || p.lon > b.East {
				t.Errorf("point (%f,%f) zoom %d outside its tile bounds %+v", p.lat, p.lon, zoom, b)
			}
		}
	}
}

func TestNormalizeLon(t *testing.T) {
	cases := map[float64]float64{
		0:    0,
		180:  180,
		-180: 180,
		190:  -170,
		-190: 170,
		540:  180,
	}
	for in, want := range cases {
		if got := geospatial.NormalizeLon(in); got != want {
			t.Errorf("NormalizeLon(%f) = %f, want %f", in, got, want)
		}
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	// Bilbao to Donostia is roughly 100 km.
	d := geospatial.Haversine(43.263, -2.935, 43.318, -1.981)
	if d < 70000 || d > 90000 {
		t.Errorf("unexpected distance: %f m", d)
	}
}
