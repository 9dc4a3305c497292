package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/etxarri/terragrid/internal/core/domain"
	"github.com/etxarri/terragrid/internal/core/usecases"
)

// --- Mock LandMask ---

type mockMask struct {
	isLandFn    func(lat, lon float64) bool
	regionForFn func(lat, lon float64) string
}

func (m *mockMask) IsLand(lat, lon float64) bool {
	if m.isLandFn != nil {
		return m.isLandFn(lat, lon)
	}
	return false
}

func (m *mockMask) RegionFor(lat, lon float64) string {
	if m.regionForFn != nil {
		return m.regionForFn(lat, lon)
	}
	return ""
}

// allLand marks everything as land.
func allLand() *mockMask {
	return &mockMask{isLandFn: func(lat, lon float64) bool { return true }}
}

// --- Tests ---

func TestGenerateLandTiles_FiltersOcean(t *testing.T) {
	// Land only in the northern half of the box.
	mask := &mockMask{
		isLandFn:    func(lat, lon float64) bool { return lat > 1 },
		regionForFn: func(lat, lon float64) string { return "Europe" },
	}
	svc := usecases.NewGridService(mask, nil)

	bounds := domain.Bounds{North: 2, South: 0, East: 2, West: 0}
	tiles, err := svc.GenerateLandTiles(context.Background(), &bounds, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tiles) != 2 {
		t.Fatalf("expected 2 land tiles, got %d", len(tiles))
	}
	for _, tile := range tiles {
		center := tile.Center()
		if !mask.IsLand(center.Lat, center.Lon) {
			t.Errorf("emitted tile %s whose center is ocean", tile.ID)
		}
		if tile.Region != "Europe" {
			t.Errorf("expected region Europe, got %s", tile.Region)
		}
		if tile.LatEnd != tile.Lat+1.0 || tile.LonEnd != tile.Lon+1.0 {
			t.Errorf("tile %s extents do not match tile size", tile.ID)
		}
	}
}

func TestGenerateLandTiles_Deterministic(t *testing.T) {
	svc := usecases.NewGridService(allLand(), nil)
	bounds := domain.Bounds{North: 10, South: 0, East: 10, West: 0}

	first, err := svc.GenerateLandTiles(context.Background(), &bounds, 2.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := svc.GenerateLandTiles(context.Background(), &bounds, 2.0)

	if len(first) != len(second) {
		t.Fatalf("tile counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("tile %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestGenerateLandTiles_UnsupportedSize(t *testing.T) {
	svc := usecases.NewGridService(allLand(), nil)
	_, err := svc.GenerateLandTiles(context.Background(), nil, 0.3)
	if !errors.Is(err, domain.ErrUnsupportedTileSize) {
		t.Errorf("expected ErrUnsupportedTileSize, got %v", err)
	}
}

func TestTilesInViewport_MaxTilesBackpressure(t *testing.T) {
	lookups := 0
	mask := &mockMask{isLandFn: func(lat, lon float64) bool {
		lookups++
		return true
	}}
	svc := usecases.NewGridService(mask, nil)

	tiles, truncated, err := svc.TilesInViewport(context.Background(), domain.GlobalBounds(), 0.1, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tiles) > 500 {
		t.Fatalf("cap ignored: got %d tiles", len(tiles))
	}
	if !truncated {
		t.Error("expected truncated result for a global 0.1° query")
	}
	// The cap must stop enumeration early, not trim a full global pass
	// (a full pass would be 1800×3600 lookups).
	if lookups > 1000 {
		t.Errorf("enumeration did not stop early: %d mask lookups", lookups)
	}
}

func TestTilesInViewport_Antimeridian(t *testing.T) {
	svc := usecases.NewGridService(allLand(), nil)
	bounds := domain.Bounds{North: 5, South: -5, East: -170, West: 170}

	tiles, _, err := svc.TilesInViewport(context.Background(), bounds, 2.0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tiles) == 0 {
		t.Fatal("antimeridian viewport came back empty")
	}

	var east, west bool
	for _, tile := range tiles {
		if tile.Lon >= 170 {
			east = true
		}
		if tile.Lon < -168 {
			west = true
		}
	}
	if !east || !west {
		t.Errorf("tiles missing on one side of the antimeridian (east=%v west=%v)", east, west)
	}
}

func TestTilesInViewport_DegenerateBounds(t *testing.T) {
	svc := usecases.NewGridService(allLand(), nil)
	bounds := domain.Bounds{North: 0, South: 10, East: 10, West: 0}
	_, _, err := svc.TilesInViewport(context.Background(), bounds, 1.0, 100)
	if !errors.Is(err, domain.ErrDegenerateBounds) {
		t.Errorf("expected ErrDegenerateBounds, got %v", err)
	}
}

func TestTileByID_RoundTrip(t *testing.T) {
	svc := usecases.NewGridService(&mockMask{
		isLandFn:    func(lat, lon float64) bool { return true },
		regionForFn: func(lat, lon float64) string { return "Asia" },
	}, nil)

	bounds := domain.Bounds{North: 40, South: 38, East: 118, West: 116}
	tiles, err := svc.GenerateLandTiles(context.Background(), &bounds, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tiles) == 0 {
		t.Fatal("expected tiles")
	}

	got, err := svc.TileByID(context.Background(), tiles[0].ID, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected tile, got nil")
	}
	if got.Lat != tiles[0].Lat || got.Lon != tiles[0].Lon {
		t.Errorf("round trip corner mismatch: (%f,%f) vs (%f,%f)",
			got.Lat, got.Lon, tiles[0].Lat, tiles[0].Lon)
	}
}

func TestTileByID_Ocean(t *testing.T) {
	svc := usecases.NewGridService(&mockMask{}, nil)
	id := domain.GenerateTileID(0, -140, 1.0)

	tile, err := svc.TileByID(context.Background(), id, 1.0)
	if err != nil {
		t.Fatalf("ocean is not an error, got %v", err)
	}
	if tile != nil {
		t.Errorf("expected nil tile for open ocean, got %+v", tile)
	}
}

func TestTileByID_Malformed(t *testing.T) {
	svc := usecases.NewGridService(allLand(), nil)
	_, err := svc.TileByID(context.Background(), "garbage", 1.0)
	if !errors.Is(err, domain.ErrMalformedTileID) {
		t.Errorf("expected ErrMalformedTileID, got %v", err)
	}
}

func TestGridStats(t *testing.T) {
	// Land in one hemisphere only: the land fraction must reflect it.
	mask := &mockMask{
		isLandFn:    func(lat, lon float64) bool { return lon > 0 },
		regionForFn: func(lat, lon float64) string { return "Asia" },
	}
	svc := usecases.NewGridService(mask, nil)

	stats, err := svc.GridStats(context.Background(), 2.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalCells != 90*180 {
		t.Errorf("expected %d cells at 2°, got %d", 90*180, stats.TotalCells)
	}
	if stats.TotalLandTiles != stats.TotalCells/2 {
		t.Errorf("expected half land, got %d of %d", stats.TotalLandTiles, stats.TotalCells)
	}
	if stats.Regions["Asia"] != stats.TotalLandTiles {
		t.Errorf("region counts should sum to land tiles")
	}
	if stats.ApproxEdgeKm <= 0 {
		t.Error("expected a positive approximate edge length")
	}
}
