//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	handler "github.com/etxarri/terragrid/internal/adapters/http"
	"github.com/etxarri/terragrid/internal/adapters/postgres"
	"github.com/etxarri/terragrid/internal/core/domain"
	"github.com/etxarri/terragrid/internal/pkg/config"
)

// setupTestDB connects to the test database and returns a clean DB instance.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("terragrid-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}

	db := &postgres.DB{Pool: pool}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}

	return db
}

// seedTestSnapshot inserts a snapshot with a handful of tiles and returns its ID.
func seedTestSnapshot(t *testing.T, repo *postgres.TileRepo, tileSize float64) string {
	ctx := context.Background()
	snapshot := &domain.GridSnapshot{
		ID:        uuid.NewString(),
		TileSize:  tileSize,
		TileCount: 3,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateSnapshot(ctx, snapshot); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	tiles := []domain.LandTile{
		{ID: "g2:266:354", Lat: 43.0, Lon: -3.0, LatEnd: 43.5, LonEnd: -2.5, Region: "Europe"},
		{ID: "g2:266:356", Lat: 43.0, Lon: -2.0, LatEnd: 43.5, LonEnd: -1.5, Region: "Europe"},
		{ID: "g2:256:164", Lat: 38.0, Lon: -98.0, LatEnd: 38.5, LonEnd: -97.5, Region: "North America"},
	}
	if err := repo.UpsertTiles(ctx, snapshot.ID, tiles); err != nil {
		t.Fatalf("seed tiles: %v", err)
	}
	return snapshot.ID
}

// TestTileRepo_Integration_RoundTrip exercises the repo against a real database.
func TestTileRepo_Integration_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	repo := postgres.NewTileRepo(db)
	snapshotID := seedTestSnapshot(t, repo, 0.5)
	defer repo.DeleteSnapshot(context.Background(), snapshotID)

	tile, err := repo.GetTile(context.Background(), snapshotID, "g2:266:354")
	if err != nil {
		t.Fatalf("get tile: %v", err)
	}
	if tile == nil {
		t.Fatal("expected tile, got nil")
	}
	if tile.Region != "Europe" {
		t.Errorf("expected region Europe, got %s", tile.Region)
	}

	missing, err := repo.GetTile(context.Background(), snapshotID, "g2:0:0")
	if err != nil {
		t.Fatalf("get missing tile: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for absent tile, got %+v", missing)
	}

	counts, err := repo.CountByRegion(context.Background(), snapshotID)
	if err != nil {
		t.Fatalf("count by region: %v", err)
	}
	if counts["Europe"] != 2 {
		t.Errorf("expected 2 Europe tiles, got %d", counts["Europe"])
	}
	if counts["North America"] != 1 {
		t.Errorf("expected 1 North America tile, got %d", counts["North America"])
	}
}

// TestTileRepo_Integration_UpsertIsIdempotent verifies ON CONFLICT handling.
func TestTileRepo_Integration_UpsertIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	repo := postgres.NewTileRepo(db)
	snapshotID := seedTestSnapshot(t, repo, 0.5)
	defer repo.DeleteSnapshot(context.Background(), snapshotID)

	// Re-upsert the same tile with a changed region.
	tiles := []domain.LandTile{
		{ID: "g2:266:354", Lat: 43.0, Lon: -3.0, LatEnd: 43.5, LonEnd: -2.5, Region: "Iberia"},
	}
	if err := repo.UpsertTiles(context.Background(), snapshotID, tiles); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	tile, err := repo.GetTile(context.Background(), snapshotID, "g2:266:354")
	if err != nil {
		t.Fatalf("get tile: %v", err)
	}
	if tile.Region != "Iberia" {
		t.Errorf("expected updated region Iberia, got %s", tile.Region)
	}

	counts, err := repo.CountByRegion(context.Background(), snapshotID)
	if err != nil {
		t.Fatalf("count by region: %v", err)
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	if total != 3 {
		t.Errorf("expected 3 tiles after re-upsert, got %d", total)
	}
}

// TestLatestSnapshot_Integration_WithRealDB tests the snapshot endpoint
// against a real database.
func TestLatestSnapshot_Integration_WithRealDB(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	repo := postgres.NewTileRepo(db)
	snapshotID := seedTestSnapshot(t, repo, 0.5)
	defer repo.DeleteSnapshot(context.Background(), snapshotID)

	deps := makeDeps(func(d *handler.Dependencies) {
		d.Tiles = repo
		d.DB = db
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/grid/snapshots/latest?tile_size=0.5", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Snapshot domain.GridSnapshot `json:"snapshot"`
		Regions  map[string]int      `json:"regions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if result.Snapshot.ID != snapshotID {
		t.Errorf("expected snapshot %s, got %s", snapshotID, result.Snapshot.ID)
	}
	if result.Regions["Europe"] != 2 {
		t.Errorf("expected 2 Europe tiles, got %d", result.Regions["Europe"])
	}
}
