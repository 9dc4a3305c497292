package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/etxarri/terragrid/internal/core/domain"
)

// TileRepo implements ports.LandTileRepository with pgx.
type TileRepo struct {
	db *DB
}

// NewTileRepo creates a new TileRepo.
func NewTileRepo(db *DB) *TileRepo {
	return &TileRepo{db: db}
}

// CreateSnapshot records a new grid snapshot header.
func (r *TileRepo) CreateSnapshot(ctx context.Context, snapshot *domain.GridSnapshot) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO grid_snapshots (id, tile_size, tile_count, created_at)
		VALUES ($1, $2, $3, $4)
	`, snapshot.ID, snapshot.TileSize, snapshot.TileCount, snapshot.CreatedAt)
	return err
}

// UpsertTiles inserts many tiles for a snapshot using pgx.Batch.
func (r *TileRepo) UpsertTiles(ctx context.Context, snapshotID string, tiles []domain.LandTile) error {
	batch := &pgx.Batch{}
	for _, t := range tiles {
		batch.Queue(`
			INSERT INTO land_tiles (snapshot_id, tile_id, lat, lon, lat_end, lon_end, region)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (snapshot_id, tile_id) DO UPDATE
			SET lat = EXCLUDED.lat, lon = EXCLUDED.lon,
			    lat_end = EXCLUDED.lat_end, lon_end = EXCLUDED.lon_end,
			    region = EXCLUDED.region
		`, snapshotID, t.ID, t.Lat, t.Lon, t.LatEnd, t.LonEnd, t.Region)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range tiles {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// GetTile returns one tile of a snapshot, or nil when absent.
func (r *TileRepo) GetTile(ctx context.Context, snapshotID, tileID string) (*domain.LandTile, error) {
	var t domain.LandTile
	err := r.db.Pool.QueryRow(ctx, `
		SELECT tile_id, lat, lon, lat_end, lon_end, COALESCE(region, 'Unknown')
		FROM land_tiles
		WHERE snapshot_id = $1 AND tile_id = $2
	`, snapshotID, tileID).Scan(&t.ID, &t.Lat, &t.Lon, &t.LatEnd, &t.LonEnd, &t.Region)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// LatestSnapshot returns the most recent snapshot for a tile size, or nil
// when none has been generated yet.
func (r *TileRepo) LatestSnapshot(ctx context.Context, tileSize float64) (*domain.GridSnapshot, error) {
	var s domain.GridSnapshot
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, tile_size, tile_count, created_at
		FROM grid_snapshots
		WHERE tile_size = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, tileSize).Scan(&s.ID, &s.TileSize, &s.TileCount, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CountByRegion aggregates tile counts per region for a snapshot.
func (r *TileRepo) CountByRegion(ctx context.Context, snapshotID string) (map[string]int, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT COALESCE(region, 'Unknown'), COUNT(*)
		FROM land_tiles
		WHERE snapshot_id = $1
		GROUP BY region
	`, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var region string
		var n int
		if err := rows.Scan(&region, &n); err != nil {
			return nil, err
		}
		counts[region] = n
	}
	return counts, rows.Err()
}

// DeleteSnapshot removes a snapshot and its tiles.
func (r *TileRepo) DeleteSnapshot(ctx context.Context, snapshotID string) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM land_tiles WHERE snapshot_id = $1`, snapshotID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM grid_snapshots WHERE id = $1`, snapshotID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
