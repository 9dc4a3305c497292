package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/etxarri/terragrid/internal/core/domain"
	"github.com/etxarri/terragrid/internal/core/ports"
	"github.com/etxarri/terragrid/internal/core/usecases"
)

// upsertBatchSize bounds the number of tiles queued per pgx batch.
const upsertBatchSize = 500

// GridActivities holds the activity implementations for the rebuild workflow.
type GridActivities struct {
	Grid   *usecases.GridService
	Tiles  ports.LandTileRepository
	Events ports.EventPublisher
}

func (a *GridActivities) bounds(input GridRebuildInput) *domain.Bounds {
	if input.North == 0 && input.South == 0 && input.East == 0 && input.West == 0 {
		return nil // whole globe
	}
	return &domain.Bounds{North: input.North, South: input.South, East: input.East, West: input.West}
}

// GenerateLandGrid runs the tiling pass and returns the tile count. Tiling
// is deterministic, so PersistTiles can regenerate the same set later
// without shipping tiles through workflow history.
func (a *GridActivities) GenerateLandGrid(ctx context.Context, input GridRebuildInput) (int, error) {
	tiles, err := a.Grid.GenerateLandTiles(ctx, a.bounds(input), input.TileSize)
	if err != nil {
		return 0, fmt.Errorf("generate land tiles: %w", err)
	}
	return len(tiles), nil
}

// CreateSnapshot records a new snapshot header and returns its ID.
func (a *GridActivities) CreateSnapshot(ctx context.Context, tileSize float64, tileCount int) (string, error) {
	snapshot := &domain.GridSnapshot{
		ID:        uuid.NewString(),
		TileSize:  tileSize,
		TileCount: tileCount,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.Tiles.CreateSnapshot(ctx, snapshot); err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	return snapshot.ID, nil
}

// PersistTiles regenerates the grid and writes it under the snapshot in
// bounded batches. Re-runs are safe: tile IDs are stable and the writes
// upsert.
func (a *GridActivities) PersistTiles(ctx context.Context, snapshotID string, input GridRebuildInput) error {
	tiles, err := a.Grid.GenerateLandTiles(ctx, a.bounds(input), input.TileSize)
	if err != nil {
		return fmt.Errorf("regenerate land tiles: %w", err)
	}
	for start := 0; start < len(tiles); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(tiles) {
			end = len(tiles)
		}
		if err := a.Tiles.UpsertTiles(ctx, snapshotID, tiles[start:end]); err != nil {
			return fmt.Errorf("upsert tiles [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

// AnnounceSnapshot publishes the grid.rebuilt event for the snapshot.
func (a *GridActivities) AnnounceSnapshot(ctx context.Context, snapshotID string, tileSize float64) error {
	if a.Events == nil {
		return nil
	}
	snapshot, err := a.Tiles.LatestSnapshot(ctx, tileSize)
	if err != nil || snapshot == nil || snapshot.ID != snapshotID {
		// Fall back to a header-only event; subscribers key on the ID.
		snapshot = &domain.GridSnapshot{ID: snapshotID, TileSize: tileSize, CreatedAt: time.Now().UTC()}
	}
	return a.Events.PublishGridRebuilt(ctx, snapshot)
}

// DeleteSnapshot removes a snapshot and its tiles (saga compensation).
func (a *GridActivities) DeleteSnapshot(ctx context.Context, snapshotID string) error {
	if err := a.Tiles.DeleteSnapshot(ctx, snapshotID); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", snapshotID, err)
	}
	return nil
}
