package ports

import (
	"context"

	"github.com/etxarri/terragrid/internal/core/domain"
)

// LandTileRepository persists generated land-grid snapshots. Persistence is
// an external collaborator: the tiling core never requires it, but the
// gridgen CLI and the rebuild workflow write through this port so that
// observation services can join against stable tile IDs.
type LandTileRepository interface {
	CreateSnapshot(ctx context.Context, snapshot *domain.GridSnapshot) error
	UpsertTiles(ctx context.Context, snapshotID string, tiles []domain.LandTile) error
	GetTile(ctx context.Context, snapshotID, tileID string) (*domain.LandTile, error)
	LatestSnapshot(ctx context.Context, tileSize float64) (*domain.GridSnapshot, error)
	CountByRegion(ctx context.Context, snapshotID string) (map[string]int, error)
	DeleteSnapshot(ctx context.Context, snapshotID string) error
}
