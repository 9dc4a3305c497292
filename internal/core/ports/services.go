package ports

import (
	"context"

	"github.com/etxarri/terragrid/internal/core/domain"
)

// LandMask answers whether a point is on land and which coarse region it
// belongs to. Implementations must be deterministic for identical inputs
// within a single generation pass and cheap to call synchronously — the
// grid generator invokes it once per candidate cell with no I/O budget.
type LandMask interface {
	IsLand(lat, lon float64) bool
	// RegionFor returns a coarse continent/region label, or "Unknown".
	RegionFor(lat, lon float64) string
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishLODState(ctx context.Context, state *domain.LODState) error
	PublishGridRebuilt(ctx context.Context, snapshot *domain.GridSnapshot) error
	PublishBroadcast(ctx context.Context, data []byte) error
}
