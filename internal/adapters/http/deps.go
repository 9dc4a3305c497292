package http

import (
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/etxarri/terragrid/internal/adapters/postgres"
	"github.com/etxarri/terragrid/internal/adapters/valkey"
	"github.com/etxarri/terragrid/internal/core/lod"
	"github.com/etxarri/terragrid/internal/core/ports"
	"github.com/etxarri/terragrid/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Cells *usecases.CellService
	Grid  *usecases.GridService
	Tiles ports.LandTileRepository
	// LOD is single-threaded by contract; handlers serialize access
	// through LODMu.
	LOD      *lod.Controller
	LODMu    sync.Mutex
	Events   ports.EventPublisher
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache
	MaxTiles int
}
