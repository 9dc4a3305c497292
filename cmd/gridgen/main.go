package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/etxarri/terragrid/internal/adapters/landmask"
	natsadapter "github.com/etxarri/terragrid/internal/adapters/nats"
	"github.com/etxarri/terragrid/internal/adapters/postgres"
	"github.com/etxarri/terragrid/internal/core/domain"
	"github.com/etxarri/terragrid/internal/core/usecases"
	"github.com/etxarri/terragrid/internal/pkg/config"
)

// gridgen generates the land grid at one resolution and writes it out as
// GeoJSON, optionally persisting it as a snapshot and announcing it.
func main() {
	var (
		tileSize = flag.Float64("size", 0.5, "tile edge in degrees (0.1, 0.25, 0.5, 1.0 or 2.0)")
		north    = flag.Float64("north", 0, "northern bound (defaults to the whole globe)")
		south    = flag.Float64("south", 0, "southern bound")
		east     = flag.Float64("east", 0, "eastern bound")
		west     = flag.Float64("west", 0, "western bound")
		out      = flag.String("out", "", "write the grid as GeoJSON to this file ('-' for stdout)")
		persist  = flag.Bool("persist", false, "persist the grid as a new snapshot")
		announce = flag.Bool("announce", false, "publish grid.rebuilt after persisting")
	)
	flag.Parse()

	ctx := context.Background()

	var bounds *domain.Bounds
	if *north != 0 || *south != 0 || *east != 0 || *west != 0 {
		bounds = &domain.Bounds{North: *north, South: *south, East: *east, West: *west}
	}

	grid := usecases.NewGridService(landmask.New(), nil)

	start := time.Now()
	tiles, err := grid.GenerateLandTiles(ctx, bounds, *tileSize)
	if err != nil {
		log.Fatalf("generate: %v", err)
	}
	log.Printf("generated %d land tiles at %g° in %s", len(tiles), *tileSize, time.Since(start).Round(time.Millisecond))

	if *out != "" {
		fc := usecases.TilesToGeoJSON(tiles)
		data, err := json.Marshal(fc)
		if err != nil {
			log.Fatalf("marshal geojson: %v", err)
		}
		if *out == "-" {
			fmt.Println(string(data))
		} else if err := os.WriteFile(*out, data, 0o644); err != nil {
			log.Fatalf("write %s: %v", *out, err)
		} else {
			log.Printf("wrote %s (%d features)", *out, len(fc.Features))
		}
	}

	if !*persist {
		return
	}

	cfg, err := config.Load("terragrid-gridgen")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewTileRepo(db)
	snapshot := &domain.GridSnapshot{
		ID:        uuid.NewString(),
		TileSize:  *tileSize,
		TileCount: len(tiles),
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateSnapshot(ctx, snapshot); err != nil {
		log.Fatalf("create snapshot: %v", err)
	}

	const batch = 500
	for i := 0; i < len(tiles); i += batch {
		end := i + batch
		if end > len(tiles) {
			end = len(tiles)
		}
		if err := repo.UpsertTiles(ctx, snapshot.ID, tiles[i:end]); err != nil {
			log.Fatalf("persist tiles: %v", err)
		}
	}
	log.Printf("snapshot %s persisted (%d tiles)", snapshot.ID, snapshot.TileCount)

	if *announce {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			log.Fatalf("nats: %v", err)
		}
		defer pub.Close()
		if err := pub.PublishGridRebuilt(ctx, snapshot); err != nil {
			log.Fatalf("announce snapshot: %v", err)
		}
		log.Printf("announced grid.rebuilt.%s", snapshot.ID)
	}
}
