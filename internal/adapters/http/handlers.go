package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/etxarri/terragrid/internal/core/domain"
	"github.com/etxarri/terragrid/internal/core/usecases"
)

// parseBounds reads the north/south/east/west query parameters. All four are
// required; range and degeneracy checks are left to the services so that the
// antimeridian convention (west > east) stays in one place.
func parseBounds(c *fiber.Ctx) (domain.Bounds, error) {
	var b domain.Bounds
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"north", &b.North},
		{"south", &b.South},
		{"east", &b.East},
		{"west", &b.West},
	} {
		raw := c.Query(p.name)
		if raw == "" {
			return b, errors.New(p.name + " query parameter is required")
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return b, errors.New(p.name + " must be a number")
		}
		*p.dst = v
	}
	return b, nil
}

// boundsError maps service-level bounds/size failures to HTTP statuses.
func boundsError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrUnsupportedTileSize),
		errors.Is(err, domain.ErrInvalidBounds),
		errors.Is(err, domain.ErrDegenerateBounds):
		return errBadRequest(c, err.Error())
	default:
		return errInternal(c, err.Error())
	}
}

// CellsHandler enumerates indexing cells covering a viewport.
// GET /v1/cells?north=&south=&east=&west=&zoom=10
func CellsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bounds, err := parseBounds(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		zoom := c.QueryFloat("zoom", 10)

		cells, level, err := deps.Cells.CellsInViewport(c.Context(), bounds, zoom)
		if err != nil {
			return boundsError(c, err)
		}

		// Offset/limit pagination on the sorted ID list
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 1000)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 5000 {
			limit = 1000
		}

		total := len(cells)
		if offset >= total {
			cells = []string{}
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			cells = cells[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(fiber.Map{
			"cells":      cells,
			"level":      level,
			"pagination": pg,
		})
	}
}

// CellsNearHandler enumerates cells around a point.
// GET /v1/cells/near?lat=&lon=&radius=500&zoom=10
func CellsNearHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 500)
		zoom := c.QueryFloat("zoom", 10)

		if radius <= 0 || radius > 1_000_000 {
			return errBadRequest(c, "radius must be between 1 and 1000000 meters")
		}

		cells, level, err := deps.Cells.CellsNear(c.Context(), lat, lon, radius, zoom)
		if err != nil {
			return boundsError(c, err)
		}
		return c.JSON(fiber.Map{
			"cells": cells,
			"level": level,
			"count": len(cells),
		})
	}
}

// TilesHandler returns land tiles intersecting a viewport, capped at
// max_tiles. A truncated response is a partial success, not an error.
// GET /v1/tiles?north=&south=&east=&west=&tile_size=0.5&max_tiles=2000
func TilesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bounds, err := parseBounds(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		tileSize := c.QueryFloat("tile_size", 0.5)
		maxTiles := c.QueryInt("max_tiles", 0)
		if deps.MaxTiles > 0 && (maxTiles <= 0 || maxTiles > deps.MaxTiles) {
			maxTiles = deps.MaxTiles
		}

		tiles, truncated, err := deps.Grid.TilesInViewport(c.Context(), bounds, tileSize, maxTiles)
		if err != nil {
			return boundsError(c, err)
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(fiber.Map{
			"tiles":     tiles,
			"count":     len(tiles),
			"truncated": truncated,
			"tile_size": tileSize,
		})
	}
}

// TilesGeoJSONHandler is TilesHandler rendered as a GeoJSON
// FeatureCollection of tile polygons.
// GET /v1/tiles/geojson?north=&south=&east=&west=&tile_size=0.5
func TilesGeoJSONHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bounds, err := parseBounds(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		tileSize := c.QueryFloat("tile_size", 0.5)
		maxTiles := c.QueryInt("max_tiles", 0)
		if deps.MaxTiles > 0 && (maxTiles <= 0 || maxTiles > deps.MaxTiles) {
			maxTiles = deps.MaxTiles
		}

		tiles, truncated, err := deps.Grid.TilesInViewport(c.Context(), bounds, tileSize, maxTiles)
		if err != nil {
			return boundsError(c, err)
		}

		fc := usecases.TilesToGeoJSON(tiles)
		c.Set("Content-Type", "application/geo+json")
		c.Set("X-Truncated", strconv.FormatBool(truncated))
		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(fc)
	}
}

// GetTileHandler resolves a tile ID. Malformed IDs are 400s; well-formed
// IDs over open ocean are 404s.
// GET /v1/tiles/:id?tile_size=0.5
func GetTileHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "tile id is required")
		}
		tileSize := c.QueryFloat("tile_size", 0.5)

		tile, err := deps.Grid.TileByID(c.Context(), id, tileSize)
		if err != nil {
			if errors.Is(err, domain.ErrMalformedTileID) {
				return errBadRequest(c, "malformed tile id")
			}
			return boundsError(c, err)
		}
		if tile == nil {
			return errNotFound(c, "tile is open ocean")
		}

		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(tile)
	}
}

// GridStatsHandler reports land coverage for one resolution.
// GET /v1/grid/stats?tile_size=1.0
func GridStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tileSize := c.QueryFloat("tile_size", 1.0)

		stats, err := deps.Grid.GridStats(c.Context(), tileSize)
		if err != nil {
			return boundsError(c, err)
		}

		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(stats)
	}
}

// GridSizesHandler lists the supported tile resolutions.
// GET /v1/grid/sizes
func GridSizesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "public, max-age=86400")
		return c.JSON(fiber.Map{
			"tile_sizes": domain.SupportedTileSizes,
			"default":    0.5,
		})
	}
}

// LatestSnapshotHandler returns the newest persisted snapshot for a size,
// with per-region tile counts.
// GET /v1/grid/snapshots/latest?tile_size=0.5
func LatestSnapshotHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Tiles == nil {
			return errInternal(c, "persistence not available")
		}
		tileSize := c.QueryFloat("tile_size", 0.5)
		if !domain.IsSupportedTileSize(tileSize) {
			return errBadRequest(c, "unsupported tile size")
		}

		snapshot, err := deps.Tiles.LatestSnapshot(c.Context(), tileSize)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if snapshot == nil {
			return errNotFound(c, "no snapshot generated for this tile size")
		}

		regions, err := deps.Tiles.CountByRegion(c.Context(), snapshot.ID)
		if err != nil {
			return errInternal(c, err.Error())
		}

		return c.JSON(fiber.Map{
			"snapshot": snapshot,
			"regions":  regions,
		})
	}
}

// LODStateHandler returns the current level-of-detail state.
// GET /v1/lod
func LODStateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deps.LODMu.Lock()
		state := deps.LOD.State()
		deps.LODMu.Unlock()
		return c.JSON(state)
	}
}

// lodViewportRequest is the POST body for viewport updates.
type lodViewportRequest struct {
	Zoom  float64 `json:"zoom"`
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// LODViewportHandler recomputes LOD state from a new viewport and broadcasts
// it to subscribers and, when a broker is wired, over NATS.
// POST /v1/lod/viewport
func LODViewportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req lodViewportRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		bounds := domain.Bounds{North: req.North, South: req.South, East: req.East, West: req.West}
		if err := bounds.Validate(); err != nil && !errors.Is(err, domain.ErrDegenerateBounds) {
			return errBadRequest(c, err.Error())
		}

		deps.LODMu.Lock()
		state := deps.LOD.UpdateViewport(req.Zoom, bounds)
		deps.LODMu.Unlock()

		if deps.Events != nil {
			// Best-effort: a broker outage must not fail viewport updates.
			_ = deps.Events.PublishLODState(c.Context(), &state)
		}

		return c.JSON(state)
	}
}
