package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/etxarri/terragrid/internal/core/domain"
	"github.com/etxarri/terragrid/internal/core/ports"
	"github.com/etxarri/terragrid/internal/pkg/geospatial"
	"github.com/etxarri/terragrid/internal/pkg/metrics"
)

// GridService generates and queries the land-constrained degree grid.
// Generation is a pure function of (bounds, tileSize, mask); the cache is
// an optimization layered on top and never changes what is returned.
type GridService struct {
	mask  ports.LandMask
	cache ports.CacheService
}

// NewGridService creates a new GridService.
func NewGridService(mask ports.LandMask, cache ports.CacheService) *GridService {
	return &GridService{mask: mask, cache: cache}
}

// GenerateLandTiles steps a regular degree grid of tileSize over bounds
// (nil means the whole globe) and emits a tile for every cell whose center
// the land mask reports as land. Ocean-only cells are never emitted.
func (s *GridService) GenerateLandTiles(ctx context.Context, bounds *domain.Bounds, tileSize float64) ([]domain.LandTile, error) {
	if !domain.IsSupportedTileSize(tileSize) {
		return nil, fmt.Errorf("%w: %g", domain.ErrUnsupportedTileSize, tileSize)
	}

	box := domain.GlobalBounds()
	if bounds != nil {
		if err := bounds.Validate(); err != nil {
			return nil, err
		}
		box = *bounds
	}

	var tiles []domain.LandTile
	for _, sub := range box.SplitAtAntimeridian() {
		tiles = s.appendLandTiles(tiles, sub, tileSize, 0)
	}
	metrics.TilesGenerated.WithLabelValues(sizeLabel(tileSize)).Add(float64(len(tiles)))
	return tiles, nil
}

// TilesInViewport is GenerateLandTiles restricted to a viewport and
// hard-capped at maxTiles. The cap is backpressure, not an error: when it
// is hit, enumeration stops early and the truncated flag is set. Callers
// needing completeness page or zoom in.
func (s *GridService) TilesInViewport(ctx context.Context, bounds domain.Bounds, tileSize float64, maxTiles int) ([]domain.LandTile, bool, error) {
	if !domain.IsSupportedTileSize(tileSize) {
		return nil, false, fmt.Errorf("%w: %g", domain.ErrUnsupportedTileSize, tileSize)
	}
	if err := bounds.Validate(); err != nil {
		return nil, false, err
	}
	if maxTiles <= 0 {
		maxTiles = defaultMaxTiles
	}

	cacheKey := fmt.Sprintf("tiles:vp:%.4f:%.4f:%.4f:%.4f:%g:%d",
		bounds.North, bounds.South, bounds.East, bounds.West, tileSize, maxTiles)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var cached viewportTiles
			if err := json.Unmarshal(data, &cached); err == nil {
				metrics.CacheHits.WithLabelValues("tiles_viewport").Inc()
				return cached.Tiles, cached.Truncated, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("tiles_viewport").Inc()
	}

	var tiles []domain.LandTile
	for _, sub := range bounds.SplitAtAntimeridian() {
		tiles = s.appendLandTiles(tiles, sub, tileSize, maxTiles)
		if len(tiles) >= maxTiles {
			break
		}
	}
	truncated := len(tiles) >= maxTiles

	if s.cache != nil {
		if data, err := json.Marshal(viewportTiles{Tiles: tiles, Truncated: truncated}); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}
	metrics.TilesGenerated.WithLabelValues(sizeLabel(tileSize)).Add(float64(len(tiles)))
	return tiles, truncated, nil
}

// TileByID resolves a tile ID back to its tile. A malformed ID returns
// domain.ErrMalformedTileID; a well-formed ID whose cell is open ocean
// returns (nil, nil) — ocean is an expected outcome, not an error.
func (s *GridService) TileByID(ctx context.Context, id string, tileSize float64) (*domain.LandTile, error) {
	if !domain.IsSupportedTileSize(tileSize) {
		return nil, fmt.Errorf("%w: %g", domain.ErrUnsupportedTileSize, tileSize)
	}
	corner := domain.ParseTileID(id, tileSize)
	if corner == nil {
		return nil, domain.ErrMalformedTileID
	}

	tile := s.buildTile(corner.Lat, corner.Lon, tileSize)
	center := tile.Center()
	metrics.MaskLookups.Inc()
	if !s.mask.IsLand(center.Lat, center.Lon) {
		return nil, nil
	}
	tile.Region = s.regionFor(center.Lat, center.Lon)
	return &tile, nil
}

// GridStats walks the full global grid at tileSize and reports land
// coverage. Expensive at fine resolutions, so results are cached for an
// hour; the figures only change when the mask data changes.
func (s *GridService) GridStats(ctx context.Context, tileSize float64) (*domain.GridStats, error) {
	if !domain.IsSupportedTileSize(tileSize) {
		return nil, fmt.Errorf("%w: %g", domain.ErrUnsupportedTileSize, tileSize)
	}

	cacheKey := fmt.Sprintf("grid:stats:%g", tileSize)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var stats domain.GridStats
			if err := json.Unmarshal(data, &stats); err == nil {
				metrics.CacheHits.WithLabelValues("grid_stats").Inc()
				return &stats, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("grid_stats").Inc()
	}

	stats := domain.GridStats{
		TileSize:     tileSize,
		Regions:      make(map[string]int),
		ApproxEdgeKm: geospatial.Haversine(0, 0, 0, tileSize) / 1000,
	}

	latMin, latMax := gridRange(-90, 90, tileSize)
	lonMin, lonMax := gridRange(-180, 180, tileSize)
	for i := latMin; i < latMax; i++ {
		for j := lonMin; j < lonMax; j++ {
			stats.TotalCells++
			centerLat := (float64(i) + 0.5) * tileSize
			centerLon := (float64(j) + 0.5) * tileSize
			metrics.MaskLookups.Inc()
			if s.mask.IsLand(centerLat, centerLon) {
				stats.TotalLandTiles++
				stats.Regions[s.regionFor(centerLat, centerLon)]++
			}
		}
	}
	if stats.TotalCells > 0 {
		stats.LandFraction = float64(stats.TotalLandTiles) / float64(stats.TotalCells)
	}

	if s.cache != nil {
		if data, err := json.Marshal(stats); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 3600)
		}
	}
	return &stats, nil
}

const defaultMaxTiles = 2000

type viewportTiles struct {
	Tiles     []domain.LandTile `json:"tiles"`
	Truncated bool              `json:"truncated"`
}

// appendLandTiles walks the grid cells intersecting box and appends land
// tiles to dst until maxTiles is reached (0 means unbounded). Enumeration
// stops as soon as the cap is hit — the full set is never materialized.
func (s *GridService) appendLandTiles(dst []domain.LandTile, box domain.Bounds, tileSize float64, maxTiles int) []domain.LandTile {
	latMin, latMax := gridRange(math.Max(box.South, -90), math.Min(box.North, 90), tileSize)
	lonMin, lonMax := gridRange(math.Max(box.West, -180), math.Min(box.East, 180), tileSize)

	for i := latMin; i < latMax; i++ {
		for j := lonMin; j < lonMax; j++ {
			if maxTiles > 0 && len(dst) >= maxTiles {
				return dst
			}
			centerLat := (float64(i) + 0.5) * tileSize
			centerLon := (float64(j) + 0.5) * tileSize
			metrics.MaskLookups.Inc()
			if !s.mask.IsLand(centerLat, centerLon) {
				continue
			}
			tile := s.buildTile(float64(i)*tileSize, float64(j)*tileSize, tileSize)
			tile.Region = s.regionFor(centerLat, centerLon)
			dst = append(dst, tile)
		}
	}
	return dst
}

func (s *GridService) buildTile(lat, lon, tileSize float64) domain.LandTile {
	return domain.LandTile{
		ID:     domain.GenerateTileID(lat, lon, tileSize),
		Lat:    lat,
		Lon:    lon,
		LatEnd: lat + tileSize,
		LonEnd: lon + tileSize,
	}
}

func (s *GridService) regionFor(lat, lon float64) string {
	region := s.mask.RegionFor(lat, lon)
	if region == "" {
		return "Unknown"
	}
	return region
}

// gridRange returns the half-open step-index range [min, max) covering
// [lo, hi] on the tileSize grid.
func gridRange(lo, hi, tileSize float64) (int, int) {
	min := int(math.Floor(lo/tileSize + 1e-9))
	max := int(math.Ceil(hi/tileSize - 1e-9))
	if max < min {
		max = min
	}
	return min, max
}

func sizeLabel(tileSize float64) string {
	return fmt.Sprintf("%g", tileSize)
}
