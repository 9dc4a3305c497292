package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/etxarri/terragrid/internal/core/domain"
	"github.com/etxarri/terragrid/internal/core/ports"
	"github.com/etxarri/terragrid/internal/pkg/cellindex"
	"github.com/etxarri/terragrid/internal/pkg/geospatial"
	"github.com/etxarri/terragrid/internal/pkg/metrics"
)

// CellService enumerates indexing cells for viewports. The enumeration
// itself is pure; this wrapper adds validation, sorted output for stable
// responses, and read-through caching.
type CellService struct {
	cache ports.CacheService
}

// NewCellService creates a new CellService.
func NewCellService(cache ports.CacheService) *CellService {
	return &CellService{cache: cache}
}

// CellsInViewport returns the sorted cell IDs intersecting bounds at the
// indexing level derived from zoom. A degenerate box yields an empty slice,
// not an error; bounds outside the globe are rejected.
func (s *CellService) CellsInViewport(ctx context.Context, bounds domain.Bounds, zoom float64) ([]string, int, error) {
	level := cellindex.LevelFromZoom(zoom)

	if err := bounds.Validate(); err != nil {
		if errors.Is(err, domain.ErrDegenerateBounds) {
			return []string{}, level, nil
		}
		return nil, 0, err
	}

	cacheKey := fmt.Sprintf("cells:vp:%.4f:%.4f:%.4f:%.4f:%d",
		bounds.North, bounds.South, bounds.East, bounds.West, level)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var cells []string
			if err := json.Unmarshal(data, &cells); err == nil {
				metrics.CacheHits.WithLabelValues("cells_viewport").Inc()
				return cells, level, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("cells_viewport").Inc()
	}

	set := cellindex.CellsInViewport(bounds, zoom)
	cells := make([]string, 0, len(set))
	for id := range set {
		cells = append(cells, id)
	}
	sort.Strings(cells)

	if s.cache != nil {
		if data, err := json.Marshal(cells); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}
	metrics.CellsEnumerated.Add(float64(len(cells)))
	return cells, level, nil
}

// CellsNear enumerates cells around a point: the viewport is the bounding
// box of radiusMeters around (lat, lon).
func (s *CellService) CellsNear(ctx context.Context, lat, lon, radiusMeters, zoom float64) ([]string, int, error) {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusMeters)
	bounds := domain.Bounds{
		North: domain.ClampLat(maxLat),
		South: domain.ClampLat(minLat),
		West:  geospatial.NormalizeLon(minLon),
		East:  geospatial.NormalizeLon(maxLon),
	}
	return s.CellsInViewport(ctx, bounds, zoom)
}
