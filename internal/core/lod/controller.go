// Package lod decides, per zoom/viewport, how map entities are rendered:
// individually, as radius clusters, or as coarse aggregates.
package lod

import (
	"time"

	"github.com/etxarri/terragrid/internal/core/domain"
	"github.com/etxarri/terragrid/internal/pkg/metrics"
)

// Levels run from coarsest (whole-globe) to finest (street scale).
const (
	MinDetailLevel = 1
	MaxDetailLevel = 5
)

// Subscriber receives the full LODState on every viewport update,
// synchronously, before UpdateViewport returns. No diffs are delivered.
type Subscriber func(state domain.LODState)

// Controller holds the current zoom/viewport and derives render decisions
// from it. One instance per logical viewport; it is deliberately not
// thread-safe — it targets a single UI event loop, and concurrent callers
// must serialize UpdateViewport themselves. There is no cancellation:
// every update runs to completion and rapid repeats are last-write-wins.
type Controller struct {
	state       domain.LODState
	subscribers map[int]Subscriber
	nextSubID   int
}

// NewController creates a controller with whole-globe defaults at zoom 0.
func NewController() *Controller {
	c := &Controller{subscribers: make(map[int]Subscriber)}
	c.state = deriveState(0, domain.GlobalBounds())
	return c
}

// UpdateViewport recomputes the full LOD state from the new zoom and bounds
// and notifies every subscriber before returning the new state. RenderModes,
// MaxEntities and RefreshInterval are derived here and nowhere else.
func (c *Controller) UpdateViewport(zoom float64, bounds domain.Bounds) domain.LODState {
	c.state = deriveState(zoom, bounds)
	metrics.LODUpdates.Inc()
	for _, sub := range c.subscribers {
		sub(c.state)
	}
	return c.state
}

// State returns the current LOD state.
func (c *Controller) State() domain.LODState {
	return c.state
}

// RenderMode returns the current render decision for one entity type.
func (c *Controller) RenderMode(entityType domain.EntityType) domain.RenderMode {
	if mode, ok := c.state.RenderModes[entityType]; ok {
		return mode
	}
	return domain.RenderAggregated
}

// ShouldAggregate reports whether count entities of this type must be
// aggregated: either the current mode is already aggregated, or the count
// exceeds the per-viewport entity budget.
func (c *Controller) ShouldAggregate(entityType domain.EntityType, count int) bool {
	if c.RenderMode(entityType) == domain.RenderAggregated {
		return true
	}
	return count > c.state.MaxEntities
}

// ClusterRadius returns the clustering radius in pixels for an entity type
// at the current level. Individual rendering clusters nothing.
func (c *Controller) ClusterRadius(entityType domain.EntityType) float64 {
	switch c.RenderMode(entityType) {
	case domain.RenderIndividual:
		return 0
	case domain.RenderClustered:
		return clusterRadiusPx(c.state.Level, entityType)
	default:
		return clusterRadiusPx(MinDetailLevel, entityType)
	}
}

// Subscribe registers a callback for future state changes and returns its
// unsubscribe function. Unsubscribing twice, or after the controller is
// discarded, is safe.
func (c *Controller) Subscribe(sub Subscriber) func() {
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = sub
	return func() {
		delete(c.subscribers, id)
	}
}

// LevelFromZoom maps zoom to a detail level in [1, 5]. Monotonic and
// saturating, like the cell indexer's mapping, but with its own thresholds:
// this level governs rendering density, not indexing resolution.
func LevelFromZoom(zoom float64) int {
	switch {
	case zoom < 4:
		return 1
	case zoom < 7:
		return 2
	case zoom < 11:
		return 3
	case zoom < 15:
		return 4
	default:
		return MaxDetailLevel
	}
}

func deriveState(zoom float64, bounds domain.Bounds) domain.LODState {
	level := LevelFromZoom(zoom)
	return domain.LODState{
		Level:           level,
		Zoom:            zoom,
		Bounds:          bounds,
		RenderModes:     renderModes(level),
		MaxEntities:     maxEntities(level),
		RefreshInterval: refreshInterval(level),
		UpdatedAt:       time.Now(),
	}
}

func renderModes(level int) map[domain.EntityType]domain.RenderMode {
	modes := make(map[domain.EntityType]domain.RenderMode, 3)
	for _, et := range []domain.EntityType{domain.EntityObservation, domain.EntityDevice, domain.EntityGridCell} {
		modes[et] = renderMode(level, et)
	}
	return modes
}

func renderMode(level int, entityType domain.EntityType) domain.RenderMode {
	// Grid cells stay aggregated one level longer than point entities:
	// a half-zoomed-out grid reads better as region summaries.
	threshold := 2
	if entityType == domain.EntityGridCell {
		threshold = 3
	}
	switch {
	case level <= threshold:
		return domain.RenderAggregated
	case level < MaxDetailLevel:
		return domain.RenderClustered
	default:
		return domain.RenderIndividual
	}
}

// maxEntities bounds individually-rendered items before aggregation is
// forced regardless of mode.
func maxEntities(level int) int {
	switch level {
	case 1:
		return 100
	case 2:
		return 250
	case 3:
		return 500
	case 4:
		return 1000
	default:
		return 2000
	}
}

// refreshInterval is the poll cadence pushed to consumers: coarse views
// refresh slowly to keep backend load down.
func refreshInterval(level int) time.Duration {
	switch level {
	case 1:
		return 120 * time.Second
	case 2:
		return 60 * time.Second
	case 3:
		return 30 * time.Second
	default:
		return 15 * time.Second
	}
}

func clusterRadiusPx(level int, entityType domain.EntityType) float64 {
	base := 80.0
	if entityType == domain.EntityDevice {
		base = 60.0
	}
	// Finer levels cluster tighter.
	return base / float64(level)
}
