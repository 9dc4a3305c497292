package domain

import "time"

// SupportedTileSizes is the allowlist of land-grid resolutions in degrees.
var SupportedTileSizes = []float64{0.1, 0.25, 0.5, 1.0, 2.0}

// IsSupportedTileSize reports whether size is on the allowlist.
func IsSupportedTileSize(size float64) bool {
	for _, s := range SupportedTileSizes {
		if s == size {
			return true
		}
	}
	return false
}

// LandTile is a fixed-size degree-grid cell that intersects land.
// (Lat, Lon) is the tile's southwest corner; LatEnd/LonEnd the opposite one.
// Tiles that fall entirely in open ocean are never emitted.
type LandTile struct {
	ID     string  `json:"id"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	LatEnd float64 `json:"lat_end"`
	LonEnd float64 `json:"lon_end"`
	Region string  `json:"region"`
}

// Bounds returns the tile's bounding box.
func (t LandTile) Bounds() Bounds {
	return Bounds{North: t.LatEnd, South: t.Lat, West: t.Lon, East: t.LonEnd}
}

// Center returns the tile's representative point, used for land-mask
// and region lookups.
func (t LandTile) Center() GeoPoint {
	return GeoPoint{Lat: (t.Lat + t.LatEnd) / 2, Lon: (t.Lon + t.LonEnd) / 2}
}

// GridStats summarises the land grid at one resolution.
type GridStats struct {
	TileSize       float64        `json:"tile_size"`
	TotalLandTiles int            `json:"total_land_tiles"`
	TotalCells     int            `json:"total_cells"`
	LandFraction   float64        `json:"land_fraction"`
	ApproxEdgeKm   float64        `json:"approx_edge_km"`
	Regions        map[string]int `json:"regions"`
}

// GridSnapshot is a persisted generation run of the land grid.
type GridSnapshot struct {
	ID        string    `json:"id"`
	TileSize  float64   `json:"tile_size"`
	TileCount int       `json:"tile_count"`
	CreatedAt time.Time `json:"created_at"`
}

// EntityType names a class of map entities whose rendering the LOD
// controller governs.
type EntityType string

const (
	EntityObservation EntityType = "observation"
	EntityDevice      EntityType = "device"
	EntityGridCell    EntityType = "gridcell"
)

// RenderMode is the rendering-density decision for one entity type.
type RenderMode string

const (
	RenderIndividual RenderMode = "individual" // one marker per entity
	RenderClustered  RenderMode = "clustered"  // radius-based clusters
	RenderAggregated RenderMode = "aggregated" // coarse aggregates only
)

// LODState is the full level-of-detail state published on every viewport
// update. Subscribers receive the whole record, never diffs.
type LODState struct {
	Level           int                       `json:"level"`
	Zoom            float64                   `json:"zoom"`
	Bounds          Bounds                    `json:"bounds"`
	RenderModes     map[EntityType]RenderMode `json:"render_modes"`
	MaxEntities     int                       `json:"max_entities"`
	RefreshInterval time.Duration             `json:"refresh_interval"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}
