package usecases

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/etxarri/terragrid/internal/core/domain"
)

// TilesToGeoJSON converts land tiles to a standard FeatureCollection: one
// closed Polygon per tile with the tile's id and region as properties.
// Mapping layers consume this shape directly.
func TilesToGeoJSON(tiles []domain.LandTile) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, t := range tiles {
		ring := orb.Ring{
			{t.Lon, t.Lat},
			{t.LonEnd, t.Lat},
			{t.LonEnd, t.LatEnd},
			{t.Lon, t.LatEnd},
			{t.Lon, t.Lat},
		}
		f := geojson.NewFeature(orb.Polygon{ring})
		f.ID = t.ID
		f.Properties["id"] = t.ID
		f.Properties["region"] = t.Region
		fc.Append(f)
	}
	return fc
}
