package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/etxarri/terragrid/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	tileType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Tile",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.String},
			"lat":     &graphql.Field{Type: graphql.Float},
			"lon":     &graphql.Field{Type: graphql.Float},
			"lat_end": &graphql.Field{Type: graphql.Float},
			"lon_end": &graphql.Field{Type: graphql.Float},
			"region":  &graphql.Field{Type: graphql.String},
		},
	})

	tileSetType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TileSet",
		Fields: graphql.Fields{
			"tiles":     &graphql.Field{Type: graphql.NewList(tileType)},
			"count":     &graphql.Field{Type: graphql.Int},
			"truncated": &graphql.Field{Type: graphql.Boolean},
		},
	})

	cellSetType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CellSet",
		Fields: graphql.Fields{
			"cells": &graphql.Field{Type: graphql.NewList(graphql.String)},
			"level": &graphql.Field{Type: graphql.Int},
			"count": &graphql.Field{Type: graphql.Int},
		},
	})

	regionCountType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RegionCount",
		Fields: graphql.Fields{
			"region": &graphql.Field{Type: graphql.String},
			"count":  &graphql.Field{Type: graphql.Int},
		},
	})

	gridStatsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GridStats",
		Fields: graphql.Fields{
			"tile_size":        &graphql.Field{Type: graphql.Float},
			"total_land_tiles": &graphql.Field{Type: graphql.Int},
			"total_cells":      &graphql.Field{Type: graphql.Int},
			"land_fraction":    &graphql.Field{Type: graphql.Float},
			"approx_edge_km":   &graphql.Field{Type: graphql.Float},
			"regions":          &graphql.Field{Type: graphql.NewList(regionCountType)},
		},
	})

	renderModeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RenderModeEntry",
		Fields: graphql.Fields{
			"entity_type": &graphql.Field{Type: graphql.String},
			"mode":        &graphql.Field{Type: graphql.String},
		},
	})

	lodStateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LODState",
		Fields: graphql.Fields{
			"level":           &graphql.Field{Type: graphql.Int},
			"zoom":            &graphql.Field{Type: graphql.Float},
			"max_entities":    &graphql.Field{Type: graphql.Int},
			"refresh_seconds": &graphql.Field{Type: graphql.Float},
			"render_modes":    &graphql.Field{Type: graphql.NewList(renderModeType)},
		},
	})

	boundsArgs := graphql.FieldConfigArgument{
		"north": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"south": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"east":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"west":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
	}

	argBounds := func(p graphql.ResolveParams) domain.Bounds {
		return domain.Bounds{
			North: p.Args["north"].(float64),
			South: p.Args["south"].(float64),
			East:  p.Args["east"].(float64),
			West:  p.Args["west"].(float64),
		}
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"cellsInViewport": &graphql.Field{
				Type:        cellSetType,
				Description: "Indexing cells covering a viewport at the level derived from zoom",
				Args: mergeArgs(boundsArgs, graphql.FieldConfigArgument{
					"zoom": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 10.0},
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					zoom := p.Args["zoom"].(float64)
					cells, level, err := deps.Cells.CellsInViewport(p.Context, argBounds(p), zoom)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"cells": cells,
						"level": level,
						"count": len(cells),
					}, nil
				},
			},
			"tilesInViewport": &graphql.Field{
				Type:        tileSetType,
				Description: "Land tiles intersecting a viewport, capped at maxTiles",
				Args: mergeArgs(boundsArgs, graphql.FieldConfigArgument{
					"tileSize": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.5},
					"maxTiles": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					tileSize := p.Args["tileSize"].(float64)
					maxTiles := p.Args["maxTiles"].(int)
					if deps.MaxTiles > 0 && (maxTiles <= 0 || maxTiles > deps.MaxTiles) {
						maxTiles = deps.MaxTiles
					}
					tiles, truncated, err := deps.Grid.TilesInViewport(p.Context, argBounds(p), tileSize, maxTiles)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"tiles":     tiles,
						"count":     len(tiles),
						"truncated": truncated,
					}, nil
				},
			},
			"tile": &graphql.Field{
				Type:        tileType,
				Description: "Resolve a tile ID; null when the cell is open ocean",
				Args: graphql.FieldConfigArgument{
					"id":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"tileSize": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.5},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					tileSize := p.Args["tileSize"].(float64)
					tile, err := deps.Grid.TileByID(p.Context, id, tileSize)
					if err != nil {
						return nil, err
					}
					if tile == nil {
						return nil, nil
					}
					return tile, nil
				},
			},
			"gridStats": &graphql.Field{
				Type:        gridStatsType,
				Description: "Land coverage statistics for one resolution",
				Args: graphql.FieldConfigArgument{
					"tileSize": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 1.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					tileSize := p.Args["tileSize"].(float64)
					stats, err := deps.Grid.GridStats(p.Context, tileSize)
					if err != nil {
						return nil, err
					}
					var regions []map[string]interface{}
					for name, n := range stats.Regions {
						regions = append(regions, map[string]interface{}{"region": name, "count": n})
					}
					return map[string]interface{}{
						"tile_size":        stats.TileSize,
						"total_land_tiles": stats.TotalLandTiles,
						"total_cells":      stats.TotalCells,
						"land_fraction":    stats.LandFraction,
						"approx_edge_km":   stats.ApproxEdgeKm,
						"regions":          regions,
					}, nil
				},
			},
			"lodState": &graphql.Field{
				Type:        lodStateType,
				Description: "Current level-of-detail state",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					deps.LODMu.Lock()
					state := deps.LOD.State()
					deps.LODMu.Unlock()

					var modes []map[string]interface{}
					for et, mode := range state.RenderModes {
						modes = append(modes, map[string]interface{}{
							"entity_type": string(et),
							"mode":        string(mode),
						})
					}
					return map[string]interface{}{
						"level":           state.Level,
						"zoom":            state.Zoom,
						"max_entities":    state.MaxEntities,
						"refresh_seconds": state.RefreshInterval.Seconds(),
						"render_modes":    modes,
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func mergeArgs(base, extra graphql.FieldConfigArgument) graphql.FieldConfigArgument {
	out := graphql.FieldConfigArgument{}
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
