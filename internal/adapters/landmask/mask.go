// Package landmask implements ports.LandMask with a built-in coarse
// approximation of the continents: one hand-digitized outline polygon per
// region, tested by horizontal ray casting. Resolution is deliberately
// crude — the grid only needs "does this cell plausibly touch land", not a
// coastline. Everything is in memory; lookups never touch I/O.
package landmask

// Mask is a static, deterministic land mask. The zero value is not usable;
// construct with New.
type Mask struct {
	regions []region
}

type region struct {
	name    string
	outline []point // (lon, lat) vertices, implicitly closed
}

type point struct {
	lon, lat float64
}

// New returns the built-in continent mask.
func New() *Mask {
	return &Mask{regions: continents}
}

// IsLand reports whether (lat, lon) falls inside any continent outline.
// Antarctica is modelled as everything south of -63°.
func (m *Mask) IsLand(lat, lon float64) bool {
	if lat <= antarcticaLat {
		return true
	}
	for i := range m.regions {
		if contains(m.regions[i].outline, lon, lat) {
			return true
		}
	}
	return false
}

// RegionFor returns the coarse region label for a point, or "Unknown" for
// open ocean and unmapped islands. Labels are informational only.
func (m *Mask) RegionFor(lat, lon float64) string {
	if lat <= antarcticaLat {
		return "Antarctica"
	}
	for i := range m.regions {
		if contains(m.regions[i].outline, lon, lat) {
			return m.regions[i].name
		}
	}
	return "Unknown"
}

const antarcticaLat = -63.0

// contains runs the even-odd ray-casting test against one outline.
func contains(outline []point, lon, lat float64) bool {
	inside := false
	n := len(outline)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := outline[i], outline[j]
		if (a.lat > lat) == (b.lat > lat) {
			continue
		}
		crossLon := a.lon + (lat-a.lat)/(b.lat-a.lat)*(b.lon-a.lon)
		if lon < crossLon {
			inside = !inside
		}
	}
	return inside
}

// Coarse continent outlines. Vertices trace the landmass loosely; small
// islands and fjords are intentionally absorbed or dropped.
var continents = []region{
	{
		name: "North America",
		outline: []point{
			{-168, 66}, {-155, 71}, {-130, 70}, {-110, 73}, {-90, 73},
			{-70, 62}, {-55, 52}, {-65, 44}, {-76, 35}, {-81, 31},
			{-80, 25}, {-90, 29}, {-97, 26}, {-94, 17}, {-83, 8},
			{-92, 14}, {-105, 20}, {-117, 33}, {-124, 41}, {-128, 50},
			{-150, 59}, {-165, 54},
		},
	},
	{
		name: "South America",
		outline: []point{
			{-80, 9}, {-60, 10}, {-50, 2}, {-35, -7}, {-39, -20},
			{-54, -35}, {-63, -50}, {-70, -54}, {-72, -40}, {-71, -18},
			{-78, -3},
		},
	},
	{
		name: "Europe",
		outline: []point{
			{-10, 36}, {-10, 44}, {-5, 49}, {-6, 59}, {5, 62},
			{12, 66}, {25, 71}, {32, 70}, {45, 66}, {55, 60},
			{55, 50}, {48, 46}, {40, 44}, {28, 41}, {22, 38},
			{15, 38}, {5, 36},
		},
	},
	{
		name: "Africa",
		outline: []point{
			{-17, 14}, {-17, 21}, {-6, 35}, {10, 37}, {20, 32},
			{32, 31}, {35, 27}, {43, 11}, {51, 12}, {43, -4},
			{40, -15}, {30, -33}, {18, -35}, {12, -17}, {8, 4},
			{-8, 4},
		},
	},
	{
		name: "Asia",
		outline: []point{
			{26, 36}, {35, 30}, {48, 13}, {57, 25}, {67, 24},
			{77, 6}, {88, 22}, {97, 6}, {107, 12}, {122, 22},
			{122, 40}, {135, 34}, {142, 48}, {160, 60}, {180, 65},
			{180, 71}, {140, 73}, {100, 77}, {70, 73}, {60, 69},
			{48, 62}, {48, 50}, {36, 44}, {27, 41},
		},
	},
	{
		name: "Oceania",
		outline: []point{
			{113, -22}, {114, -35}, {130, -32}, {137, -36}, {146, -39},
			{151, -34}, {153, -25}, {142, -10}, {135, -12}, {125, -14},
		},
	},
}
