package domain

import "math"

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds is a geographic bounding box in degrees. North must be greater
// than South. West greater than East is not an error: it marks a box that
// wraps through the antimeridian (±180°) and every consumer must handle it.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// CrossesAntimeridian reports whether the box wraps through ±180° longitude.
func (b Bounds) CrossesAntimeridian() bool {
	return b.West > b.East
}

// IsDegenerate reports whether the box has no latitude extent.
// Degenerate boxes yield empty result sets, not errors.
func (b Bounds) IsDegenerate() bool {
	return b.North <= b.South
}

// Validate checks that the box describes a usable region of the globe.
// An antimeridian-crossing box passes; a degenerate one does not.
func (b Bounds) Validate() error {
	if b.North < -90 || b.North > 90 || b.South < -90 || b.South > 90 {
		return ErrInvalidBounds
	}
	if b.East < -180 || b.East > 180 || b.West < -180 || b.West > 180 {
		return ErrInvalidBounds
	}
	if b.IsDegenerate() {
		return ErrDegenerateBounds
	}
	return nil
}

// SplitAtAntimeridian returns the box unchanged when it does not wrap,
// otherwise the two sub-boxes [west, 180] and [-180, east].
func (b Bounds) SplitAtAntimeridian() []Bounds {
	if !b.CrossesAntimeridian() {
		return []Bounds{b}
	}
	return []Bounds{
		{North: b.North, South: b.South, West: b.West, East: 180},
		{North: b.North, South: b.South, West: -180, East: b.East},
	}
}

// Contains reports whether a point lies inside the box, taking
// antimeridian wrapping into account.
func (b Bounds) Contains(lat, lon float64) bool {
	if lat > b.North || lat < b.South {
		return false
	}
	if b.CrossesAntimeridian() {
		return lon >= b.West || lon <= b.East
	}
	return lon >= b.West && lon <= b.East
}

// Center returns the midpoint of the box. For a wrapping box the
// longitude midpoint is taken along the short way across ±180°.
func (b Bounds) Center() GeoPoint {
	lat := (b.North + b.South) / 2
	if !b.CrossesAntimeridian() {
		return GeoPoint{Lat: lat, Lon: (b.West + b.East) / 2}
	}
	span := (180 - b.West) + (b.East + 180)
	lon := b.West + span/2
	if lon > 180 {
		lon -= 360
	}
	return GeoPoint{Lat: lat, Lon: lon}
}

// GlobalBounds covers the whole globe.
func GlobalBounds() Bounds {
	return Bounds{North: 90, South: -90, East: 180, West: -180}
}

// TileCoord addresses a slippy tile: at zoom z there are 2^z columns and rows.
type TileCoord struct {
	Zoom int `json:"zoom"`
	X    int `json:"x"`
	Y    int `json:"y"`
}

// ClampLat clamps a latitude into [-90, 90]. Inputs beyond the poles are
// indistinguishable from the clamp bound.
func ClampLat(lat float64) float64 {
	return math.Max(-90, math.Min(90, lat))
}
