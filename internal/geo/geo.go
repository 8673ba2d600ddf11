// Package geo holds the latitude/longitude rectangle math used to decide
// whether a guess lands on a building.
package geo

import "math"

// Point is a coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BoundingBox is an axis-aligned rectangle in degrees. Source data may have
// north/south or east/west swapped; call Normalize before relying on order.
type BoundingBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Normalize returns b with North >= South and East >= West.
func Normalize(b BoundingBox) BoundingBox {
	return BoundingBox{
		North: math.Max(b.North, b.South),
		South: math.Min(b.North, b.South),
		East:  math.Max(b.East, b.West),
		West:  math.Min(b.East, b.West),
	}
}

// Contains reports whether p lies inside b, edges included. Any NaN
// coordinate yields false.
func Contains(b BoundingBox, p Point) bool {
	n := Normalize(b)
	// NaN fails every comparison, so these checks also reject NaN input.
	return p.Lat >= n.South && p.Lat <= n.North &&
		p.Lng >= n.West && p.Lng <= n.East
}

// Center returns the midpoint of the normalized box.
func (b BoundingBox) Center() Point {
	n := Normalize(b)
	return Point{Lat: (n.North + n.South) / 2, Lng: (n.East + n.West) / 2}
}
