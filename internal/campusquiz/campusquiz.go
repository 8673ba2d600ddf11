// Package campusquiz defines the fixed question set and map view for the quiz.
// It depends only on geo; everything here is compiled in.
package campusquiz

import (
	"errors"
	"fmt"

	"github.com/playperu/campusquiz/internal/geo"
)

// Location is one question: a building name and the region that counts as a
// correct answer.
type Location struct {
	Name   string          `json:"name"`
	Bounds geo.BoundingBox `json:"bounds"`
}

// MapView is the initial satellite view handed to the browser.
type MapView struct {
	Center  geo.Point `json:"center"`
	Zoom    int       `json:"zoom"`
	MinZoom int       `json:"minZoom"`
	MaxZoom int       `json:"maxZoom"`
}

// Locations is the ordered question sequence. Some boxes were surveyed with
// their edges swapped; geo.Normalize accounts for that.
var Locations = []Location{
	{
		Name:   "Great Dome",
		Bounds: geo.BoundingBox{North: 42.3600, South: 42.3592, East: -71.0915, West: -71.0930},
	},
	{
		Name:   "Stata Center",
		Bounds: geo.BoundingBox{North: 42.3610, South: 42.3625, East: -71.0895, West: -71.0915},
	},
	{
		Name:   "Kresge Auditorium",
		Bounds: geo.BoundingBox{North: 42.3586, South: 42.3577, East: -71.0940, West: -71.0953},
	},
	{
		Name:   "Baker House",
		Bounds: geo.BoundingBox{North: 42.3572, South: 42.3563, East: -71.1004, West: -71.0982},
	},
	{
		Name:   "Green Building",
		Bounds: geo.BoundingBox{North: 42.3608, South: 42.3599, East: -71.0886, West: -71.0897},
	},
}

// View is the default map view centred on the main campus.
var View = MapView{
	Center:  geo.Point{Lat: 42.3595, Lng: -71.0935},
	Zoom:    17,
	MinZoom: 15,
	MaxZoom: 19,
}

var ErrNoLocations = errors.New("no locations configured")

// Validate checks a question set at startup. An empty name is reserved to
// signal "no more questions" to presenters.
func Validate(locs []Location) error {
	if len(locs) == 0 {
		return ErrNoLocations
	}
	seen := make(map[string]bool, len(locs))
	for i, l := range locs {
		if l.Name == "" {
			return fmt.Errorf("location %d: name is required", i)
		}
		if seen[l.Name] {
			return fmt.Errorf("location %d: duplicate name %q", i, l.Name)
		}
		seen[l.Name] = true
	}
	return nil
}
