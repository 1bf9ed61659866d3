// Package world holds the shared world state the event engine reads and mutates:
// calendar, season, community resources and named locations.
package world

import (
	"fmt"
	"sort"
)

// Season is one quarter of the simulated year.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
)

// Calendar constants.
const (
	DaysPerSeason = 90
	DaysPerYear   = DaysPerSeason * 4
)

// Resource bounds. Every resource level stays within [MinResource, MaxResource].
const (
	MinResource = 0.0
	MaxResource = 2.0
)

// DefaultLocation is where events happen when nothing more specific applies.
const DefaultLocation = "village_center"

// World is the mutable world snapshot shared by all daily systems.
type World struct {
	Day       int                `json:"day"`
	Season    Season             `json:"season"`
	Resources map[string]float64 `json:"resources"`
	Locations map[string]string  `json:"locations"` // name → description

	noise *noiseField // seasonal jitter; nil disables it
}

// New creates a world on the given day with the season derived from it.
func New(day int) *World {
	return &World{
		Day:       day,
		Season:    SeasonForDay(day),
		Resources: make(map[string]float64),
		Locations: make(map[string]string),
	}
}

// SeasonForDay returns the season for an absolute day number.
func SeasonForDay(day int) Season {
	d := day % DaysPerYear
	if d < 0 {
		d += DaysPerYear
	}
	switch {
	case d < DaysPerSeason:
		return SeasonSpring
	case d < DaysPerSeason*2:
		return SeasonSummer
	case d < DaysPerSeason*3:
		return SeasonAutumn
	default:
		return SeasonWinter
	}
}

// Year returns the 1-based simulated year.
func (w *World) Year() int {
	return w.Day/DaysPerYear + 1
}

// DayOfSeason returns the 1-based day within the current season.
func (w *World) DayOfSeason() int {
	return w.Day%DaysPerSeason + 1
}

// Resource returns the level of a named resource. Missing resources read as 0.
func (w *World) Resource(name string) float64 {
	return w.Resources[name]
}

// AdjustResource adds delta to a resource and clamps the result.
func (w *World) AdjustResource(name string, delta float64) float64 {
	if w.Resources == nil {
		w.Resources = make(map[string]float64)
	}
	v := ClampResource(w.Resources[name] + delta)
	w.Resources[name] = v
	return v
}

// ClampResource bounds a level to [MinResource, MaxResource].
func ClampResource(v float64) float64 {
	if v < MinResource {
		return MinResource
	}
	if v > MaxResource {
		return MaxResource
	}
	return v
}

// LocationNames returns location names in sorted order so random draws over
// them are reproducible.
func (w *World) LocationNames() []string {
	names := make([]string, 0, len(w.Locations))
	for name := range w.Locations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns a summary of the world.
func (w *World) String() string {
	return fmt.Sprintf("World(day=%d, season=%s, locations=%d)", w.Day, w.Season, len(w.Locations))
}
