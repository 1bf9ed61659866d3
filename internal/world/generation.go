// World generation and daily environmental drift.
// Resource levels are seeded from simplex noise and drift with the seasons.
package world

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Seed      int64   // Random seed (0 = random)
	StartDay  int     // Absolute day the world starts on
	Variation float64 // Max deviation of starting resources from baseline
	Jitter    float64 // Max daily random drift per resource
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:      0,
		StartDay:  0,
		Variation: 0.1,
		Jitter:    0.01,
	}
}

// Baseline resources and locations of a fresh village.
var (
	baselineResources = map[string]float64{
		"food":      1.0,
		"water":     1.0,
		"shelter":   1.0,
		"knowledge": 0.5,
	}

	baselineLocations = map[string]string{
		"village_center": "The heart of the community where people gather",
		"forest":         "A mysterious woodland area rich with resources",
		"river":          "A flowing source of water and life",
		"mountains":      "Tall peaks that offer perspective and challenge",
		"fields":         "Open areas for farming and contemplation",
	}
)

// seasonalDrift is the per-day resource change for each season.
var seasonalDrift = map[Season]map[string]float64{
	SeasonSpring: {"food": 0.02, "water": 0.01},
	SeasonSummer: {"food": 0.03, "water": -0.01},
	SeasonAutumn: {"food": 0.01, "water": 0.0},
	SeasonWinter: {"food": -0.02, "water": -0.01},
}

// resourceOrder fixes the noise row used for each resource.
var resourceOrder = []string{"food", "water", "shelter", "knowledge"}

// noiseField samples smooth pseudo-random drift from simplex noise.
type noiseField struct {
	noise  opensimplex.Noise
	jitter float64
}

// sample returns a value in [-jitter, +jitter] for a resource row and day.
func (f *noiseField) sample(row int, day int) float64 {
	n := octaveNoise(f.noise, float64(day)*0.15, float64(row)*7.3, 3, 1.0, 0.5)
	return (n*2 - 1) * f.jitter
}

// Generate creates a world with the baseline locations and noise-varied resources.
func Generate(cfg GenConfig) *World {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	w := New(cfg.StartDay)
	for name, desc := range baselineLocations {
		w.Locations[name] = desc
	}

	startNoise := opensimplex.NewNormalized(seed)
	for i, name := range resourceOrder {
		n := octaveNoise(startNoise, float64(i)*3.1, 0.5, 2, 1.0, 0.5)
		w.Resources[name] = ClampResource(baselineResources[name] + (n*2-1)*cfg.Variation)
	}

	w.AttachNoise(seed, cfg.Jitter)
	return w
}

// AttachNoise enables daily jitter for a world (needed after loading from storage).
func (w *World) AttachNoise(seed int64, jitter float64) {
	if jitter <= 0 {
		w.noise = nil
		return
	}
	w.noise = &noiseField{
		noise:  opensimplex.NewNormalized(seed + 1),
		jitter: jitter,
	}
}

// AdvanceDay moves the world to the next day: season recompute, seasonal
// resource drift and noise jitter, all clamped.
func (w *World) AdvanceDay() {
	w.Day++
	w.Season = SeasonForDay(w.Day)

	drift := seasonalDrift[w.Season]
	for i, name := range resourceOrder {
		if _, ok := w.Resources[name]; !ok {
			continue
		}
		delta := drift[name]
		if w.noise != nil {
			delta += w.noise.sample(i, w.Day)
		}
		w.AdjustResource(name, delta)
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
// Normalized noise input yields output in [0, 1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
