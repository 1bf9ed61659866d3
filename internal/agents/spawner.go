// Agent spawning: creates the initial population with names, traits,
// personality and starting locations.
package agents

import (
	"fmt"
	"math/rand"
)

// Spawner creates agents for the simulation.
type Spawner struct {
	rng   *rand.Rand
	taken map[string]bool
}

// NewSpawner creates an agent spawner with the given seed.
func NewSpawner(seed int64) *Spawner {
	return &Spawner{
		rng:   rand.New(rand.NewSource(seed + 300)),
		taken: make(map[string]bool),
	}
}

// Reserve marks existing names as taken (used when restoring from DB).
func (s *Spawner) Reserve(existing []*Agent) {
	for _, a := range existing {
		s.taken[a.Name] = true
	}
}

// SpawnPopulation creates count agents spread across the given locations.
func (s *Spawner) SpawnPopulation(count int, locations []string) []*Agent {
	agents := make([]*Agent, 0, count)
	for i := 0; i < count; i++ {
		agents = append(agents, s.spawnOne(locations))
	}
	return agents
}

func (s *Spawner) spawnOne(locations []string) *Agent {
	location := "village_center"
	if len(locations) > 0 {
		location = locations[s.rng.Intn(len(locations))]
	}

	return &Agent{
		Name:             s.generateName(),
		Age:              s.weightedAge(),
		Alive:            true,
		Traits:           s.pickTraits(),
		Personality:      s.generatePersonality(),
		Relationships:    make(map[string]RelationshipTier),
		Location:         location,
		Emotion:          NeutralEmotion,
		EmotionIntensity: 0.5,
	}
}

func (s *Spawner) weightedAge() int {
	// Bell curve centered around 30, range 16–75.
	age := 30.0 + s.rng.NormFloat64()*12.0
	if age < 16 {
		age = 16
	}
	if age > 75 {
		age = 75
	}
	return int(age)
}

// pickTraits draws two or three distinct traits.
func (s *Spawner) pickTraits() []string {
	n := 2 + s.rng.Intn(2)
	perm := s.rng.Perm(len(traitPool))
	traits := make([]string, 0, n)
	for _, idx := range perm[:n] {
		traits = append(traits, traitPool[idx])
	}
	return traits
}

func (s *Spawner) generatePersonality() Personality {
	axis := func() float64 {
		return clamp(0.5+s.rng.NormFloat64()*0.2, 0, 1)
	}
	return Personality{
		Openness:          axis(),
		Conscientiousness: axis(),
		Extraversion:      axis(),
		Agreeableness:     axis(),
		Neuroticism:       axis(),
	}
}

func (s *Spawner) generateName() string {
	firsts := maleNames
	if s.rng.Float32() < 0.5 {
		firsts = femaleNames
	}
	first := firsts[s.rng.Intn(len(firsts))]
	last := lastNames[s.rng.Intn(len(lastNames))]

	// Names are identities for relationships, so they must be unique.
	name := first + " " + last
	for n := 2; s.taken[name]; n++ {
		name = fmt.Sprintf("%s %s %d", first, last, n)
	}
	s.taken[name] = true
	return name
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Trait pool. Event conditions look for several of these by name.
var traitPool = []string{
	"adventurous", "curious", "empathetic", "wise", "ambitious",
	"leader", "charismatic", "romantic", "passionate", "creative",
	"kind", "brave", "cautious", "analytical", "loyal",
}

// Name pools for procedural generation.
var maleNames = []string{
	"Aldric", "Bram", "Cedric", "Doran", "Erik", "Finn", "Gareth",
	"Halvard", "Ivan", "Jasper", "Kael", "Leif", "Magnus", "Nils",
	"Oswin", "Per", "Quinn", "Rowan", "Stellan", "Theron", "Ulric",
}

var femaleNames = []string{
	"Astrid", "Brenna", "Calla", "Daria", "Elara", "Freya", "Greta",
	"Helene", "Iris", "Juno", "Kira", "Lena", "Mira", "Nessa",
	"Olwen", "Petra", "Runa", "Senna", "Thea", "Una", "Vera",
}

var lastNames = []string{
	"Voss", "Thornwood", "Blackwood", "Ashford", "Ironhand", "Dunmore",
	"Greenvale", "Stormcrow", "Frostborn", "Hearthstone", "Millward",
	"Copperfield", "Ravenmoor", "Silverdale", "Wolfsbane", "Stoneheart",
}
