package events

import (
	"fmt"

	"github.com/talgya/worldevents/internal/agents"
	"github.com/talgya/worldevents/internal/world"
)

// stubSource replays scripted draws. Once a queue runs dry Float64 returns
// fallback and Intn returns 0.
type stubSource struct {
	floats   []float64
	ints     []int
	fallback float64
}

func (s *stubSource) Float64() float64 {
	if len(s.floats) > 0 {
		v := s.floats[0]
		s.floats = s.floats[1:]
		return v
	}
	return s.fallback
}

func (s *stubSource) Intn(n int) int {
	if len(s.ints) > 0 {
		v := s.ints[0]
		s.ints = s.ints[1:]
		return v % n
	}
	return 0
}

// alwaysFire fires every eligible template and every cascade roll.
func alwaysFire() *stubSource { return &stubSource{fallback: 0} }

// neverFire fails every probability roll.
func neverFire() *stubSource { return &stubSource{fallback: 0.999} }

func newTestWorld(day int) *world.World {
	w := world.New(day)
	w.Resources["food"] = 1.0
	w.Resources["water"] = 1.0
	w.Resources["shelter"] = 1.0
	w.Resources["knowledge"] = 0.5
	w.Locations["village_center"] = "The heart of the community"
	w.Locations["forest"] = "Woodland"
	w.Locations["river"] = "Water"
	w.Locations["mountains"] = "Peaks"
	w.Locations["fields"] = "Farmland"
	return w
}

// newTestPopulation creates n alive agents named agent1..agentN in the fields.
func newTestPopulation(n int, traits ...string) []*agents.Agent {
	pop := make([]*agents.Agent, 0, n)
	for i := 1; i <= n; i++ {
		pop = append(pop, &agents.Agent{
			Name:             fmt.Sprintf("agent%d", i),
			Age:              30,
			Alive:            true,
			Traits:           append([]string(nil), traits...),
			Relationships:    make(map[string]agents.RelationshipTier),
			Location:         "fields",
			Emotion:          agents.NeutralEmotion,
			EmotionIntensity: 0.5,
		})
	}
	return pop
}

func lookup(key string) Template {
	t, ok := DefaultCatalog().Lookup(key)
	if !ok {
		panic("missing template " + key)
	}
	return *t
}

func aliveNames(pop []*agents.Agent) map[string]bool {
	names := make(map[string]bool)
	for _, a := range agents.Living(pop) {
		names[a.Name] = true
	}
	return names
}
