// Event instantiation: turns a triggered template into a concrete event by
// binding participants, a location and free-text names into its description.
package events

import (
	"strings"

	"github.com/talgya/worldevents/internal/agents"
	"github.com/talgya/worldevents/internal/world"
)

// Participant slots in resolution order. Each tier binds one distinct agent
// to every token of that tier.
var participantTiers = [][]string{
	{"{agent1}", "{discoverer}", "{challenger}", "{elder}"}, // primary
	{"{agent2}", "{student}", "{leader}"},                   // secondary
	{"{agent3}"},                                            // tertiary
}

const (
	locationToken    = "{location}"
	newLocationToken = "{new_location_name}"
)

// newLocationNames is the pool for freshly discovered places. Draws are with
// replacement, so the same name may be discovered twice.
var newLocationNames = []string{
	"Crystal Caves", "Whispering Grove", "Golden Plains",
	"Misty Peaks", "Sacred Springs", "Shadow Valley",
}

// preferredTraits biases participant selection for some event types.
var preferredTraits = map[EventType][]string{
	TypeDiscovery: {"adventurous", "curious"},
	TypePolitical: {"ambitious"},
}

// KnownPlaceholder reports whether the instantiator can resolve a token.
func KnownPlaceholder(token string) bool {
	if token == locationToken || token == newLocationToken {
		return true
	}
	for _, tier := range participantTiers {
		for _, slot := range tier {
			if slot == token {
				return true
			}
		}
	}
	return false
}

// Instantiate resolves a template into an event. It returns nil when nobody is
// alive or when a participant slot cannot be filled by a distinct agent.
func (s *System) Instantiate(t *Template, w *world.World, population []*agents.Agent) *Event {
	return s.instantiate(t, w, agents.Living(population))
}

func (s *System) instantiate(t *Template, w *world.World, alive []*agents.Agent) *Event {
	if len(alive) == 0 {
		return nil
	}

	ev := &Event{
		Type:         t.Type,
		Name:         t.Name,
		Day:          w.Day,
		Participants: []string{},
		Location:     world.DefaultLocation,
		Importance:   0.5,
	}

	desc := t.Description
	var primary *agents.Agent
	for _, tier := range participantTiers {
		if !containsAny(desc, tier) {
			continue
		}
		a := s.pickParticipant(t.Type, alive, ev.Participants)
		if a == nil {
			return nil
		}
		ev.Participants = append(ev.Participants, a.Name)
		if primary == nil {
			primary = a
		}
		for _, slot := range tier {
			desc = strings.ReplaceAll(desc, slot, a.Name)
		}
	}
	if primary != nil && primary.Location != "" {
		ev.Location = primary.Location
	}

	if strings.Contains(desc, locationToken) {
		if names := w.LocationNames(); len(names) > 0 {
			ev.Location = names[s.rng.Intn(len(names))]
		}
		desc = strings.ReplaceAll(desc, locationToken, ev.Location)
	}

	if strings.Contains(desc, newLocationToken) {
		name := newLocationNames[s.rng.Intn(len(newLocationNames))]
		desc = strings.ReplaceAll(desc, newLocationToken, name)
	}

	ev.Description = desc
	ev.Importance = importance(t.Type, len(ev.Participants), len(alive))
	return ev
}

// pickParticipant draws uniformly among alive agents not yet in the event,
// preferring the event type's favored traits when anyone has them.
func (s *System) pickParticipant(typ EventType, alive []*agents.Agent, taken []string) *agents.Agent {
	remaining := make([]*agents.Agent, 0, len(alive))
	for _, a := range alive {
		if !contains(taken, a.Name) {
			remaining = append(remaining, a)
		}
	}
	if len(remaining) == 0 {
		return nil
	}

	pool := remaining
	if traits := preferredTraits[typ]; len(traits) > 0 {
		var preferred []*agents.Agent
		for _, a := range remaining {
			if a.HasTrait(traits...) {
				preferred = append(preferred, a)
			}
		}
		if len(preferred) > 0 {
			pool = preferred
		}
	}
	return pool[s.rng.Intn(len(pool))]
}

// importance scores an event: crises matter more, so do events involving at
// least half the population, and discoveries or cultural shifts.
func importance(typ EventType, participants, population int) float64 {
	v := 0.5
	if typ == TypeCrisis {
		v += 0.3
	}
	if population > 0 && float64(participants) >= float64(population)*0.5 {
		v += 0.2
	}
	if typ == TypeDiscovery || typ == TypeCultural {
		v += 0.1
	}
	return clamp01(v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func containsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
