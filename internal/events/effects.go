// Effect application: a registry of named effects that mutate world
// resources and agent state in place. There is no rollback.
package events

import (
	"sort"

	"github.com/talgya/worldevents/internal/agents"
	"github.com/talgya/worldevents/internal/world"
)

// EffectEnv is what an effect may mutate.
type EffectEnv struct {
	Event      *Event
	World      *world.World
	Population []*agents.Agent
	byName     map[string]*agents.Agent
}

// Agent looks up a member of the population by name.
func (e *EffectEnv) Agent(name string) (*agents.Agent, bool) {
	if e.byName == nil {
		e.byName = agents.Index(e.Population)
	}
	a, ok := e.byName[name]
	return a, ok
}

// Effect applies one declared payload.
type Effect func(env *EffectEnv, payload any)

// Bond thresholds for relationship upgrades.
const (
	acquaintanceBond = 0.0 // stranger → acquaintance above this
	friendBond       = 0.3 // acquaintance → friend above this
)

func defaultEffects() map[string]Effect {
	return map[string]Effect{
		"world_resources":    adjustResources,
		"agent_emotions":     broadcastEmotion,
		"relationship_bonds": strengthenBonds,
	}
}

// Apply runs the template's effects for a fired event. Unknown effect keys are
// ignored. Effects run in key order so replays mutate state identically.
func (s *System) Apply(ev *Event, t *Template, w *world.World, population []*agents.Agent) {
	keys := make([]string, 0, len(t.Effects))
	for key := range t.Effects {
		if _, ok := s.effects[key]; ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	env := &EffectEnv{Event: ev, World: w, Population: population}
	for _, key := range keys {
		s.effects[key](env, t.Effects[key])
	}
}

// adjustResources adds signed deltas to world resources, clamped to [0, 2].
func adjustResources(env *EffectEnv, payload any) {
	deltas, ok := payload.(map[string]float64)
	if !ok {
		return
	}
	for name, delta := range deltas {
		env.World.AdjustResource(name, delta)
	}
}

// broadcastEmotion sets the mood of the alive participants, or of every alive
// agent when the event names no one.
func broadcastEmotion(env *EffectEnv, payload any) {
	emo, ok := payload.(Emotion)
	if !ok {
		return
	}
	everyone := len(env.Event.Participants) == 0
	for _, a := range env.Population {
		if a == nil || !a.Alive {
			continue
		}
		if !everyone && !env.Event.HasParticipant(a.Name) {
			continue
		}
		if emo.Emotion != "" {
			a.Emotion = emo.Emotion
		}
		a.EmotionIntensity = clamp01(emo.Intensity)
	}
}

// strengthenBonds moves every participant pair one tier closer. Bonds never
// weaken through this path.
func strengthenBonds(env *EffectEnv, payload any) {
	delta, ok := toFloat(payload)
	if !ok || delta <= acquaintanceBond {
		return
	}
	names := env.Event.Participants
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			a, okA := env.Agent(names[i])
			b, okB := env.Agent(names[j])
			if !okA || !okB {
				continue
			}
			upgradeBond(a, b.Name, delta)
			upgradeBond(b, a.Name, delta)
		}
	}
}

func upgradeBond(a *agents.Agent, peer string, delta float64) {
	current := a.Relationship(peer)
	next := current
	switch current {
	case agents.TierStranger:
		if delta > acquaintanceBond {
			next = agents.TierAcquaintance
		}
	case agents.TierAcquaintance:
		if delta > friendBond {
			next = agents.TierFriend
		}
	}
	if next.Rank() > current.Rank() {
		a.SetRelationship(peer, next)
	}
}
