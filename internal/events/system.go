package events

import (
	"fmt"
	"log/slog"

	"github.com/talgya/worldevents/internal/agents"
	"github.com/talgya/worldevents/internal/entropy"
	"github.com/talgya/worldevents/internal/world"
)

// System owns the event engine state for one world: catalog, predicate and
// effect registries, cooldown table, recent-event window and random source.
// It is not safe for concurrent use; run one System per world.
type System struct {
	catalog *Catalog
	rng     entropy.Source

	predicates       map[string]Predicate
	prefixPredicates map[string]PrefixPredicate
	effects          map[string]Effect

	cooldowns *CooldownTable
	window    *Window
}

// NewSystem creates an engine over a catalog. Every stochastic choice draws
// from rng, so a seeded source makes days reproducible.
func NewSystem(catalog *Catalog, rng entropy.Source) *System {
	return &System{
		catalog:          catalog,
		rng:              rng,
		predicates:       defaultPredicates(),
		prefixPredicates: defaultPrefixPredicates(),
		effects:          defaultEffects(),
		cooldowns:        NewCooldownTable(),
		window:           NewWindow(DefaultWindowSize),
	}
}

// RegisterPredicate adds or replaces a named condition for this System only.
func (s *System) RegisterPredicate(key string, p Predicate) {
	s.predicates[key] = p
}

// RegisterEffect adds or replaces a named effect for this System only.
func (s *System) RegisterEffect(key string, e Effect) {
	s.effects[key] = e
}

// Catalog returns the template catalog.
func (s *System) Catalog() *Catalog { return s.catalog }

// Cooldowns returns the cooldown table.
func (s *System) Cooldowns() *CooldownTable { return s.cooldowns }

// Window returns the recent-event window.
func (s *System) Window() *Window { return s.window }

// GenerateDaily runs one simulated day: each template in catalog order is
// evaluated, rolled, instantiated, applied and recorded; then cascades are
// rolled over the recent window. Primary events come first, follow-ups after.
// A fault in one template is logged and does not stop the pass.
func (s *System) GenerateDaily(w *world.World, population []*agents.Agent) []Event {
	var out []Event
	for _, t := range s.catalog.templates {
		ev, err := s.fire(t, w, population)
		if err != nil {
			slog.Error("event template failed", "template", t.Key, "day", w.Day, "error", err)
			continue
		}
		if ev != nil {
			out = append(out, *ev)
		}
	}

	followUps := s.FollowUps(w)
	for _, f := range followUps {
		slog.Debug("aftermath", "day", f.Day, "name", f.Name, "parent", f.ParentEvent)
	}
	return append(out, followUps...)
}

// fire processes a single template for the day. Panics raised by predicates
// or effects are converted into an error for that template alone.
func (s *System) fire(t *Template, w *world.World, population []*agents.Agent) (ev *Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			ev = nil
			err = fmt.Errorf("template %s: %v", t.Key, r)
		}
	}()

	env := &Env{World: w, Alive: agents.Living(population)}
	if !s.evaluate(t, env) {
		return nil, nil
	}
	if s.rng.Float64() > t.Probability {
		return nil, nil
	}

	ev = s.instantiate(t, w, env.Alive)
	if ev == nil {
		return nil, nil
	}

	s.Apply(ev, t, w, population)
	s.cooldowns.RecordFired(t.Name, w.Day)
	s.window.Push(WindowEntry{Template: t.Key, Day: w.Day, Event: ev.clone()})

	slog.Debug("event fired",
		"day", w.Day,
		"name", ev.Name,
		"participants", len(ev.Participants),
		"importance", ev.Importance,
	)
	return ev, nil
}

func (e Event) clone() Event {
	e.Participants = append([]string(nil), e.Participants...)
	return e
}
