// Simulation ties the world, its population and the event system together and
// runs them each day.
package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/talgya/worldevents/internal/agents"
	"github.com/talgya/worldevents/internal/events"
	"github.com/talgya/worldevents/internal/world"
)

// MaxHistory bounds the in-memory event history.
const MaxHistory = 1000

// Simulation holds the complete world state and wires systems together.
type Simulation struct {
	World   *world.World
	Agents  []*agents.Agent
	Events  *events.System
	History []events.Event // Recent events, oldest first, at most MaxHistory

	// Statistics tracked per day.
	Stats SimStats

	mu sync.RWMutex // held for writing while a day runs
}

// SimStats tracks aggregate world statistics.
type SimStats struct {
	Alive          int            `json:"alive"`
	Dead           int            `json:"dead"`
	EventsToday    int            `json:"events_today"`
	FollowUpsToday int            `json:"follow_ups_today"`
	TotalEvents    int            `json:"total_events"`
	Friendships    int            `json:"friendships"` // Directed friend ties among the living
	AvgIntensity   float64        `json:"avg_intensity"`
	Moods          map[string]int `json:"moods"`
}

// NewSimulation creates a Simulation from generated or restored components.
func NewSimulation(w *world.World, ag []*agents.Agent, sys *events.System) *Simulation {
	sim := &Simulation{
		World:  w,
		Agents: ag,
		Events: sys,
	}
	sim.updateStats(nil)
	return sim
}

// TickDay runs one simulated day: event generation, emotional decay, the
// daily report, then the calendar and resource drift. It returns the day's
// events for persistence.
func (s *Simulation) TickDay() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := s.World.Day
	todays := s.Events.GenerateDaily(s.World, s.Agents)

	for _, e := range todays {
		slog.Info("event",
			"day", e.Day,
			"type", e.Type,
			"name", e.Name,
			"location", e.Location,
			"description", e.Description,
			"importance", fmt.Sprintf("%.2f", e.Importance),
		)
	}

	for _, a := range s.Agents {
		if a.Alive {
			agents.DecayEmotion(a)
		}
	}

	s.History = append(s.History, todays...)
	if len(s.History) > MaxHistory {
		s.History = s.History[len(s.History)-MaxHistory:]
	}
	s.updateStats(todays)

	slog.Info("daily report",
		"day", day,
		"time", SimDate(day),
		"alive", s.Stats.Alive,
		"events", s.Stats.EventsToday,
		"follow_ups", s.Stats.FollowUpsToday,
		"friendships", s.Stats.Friendships,
		"avg_intensity", fmt.Sprintf("%.3f", s.Stats.AvgIntensity),
		"food", fmt.Sprintf("%.3f", s.World.Resource("food")),
		"water", fmt.Sprintf("%.3f", s.World.Resource("water")),
		"shelter", fmt.Sprintf("%.3f", s.World.Resource("shelter")),
	)

	s.World.AdvanceDay()
	return todays
}

// TickWeek logs a summary of the past week's events.
func (s *Simulation) TickWeek() events.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := events.Summarize(s.History, DaysPerWeek)

	top := make([]string, 0, len(sum.MostActiveAgents))
	for _, a := range sum.MostActiveAgents {
		top = append(top, fmt.Sprintf("%s(%d)", a.Name, a.Events))
	}
	slog.Info("weekly summary",
		"day", s.World.Day,
		"time", SimDate(s.World.Day),
		"events", sum.TotalEvents,
		"by_type", sum.EventTypes,
		"most_active", top,
	)
	return sum
}

// TickSeason logs the season change and current resource levels.
func (s *Simulation) TickSeason() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slog.Info("season change",
		"day", s.World.Day,
		"season", s.World.Season,
		"year", s.World.Year(),
		"resources", s.World.Resources,
	)
}

// Read runs fn with the simulation held still. Observers outside the engine
// goroutine must read state through it.
func (s *Simulation) Read(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

func (s *Simulation) updateStats(todays []events.Event) {
	alive := 0
	dead := 0
	friends := 0
	totalIntensity := 0.0
	moods := make(map[string]int)

	for _, a := range s.Agents {
		if !a.Alive {
			dead++
			continue
		}
		alive++
		totalIntensity += a.EmotionIntensity
		moods[a.Emotion]++
		for _, tier := range a.Relationships {
			if tier == agents.TierFriend {
				friends++
			}
		}
	}

	followUps := 0
	for _, e := range todays {
		if e.Type == events.TypeFollowUp {
			followUps++
		}
	}

	s.Stats.Alive = alive
	s.Stats.Dead = dead
	s.Stats.EventsToday = len(todays)
	s.Stats.FollowUpsToday = followUps
	s.Stats.TotalEvents += len(todays)
	s.Stats.Friendships = friends
	s.Stats.Moods = moods
	s.Stats.AvgIntensity = 0
	if alive > 0 {
		s.Stats.AvgIntensity = totalIntensity / float64(alive)
	}
}
