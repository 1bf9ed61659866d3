package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/worldevents/internal/agents"
	"github.com/talgya/worldevents/internal/entropy"
	"github.com/talgya/worldevents/internal/events"
	"github.com/talgya/worldevents/internal/world"
)

func TestEngine_StopsAtMaxDays(t *testing.T) {
	e := NewEngine()
	e.Interval = 0
	e.MaxDays = 14

	var days, weeks []uint64
	e.OnDay = func(d uint64) { days = append(days, d) }
	e.OnWeek = func(d uint64) { weeks = append(weeks, d) }

	require.NoError(t, e.Run(context.Background()))
	assert.Len(t, days, 14)
	assert.Equal(t, uint64(1), days[0])
	assert.Equal(t, []uint64{7, 14}, weeks)
	assert.Equal(t, uint64(14), e.Day)
}

func TestEngine_SeasonCallback(t *testing.T) {
	e := NewEngine()
	e.Interval = 0
	e.MaxDays = 180

	var seasons []uint64
	e.OnSeason = func(d uint64) { seasons = append(seasons, d) }

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, []uint64{90, 180}, seasons)
}

func TestEngine_ResumedFollowsWorldCalendar(t *testing.T) {
	e := NewEngine()
	e.Interval = 0
	e.Day = 45
	e.MaxDays = 100

	var weeks, seasons []uint64
	e.OnWeek = func(d uint64) { weeks = append(weeks, d) }
	e.OnSeason = func(d uint64) { seasons = append(seasons, d) }

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, uint64(145), e.Day)
	assert.Equal(t, []uint64{90}, seasons)
	require.NotEmpty(t, weeks)
	assert.Equal(t, uint64(49), weeks[0])
}

func TestEngine_ResumedSeasonMatchesWorld(t *testing.T) {
	w := world.New(45)
	sim := NewSimulation(w, nil, events.NewSystem(events.MustCatalog(), entropy.NewSeeded(1)))

	e := NewEngine()
	e.Interval = 0
	e.Day = uint64(w.Day)
	e.MaxDays = 100
	e.OnDay = func(uint64) { sim.TickDay() }

	var changes []int
	e.OnSeason = func(uint64) {
		changes = append(changes, sim.World.Day)
		assert.Equal(t, world.SeasonSummer, sim.World.Season)
	}

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, []int{90}, changes)
}

func TestEngine_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := NewEngine()
	e.Interval = 0
	e.OnDay = func(d uint64) {
		if d == 3 {
			cancel()
		}
	}

	err := e.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, uint64(3), e.Day)
}

func TestEngine_PausedDoesNotStep(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	e := NewEngine()
	e.Speed = 0
	e.OnDay = func(uint64) { t.Fatal("paused engine stepped") }

	err := e.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, e.Day)
}

func TestSimDate(t *testing.T) {
	assert.Equal(t, "Spring, 1st day of year 1", SimDate(0))
	assert.Equal(t, "Summer, 2nd day of year 1", SimDate(91))
	assert.Equal(t, "Autumn, 23rd day of year 1", SimDate(202))
	assert.Equal(t, "Spring, 3rd day of year 2", SimDate(362))
}

func newSim(t *testing.T, templates ...events.Template) *Simulation {
	t.Helper()
	w := world.New(100)
	w.Resources["food"] = 1.0
	w.Resources["water"] = 1.0
	w.Locations["village_center"] = "The heart of the community"

	pop := agents.NewSpawner(1).SpawnPopulation(6, w.LocationNames())
	sys := events.NewSystem(events.MustCatalog(templates...), entropy.NewSeeded(1))
	return NewSimulation(w, pop, sys)
}

func TestSimulation_TickDay(t *testing.T) {
	gathering := events.Template{
		Key:         "gathering",
		Type:        events.TypeSocial,
		Name:        "Gathering",
		Description: "{agent1} and {agent2} share a meal",
		Effects:     events.Effects{"agent_emotions": events.Emotion{Emotion: "content", Intensity: 0.6}},
		Probability: 1,
	}
	sim := newSim(t, gathering)
	require.Equal(t, 6, sim.Stats.Alive)

	out := sim.TickDay()
	require.Len(t, out, 1)
	assert.Equal(t, 100, out[0].Day)
	assert.Equal(t, 101, sim.World.Day)
	assert.Len(t, sim.History, 1)
	assert.Equal(t, 1, sim.Stats.EventsToday)
	assert.Equal(t, 1, sim.Stats.TotalEvents)

	// Participants felt the event and have already begun to calm down.
	idx := agents.Index(sim.Agents)
	for _, name := range out[0].Participants {
		assert.Equal(t, "content", idx[name].Emotion)
		assert.InDelta(t, 0.54, idx[name].EmotionIntensity, 1e-9)
	}
}

func TestSimulation_HistoryIsBounded(t *testing.T) {
	daily := events.Template{Key: "daily", Type: events.TypeCultural, Name: "Daily", Probability: 1}
	sim := newSim(t, daily)
	sim.History = make([]events.Event, MaxHistory)

	sim.TickDay()
	require.Len(t, sim.History, MaxHistory)
	assert.Equal(t, "Daily", sim.History[MaxHistory-1].Name)
}

func TestSimulation_TickWeek(t *testing.T) {
	sim := newSim(t)
	sim.History = []events.Event{
		{Type: events.TypeSocial, Name: "Old", Day: 80, Participants: []string{"x"}},
		{Type: events.TypeSocial, Name: "Recent", Day: 98, Participants: []string{"y"}},
		{Type: events.TypeNatural, Name: "Latest", Day: 99},
	}

	sum := sim.TickWeek()
	assert.Equal(t, 2, sum.TotalEvents)
	assert.Equal(t, []events.AgentActivity{{Name: "y", Events: 1}}, sum.MostActiveAgents)
}

func TestSimulation_StatsSkipDead(t *testing.T) {
	sim := newSim(t)
	sim.Agents[0].Alive = false
	sim.Agents[1].SetRelationship(sim.Agents[2].Name, agents.TierFriend)

	sim.TickDay()
	assert.Equal(t, 5, sim.Stats.Alive)
	assert.Equal(t, 1, sim.Stats.Dead)
	assert.Equal(t, 1, sim.Stats.Friendships)
}
