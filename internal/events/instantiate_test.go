package events

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstantiate_NoAliveAgents(t *testing.T) {
	sys := NewSystem(DefaultCatalog(), alwaysFire())
	pop := newTestPopulation(3)
	for _, a := range pop {
		a.Alive = false
	}
	tmpl := lookup("great_storm")

	assert.Nil(t, sys.Instantiate(&tmpl, newTestWorld(200), pop))
	assert.Nil(t, sys.Instantiate(&tmpl, newTestWorld(200), nil))
}

func TestInstantiate_DistinctParticipantsInSlotOrder(t *testing.T) {
	// Intn draws: primary picks index 1 of 4, secondary index 0 of the
	// remaining 3, tertiary index 1 of the remaining 2.
	sys := NewSystem(DefaultCatalog(), &stubSource{ints: []int{1, 0, 1}})
	pop := newTestPopulation(4)
	pop[1].Location = "river"
	tmpl := lookup("love_triangle")

	ev := sys.Instantiate(&tmpl, newTestWorld(5), pop)
	require.NotNil(t, ev)

	assert.Equal(t, []string{"agent2", "agent1", "agent4"}, ev.Participants)
	assert.Equal(t, "agent2 and agent1 both pursue agent4, creating tension", ev.Description)
	assert.Equal(t, TypeSocial, ev.Type)
	assert.Equal(t, "Love Triangle", ev.Name)
	assert.Equal(t, 5, ev.Day)
	assert.Empty(t, ev.ParentEvent)
	// No {location} token: the primary participant's location is inherited.
	assert.Equal(t, "river", ev.Location)
}

func TestInstantiate_SkipsDeadAgents(t *testing.T) {
	sys := NewSystem(DefaultCatalog(), alwaysFire())
	pop := newTestPopulation(4)
	pop[0].Alive = false
	pop[1].Alive = false
	tmpl := lookup("mentor_student")

	ev := sys.Instantiate(&tmpl, newTestWorld(0), pop)
	require.NotNil(t, ev)
	assert.ElementsMatch(t, []string{"agent3", "agent4"}, ev.Participants)
}

func TestInstantiate_UnfillableSlotSkips(t *testing.T) {
	sys := NewSystem(DefaultCatalog(), alwaysFire())
	tmpl := lookup("mentor_student")

	assert.Nil(t, sys.Instantiate(&tmpl, newTestWorld(0), newTestPopulation(1)))
}

func TestInstantiate_DiscoveryPrefersExplorers(t *testing.T) {
	pop := newTestPopulation(5, "cautious")
	pop[3].Traits = []string{"curious"}
	pop[3].Location = "mountains"
	tmpl := lookup("new_location")

	for i := 0; i < 5; i++ {
		sys := NewSystem(DefaultCatalog(), &stubSource{ints: []int{i}})
		ev := sys.Instantiate(&tmpl, newTestWorld(0), pop)
		require.NotNil(t, ev)
		// new_location has no actor token, so nobody is bound.
		assert.Empty(t, ev.Participants)
	}

	artifact := lookup("ancient_artifact")
	for i := 0; i < 5; i++ {
		sys := NewSystem(DefaultCatalog(), &stubSource{ints: []int{i, 0}})
		ev := sys.Instantiate(&artifact, newTestWorld(0), pop)
		require.NotNil(t, ev)
		assert.Equal(t, []string{"agent4"}, ev.Participants)
	}
}

func TestInstantiate_PoliticalFallsBackToAnyone(t *testing.T) {
	pop := newTestPopulation(3, "kind")
	tmpl := lookup("leadership_challenge")

	sys := NewSystem(DefaultCatalog(), &stubSource{ints: []int{2, 0}})
	ev := sys.Instantiate(&tmpl, newTestWorld(0), pop)
	require.NotNil(t, ev)
	assert.Equal(t, []string{"agent3", "agent1"}, ev.Participants)
	assert.Equal(t, "agent3 questions agent1's authority", ev.Description)
}

func TestInstantiate_PoliticalPrefersAmbitious(t *testing.T) {
	pop := newTestPopulation(4, "kind")
	pop[2].Traits = []string{"ambitious"}
	tmpl := lookup("leadership_challenge")

	sys := NewSystem(DefaultCatalog(), &stubSource{ints: []int{3, 1}})
	ev := sys.Instantiate(&tmpl, newTestWorld(0), pop)
	require.NotNil(t, ev)
	// The only ambitious agent challenges; the leader slot falls back to the rest.
	assert.Equal(t, []string{"agent3", "agent2"}, ev.Participants)
}

func TestInstantiate_LocationSampledFromWorld(t *testing.T) {
	pop := newTestPopulation(2, "curious")
	tmpl := lookup("ancient_artifact")

	// Sorted locations: fields, forest, mountains, river, village_center.
	sys := NewSystem(DefaultCatalog(), &stubSource{ints: []int{0, 2}})
	ev := sys.Instantiate(&tmpl, newTestWorld(0), pop)
	require.NotNil(t, ev)

	assert.Equal(t, "mountains", ev.Location)
	assert.Equal(t, "agent1 finds a mysterious artifact while exploring mountains", ev.Description)
}

func TestInstantiate_LocationWithoutWorldLocations(t *testing.T) {
	w := newTestWorld(200)
	w.Locations = map[string]string{}
	tmpl := lookup("great_storm")

	sys := NewSystem(DefaultCatalog(), alwaysFire())
	ev := sys.Instantiate(&tmpl, w, newTestPopulation(2))
	require.NotNil(t, ev)
	assert.Equal(t, "village_center", ev.Location)
	assert.NotContains(t, ev.Description, "{")
}

func TestInstantiate_NewLocationNameFromPool(t *testing.T) {
	tmpl := lookup("new_location")
	sys := NewSystem(DefaultCatalog(), &stubSource{ints: []int{4}})

	ev := sys.Instantiate(&tmpl, newTestWorld(0), newTestPopulation(6, "curious"))
	require.NotNil(t, ev)
	assert.Equal(t, "Explorers discover a new area: Sacred Springs", ev.Description)
	assert.Equal(t, "village_center", ev.Location)
}

func TestInstantiate_CrisisMajorityImportance(t *testing.T) {
	crisis := Template{
		Key:         "fever",
		Type:        TypeCrisis,
		Name:        "Fever",
		Description: "{agent1} and {agent2} fall ill",
	}
	sys := NewSystem(MustCatalog(crisis), alwaysFire())

	ev := sys.Instantiate(&crisis, newTestWorld(0), newTestPopulation(4))
	require.NotNil(t, ev)
	require.Len(t, ev.Participants, 2)
	// 0.5 base + 0.3 crisis + 0.2 for half the population (tie counts).
	assert.InDelta(t, 1.0, ev.Importance, 1e-9)
}

func TestImportance(t *testing.T) {
	cases := []struct {
		typ          EventType
		participants int
		population   int
		want         float64
	}{
		{TypeNatural, 0, 5, 0.5},
		{TypeCrisis, 0, 5, 0.8},
		{TypeCrisis, 3, 5, 1.0},
		{TypeCrisis, 2, 4, 1.0},
		{TypeSocial, 3, 4, 0.7},
		{TypeSocial, 1, 4, 0.5},
		{TypeDiscovery, 1, 5, 0.6},
		{TypeDiscovery, 1, 2, 0.8},
		{TypeCultural, 0, 3, 0.6},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, importance(tc.typ, tc.participants, tc.population), 1e-9,
			"%s %d/%d", tc.typ, tc.participants, tc.population)
	}
}

func TestDefaultCatalog_AllPlaceholdersResolve(t *testing.T) {
	pop := newTestPopulation(6, "curious", "ambitious")
	for _, tmpl := range DefaultCatalog().Templates() {
		for _, tok := range tmpl.Placeholders() {
			assert.True(t, KnownPlaceholder(tok), "%s: unknown placeholder %s", tmpl.Key, tok)
		}

		sys := NewSystem(DefaultCatalog(), alwaysFire())
		ev := sys.Instantiate(tmpl, newTestWorld(200), pop)
		require.NotNil(t, ev, tmpl.Key)
		assert.False(t, strings.ContainsAny(ev.Description, "{}"), "%s: %s", tmpl.Key, ev.Description)

		alive := aliveNames(pop)
		for _, p := range ev.Participants {
			assert.True(t, alive[p], "%s: unknown participant %s", tmpl.Key, p)
		}
	}
}
