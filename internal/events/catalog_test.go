package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	require.Equal(t, 10, c.Len())

	keys := make([]string, 0, c.Len())
	for _, tmpl := range c.Templates() {
		keys = append(keys, tmpl.Key)
		assert.GreaterOrEqual(t, tmpl.Probability, 0.0, tmpl.Key)
		assert.LessOrEqual(t, tmpl.Probability, 1.0, tmpl.Key)
		assert.GreaterOrEqual(t, tmpl.CooldownDays, 0, tmpl.Key)
		assert.NotEmpty(t, tmpl.FollowUps, tmpl.Key)
	}
	assert.Equal(t, []string{
		"great_storm", "abundant_harvest",
		"love_triangle", "mentor_student",
		"ancient_artifact", "new_location",
		"resource_crisis", "disease_outbreak",
		"storytelling_tradition",
		"leadership_challenge",
	}, keys)

	harvest, ok := c.Lookup("abundant_harvest")
	require.True(t, ok)
	assert.Equal(t, "Abundant Harvest", harvest.Name)
	assert.Equal(t, 365, harvest.CooldownDays)
	assert.Equal(t, 0.06, harvest.Probability)

	_, ok = c.Lookup("dragon_attack")
	assert.False(t, ok)
}

func TestNewCatalog_Rejects(t *testing.T) {
	cases := []struct {
		name      string
		templates []Template
		err       error
	}{
		{
			name:      "duplicate key",
			templates: []Template{{Key: "a", Name: "A"}, {Key: "a", Name: "B"}},
			err:       ErrDuplicateTemplate,
		},
		{
			name:      "duplicate name",
			templates: []Template{{Key: "a", Name: "A"}, {Key: "b", Name: "A"}},
			err:       ErrDuplicateTemplate,
		},
		{
			name:      "probability above one",
			templates: []Template{{Key: "a", Name: "A", Probability: 1.5}},
			err:       ErrInvalidTemplate,
		},
		{
			name:      "negative probability",
			templates: []Template{{Key: "a", Name: "A", Probability: -0.1}},
			err:       ErrInvalidTemplate,
		},
		{
			name:      "negative cooldown",
			templates: []Template{{Key: "a", Name: "A", CooldownDays: -1}},
			err:       ErrInvalidTemplate,
		},
		{
			name:      "missing name",
			templates: []Template{{Key: "a"}},
			err:       ErrInvalidTemplate,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCatalog(tc.templates...)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestMustCatalog_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustCatalog(Template{Key: "a", Name: "A"}, Template{Key: "a", Name: "A"})
	})
}

func TestTemplatePlaceholders(t *testing.T) {
	tmpl := lookup("love_triangle")
	assert.Equal(t, []string{"{agent1}", "{agent2}", "{agent3}"}, tmpl.Placeholders())

	tmpl = lookup("resource_crisis")
	assert.Empty(t, tmpl.Placeholders())
}

func TestDefaultCatalog_PairTemplatesHaveNoHeadcountGate(t *testing.T) {
	c := DefaultCatalog()

	mentor, ok := c.Lookup("mentor_student")
	require.True(t, ok)
	assert.Equal(t, Conditions{"age_gap": 15, "skill_difference": 0.3}, mentor.Conditions)

	challenge, ok := c.Lookup("leadership_challenge")
	require.True(t, ok)
	assert.Equal(t, Conditions{"has_leader": true, "has_ambitious_agents": true}, challenge.Conditions)
}

func TestCatalog_CopiesDoNotAlias(t *testing.T) {
	c := DefaultCatalog()

	storm, ok := c.Lookup("great_storm")
	require.True(t, ok)
	storm.Probability = 1
	storm.FollowUps[0] = "dragon_attack"
	storm.Conditions["season"].([]string)[0] = "summer"
	storm.Effects["world_resources"].(map[string]float64)["water"] = 99
	delete(storm.Effects, "agent_emotions")

	for _, tmpl := range c.Templates() {
		tmpl.CooldownDays = -1
	}

	again, _ := c.Lookup("great_storm")
	assert.Equal(t, 0.08, again.Probability)
	assert.Equal(t, []string{"community_rebuilding", "resource_scarcity"}, again.FollowUps)
	assert.Equal(t, []string{"autumn", "winter"}, again.Conditions["season"])
	assert.Equal(t, map[string]float64{"water": 0.3, "shelter": -0.2}, again.Effects["world_resources"])
	assert.Contains(t, again.Effects, "agent_emotions")
	for _, tmpl := range c.Templates() {
		assert.GreaterOrEqual(t, tmpl.CooldownDays, 0, tmpl.Key)
	}
}
