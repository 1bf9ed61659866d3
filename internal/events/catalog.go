package events

import (
	"errors"
	"fmt"
)

// Catalog errors.
var (
	ErrDuplicateTemplate = errors.New("duplicate template")
	ErrInvalidTemplate   = errors.New("invalid template")
)

// Catalog is the ordered, immutable set of event templates. Iteration order is
// declaration order so a fixed seed replays the same day.
type Catalog struct {
	templates []*Template
	byKey     map[string]*Template
}

// NewCatalog validates templates and builds a catalog.
// Keys and names must be unique; probability must lie in [0,1] and cooldown be non-negative.
func NewCatalog(templates ...Template) (*Catalog, error) {
	c := &Catalog{
		templates: make([]*Template, 0, len(templates)),
		byKey:     make(map[string]*Template, len(templates)),
	}
	names := make(map[string]bool, len(templates))

	for i := range templates {
		t := templates[i]
		if t.Key == "" || t.Name == "" {
			return nil, fmt.Errorf("%w: template %d needs a key and a name", ErrInvalidTemplate, i)
		}
		if t.Probability < 0 || t.Probability > 1 {
			return nil, fmt.Errorf("%w: %s probability %v outside [0,1]", ErrInvalidTemplate, t.Key, t.Probability)
		}
		if t.CooldownDays < 0 {
			return nil, fmt.Errorf("%w: %s negative cooldown", ErrInvalidTemplate, t.Key)
		}
		if _, ok := c.byKey[t.Key]; ok {
			return nil, fmt.Errorf("%w: key %s", ErrDuplicateTemplate, t.Key)
		}
		if names[t.Name] {
			return nil, fmt.Errorf("%w: name %s", ErrDuplicateTemplate, t.Name)
		}
		names[t.Name] = true

		c.templates = append(c.templates, &t)
		c.byKey[t.Key] = &t
	}
	return c, nil
}

// MustCatalog is NewCatalog for static template sets; it panics on invalid input.
func MustCatalog(templates ...Template) *Catalog {
	c, err := NewCatalog(templates...)
	if err != nil {
		panic(err)
	}
	return c
}

// Templates returns copies of the templates in catalog order. Changing them
// does not affect the catalog.
func (c *Catalog) Templates() []*Template {
	out := make([]*Template, len(c.templates))
	for i, t := range c.templates {
		out[i] = t.clone()
	}
	return out
}

// Lookup returns a copy of the template with the given key.
func (c *Catalog) Lookup(key string) (*Template, bool) {
	t, ok := c.byKey[key]
	if !ok {
		return nil, false
	}
	return t.clone(), true
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	return len(c.templates)
}

// DefaultCatalog returns the built-in library of world events.
func DefaultCatalog() *Catalog {
	return MustCatalog(defaultTemplates()...)
}

func defaultTemplates() []Template {
	return []Template{
		// Natural events
		{
			Key:         "great_storm",
			Type:        TypeNatural,
			Name:        "Great Storm",
			Description: "A powerful storm sweeps through {location}, affecting everyone",
			Conditions:  Conditions{"season": []string{"autumn", "winter"}, "min_agents": 2},
			Effects: Effects{
				"world_resources":    map[string]float64{"water": 0.3, "shelter": -0.2},
				"agent_emotions":     Emotion{Emotion: "concerned", Intensity: 0.7},
				"relationship_bonds": 0.1, // Shared hardship brings people together
			},
			FollowUps:    []string{"community_rebuilding", "resource_scarcity"},
			Probability:  0.08,
			CooldownDays: 90,
		},
		{
			Key:         "abundant_harvest",
			Type:        TypeNatural,
			Name:        "Abundant Harvest",
			Description: "The land provides an exceptional harvest in {location}",
			Conditions:  Conditions{"season": []string{"summer", "autumn"}, "world_resources.food": "> 0.8"},
			Effects: Effects{
				"world_resources":        map[string]float64{"food": 0.4},
				"agent_emotions":         Emotion{Emotion: "joyful", Intensity: 0.8},
				"community_satisfaction": 0.3,
			},
			FollowUps:    []string{"harvest_celebration", "population_growth"},
			Probability:  0.06,
			CooldownDays: 365,
		},

		// Social events
		{
			Key:         "love_triangle",
			Type:        TypeSocial,
			Name:        "Love Triangle",
			Description: "{agent1} and {agent2} both pursue {agent3}, creating tension",
			Conditions:  Conditions{"min_agents": 3, "has_romantic_relationships": true},
			Effects: Effects{
				"relationship_drama":       true,
				"faction_formation_chance": 0.2,
				"agent_emotions":           Emotion{Emotion: "conflicted", Intensity: 0.6},
			},
			FollowUps:    []string{"rivalry_formation", "community_division", "romantic_resolution"},
			Probability:  0.03,
			CooldownDays: 180,
		},
		{
			Key:         "mentor_student",
			Type:        TypeSocial,
			Name:        "Mentorship Forms",
			Description: "{elder} begins teaching {student} valuable skills",
			Conditions:  Conditions{"age_gap": 15, "skill_difference": 0.3},
			Effects: Effects{
				"skill_transfer":         true,
				"relationship_strength":  0.4,
				"knowledge_preservation": 0.2,
			},
			FollowUps:    []string{"knowledge_school", "tradition_formation"},
			Probability:  0.12,
			CooldownDays: 60,
		},

		// Discovery events
		{
			Key:         "ancient_artifact",
			Type:        TypeDiscovery,
			Name:        "Ancient Artifact",
			Description: "{discoverer} finds a mysterious artifact while exploring {location}",
			Conditions:  Conditions{"has_explorers": true, "location": []string{"forest", "mountains"}},
			Effects: Effects{
				"world_mystery":         1,
				"discoverer_reputation": 0.3,
				"knowledge_gain":        map[string]float64{"history": 0.2, "magic": 0.1},
			},
			FollowUps:    []string{"belief_formation", "scholar_rivalry", "artifact_study"},
			Probability:  0.04,
			CooldownDays: 120,
		},
		{
			Key:         "new_location",
			Type:        TypeDiscovery,
			Name:        "New Territory",
			Description: "Explorers discover a new area: {new_location_name}",
			Conditions:  Conditions{"has_explorers": true, "population": "> 5"},
			Effects: Effects{
				"world_expansion": true,
				"new_location":    true,
				"explorer_fame":   0.4,
			},
			FollowUps:    []string{"settlement_formation", "resource_competition", "territorial_conflict"},
			Probability:  0.03,
			CooldownDays: 200,
		},

		// Crisis events
		{
			Key:         "resource_crisis",
			Type:        TypeCrisis,
			Name:        "Resource Scarcity",
			Description: "Essential resources become scarce, testing the community",
			Conditions:  Conditions{"world_resources.food": "< 0.4", "population": "> 3"},
			Effects: Effects{
				"world_resources":  map[string]float64{"food": -0.2},
				"community_stress": 0.5,
				"cooperation_test": true,
			},
			FollowUps:    []string{"rationing_system", "resource_conflict", "innovation_drive"},
			Probability:  0.1,
			CooldownDays: 150,
		},
		{
			Key:         "disease_outbreak",
			Type:        TypeCrisis,
			Name:        "Disease Outbreak",
			Description: "A mysterious illness spreads among the community",
			Conditions:  Conditions{"population": "> 4", "has_healers": false},
			Effects: Effects{
				"health_crisis":       true,
				"agent_health":        -0.3,
				"isolation_behaviors": 0.4,
			},
			FollowUps:    []string{"healer_emergence", "quarantine_measures", "community_support"},
			Probability:  0.02,
			CooldownDays: 300,
		},

		// Cultural events
		{
			Key:         "storytelling_tradition",
			Type:        TypeCultural,
			Name:        "Storytelling Tradition",
			Description: "The community begins sharing stories and creating oral traditions",
			Conditions:  Conditions{"population": "> 3", "has_elders": true},
			Effects: Effects{
				"cultural_development": 0.3,
				"memory_preservation":  0.4,
				"community_bonding":    0.2,
			},
			FollowUps:    []string{"mythology_creation", "cultural_festival", "wisdom_keepers"},
			Probability:  0.07,
			CooldownDays: 180,
		},

		// Political events
		{
			Key:         "leadership_challenge",
			Type:        TypePolitical,
			Name:        "Leadership Challenge",
			Description: "{challenger} questions {leader}'s authority",
			Conditions:  Conditions{"has_leader": true, "has_ambitious_agents": true},
			Effects: Effects{
				"political_tension":     0.4,
				"faction_formation":     0.3,
				"leadership_instability": true,
			},
			FollowUps:    []string{"election_system", "political_exile", "power_struggle"},
			Probability:  0.05,
			CooldownDays: 120,
		},
	}
}
