// Package agents provides the agent data model the event engine reads and
// mutates: traits, personality, relationship tiers, location and emotion.
package agents

// RelationshipTier is how well one agent knows another.
type RelationshipTier string

const (
	TierStranger     RelationshipTier = "stranger"
	TierAcquaintance RelationshipTier = "acquaintance"
	TierFriend       RelationshipTier = "friend"
)

// Rank orders tiers so upgrades can be checked for monotonicity.
func (t RelationshipTier) Rank() int {
	switch t {
	case TierAcquaintance:
		return 1
	case TierFriend:
		return 2
	default:
		return 0
	}
}

// Personality holds the five personality axes, each 0.0–1.0.
type Personality struct {
	Openness          float64 `json:"openness"`
	Conscientiousness float64 `json:"conscientiousness"`
	Extraversion      float64 `json:"extraversion"`
	Agreeableness     float64 `json:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism"`
}

// NeutralEmotion is the resting emotional state.
const NeutralEmotion = "neutral"

// Agent is a person in the simulated society.
type Agent struct {
	Name  string `json:"name"` // Unique within a population
	Age   int    `json:"age"`
	Alive bool   `json:"alive"`

	Traits      []string    `json:"traits"`
	Personality Personality `json:"personality"`

	// Social: peer name → tier. Missing entries are strangers.
	Relationships map[string]RelationshipTier `json:"relationships"`

	Location string `json:"location"`

	Emotion          string  `json:"emotion"`
	EmotionIntensity float64 `json:"emotion_intensity"` // 0.0–1.0
}

// HasTrait reports whether the agent carries any of the given traits.
func (a *Agent) HasTrait(traits ...string) bool {
	for _, have := range a.Traits {
		for _, want := range traits {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Relationship returns the tier toward a peer.
func (a *Agent) Relationship(peer string) RelationshipTier {
	if tier, ok := a.Relationships[peer]; ok {
		return tier
	}
	return TierStranger
}

// SetRelationship records the tier toward a peer.
func (a *Agent) SetRelationship(peer string, tier RelationshipTier) {
	if a.Relationships == nil {
		a.Relationships = make(map[string]RelationshipTier)
	}
	a.Relationships[peer] = tier
}

// Living returns the alive agents, preserving order.
func Living(population []*Agent) []*Agent {
	alive := make([]*Agent, 0, len(population))
	for _, a := range population {
		if a != nil && a.Alive {
			alive = append(alive, a)
		}
	}
	return alive
}

// Index maps agent names to agents.
func Index(population []*Agent) map[string]*Agent {
	index := make(map[string]*Agent, len(population))
	for _, a := range population {
		if a != nil {
			index[a.Name] = a
		}
	}
	return index
}
