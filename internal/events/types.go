// Package events generates the daily emergent world events: templates gated by
// conditions, fired probabilistically, applied to the world and agents, and
// echoed by aftermath follow-ups over the following days.
package events

import "strings"

// EventType classifies templates and generated events.
type EventType string

const (
	TypeNatural       EventType = "natural"       // Weather, disasters, resource changes
	TypeSocial        EventType = "social"        // Conflicts, celebrations, meetings
	TypeDiscovery     EventType = "discovery"     // New knowledge, artifacts, places
	TypeCrisis        EventType = "crisis"        // Challenges requiring community response
	TypeCultural      EventType = "cultural"      // Festivals, traditions, beliefs
	TypePolitical     EventType = "political"     // Leadership changes, laws, alliances
	TypeEconomic      EventType = "economic"      // Trade, scarcity, prosperity
	TypeTechnological EventType = "technological" // Innovations, improvements

	// TypeFollowUp marks cascade-derived aftermath events.
	TypeFollowUp EventType = "follow_up"
)

// Conditions maps a predicate name to its constraint.
type Conditions map[string]any

// Effects maps an effect name to its payload.
type Effects map[string]any

// Emotion is the payload of the agent_emotions effect.
type Emotion struct {
	Emotion   string
	Intensity float64
}

// Template describes a possible event. Templates are built once and never mutated.
type Template struct {
	Key          string // Catalog key, e.g. "great_storm"
	Type         EventType
	Name         string // Unique display name, e.g. "Great Storm"
	Description  string // Text with {placeholder} tokens
	Conditions   Conditions
	Effects      Effects
	FollowUps    []string // Candidate aftermath keys, in order
	Probability  float64  // Per-day chance once eligible, 0.0–1.0
	CooldownDays int      // Min days before the template can fire again
}

func (t *Template) clone() *Template {
	c := *t
	c.Conditions = Conditions(cloneMap(t.Conditions))
	c.Effects = Effects(cloneMap(t.Effects))
	c.FollowUps = append([]string(nil), t.FollowUps...)
	return &c
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue copies the reference-typed payloads a catalog uses.
func cloneValue(v any) any {
	switch v := v.(type) {
	case []string:
		return append([]string(nil), v...)
	case map[string]float64:
		out := make(map[string]float64, len(v))
		for k, f := range v {
			out[k] = f
		}
		return out
	case map[string]any:
		return cloneMap(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Placeholders returns the {tokens} found in the description, in order of appearance.
func (t *Template) Placeholders() []string {
	var out []string
	s := t.Description
	for {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			return out
		}
		end := strings.IndexByte(s[open:], '}')
		if end < 0 {
			return out
		}
		out = append(out, s[open:open+end+1])
		s = s[open+end+1:]
	}
}

// Event is a concrete occurrence produced by firing a template or a cascade.
type Event struct {
	ID           string    `json:"id,omitempty"` // Log ID, assigned when persisted
	Type         EventType `json:"type"`
	Name         string    `json:"name"`
	Day          int       `json:"day"`
	Participants []string  `json:"participants"`
	Location     string    `json:"location"`
	Description  string    `json:"description"`
	Importance   float64   `json:"importance"`
	ParentEvent  string    `json:"parent_event,omitempty"` // Origin template name, cascades only
}

// HasParticipant reports whether name takes part in the event.
func (e *Event) HasParticipant(name string) bool {
	for _, p := range e.Participants {
		if p == name {
			return true
		}
	}
	return false
}
