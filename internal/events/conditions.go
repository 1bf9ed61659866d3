// Condition evaluation: a registry of named predicates checked against the
// live world and population before a template may fire.
package events

import (
	"strconv"
	"strings"

	"github.com/talgya/worldevents/internal/agents"
	"github.com/talgya/worldevents/internal/world"
)

// Env is the read-only view a predicate evaluates against.
type Env struct {
	World *world.World
	Alive []*agents.Agent // Alive agents only, in population order
}

// Predicate reports whether a single constraint holds. Predicates must not mutate.
type Predicate func(env *Env, constraint any) bool

// PrefixPredicate handles a family of keys such as "world_resources.food";
// it receives the part after the prefix.
type PrefixPredicate func(env *Env, suffix string, constraint any) bool

// elderAge is the age from which an agent counts as an elder.
const elderAge = 50

func defaultPredicates() map[string]Predicate {
	return map[string]Predicate{
		"min_agents": minAgents,
		"population": populationSize,
		"season":     season,

		"has_explorers":              anyWithTrait("adventurous", "curious"),
		"has_healers":                anyWithTrait("empathetic", "wise"),
		"has_ambitious_agents":       anyWithTrait("ambitious"),
		"has_leader":                 anyWithTrait("leader", "charismatic"),
		"has_romantic_relationships": anyWithTrait("romantic", "passionate"),
		"has_elders":                 hasElders,

		// Declared on pair templates but never checked against a concrete pair.
		"age_gap":          satisfied,
		"skill_difference": satisfied,
		// Where a discovery is found is narrated, not gated.
		"location": satisfied,
	}
}

func defaultPrefixPredicates() map[string]PrefixPredicate {
	return map[string]PrefixPredicate{
		"world_resources.": resourceLevel,
	}
}

func satisfied(*Env, any) bool { return true }

// minAgents: alive count ≥ N.
func minAgents(env *Env, constraint any) bool {
	n, ok := toFloat(constraint)
	if !ok {
		return true
	}
	return float64(len(env.Alive)) >= n
}

// populationSize: alive count compared against "> N" style constraints.
func populationSize(env *Env, constraint any) bool {
	if n, ok := toFloat(constraint); ok {
		return float64(len(env.Alive)) >= n
	}
	s, ok := constraint.(string)
	if !ok {
		return true
	}
	op, threshold, ok := parseComparison(s)
	if !ok {
		return true
	}
	return compare(float64(len(env.Alive)), op, threshold)
}

func season(env *Env, constraint any) bool {
	allowed, ok := constraint.([]string)
	if !ok {
		return true
	}
	for _, s := range allowed {
		if world.Season(s) == env.World.Season {
			return true
		}
	}
	return false
}

func resourceLevel(env *Env, resource string, constraint any) bool {
	s, ok := constraint.(string)
	if !ok {
		return true
	}
	op, threshold, ok := parseComparison(s)
	if !ok {
		return true
	}
	return compare(env.World.Resource(resource), op, threshold)
}

// anyWithTrait builds a role-presence predicate. A false flag imposes nothing.
func anyWithTrait(traits ...string) Predicate {
	return func(env *Env, constraint any) bool {
		if want, ok := constraint.(bool); !ok || !want {
			return true
		}
		for _, a := range env.Alive {
			if a.HasTrait(traits...) {
				return true
			}
		}
		return false
	}
}

func hasElders(env *Env, constraint any) bool {
	if want, ok := constraint.(bool); !ok || !want {
		return true
	}
	for _, a := range env.Alive {
		if a.Age >= elderAge || a.HasTrait("wise") {
			return true
		}
	}
	return false
}

// parseComparison splits "> 0.8" into its operator and threshold.
// Stray whitespace and trailing commas are tolerated.
func parseComparison(s string) (string, float64, bool) {
	s = strings.Trim(s, " ,\t")
	for _, op := range []string{">=", "<=", ">", "<"} {
		if rest, ok := strings.CutPrefix(s, op); ok {
			v, err := strconv.ParseFloat(strings.Trim(rest, " ,\t"), 64)
			if err != nil {
				return "", 0, false
			}
			return op, v, true
		}
	}
	return "", 0, false
}

func compare(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case "<":
		return v < threshold
	case ">=":
		return v >= threshold
	case "<=":
		return v <= threshold
	}
	return true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

// Evaluate reports whether a template is eligible today: every declared
// predicate holds and the template is off cooldown. Unknown keys pass.
func (s *System) Evaluate(t *Template, w *world.World, population []*agents.Agent) bool {
	return s.evaluate(t, &Env{World: w, Alive: agents.Living(population)})
}

func (s *System) evaluate(t *Template, env *Env) bool {
	for key, constraint := range t.Conditions {
		if !s.check(env, key, constraint) {
			return false
		}
	}
	return s.cooldowns.IsEligible(t.Name, env.World.Day, t.CooldownDays)
}

func (s *System) check(env *Env, key string, constraint any) bool {
	if p, ok := s.predicates[key]; ok {
		return p(env, constraint)
	}
	if i := strings.IndexByte(key, '.'); i >= 0 {
		if p, ok := s.prefixPredicates[key[:i+1]]; ok {
			return p(env, key[i+1:], constraint)
		}
	}
	return true
}
