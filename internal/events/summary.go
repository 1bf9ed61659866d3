package events

import "sort"

// topActiveAgents is how many participants a summary ranks.
const topActiveAgents = 5

// Summary aggregates a stretch of event history.
type Summary struct {
	TotalEvents      int               `json:"total_events"`
	EventTypes       map[EventType]int `json:"event_types"`
	MostActiveAgents []AgentActivity   `json:"most_active_agents"`
	Timeline         []TimelineEntry   `json:"timeline"`
}

// AgentActivity counts how many events an agent took part in.
type AgentActivity struct {
	Name   string `json:"name"`
	Events int    `json:"events"`
}

// TimelineEntry is one event in a summary timeline.
type TimelineEntry struct {
	Day  int    `json:"day"`
	Name string `json:"name"`
}

// Summarize covers events within days of the latest event in history.
// History is caller-owned and expected in chronological order.
func Summarize(history []Event, days int) Summary {
	sum := Summary{EventTypes: make(map[EventType]int)}
	if len(history) == 0 {
		return sum
	}

	latest := history[0].Day
	for _, e := range history {
		if e.Day > latest {
			latest = e.Day
		}
	}
	cutoff := latest - days

	counts := make(map[string]int)
	for _, e := range history {
		if e.Day < cutoff {
			continue
		}
		sum.TotalEvents++
		sum.EventTypes[e.Type]++
		for _, p := range e.Participants {
			counts[p]++
		}
		sum.Timeline = append(sum.Timeline, TimelineEntry{Day: e.Day, Name: e.Name})
	}

	for name, n := range counts {
		sum.MostActiveAgents = append(sum.MostActiveAgents, AgentActivity{Name: name, Events: n})
	}
	sort.Slice(sum.MostActiveAgents, func(i, j int) bool {
		a, b := sum.MostActiveAgents[i], sum.MostActiveAgents[j]
		if a.Events != b.Events {
			return a.Events > b.Events
		}
		return a.Name < b.Name
	})
	if len(sum.MostActiveAgents) > topActiveAgents {
		sum.MostActiveAgents = sum.MostActiveAgents[:topActiveAgents]
	}
	return sum
}
