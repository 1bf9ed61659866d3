// Cascades: recently fired templates may echo as aftermath events on later days.
package events

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/talgya/worldevents/internal/world"
)

// Cascade tuning.
const (
	DefaultWindowSize = 7   // Trailing firings considered for follow-ups
	followUpChance    = 0.2 // Per-entry chance each day
	followUpDecay     = 0.7 // Importance multiplier relative to the origin
)

// WindowEntry is one firing retained for cascades.
type WindowEntry struct {
	Template string // Catalog key of the origin template
	Day      int
	Event    Event
}

// Window keeps the most recent firings, evicting the oldest beyond its size.
type Window struct {
	size    int
	entries []WindowEntry
}

// NewWindow creates a window holding at most size entries.
func NewWindow(size int) *Window {
	if size < 1 {
		size = DefaultWindowSize
	}
	return &Window{size: size, entries: make([]WindowEntry, 0, size+1)}
}

// Push appends an entry and evicts beyond the bound.
func (w *Window) Push(e WindowEntry) {
	w.entries = append(w.entries, e)
	if over := len(w.entries) - w.size; over > 0 {
		w.entries = append(w.entries[:0], w.entries[over:]...)
	}
}

// Entries returns a copy of the window, oldest first.
func (w *Window) Entries() []WindowEntry {
	out := make([]WindowEntry, len(w.entries))
	copy(out, w.entries)
	return out
}

// Len returns the number of retained firings.
func (w *Window) Len() int {
	return len(w.entries)
}

// FollowUps rolls every window entry for an aftermath event. Follow-ups skip
// conditions and cooldowns and may repeat for the same origin on later days.
func (s *System) FollowUps(w *world.World) []Event {
	var out []Event
	for _, entry := range s.window.entries {
		t, ok := s.catalog.byKey[entry.Template]
		if !ok || len(t.FollowUps) == 0 {
			continue
		}
		if s.rng.Float64() >= followUpChance {
			continue
		}
		choice := t.FollowUps[s.rng.Intn(len(t.FollowUps))]

		participants := make([]string, len(entry.Event.Participants))
		copy(participants, entry.Event.Participants)

		out = append(out, Event{
			Type:         TypeFollowUp,
			Name:         "Aftermath: " + aftermathTitle(choice),
			Day:          w.Day,
			Participants: participants,
			Location:     entry.Event.Location,
			Description:  fmt.Sprintf("The community deals with the aftermath of %s", t.Name),
			Importance:   entry.Event.Importance * followUpDecay,
			ParentEvent:  t.Name,
		})
	}
	return out
}

// aftermathTitle turns "community_rebuilding" into "Community Rebuilding".
func aftermathTitle(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}
