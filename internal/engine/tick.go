// Package engine provides the day-based simulation loop.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/worldevents/internal/world"
)

// Schedule of the slower layers, in simulated days.
const (
	DaysPerWeek   = 7
	DaysPerSeason = world.DaysPerSeason
)

// pausePoll is how often a paused engine checks for a new speed.
const pausePoll = 100 * time.Millisecond

// Engine drives the simulation forward one day at a time.
type Engine struct {
	Day      uint64        // Absolute world day; seed it from the world when resuming
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Wall time per simulated day at speed 1; 0 runs flat out
	MaxDays  uint64        // Stop after this many days in one Run; 0 = unbounded

	// Callbacks for each layer, populated during setup.
	OnDay    func(day uint64) // Every day
	OnWeek   func(day uint64) // Every 7 days
	OnSeason func(day uint64) // Every 90 days

	mu sync.Mutex // guards Speed once Run has started
}

// NewEngine creates a simulation engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Speed:    1.0,
		Interval: time.Second,
	}
}

// Run steps the simulation until ctx is done or MaxDays days have run.
// It returns ctx.Err() on cancellation and nil when the day budget is spent.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("simulation engine started", "day", e.Day, "speed", e.CurrentSpeed(), "max_days", e.MaxDays)

	var ran uint64
	for e.MaxDays == 0 || ran < e.MaxDays {
		if err := ctx.Err(); err != nil {
			slog.Info("simulation engine stopped", "day", e.Day, "reason", err)
			return err
		}

		speed := e.CurrentSpeed()
		if speed <= 0 {
			// Paused. Check again shortly.
			if err := sleep(ctx, pausePoll); err != nil {
				slog.Info("simulation engine stopped", "day", e.Day, "reason", err)
				return err
			}
			continue
		}

		start := time.Now()
		e.step()
		ran++

		// Sleep for the remainder of the day interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target {
			if err := sleep(ctx, target-elapsed); err != nil {
				slog.Info("simulation engine stopped", "day", e.Day, "reason", err)
				return err
			}
		}
	}

	slog.Info("simulation engine finished", "day", e.Day, "days_run", ran)
	return nil
}

// SetSpeed changes the speed multiplier of a running engine.
func (e *Engine) SetSpeed(speed float64) {
	e.mu.Lock()
	e.Speed = speed
	e.mu.Unlock()
}

// CurrentSpeed returns the speed multiplier.
func (e *Engine) CurrentSpeed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Speed
}

// step advances the simulation by one day.
func (e *Engine) step() {
	e.Day++

	if e.OnDay != nil {
		e.OnDay(e.Day)
	}
	if e.Day%DaysPerWeek == 0 && e.OnWeek != nil {
		e.OnWeek(e.Day)
	}
	if e.Day%DaysPerSeason == 0 && e.OnSeason != nil {
		e.OnSeason(e.Day)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SimDate returns a human-readable date for an absolute world day,
// e.g. "Spring, 1st day of year 1".
func SimDate(day int) string {
	season := string(world.SeasonForDay(day))
	if season != "" {
		season = strings.ToUpper(season[:1]) + season[1:]
	}
	dayOfSeason := day%world.DaysPerSeason + 1
	year := day/world.DaysPerYear + 1
	return fmt.Sprintf("%s, %s day of year %d", season, humanize.Ordinal(dayOfSeason), year)
}
