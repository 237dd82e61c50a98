// Package engine provides the tick-based simulation loop that drives the
// tension, war, and diplomacy systems forward one day at a time.
package engine

import (
	"fmt"
	"log/slog"
	"time"
)

// TickSchedule defines when each system runs relative to the tick counter.
const (
	TicksPerSimDay    = 1   // One tick is one simulated day
	TicksPerSimWeek   = 7   // Weekly snapshots and diplomatic cycles
	TicksPerSimSeason = 90  // Seasonal shifts
)

// Engine drives the simulation forward.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base tick interval (default 1 second)
	Running  bool

	// Callbacks for each tick layer — populated during setup.
	OnDay    func(tick uint64) // Every tick (sim-day)
	OnWeek   func(tick uint64) // Every 7 ticks
	OnSeason func(tick uint64) // Every 90 ticks
}

// NewEngine creates a simulation engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Tick:     0,
		Speed:    1.0,
		Interval: time.Second,
		Running:  false,
	}
}

// Run starts the simulation loop. Blocks until Stop() is called.
func (e *Engine) Run() {
	e.Running = true
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed)

	for e.Running {
		if e.Speed <= 0 {
			// Paused — sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.step()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Tick)
}

// Stop halts the simulation loop.
func (e *Engine) Stop() {
	e.Running = false
}

// step advances the simulation by one tick.
func (e *Engine) step() {
	e.Tick++

	// Every tick: the daily conflict pipeline.
	if e.OnDay != nil {
		e.OnDay(e.Tick)
	}

	// Every sim-week: diplomatic cycles and state snapshots.
	if e.Tick%TicksPerSimWeek == 0 && e.OnWeek != nil {
		e.OnWeek(e.Tick)
	}

	// Every sim-season: seasonal shifts.
	if e.Tick%TicksPerSimSeason == 0 && e.OnSeason != nil {
		e.OnSeason(e.Tick)
	}
}

// SimTime returns a human-readable simulation time string from a tick number.
func SimTime(tick uint64) string {
	days := tick%TicksPerSimSeason + 1
	seasons := tick / TicksPerSimSeason
	season := seasons % 4
	years := seasons/4 + 1

	seasonNames := [4]string{"Spring", "Summer", "Autumn", "Winter"}

	return fmt.Sprintf("%s Day %d, Year %d", seasonNames[season], days, years)
}
