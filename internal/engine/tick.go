// Package engine provides the tick loop and the system scheduler.
package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Engine drives a step function forward one tick at a time.
type Engine struct {
	Tick     uint64        // Completed ticks (monotonic, never resets)
	Speed    float64       // Multiplier on Interval: 2.0 = twice as fast
	Interval time.Duration // Pause between ticks; 0 runs flat out

	// OnTick is called after each successful step.
	OnTick func(tick uint64)

	step    func() error
	running atomic.Bool
	stopped atomic.Bool
}

// NewEngine creates an engine that calls step once per tick.
func NewEngine(step func() error) *Engine {
	return &Engine{Speed: 1.0, step: step}
}

// Run steps until ticks have completed (0 means no limit), Stop is called,
// the context ends or a step fails.
func (e *Engine) Run(ctx context.Context, ticks uint64) error {
	e.running.Store(true)
	defer e.running.Store(false)
	e.stopped.Store(false)

	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed)
	defer func() { slog.Info("simulation engine stopped", "tick", e.Tick) }()

	target := e.Tick + ticks
	for ticks == 0 || e.Tick < target {
		if e.stopped.Load() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		if err := e.Step(); err != nil {
			return err
		}

		if e.Interval <= 0 || e.Speed <= 0 {
			continue
		}
		// Sleep for the remainder of the tick interval, adjusted for speed.
		wait := time.Duration(float64(e.Interval)/e.Speed) - time.Since(start)
		if wait <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil
}

// Step advances the simulation by one tick.
func (e *Engine) Step() error {
	if err := e.step(); err != nil {
		return err
	}
	e.Tick++
	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}
	return nil
}

// Stop halts Run after the current tick. Safe to call from another goroutine.
func (e *Engine) Stop() {
	e.stopped.Store(true)
}

// Running reports whether Run is in progress.
func (e *Engine) Running() bool {
	return e.running.Load()
}
