// Package sched provides the fixed-timestep loop driving controllers,
// recorder and player. All registered tasks run synchronously on each tick in
// registration order; the loop owns no goroutines and no locks.
package sched

import (
	"context"
	"fmt"
)

// Task is invoked once per tick with the fixed delta time.
type Task func(dt float32)

// Loop drives registered tasks at a fixed timestep.
type Loop struct {
	dt    float32
	tasks []Task
	tick  int64
}

// New creates a loop with the given fixed timestep.
func New(dt float32) (*Loop, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("sched: dt must be positive, got %f", dt)
	}
	return &Loop{dt: dt}, nil
}

// Dt returns the fixed timestep.
func (l *Loop) Dt() float32 { return l.dt }

// Tick returns the number of ticks executed so far.
func (l *Loop) Tick() int64 { return l.tick }

// Register appends a task. Tasks registered mid-run take effect on the next
// tick.
func (l *Loop) Register(t Task) {
	l.tasks = append(l.tasks, t)
}

// Step runs a single tick.
func (l *Loop) Step() {
	for _, t := range l.tasks {
		t(l.dt)
	}
	l.tick++
}

// Run executes ticks until the simulated duration elapses or ctx is
// cancelled.
func (l *Loop) Run(ctx context.Context, duration float32) error {
	steps := int(duration / l.dt)
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		l.Step()
	}
	return nil
}
