// Package metrics provides per-tick observers summarizing a follow or
// playback session.
package metrics

import "github.com/go-gl/mathgl/mgl32"

// Metric accumulates one summary value over a session. Observe is called
// once per tick with the accelerations applied on that tick.
type Metric interface {
	Name() string
	Observe(accel, angAccel mgl32.Vec3, t float32)
	Value() float32
	Reset()
}

// ControlEffort reports the mean applied acceleration magnitude.
type ControlEffort struct {
	sum     float32
	samples int
}

func NewControlEffort() *ControlEffort { return &ControlEffort{} }

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(accel, angAccel mgl32.Vec3, t float32) {
	c.sum += accel.Len()
	c.samples++
}

func (c *ControlEffort) Value() float32 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float32(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
