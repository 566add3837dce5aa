package replay

import (
	"github.com/karswell/retrace/internal/body"
	"github.com/karswell/retrace/internal/follow"
)

// Recorder samples a fixed, ordered list of bodies every Nth tick. State and
// any applied forces are captured into frames stamped with accumulated
// recorded time.
type Recorder struct {
	bodies []body.Body
	stride int

	registry  *follow.Registry
	frames    []Frame
	clock     float32
	tick      int
	fixedDt   float32
	recording bool
}

// NewRecorder tracks the given bodies, sampling every stride-th tick.
// A stride below 1 records every tick.
func NewRecorder(bodies []body.Body, stride int) *Recorder {
	if stride < 1 {
		stride = 1
	}
	return &Recorder{bodies: bodies, stride: stride}
}

// Recording reports whether a session is active.
func (r *Recorder) Recording() bool { return r.recording }

// Start begins a session: builds the one-shot source registry, clears any
// buffered frames and resets the clock. It fails without touching state when
// no bodies are tracked.
func (r *Recorder) Start(sources []follow.ForceSource) error {
	if len(r.bodies) == 0 {
		return ErrNoBodies
	}
	if r.recording {
		return ErrAlreadyRunning
	}

	r.registry = follow.BuildRegistry(sources)
	r.frames = r.frames[:0]
	r.clock = 0
	r.tick = 0
	r.recording = true
	return nil
}

// Tick captures a frame on eligible ticks. The clock accumulates every tick
// regardless of stride, so timestamps reflect real session time.
func (r *Recorder) Tick(dt float32) {
	if !r.recording {
		return
	}
	r.fixedDt = dt

	if r.tick%r.stride == 0 {
		r.frames = append(r.frames, Frame{T: r.clock, Samples: r.capture()})
	}
	r.tick++
	r.clock += dt
}

func (r *Recorder) capture() []Sample {
	samples := make([]Sample, len(r.bodies))
	for i, b := range r.bodies {
		s := Sample{
			Pos:    b.Position(),
			Rot:    b.Rotation(),
			Vel:    b.Velocity(),
			AngVel: b.AngularVelocity(),
		}
		if src, ok := r.registry.Lookup(b.ID()); ok {
			s.HasApplied = true
			s.AppliedAccel = src.AppliedAccel()
			s.AppliedAngAccel = src.AppliedAngularAccel()
		}
		samples[i] = s
	}
	return samples
}

// Stop ends the session and freezes the buffer into a clip. Stopping an idle
// recorder returns nil.
func (r *Recorder) Stop() *Clip {
	if !r.recording {
		return nil
	}
	r.recording = false

	frames := make([]Frame, len(r.frames))
	copy(frames, r.frames)
	return &Clip{FixedDeltaTime: r.fixedDt, Frames: frames}
}
