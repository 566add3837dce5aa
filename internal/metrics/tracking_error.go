package metrics

import "github.com/go-gl/mathgl/mgl32"

// TrackingError reports the mean distance between two sampled points, e.g.
// body position vs target position, read through the sampler each tick.
type TrackingError struct {
	sample  func() (mgl32.Vec3, mgl32.Vec3)
	sum     float32
	samples int
}

func NewTrackingError(sample func() (mgl32.Vec3, mgl32.Vec3)) *TrackingError {
	return &TrackingError{sample: sample}
}

func (e *TrackingError) Name() string { return "tracking_error" }

func (e *TrackingError) Observe(accel, angAccel mgl32.Vec3, t float32) {
	a, b := e.sample()
	e.sum += a.Sub(b).Len()
	e.samples++
}

func (e *TrackingError) Value() float32 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float32(e.samples)
}

func (e *TrackingError) Reset() {
	e.sum = 0
	e.samples = 0
}
