// Package replay records per-tick body state and applied forces into
// timestamped clips and plays them back with frame rebasing and soft
// correction.
package replay

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrNoBodies indicates a recorder or player was started without any
	// tracked bodies.
	ErrNoBodies = errors.New("replay: no tracked bodies")

	// ErrEmptyClip indicates playback was started from a clip with no frames.
	ErrEmptyClip = errors.New("replay: clip has no frames")

	// ErrSampleCountMismatch indicates a clip's per-frame sample count does
	// not match the tracked body list.
	ErrSampleCountMismatch = errors.New("replay: clip sample count does not match tracked bodies")

	// ErrAlreadyRunning indicates a session was started twice.
	ErrAlreadyRunning = errors.New("replay: session already running")
)

// Sample is one tracked body's state at one frame, in recording order.
type Sample struct {
	Pos    mgl32.Vec3
	Rot    mgl32.Quat
	Vel    mgl32.Vec3
	AngVel mgl32.Vec3

	// HasApplied marks whether a force source was registered for the body
	// when the frame was captured.
	HasApplied      bool
	AppliedAccel    mgl32.Vec3
	AppliedAngAccel mgl32.Vec3
}

// Frame is all tracked bodies' samples at one timestamp. Sample order matches
// the tracked body list and is identical across every frame of a clip.
type Frame struct {
	T       float32
	Samples []Sample
}

// Clip is an immutable recorded session: monotonically increasing frames plus
// the fixed tick duration they were captured at.
type Clip struct {
	FixedDeltaTime float32
	Frames         []Frame
}

// Duration returns the timestamp of the last frame, or 0 for an empty clip.
func (c *Clip) Duration() float32 {
	if len(c.Frames) == 0 {
		return 0
	}
	return c.Frames[len(c.Frames)-1].T
}

// BodyCount returns the number of samples per frame, or 0 for an empty clip.
func (c *Clip) BodyCount() int {
	if len(c.Frames) == 0 {
		return 0
	}
	return len(c.Frames[0].Samples)
}

// Validate checks the per-frame sample count invariant against an expected
// tracked body count.
func (c *Clip) Validate(bodies int) error {
	if len(c.Frames) == 0 {
		return ErrEmptyClip
	}
	for _, f := range c.Frames {
		if len(f.Samples) != bodies {
			return ErrSampleCountMismatch
		}
	}
	return nil
}
