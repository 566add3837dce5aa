package body

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Scripted target paths for the demo loop and tests. Each advances its own
// clock; Advance is expected once per tick, before the controllers read Pose.

// LineTarget moves at constant velocity from an origin.
type LineTarget struct {
	Origin   mgl32.Vec3
	Velocity mgl32.Vec3
	t        float32
}

func (l *LineTarget) Advance(dt float32) { l.t += dt }

func (l *LineTarget) Pose() Pose {
	return Pose{Pos: l.Origin.Add(l.Velocity.Mul(l.t)), Rot: mgl32.QuatIdent()}
}

// CircleTarget orbits a center in the XZ plane, yawing to face its direction
// of travel.
type CircleTarget struct {
	Center mgl32.Vec3
	Radius float32
	// Omega is the angular speed of the orbit in rad/s.
	Omega float32
	t     float32
}

func (c *CircleTarget) Advance(dt float32) { c.t += dt }

func (c *CircleTarget) Pose() Pose {
	a := c.Omega * c.t
	pos := c.Center.Add(mgl32.Vec3{c.Radius * math32.Cos(a), 0, c.Radius * math32.Sin(a)})
	return Pose{Pos: pos, Rot: mgl32.QuatRotate(-a, mgl32.Vec3{0, 1, 0})}
}

// LissajousTarget traces a 3D lissajous figure, useful for exercising all
// three axes at once.
type LissajousTarget struct {
	Center    mgl32.Vec3
	Amplitude mgl32.Vec3
	Freq      mgl32.Vec3
	t         float32
}

func (l *LissajousTarget) Advance(dt float32) { l.t += dt }

func (l *LissajousTarget) Pose() Pose {
	pos := l.Center.Add(mgl32.Vec3{
		l.Amplitude[0] * math32.Sin(l.Freq[0]*l.t),
		l.Amplitude[1] * math32.Sin(l.Freq[1]*l.t),
		l.Amplitude[2] * math32.Sin(l.Freq[2]*l.t),
	})
	return Pose{Pos: pos, Rot: mgl32.QuatIdent()}
}

// TeleportTarget wraps another source and displaces it by Offset once At
// seconds have elapsed, producing a single large pose jump.
type TeleportTarget struct {
	Source interface {
		TargetSource
		Advance(dt float32)
	}
	Offset mgl32.Vec3
	At     float32
	t      float32
}

func (tp *TeleportTarget) Advance(dt float32) {
	tp.t += dt
	tp.Source.Advance(dt)
}

func (tp *TeleportTarget) Pose() Pose {
	p := tp.Source.Pose()
	if tp.t >= tp.At {
		p.Pos = p.Pos.Add(tp.Offset)
	}
	return p
}

// StaticTarget holds a fixed pose.
type StaticTarget struct {
	P Pose
}

func (s *StaticTarget) Advance(float32) {}

func (s *StaticTarget) Pose() Pose { return s.P }
