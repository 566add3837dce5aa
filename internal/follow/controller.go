// Package follow implements acceleration-domain spring-damper pose tracking:
// a controller that integrates a desired pose from a target's per-tick motion
// and applies PD corrective accelerations to a simulated body.
package follow

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/karswell/retrace/internal/body"
	"github.com/karswell/retrace/internal/mathx"
)

const (
	radToDeg = 180.0 / math32.Pi
	degToRad = math32.Pi / 180.0
)

// AngularParams configure one angular spring-damper term. Spring is the gain
// per degree of error and Damping the gain per degree/s of angular velocity;
// MaxAccel clamps the resulting acceleration in rad/s².
type AngularParams struct {
	Enabled  bool
	Spring   float32
	Damping  float32
	MaxAccel float32
}

// Params configure a Controller.
type Params struct {
	// Spring and Damping are the position PD gains.
	Spring  float32
	Damping float32
	// HoldDamping is added on top of Damping while the position error is
	// within HoldEpsilon, suppressing residual jitter at rest.
	HoldDamping float32
	HoldEpsilon float32
	// MaxAccel clamps the magnitude of the applied linear acceleration.
	MaxAccel float32
	// DeltaMultiplier scales the target's per-tick motion before it is
	// accumulated onto the desired position.
	DeltaMultiplier float32
	// JumpThreshold is the target displacement per tick treated as a
	// teleport rather than motion to follow.
	JumpThreshold float32
	// CancelGravity adds -gravity to the position correction so the spring
	// does not have to fight a gravity force the host applies.
	CancelGravity bool
	// AxisMask gates desired-position accumulation per axis (1 follows the
	// axis, 0 ignores it).
	AxisMask mgl32.Vec3

	Rotation AngularParams
	Upright  AngularParams
	// WorldUp is the reference up direction for the upright correction.
	WorldUp mgl32.Vec3
}

// DefaultParams returns gains that track a walking-pace target smoothly at
// 50–120 Hz tick rates.
func DefaultParams() Params {
	return Params{
		Spring:          120,
		Damping:         18,
		HoldDamping:     10,
		HoldEpsilon:     0.02,
		MaxAccel:        200,
		DeltaMultiplier: 1,
		JumpThreshold:   2,
		AxisMask:        mgl32.Vec3{1, 1, 1},
		Rotation:        AngularParams{Enabled: true, Spring: 0.6, Damping: 0.12, MaxAccel: 60},
		Upright:         AngularParams{Spring: 0.4, Damping: 0.08, MaxAccel: 40},
		WorldUp:         mgl32.Vec3{0, 1, 0},
	}
}

// Controller drives one body toward a moving target pose. It owns the
// desired-pose integrator and must be ticked exactly once per fixed step.
type Controller struct {
	body   body.Body
	target body.TargetSource
	p      Params

	desired    body.Pose
	lastTarget body.Pose

	// Force snapshot, overwritten every tick.
	accel    mgl32.Vec3
	angAccel mgl32.Vec3
}

// New validates the wiring and returns an active controller, recalibrated to
// the body's current pose. A nil body or target is a configuration error and
// no controller is returned.
func New(b body.Body, target body.TargetSource, p Params) (*Controller, error) {
	if b == nil {
		return nil, ErrNilBody
	}
	if target == nil {
		return nil, ErrNilTarget
	}
	c := &Controller{body: b, target: target, p: p}
	c.Recalibrate()
	return c, nil
}

// Recalibrate resets the desired pose to the body's current pose and the
// remembered target pose to the target's current pose. Calling it repeatedly
// with no intervening motion is a no-op.
func (c *Controller) Recalibrate() {
	c.desired = body.Pose{Pos: c.body.Position(), Rot: c.body.Rotation()}
	c.lastTarget = c.target.Pose()
}

// Desired returns the integrated desired pose.
func (c *Controller) Desired() body.Pose { return c.desired }

// BodyID implements ForceSource.
func (c *Controller) BodyID() body.ID { return c.body.ID() }

// AppliedAccel implements ForceSource.
func (c *Controller) AppliedAccel() mgl32.Vec3 { return c.accel }

// AppliedAngularAccel implements ForceSource.
func (c *Controller) AppliedAngularAccel() mgl32.Vec3 { return c.angAccel }

// Tick computes and applies this step's corrective accelerations.
func (c *Controller) Tick(dt float32) {
	c.accel = mgl32.Vec3{}
	c.angAccel = mgl32.Vec3{}

	target := c.target.Pose()

	delta := target.Pos.Sub(c.lastTarget.Pos)
	if delta.LenSqr() > c.p.JumpThreshold*c.p.JumpThreshold {
		// Teleport: following the spring across the gap would slingshot the
		// body, so re-anchor and apply nothing this tick.
		c.Recalibrate()
		return
	}

	scaled := delta.Mul(c.p.DeltaMultiplier)
	c.desired.Pos = c.desired.Pos.Add(mgl32.Vec3{
		scaled[0] * c.p.AxisMask[0],
		scaled[1] * c.p.AxisMask[1],
		scaled[2] * c.p.AxisMask[2],
	})

	c.tickPosition()
	if c.p.Rotation.Enabled {
		c.tickRotation(target)
	}
	if c.p.Upright.Enabled {
		c.tickUpright()
	}

	c.lastTarget = target
}

func (c *Controller) tickPosition() {
	err := c.desired.Pos.Sub(c.body.Position())
	vel := c.body.Velocity()

	accel := err.Mul(c.p.Spring).Sub(vel.Mul(c.p.Damping))
	if c.p.CancelGravity && c.body.GravityEnabled() {
		accel = accel.Sub(body.Gravity)
	}
	if err.LenSqr() < c.p.HoldEpsilon*c.p.HoldEpsilon {
		accel = accel.Sub(vel.Mul(c.p.HoldDamping))
	}

	accel = mathx.ClampMagnitude(accel, c.p.MaxAccel)
	c.body.ApplyAcceleration(accel)
	c.accel = accel
}

func (c *Controller) tickRotation(target body.Pose) {
	// Compose the target's incremental rotation onto the desired rotation,
	// the angular analogue of position delta-following.
	deltaRot := target.Rot.Mul(c.lastTarget.Rot.Inverse())
	c.desired.Rot = deltaRot.Mul(c.desired.Rot).Normalize()

	errRot := c.desired.Rot.Mul(c.body.Rotation().Inverse())
	angle, axis, ok := mathx.AngleAxis(errRot)
	if !ok {
		// Zero-angle rotation has no axis; nothing to correct.
		return
	}

	c.applyAngular(c.p.Rotation, mgl32.RadToDeg(angle), axis)
}

func (c *Controller) tickUpright() {
	up := c.body.Rotation().Rotate(mgl32.Vec3{0, 1, 0})
	cross := up.Cross(c.p.WorldUp)
	sin := cross.Len()
	if sin < mathx.Epsilon {
		return
	}

	// Small-angle tilt from the cross product magnitude.
	angle := math32.Asin(mgl32.Clamp(sin, -1, 1))
	axis := cross.Mul(1 / sin)
	c.applyAngular(c.p.Upright, mgl32.RadToDeg(angle), axis)
}

// applyAngular runs one angular spring-damper in the degree domain, converts
// the result to rad/s², clamps and applies it.
func (c *Controller) applyAngular(p AngularParams, angleDeg float32, axis mgl32.Vec3) {
	velDeg := c.body.AngularVelocity().Mul(radToDeg)
	accel := axis.Mul(p.Spring * angleDeg).Sub(velDeg.Mul(p.Damping)).Mul(degToRad)
	accel = mathx.ClampMagnitude(accel, p.MaxAccel)

	c.body.ApplyAngularAcceleration(accel)
	c.angAccel = c.angAccel.Add(accel)
}
