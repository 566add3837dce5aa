package follow

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/karswell/retrace/internal/body"
)

const dt = 0.01

func newRig(t *testing.T, p Params, bodyPose body.Pose, target body.TargetSource) (*body.Kinematic, *Controller) {
	t.Helper()
	b := body.NewKinematic(1, bodyPose)
	c, err := New(b, target, p)
	if err != nil {
		t.Fatal(err)
	}
	return b, c
}

func step(b *body.Kinematic, c *Controller) {
	c.Tick(dt)
	b.Step(dt)
}

func TestNewRequiresBodyAndTarget(t *testing.T) {
	target := &body.StaticTarget{P: body.Pose{Rot: mgl32.QuatIdent()}}

	if _, err := New(nil, target, DefaultParams()); err != ErrNilBody {
		t.Errorf("expected ErrNilBody, got %v", err)
	}

	b := body.NewKinematic(1, body.Pose{Rot: mgl32.QuatIdent()})
	if _, err := New(b, nil, DefaultParams()); err != ErrNilTarget {
		t.Errorf("expected ErrNilTarget, got %v", err)
	}
}

func TestConvergesToStaticTarget(t *testing.T) {
	target := &body.StaticTarget{P: body.Pose{Pos: mgl32.Vec3{5, 0, 0}, Rot: mgl32.QuatIdent()}}
	b, c := newRig(t, DefaultParams(), body.Pose{Pos: mgl32.Vec3{5, 0, 2}, Rot: mgl32.QuatIdent()}, target)

	// Knock the body off its anchor. The desired pose anchors to the body's
	// calibration pose, so the spring pulls back there, not to the target's
	// absolute position.
	b.SetPosition(mgl32.Vec3{5, 0, 4})
	for i := 0; i < 2000; i++ {
		step(b, c)
	}

	err := b.Position().Sub(mgl32.Vec3{5, 0, 2}).Len()
	if err > 0.05 {
		t.Errorf("body did not settle at its anchor, error %f", err)
	}
}

func TestDeltaFollowingPreservesOffset(t *testing.T) {
	target := &body.LineTarget{Velocity: mgl32.Vec3{1, 0, 0}}
	start := mgl32.Vec3{0, 0, 3}
	b, c := newRig(t, DefaultParams(), body.Pose{Pos: start, Rot: mgl32.QuatIdent()}, target)

	for i := 0; i < 500; i++ {
		target.Advance(dt)
		step(b, c)
	}

	// Desired position tracks relative motion: anchor + target displacement.
	moved := target.Pose().Pos
	want := start.Add(moved)
	if c.Desired().Pos.Sub(want).Len() > 1e-3 {
		t.Errorf("desired %v, want %v", c.Desired().Pos, want)
	}
	// The z offset must survive indefinitely.
	if math32.Abs(c.Desired().Pos.Z()-3) > 1e-4 {
		t.Errorf("offset axis drifted to %f", c.Desired().Pos.Z())
	}
}

func TestAccelNeverExceedsClamp(t *testing.T) {
	p := DefaultParams()
	p.Spring = 10000
	p.Damping = 500
	p.MaxAccel = 50
	p.Rotation.Spring = 100
	p.Rotation.MaxAccel = 20
	p.Upright.Enabled = true
	p.Upright.Spring = 100
	p.Upright.MaxAccel = 10

	target := &body.CircleTarget{Radius: 1.5, Omega: 5}
	b, c := newRig(t, p, body.Pose{Pos: mgl32.Vec3{4, 2, -1}, Rot: mgl32.QuatRotate(1.0, mgl32.Vec3{1, 0, 0})}, target)

	for i := 0; i < 500; i++ {
		target.Advance(dt)
		step(b, c)

		if l := c.AppliedAccel().Len(); l > p.MaxAccel+1e-3 {
			t.Fatalf("tick %d: |accel| = %f exceeds clamp %f", i, l, p.MaxAccel)
		}
		if l := c.AppliedAngularAccel().Len(); l > p.Rotation.MaxAccel+p.Upright.MaxAccel+1e-3 {
			t.Fatalf("tick %d: |angAccel| = %f exceeds combined clamp", i, l)
		}
	}
}

func TestJumpTriggersRecalibration(t *testing.T) {
	p := DefaultParams()
	p.JumpThreshold = 2

	target := &body.TeleportTarget{
		Source: &body.LineTarget{Velocity: mgl32.Vec3{1, 0, 0}},
		Offset: mgl32.Vec3{50, 0, 0},
		At:     0.5,
	}
	b, c := newRig(t, p, body.Pose{Rot: mgl32.QuatIdent()}, target)

	jumped := false
	for i := 0; i < 200; i++ {
		target.Advance(dt)
		c.Tick(dt)

		if i == 49 {
			// The teleport tick: zero force, desired re-anchored.
			jumped = true
			if c.AppliedAccel().Len() != 0 || c.AppliedAngularAccel().Len() != 0 {
				t.Errorf("teleport tick applied force: %v %v", c.AppliedAccel(), c.AppliedAngularAccel())
			}
			if c.Desired().Pos != b.Position() {
				t.Errorf("desired %v should equal body position %v", c.Desired().Pos, b.Position())
			}
		}
		b.Step(dt)
	}
	if !jumped {
		t.Fatal("teleport never happened")
	}
}

func TestRecalibrateIdempotent(t *testing.T) {
	target := &body.StaticTarget{P: body.Pose{Pos: mgl32.Vec3{1, 2, 3}, Rot: mgl32.QuatIdent()}}
	_, c := newRig(t, DefaultParams(), body.Pose{Pos: mgl32.Vec3{4, 5, 6}, Rot: mgl32.QuatIdent()}, target)

	c.Recalibrate()
	first := c.Desired()
	c.Recalibrate()
	second := c.Desired()

	if first != second {
		t.Errorf("repeated recalibration changed desired pose: %v vs %v", first, second)
	}
}

func TestAxisMaskGatesFollowing(t *testing.T) {
	p := DefaultParams()
	p.AxisMask = mgl32.Vec3{1, 0, 1}

	target := &body.LineTarget{Velocity: mgl32.Vec3{1, 1, 1}}
	_, c := newRig(t, p, body.Pose{Rot: mgl32.QuatIdent()}, target)

	// Tick without stepping the body; only desired accumulation matters.
	for i := 0; i < 100; i++ {
		target.Advance(dt)
		c.Tick(dt)
	}

	if c.Desired().Pos.Y() != 0 {
		t.Errorf("masked axis accumulated %f", c.Desired().Pos.Y())
	}
	if c.Desired().Pos.X() < 0.9 {
		t.Errorf("unmasked axis did not follow, got %f", c.Desired().Pos.X())
	}
}

func TestRotationFollowsTargetSpin(t *testing.T) {
	p := DefaultParams()
	p.Rotation.Enabled = true

	target := &body.StaticTarget{P: body.Pose{Rot: mgl32.QuatIdent()}}
	_, c := newRig(t, p, body.Pose{Rot: mgl32.QuatIdent()}, target)

	// Spin the target after calibration; the controller should torque the
	// body about +y to follow.
	target.P.Rot = mgl32.QuatRotate(0.3, mgl32.Vec3{0, 1, 0})
	c.Tick(dt)

	if c.AppliedAngularAccel().Y() <= 0 {
		t.Errorf("expected positive y angular accel, got %v", c.AppliedAngularAccel())
	}
}

func TestUprightCorrection(t *testing.T) {
	p := DefaultParams()
	p.Rotation.Enabled = false
	p.Upright.Enabled = true

	target := &body.StaticTarget{P: body.Pose{Rot: mgl32.QuatIdent()}}
	// Tilt about +z: the correction must torque about -z.
	_, c := newRig(t, p, body.Pose{Rot: mgl32.QuatRotate(0.3, mgl32.Vec3{0, 0, 1})}, target)

	c.Tick(dt)

	if c.AppliedAngularAccel().Z() >= 0 {
		t.Errorf("expected negative z angular accel, got %v", c.AppliedAngularAccel())
	}
}

func TestGravityCancel(t *testing.T) {
	p := DefaultParams()
	p.CancelGravity = true
	p.HoldDamping = 0

	target := &body.StaticTarget{P: body.Pose{Rot: mgl32.QuatIdent()}}
	b, c := newRig(t, p, body.Pose{Rot: mgl32.QuatIdent()}, target)
	b.SetGravityEnabled(true)

	// At rest exactly on the desired pose the only output is the gravity
	// cancellation term.
	c.Tick(dt)

	want := body.Gravity.Mul(-1)
	if c.AppliedAccel().Sub(want).Len() > 1e-5 {
		t.Errorf("expected %v, got %v", want, c.AppliedAccel())
	}
}

func TestSnapshotZeroedEachTick(t *testing.T) {
	target := &body.StaticTarget{P: body.Pose{Rot: mgl32.QuatIdent()}}
	b, c := newRig(t, DefaultParams(), body.Pose{Pos: mgl32.Vec3{0, 0, 1}, Rot: mgl32.QuatIdent()}, target)

	// Drive the body off its anchor so a force is applied, then bring the
	// rig to exact rest and verify the snapshot does not hold stale values.
	b.SetPosition(mgl32.Vec3{0, 0, 5})
	c.Tick(dt)
	if c.AppliedAccel().Len() == 0 {
		t.Fatal("expected a corrective force")
	}

	b.SetPosition(mgl32.Vec3{0, 0, 1})
	b.SetVelocity(mgl32.Vec3{})
	c.Recalibrate()
	c.Tick(dt)
	if c.AppliedAccel().Len() != 0 {
		t.Errorf("snapshot held a stale force: %v", c.AppliedAccel())
	}
}
