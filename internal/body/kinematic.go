package body

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/karswell/retrace/internal/mathx"
)

// Gravity is the default gravitational acceleration applied to kinematic
// bodies with gravity enabled.
var Gravity = mgl32.Vec3{0, -9.81, 0}

// Kinematic is a reference Body integrating queued accelerations with a
// semi-implicit Euler step. It stands in for the host physics engine in the
// CLI demo and in tests.
type Kinematic struct {
	id      ID
	pos     mgl32.Vec3
	rot     mgl32.Quat
	vel     mgl32.Vec3
	angVel  mgl32.Vec3
	gravity bool

	pendingAccel    mgl32.Vec3
	pendingAngAccel mgl32.Vec3
}

// NewKinematic creates a body at the given pose, at rest, with gravity off.
func NewKinematic(id ID, pose Pose) *Kinematic {
	return &Kinematic{id: id, pos: pose.Pos, rot: pose.Rot.Normalize()}
}

func (k *Kinematic) ID() ID { return k.id }

func (k *Kinematic) Position() mgl32.Vec3 { return k.pos }

func (k *Kinematic) SetPosition(p mgl32.Vec3) { k.pos = p }

func (k *Kinematic) Rotation() mgl32.Quat { return k.rot }

func (k *Kinematic) SetRotation(q mgl32.Quat) { k.rot = q.Normalize() }

func (k *Kinematic) Velocity() mgl32.Vec3 { return k.vel }

func (k *Kinematic) SetVelocity(v mgl32.Vec3) { k.vel = v }

func (k *Kinematic) AngularVelocity() mgl32.Vec3 { return k.angVel }

func (k *Kinematic) SetAngularVelocity(w mgl32.Vec3) { k.angVel = w }

func (k *Kinematic) ApplyAcceleration(a mgl32.Vec3) {
	k.pendingAccel = k.pendingAccel.Add(a)
}

func (k *Kinematic) ApplyAngularAcceleration(a mgl32.Vec3) {
	k.pendingAngAccel = k.pendingAngAccel.Add(a)
}

func (k *Kinematic) GravityEnabled() bool { return k.gravity }

func (k *Kinematic) SetGravityEnabled(on bool) { k.gravity = on }

// Step advances the body by dt, consuming any queued accelerations.
// Velocity updates before position (semi-implicit Euler), which keeps the
// spring-damper loop stable at fixed timesteps.
func (k *Kinematic) Step(dt float32) {
	accel := k.pendingAccel
	if k.gravity {
		accel = accel.Add(Gravity)
	}
	k.vel = k.vel.Add(accel.Mul(dt))
	k.pos = k.pos.Add(k.vel.Mul(dt))

	k.angVel = k.angVel.Add(k.pendingAngAccel.Mul(dt))
	k.rot = mathx.QuatFromScaledAxis(k.angVel.Mul(dt)).Mul(k.rot).Normalize()

	k.pendingAccel = mgl32.Vec3{}
	k.pendingAngAccel = mgl32.Vec3{}
}
