// Package body defines the narrow rigid-body surface the controllers and the
// replay engine consume, plus a kinematic reference implementation used by
// the CLI demo and tests.
package body

import "github.com/go-gl/mathgl/mgl32"

// ID identifies a body within a session. Uniqueness is the host's problem;
// the registry only relies on equality.
type ID uint64

// Pose is a position plus a unit-quaternion orientation.
type Pose struct {
	Pos mgl32.Vec3
	Rot mgl32.Quat
}

// Body is the per-body surface provided by the host simulation. Acceleration
// application is mass-independent: the implementation must scale whatever
// force it applies so the body experiences exactly the given acceleration.
type Body interface {
	ID() ID

	Position() mgl32.Vec3
	SetPosition(mgl32.Vec3)
	Rotation() mgl32.Quat
	SetRotation(mgl32.Quat)
	Velocity() mgl32.Vec3
	SetVelocity(mgl32.Vec3)
	AngularVelocity() mgl32.Vec3
	SetAngularVelocity(mgl32.Vec3)

	// ApplyAcceleration queues an instantaneous linear acceleration to be
	// consumed on the body's next integration step.
	ApplyAcceleration(mgl32.Vec3)
	// ApplyAngularAcceleration queues an instantaneous angular acceleration
	// (rad/s²) to be consumed on the body's next integration step.
	ApplyAngularAcceleration(mgl32.Vec3)

	GravityEnabled() bool
	SetGravityEnabled(bool)
}

// TargetSource yields the pose a controller should chase, read once per tick.
type TargetSource interface {
	Pose() Pose
}
