// Package mathx provides float32 vector and quaternion helpers shared by the
// follow controller and the replay engine.
package mathx

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon is the tolerance used for near-zero length and interval checks.
const Epsilon = 1e-6

// ClampMagnitude scales v down so that its length does not exceed max.
// Vectors already within the limit are returned unchanged.
func ClampMagnitude(v mgl32.Vec3, max float32) mgl32.Vec3 {
	if max <= 0 {
		return mgl32.Vec3{}
	}
	sq := v.LenSqr()
	if sq <= max*max {
		return v
	}
	return v.Mul(max / math32.Sqrt(sq))
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Clamp01 clamps t to [0, 1].
func Clamp01(t float32) float32 {
	return mgl32.Clamp(t, 0, 1)
}

// ShortestArc returns q, negated if necessary so that its scalar component is
// non-negative. q and -q describe the same orientation; the non-negative form
// yields the shorter of the two rotation paths when converted to angle/axis.
func ShortestArc(q mgl32.Quat) mgl32.Quat {
	if q.W < 0 {
		return mgl32.Quat{W: -q.W, V: q.V.Mul(-1)}
	}
	return q
}

// AngleAxis extracts the rotation angle (radians) and unit axis from q,
// taking the shorter of the two equivalent rotation paths so the angle stays
// within [0, π]. A degenerate axis (zero rotation) reports ok = false and
// callers must treat the rotation as a zero contribution.
func AngleAxis(q mgl32.Quat) (angle float32, axis mgl32.Vec3, ok bool) {
	q = ShortestArc(q)
	w := mgl32.Clamp(q.W, -1, 1)
	angle = 2 * math32.Acos(w)

	s := q.V.LenSqr()
	if s < Epsilon*Epsilon {
		return 0, mgl32.Vec3{}, false
	}
	return angle, q.V.Mul(1 / math32.Sqrt(s)), true
}

// SlerpShortest spherically interpolates from q1 to q2 along the shorter arc.
func SlerpShortest(q1, q2 mgl32.Quat, t float32) mgl32.Quat {
	if q1.Dot(q2) < 0 {
		q2 = mgl32.Quat{W: -q2.W, V: q2.V.Mul(-1)}
	}
	return mgl32.QuatSlerp(q1, q2, t)
}

// QuatFromScaledAxis builds the quaternion rotating by |w| radians about the
// direction of w. Returns identity for a near-zero w.
func QuatFromScaledAxis(w mgl32.Vec3) mgl32.Quat {
	angle := w.Len()
	if angle < Epsilon {
		return mgl32.QuatIdent()
	}
	return mgl32.QuatRotate(angle, w.Mul(1/angle))
}

// ApproxEqual reports whether two vectors are equal within tol on every axis.
func ApproxEqual(a, b mgl32.Vec3, tol float32) bool {
	return math32.Abs(a[0]-b[0]) <= tol &&
		math32.Abs(a[1]-b[1]) <= tol &&
		math32.Abs(a[2]-b[2]) <= tol
}
