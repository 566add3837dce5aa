package mathx

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func TestClampMagnitude(t *testing.T) {
	v := mgl32.Vec3{3, 4, 0}

	clamped := ClampMagnitude(v, 2.5)
	if math32.Abs(clamped.Len()-2.5) > 1e-5 {
		t.Errorf("expected length 2.5, got %f", clamped.Len())
	}

	// Direction must be preserved.
	dir := v.Normalize()
	cdir := clamped.Normalize()
	if !ApproxEqual(dir, cdir, 1e-5) {
		t.Errorf("clamping changed direction: %v vs %v", dir, cdir)
	}

	same := ClampMagnitude(v, 10)
	if same != v {
		t.Errorf("vector within limit should be unchanged, got %v", same)
	}

	zero := ClampMagnitude(v, 0)
	if zero.Len() != 0 {
		t.Errorf("zero limit should produce zero vector, got %v", zero)
	}
}

func TestShortestArcNeverNegative(t *testing.T) {
	qs := []mgl32.Quat{
		mgl32.QuatRotate(3.0, mgl32.Vec3{0, 1, 0}),
		mgl32.QuatRotate(-2.5, mgl32.Vec3{1, 0, 0}),
		{W: -0.5, V: mgl32.Vec3{0.5, 0.5, 0.5}},
		mgl32.QuatIdent(),
	}
	for _, q := range qs {
		if got := ShortestArc(q); got.W < 0 {
			t.Errorf("ShortestArc(%v).W = %f, want >= 0", q, got.W)
		}
	}
}

func TestAngleAxis(t *testing.T) {
	angle, axis, ok := AngleAxis(mgl32.QuatRotate(1.2, mgl32.Vec3{0, 1, 0}))
	if !ok {
		t.Fatal("expected a valid axis")
	}
	if math32.Abs(angle-1.2) > 1e-5 {
		t.Errorf("expected angle 1.2, got %f", angle)
	}
	if !ApproxEqual(axis, mgl32.Vec3{0, 1, 0}, 1e-5) {
		t.Errorf("expected y axis, got %v", axis)
	}
}

func TestAngleAxisTakesShortPath(t *testing.T) {
	// 270° about y is the same orientation as -90°; extraction must report
	// the 90° path.
	angle, axis, ok := AngleAxis(mgl32.QuatRotate(3*math32.Pi/2, mgl32.Vec3{0, 1, 0}))
	if !ok {
		t.Fatal("expected a valid axis")
	}
	if math32.Abs(math32.Abs(angle)-math32.Pi/2) > 1e-5 {
		t.Errorf("expected |angle| = π/2, got %f", angle)
	}
	// angle·axis must describe the -90° rotation about +y.
	if angle*axis.Y() > 0 {
		t.Errorf("expected negative rotation about y, got angle=%f axis=%v", angle, axis)
	}
}

func TestAngleAxisDegenerate(t *testing.T) {
	_, _, ok := AngleAxis(mgl32.QuatIdent())
	if ok {
		t.Error("identity rotation must report no axis")
	}
}

func TestSlerpShortestEndpoints(t *testing.T) {
	q1 := mgl32.QuatRotate(0.3, mgl32.Vec3{0, 1, 0})
	q2 := mgl32.QuatRotate(2.8, mgl32.Vec3{0, 1, 0})

	if got := SlerpShortest(q1, q2, 0); math32.Abs(math32.Abs(got.Dot(q1))-1) > 1e-5 {
		t.Errorf("t=0 should return q1, dot = %f", got.Dot(q1))
	}
	if got := SlerpShortest(q1, q2, 1); math32.Abs(math32.Abs(got.Dot(q2))-1) > 1e-5 {
		t.Errorf("t=1 should return q2, dot = %f", got.Dot(q2))
	}
}

func TestQuatFromScaledAxis(t *testing.T) {
	q := QuatFromScaledAxis(mgl32.Vec3{0, 0.5, 0})
	angle, axis, ok := AngleAxis(q)
	if !ok {
		t.Fatal("expected a valid axis")
	}
	if math32.Abs(angle-0.5) > 1e-5 || !ApproxEqual(axis, mgl32.Vec3{0, 1, 0}, 1e-5) {
		t.Errorf("got angle=%f axis=%v", angle, axis)
	}

	if QuatFromScaledAxis(mgl32.Vec3{}) != mgl32.QuatIdent() {
		t.Error("zero axis should produce identity")
	}
}
