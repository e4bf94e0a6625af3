package types

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestRotate4(t *testing.T) {
	type spec struct {
		angles Vec3
		in     Vec3
		exp    Vec3
	}
	specs := []spec{
		// Quarter turn around each axis.
		spec{XYZ(math32.Pi / 2, 0, 0), XYZ(0, 1, 0), XYZ(0, 0, 1)},
		spec{XYZ(0, math32.Pi / 2, 0), XYZ(1, 0, 0), XYZ(0, 0, -1)},
		spec{XYZ(0, 0, math32.Pi / 2), XYZ(1, 0, 0), XYZ(0, 1, 0)},
		// No rotation.
		spec{Vec3{}, XYZ(1, 2, 3), XYZ(1, 2, 3)},
		// X then Z: (0,1,0) -> (0,0,1) -> (0,0,1).
		spec{XYZ(math32.Pi / 2, 0, math32.Pi / 2), XYZ(0, 1, 0), XYZ(0, 0, 1)},
	}

	for index, s := range specs {
		got := Rotate4(s.angles).TransformPoint(s.in)
		if !vec3Approx(got, s.exp) {
			t.Fatalf("[spec %d] expected %v rotated by %v to be %v; got %v", index, s.in, s.angles, s.exp, got)
		}
	}
}

// The matrix form of a quaternion must rotate points exactly like the
// quaternion itself.
func TestQuatMat4MatchesRotate(t *testing.T) {
	type spec struct {
		axis  Vec3
		angle float32
	}
	specs := []spec{
		spec{XYZ(0, 0, 1), math32.Pi / 2},
		spec{XYZ(0, 1, 0), math32.Pi / 3},
		spec{XYZ(1, 1, 1).Normalize(), 2.1},
		spec{XYZ(1, 0, 0), -math32.Pi / 4},
	}
	points := []Vec3{
		XYZ(1, 0, 0),
		XYZ(0, -2, 1),
		XYZ(0.3, 0.7, -1.5),
	}

	for index, s := range specs {
		q := QuatFromAxisAngle(s.axis, s.angle)
		m := q.Mat4()
		for _, p := range points {
			if got, exp := m.TransformPoint(p), q.Rotate(p); !vec3Approx(got, exp) {
				t.Fatalf("[spec %d] matrix and quaternion rotations disagree for %v: %v vs %v", index, p, got, exp)
			}
		}
	}
}

func TestTransformCompose(t *testing.T) {
	// Scale happens first, then translation, matching the order the
	// matrices are multiplied in.
	m := Translate4(XYZ(10, 0, 0)).Mul4(Scale4(XYZ(2, 2, 2)))
	if got := m.TransformPoint(XYZ(1, 1, 0)); !vec3Approx(got, XYZ(12, 2, 0)) {
		t.Fatalf("expected translate(scale(v)) to be (12,2,0); got %v", got)
	}
}

func vec3Approx(a, b Vec3) bool {
	for idx := 0; idx < 3; idx++ {
		if math32.Abs(a[idx]-b[idx]) > 1e-5 {
			return false
		}
	}
	return true
}
