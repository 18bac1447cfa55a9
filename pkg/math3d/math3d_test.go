package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestAngleBetween(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vec3
		expected float64
	}{
		{"same", V3(1, 0, 0), V3(1, 0, 0), 0},
		{"orthogonal", V3(1, 0, 0), V3(0, 1, 0), math.Pi / 2},
		{"opposite", V3(0, 0, -1), V3(0, 0, 1), math.Pi},
		{"unnormalized", V3(3, 0, 0), V3(0, 0, 0.5), math.Pi / 2},
		{"zero length", V3(0, 0, 0), V3(1, 0, 0), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.a.AngleBetween(tc.b)
			if math.Abs(got-tc.expected) > eps {
				t.Errorf("AngleBetween(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.expected)
			}
		})
	}
}

func TestAngleBetweenNeverNaN(t *testing.T) {
	// Parallel vectors whose normalized dot can drift just past 1.
	vs := []Vec3{
		V3(0.1, 0.2, 0.3),
		V3(1e-3, 7, -13.37),
		V3(0.7071067811865476, 0.7071067811865476, 0),
		V3(50, 50, -50),
	}
	for _, v := range vs {
		if a := v.AngleBetween(v); math.IsNaN(a) || a > 1e-6 {
			t.Errorf("AngleBetween(%v, itself) = %v, want ~0", v, a)
		}
		if a := v.AngleBetween(v.Negate()); math.IsNaN(a) || math.Abs(a-math.Pi) > 1e-6 {
			t.Errorf("AngleBetween(%v, -itself) = %v, want ~pi", v, a)
		}
	}
}

func TestRotateAround(t *testing.T) {
	tests := []struct {
		name     string
		v, axis  Vec3
		angle    float64
		expected Vec3
	}{
		{"x about z", V3(1, 0, 0), V3(0, 0, 1), math.Pi / 2, V3(0, 1, 0)},
		{"y about x", V3(0, 1, 0), V3(1, 0, 0), math.Pi / 2, V3(0, 0, 1)},
		{"unnormalized axis", V3(1, 0, 0), V3(0, 0, 5), math.Pi, V3(-1, 0, 0)},
		{"along axis", V3(0, 0, 2), V3(0, 0, 1), 1.234, V3(0, 0, 2)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.v.RotateAround(tc.axis, tc.angle)
			if !got.ApproxEqual(tc.expected, eps) {
				t.Errorf("got %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestLookAt(t *testing.T) {
	view := LookAt(V3(0, 0, 10), Zero3(), Up())

	got := view.MulVec3(Zero3())
	if !got.ApproxEqual(V3(0, 0, -10), eps) {
		t.Errorf("target in view space = %v, want (0, 0, -10)", got)
	}

	// A point above the target stays above in view space.
	got = view.MulVec3(V3(0, 3, 0))
	if !got.ApproxEqual(V3(0, 3, -10), eps) {
		t.Errorf("point above target = %v, want (0, 3, -10)", got)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	near, far := 0.1, 100.0
	proj := Perspective(math.Pi/3, 1.5, near, far)

	if z := proj.MulVec3(V3(0, 0, -near)).Z; math.Abs(z+1) > 1e-6 {
		t.Errorf("near plane NDC z = %v, want -1", z)
	}
	if z := proj.MulVec3(V3(0, 0, -far)).Z; math.Abs(z-1) > 1e-6 {
		t.Errorf("far plane NDC z = %v, want 1", z)
	}
}

func TestInverse(t *testing.T) {
	m := Translate(V3(1, -2, 3)).
		Mul(Rotate(V3(1, 1, 0), 0.7)).
		Mul(Scale(V3(2, 3, 4)))

	id := m.Mul(m.Inverse())
	want := Identity()
	for i := range id {
		if math.Abs(id[i]-want[i]) > 1e-9 {
			t.Fatalf("m * inverse(m) = %v, want identity", id)
		}
	}
}

func TestInverseSingular(t *testing.T) {
	if got := Scale(V3(0, 1, 1)).Inverse(); got != Identity() {
		t.Errorf("inverse of singular matrix = %v, want identity", got)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(1.0000000002, -1, 1) != 1 {
		t.Error("Clamp should cap overshoot at 1")
	}
	if Clamp(-3, -1, 1) != -1 {
		t.Error("Clamp should raise to -1")
	}
	if Clamp(0.25, -1, 1) != 0.25 {
		t.Error("Clamp should pass through in-range values")
	}
}
