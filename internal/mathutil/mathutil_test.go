package mathutil

import (
	"math"
	"testing"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) <= 1e-5
}

func approxVec4(a, b Vec4) bool {
	for i := range a {
		if !approx(a[i], b[i]) {
			return false
		}
	}
	return true
}

func TestVec3(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	if got := x.Cross(y); got != (Vec3{0, 0, 1}) {
		t.Errorf("x×y = %v, want z", got)
	}
	if got := (Vec3{3, 4, 0}).Len(); got != 5 {
		t.Errorf("Len = %v, want 5", got)
	}
	if got := (Vec3{0, 0, 0}).Normalize(); got != (Vec3{}) {
		t.Errorf("Normalize(zero) = %v, want zero", got)
	}
	if got := x.Point(); got[3] != 1 {
		t.Errorf("Point w = %v, want 1", got[3])
	}
	if got := x.Dir(); got[3] != 0 {
		t.Errorf("Dir w = %v, want 0", got[3])
	}
}

func TestVec4Normalize3ZeroesW(t *testing.T) {
	v := Vec4{0, 3, 4, 7}.Normalize3()
	if !approxVec4(v, Vec4{0, 0.6, 0.8, 0}) {
		t.Errorf("Normalize3 = %v, want (0,0.6,0.8,0)", v)
	}
}

func TestMat4Mul(t *testing.T) {
	m := Translate(1, 2, 3).Mul(Scale(2))
	p := m.MulVec4(Vec4{1, 1, 1, 1})
	if !approxVec4(p, Vec4{3, 4, 5, 1}) {
		t.Errorf("T·S·p = %v, want (3,4,5,1)", p)
	}
	if got := m.Translation(); got != (Vec3{1, 2, 3}) {
		t.Errorf("Translation = %v", got)
	}
	if Mat4Identity().Mul(m) != m || m.Mul(Mat4Identity()) != m {
		t.Error("identity changed product")
	}
	if Scale(0).At(0, 0) != 0.01 {
		t.Errorf("Scale(0) = %v, want clamped 0.01", Scale(0).At(0, 0))
	}
}

func TestRotations(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		in   Vec4
		want Vec4
	}{
		{"X", RotX(math.Pi / 2), Vec4{0, 1, 0, 0}, Vec4{0, 0, 1, 0}},
		{"Y", RotY(math.Pi / 2), Vec4{0, 0, 1, 0}, Vec4{1, 0, 0, 0}},
		{"Z", RotZ(math.Pi / 2), Vec4{1, 0, 0, 0}, Vec4{0, 1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.MulVec4(tt.in); !approxVec4(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
	if !RotXYZ(0, 0, 0).IsIdentity() {
		t.Error("RotXYZ(0,0,0) is not identity")
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	p := Perspective(Deg2Rad(90), 1, 0.1, 100)

	near := p.MulVec4(Vec4{0, 0, -0.1, 1})
	far := p.MulVec4(Vec4{0, 0, -100, 1})
	if !approx(near[2]/near[3], 0) {
		t.Errorf("near ndc z = %v, want 0", near[2]/near[3])
	}
	if !approx(far[2]/far[3], 1) {
		t.Errorf("far ndc z = %v, want 1", far[2]/far[3])
	}

	// 90° vertical fov: a point at 45° up lands on the top edge.
	edge := p.MulVec4(Vec4{0, 5, -5, 1})
	if !approx(edge[1]/edge[3], 1) {
		t.Errorf("edge ndc y = %v, want 1", edge[1]/edge[3])
	}
}

func TestLookAt(t *testing.T) {
	v := LookAt(Vec3{0, 0, 5}, Vec3{}, Vec3{0, 1, 0})
	got := v.MulVec4(Vec4{0, 0, 0, 1})
	if !approxVec4(got, Vec4{0, 0, -5, 1}) {
		t.Errorf("target in view space = %v, want (0,0,-5,1)", got)
	}
	side := LookAt(Vec3{5, 0, 0}, Vec3{}, Vec3{0, 1, 0})
	if got := side.MulVec4(Vec4{0, 0, 0, 1}); !approxVec4(got, Vec4{0, 0, -5, 1}) {
		t.Errorf("side target = %v, want (0,0,-5,1)", got)
	}
}
