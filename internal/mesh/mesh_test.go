package mesh

import (
	"math"
	"testing"
)

func TestCube(t *testing.T) {
	m := Cube(2)
	if len(m.Vertices) != 24 || len(m.Triangles) != 12 {
		t.Fatalf("Cube: %d vertices, %d triangles; want 24, 12", len(m.Vertices), len(m.Triangles))
	}
	for i, v := range m.Vertices {
		for k := 0; k < 3; k++ {
			if math.Abs(float64(v.P[k])) != 1 {
				t.Fatalf("vertex %d = %v, want corners at ±1", i, v.P)
			}
		}
		// Each face normal points the same way as its vertices.
		if d := v.P.XYZ().Dot(v.N.XYZ()); d != 1 {
			t.Errorf("vertex %d: P·N = %v, want 1", i, d)
		}
	}
}

func TestSphere(t *testing.T) {
	m := Sphere(2, 1, 1)
	if len(m.Vertices) != 3*4 {
		t.Errorf("clamped sphere vertices = %d, want 12", len(m.Vertices))
	}
	if len(m.Triangles) != 2*3*2 {
		t.Errorf("clamped sphere triangles = %d, want 12", len(m.Triangles))
	}

	m = Sphere(3, 8, 12)
	for i, v := range m.Vertices {
		if l := v.P.XYZ().Len(); math.Abs(float64(l-3)) > 1e-5 {
			t.Fatalf("vertex %d radius = %v, want 3", i, l)
		}
		if v.U < 0 || v.U > 1 || v.V < 0 || v.V > 1 {
			t.Fatalf("vertex %d uv = (%v,%v), want in [0,1]", i, v.U, v.V)
		}
	}
}

func TestBuild(t *testing.T) {
	m := Rectangle(0, 0, 1, 1)
	m.Triangles = append(m.Triangles, [3]uint32{0, 1, 99})

	a := Build(m, true)
	if a.TriCount != 2 {
		t.Errorf("TriCount = %d, want 2 (bad triangle skipped)", a.TriCount)
	}
	if len(a.Positions) != 6 || len(a.Normals) != 6 || len(a.UVs) != 12 {
		t.Errorf("streams = %d/%d/%d, want 6/6/12", len(a.Positions), len(a.Normals), len(a.UVs))
	}
	for i := range a.Positions {
		if a.Positions[i][3] != 1 || a.Normals[i][3] != 0 {
			t.Fatalf("vertex %d: w = %v/%v, want 1/0", i, a.Positions[i][3], a.Normals[i][3])
		}
	}
	if got := a.Normals[0].XYZ(); got[2] != 1 {
		t.Errorf("rectangle normal = %v, want +z", got)
	}

	noUV := Build(m, false)
	if noUV.HasUV || len(noUV.UVs) != 0 {
		t.Error("Build without UVs emitted UVs")
	}
	if rm := a.Mesh(); rm.TriCount != 2 || !rm.HasUV {
		t.Errorf("Mesh() = %+v", rm)
	}
}
