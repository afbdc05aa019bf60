package mathutil

import "math"

// Vec3 is a 3-component vector (value type, stack-allocated).
type Vec3 [3]float32

func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

func (a Vec3) Dot(b Vec3) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func (v Vec3) Len() float32 {
	return float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
}

func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return Vec3{}
	}
	return Vec3{v[0] / l, v[1] / l, v[2] / l}
}

// Point returns v as a homogeneous point (w=1).
func (v Vec3) Point() Vec4 { return Vec4{v[0], v[1], v[2], 1} }

// Dir returns v as a homogeneous direction (w=0).
func (v Vec3) Dir() Vec4 { return Vec4{v[0], v[1], v[2], 0} }

// Vec4 is a homogeneous vector. Positions carry w=1, normals and
// directions w=0.
type Vec4 [4]float32

func (a Vec4) Add(b Vec4) Vec4 {
	return Vec4{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
}

func (a Vec4) Sub(b Vec4) Vec4 {
	return Vec4{a[0] - b[0], a[1] - b[1], a[2] - b[2], a[3] - b[3]}
}

func (v Vec4) Scale(s float32) Vec4 {
	return Vec4{v[0] * s, v[1] * s, v[2] * s, v[3] * s}
}

// Dot is the full 4-component dot product. Directions have w=0, so for
// normals and light directions it equals the 3D dot product.
func (a Vec4) Dot(b Vec4) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3]
}

// XYZ drops the w component.
func (v Vec4) XYZ() Vec3 { return Vec3{v[0], v[1], v[2]} }

// Normalize3 normalizes the xyz part and zeroes w.
func (v Vec4) Normalize3() Vec4 {
	n := v.XYZ().Normalize()
	return Vec4{n[0], n[1], n[2], 0}
}
