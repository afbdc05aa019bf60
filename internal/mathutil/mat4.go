package mathutil

import "math"

// Mat4 is a 4×4 matrix stored row-major and applied to column vectors:
// p' = M × p. Translation lives in elements 3, 7 and 11.
type Mat4 [16]float32

func Mat4Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mat4Mul returns a × b.
func Mat4Mul(a, b Mat4) Mat4 {
	var m Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = a[r*4+0]*b[0*4+c] + a[r*4+1]*b[1*4+c] +
				a[r*4+2]*b[2*4+c] + a[r*4+3]*b[3*4+c]
		}
	}
	return m
}

// Mul returns m × b.
func (m Mat4) Mul(b Mat4) Mat4 { return Mat4Mul(m, b) }

// MulVec4 transforms a homogeneous vector.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3]*v[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7]*v[3],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11]*v[3],
		m[12]*v[0] + m[13]*v[1] + m[14]*v[2] + m[15]*v[3],
	}
}

// MulPoint transforms a 3D point (w=1) by the 4×4 matrix, ignoring the
// projective row.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11],
	}
}

// At returns the element at row r, column c.
func (m Mat4) At(r, c int) float32 { return m[r*4+c] }

// Translation returns the translation column.
func (m Mat4) Translation() Vec3 { return Vec3{m[3], m[7], m[11]} }

// IsIdentity checks if the matrix is approximately identity.
func (m Mat4) IsIdentity() bool {
	id := Mat4Identity()
	for i := 0; i < 16; i++ {
		d := m[i] - id[i]
		if d > 1e-6 || d < -1e-6 {
			return false
		}
	}
	return true
}

func Translate(x, y, z float32) Mat4 {
	m := Mat4Identity()
	m[3] = x
	m[7] = y
	m[11] = z
	return m
}

// Scale builds a uniform scale. Scales below 0.01 are clamped so a
// drawable never collapses to a degenerate matrix.
func Scale(s float32) Mat4 {
	if s < 0.01 {
		s = 0.01
	}
	m := Mat4Identity()
	m[0] = s
	m[5] = s
	m[10] = s
	return m
}

// Perspective builds a right-handed projection mapping view-space depth
// -near..-far to clip z/w 0..1, with w = -z_view.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	t := float32(math.Tan(float64(fovY) * 0.5))
	var m Mat4
	m[0] = 1 / (aspect * t)
	m[5] = 1 / t
	m[10] = -far / (far - near)
	m[11] = -(far * near) / (far - near)
	m[14] = -1
	return m
}

// LookAt builds a view matrix with the camera at eye looking at target.
func LookAt(eye, target, up Vec3) Mat4 {
	forward := eye.Sub(target).Normalize()
	right := up.Cross(forward).Normalize()
	newUp := forward.Cross(right)

	return Mat4{
		right[0], right[1], right[2], -right.Dot(eye),
		newUp[0], newUp[1], newUp[2], -newUp.Dot(eye),
		forward[0], forward[1], forward[2], -forward.Dot(eye),
		0, 0, 0, 1,
	}
}
