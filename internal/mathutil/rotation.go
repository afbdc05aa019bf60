package mathutil

import "math"

// RotX returns a 4×4 rotation around the X axis. Angle in radians.
func RotX(a float32) Mat4 {
	c, s := sincos(a)
	return Mat4{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	}
}

// RotY returns a 4×4 rotation around the Y axis.
func RotY(a float32) Mat4 {
	c, s := sincos(a)
	return Mat4{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotZ returns a 4×4 rotation around the Z axis.
func RotZ(a float32) Mat4 {
	c, s := sincos(a)
	return Mat4{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// RotXYZ applies Z, then Y, then X.
func RotXYZ(x, y, z float32) Mat4 {
	return Mat4Mul(Mat4Mul(RotX(x), RotY(y)), RotZ(z))
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float32) float32 {
	return d * math.Pi / 180
}

func sincos(a float32) (float32, float32) {
	s, c := math.Sincos(float64(a))
	return float32(c), float32(s)
}
