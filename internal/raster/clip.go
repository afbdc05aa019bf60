package raster

import "cpu-rasterizer/internal/mathutil"

// MinW is the smallest clip-space w a vertex may have. Triangles touching
// or crossing the camera plane are dropped whole rather than clipped.
const MinW float32 = 1e-4

// BehindCamera reports whether any vertex has w ≤ MinW.
func BehindCamera(a, b, c mathutil.Vec4) bool {
	return a[3] <= MinW || b[3] <= MinW || c[3] <= MinW
}

// OutsideFrustum reports whether all three clip-space vertices lie
// outside the same plane of x<-w, x>w, y<-w, y>w, z<0, z>w.
func OutsideFrustum(a, b, c mathutil.Vec4) bool {
	switch {
	case a[0] < -a[3] && b[0] < -b[3] && c[0] < -c[3]:
		return true
	case a[0] > a[3] && b[0] > b[3] && c[0] > c[3]:
		return true
	case a[1] < -a[3] && b[1] < -b[3] && c[1] < -c[3]:
		return true
	case a[1] > a[3] && b[1] > b[3] && c[1] > c[3]:
		return true
	case a[2] < 0 && b[2] < 0 && c[2] < 0:
		return true
	case a[2] > a[3] && b[2] > b[3] && c[2] > c[3]:
		return true
	}
	return false
}
