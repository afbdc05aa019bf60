package raster

// walkFlatLanes is walkFlat processed in groups of four pixels. Lane
// values are produced by the same sequence of additions the scalar walker
// performs, so coverage and depth are bit-identical.
func walkFlatLanes(crow []uint32, zrow []float32, w0, w1, w2, z float32, dx *spanSteps, c uint32) uint64 {
	var n uint64
	x := 0
	for ; x+4 <= len(crow); x += 4 {
		var l0, l1, l2, lz [4]float32
		l0[0], l1[0], l2[0], lz[0] = w0, w1, w2, z
		for k := 1; k < 4; k++ {
			l0[k] = l0[k-1] + dx.e0
			l1[k] = l1[k-1] + dx.e1
			l2[k] = l2[k-1] + dx.e2
			lz[k] = lz[k-1] + dx.z
		}

		var inside uint8
		for k := 0; k < 4; k++ {
			if l0[k] >= 0 && l1[k] >= 0 && l2[k] >= 0 {
				inside |= 1 << k
			}
		}
		if inside != 0 {
			zs := zrow[x : x+4 : x+4]
			cs := crow[x : x+4 : x+4]
			for k := 0; k < 4; k++ {
				if inside&(1<<k) != 0 && lz[k] > zs[k] {
					zs[k] = lz[k]
					cs[k] = c
					n++
				}
			}
		}

		w0 = l0[3] + dx.e0
		w1 = l1[3] + dx.e1
		w2 = l2[3] + dx.e2
		z = lz[3] + dx.z
	}
	return n + walkFlat(crow[x:], zrow[x:], w0, w1, w2, z, dx, c)
}
