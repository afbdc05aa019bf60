// Package parallel splits a frame into horizontal row bands and runs a
// per-band job on a fixed set of persistent goroutines.
package parallel

// RowAlign is the row granularity of band boundaries. Interior band ends
// fall on multiples of it so bands start on aligned rows.
const RowAlign = 4

// Band is an inclusive row range. A band with Y0 > Y1 is empty.
type Band struct {
	Y0, Y1 int
}

// Empty reports whether the band covers no rows.
func (b Band) Empty() bool { return b.Y0 > b.Y1 }

// Rows returns the number of rows in the band.
func (b Band) Rows() int {
	if b.Empty() {
		return 0
	}
	return b.Y1 - b.Y0 + 1
}

// SliceRanges partitions rows 0..h-1 into slices bands.
func SliceRanges(h, slices int) []Band {
	if slices < 1 {
		slices = 1
	}
	dst := make([]Band, slices)
	ComputeInto(dst, h)
	return dst
}

// ComputeInto partitions rows 0..h-1 into len(dst) bands in place.
//
// Each band ideally gets h/len(dst) rows, the first h%len(dst) one extra.
// Every band except the last ends just before its cumulative ideal
// boundary rounded down to RowAlign, never before the previous end; the
// last band ends at h-1. Bands are contiguous and disjoint, and together
// cover 0..h-1 exactly. With h ≤ 0 every band is empty.
func ComputeInto(dst []Band, h int) {
	s := len(dst)
	if s == 0 {
		return
	}
	if h <= 0 {
		for i := range dst {
			dst[i] = Band{Y0: 0, Y1: -1}
		}
		return
	}

	base := h / s
	rem := h % s
	start := 0
	ideal := 0
	for i := 0; i < s; i++ {
		n := base
		if i < rem {
			n++
		}
		ideal += n

		end := h
		if i != s-1 {
			end = ideal / RowAlign * RowAlign
			if end < start {
				end = start
			}
		}
		dst[i] = Band{Y0: start, Y1: end - 1}
		start = end
	}
}
