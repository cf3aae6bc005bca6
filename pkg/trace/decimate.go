package trace

import "slices"

// Decimate thins a trace for on-screen previews, keeping at most maxPoints
// samples spread evenly across rows with the first and last always present.
// The result reuses dst's backing array when it is large enough. With
// maxPoints <= 0, or when rows already fit, it is a copy of rows.
func Decimate(dst []Record, rows []Record, maxPoints int) []Record {
	n := len(rows)
	if maxPoints <= 0 || n <= maxPoints {
		return append(dst[:0], rows...)
	}

	dst = slices.Grow(dst[:0], maxPoints)
	if maxPoints == 1 {
		return append(dst, rows[n-1])
	}
	for i := range maxPoints {
		dst = append(dst, rows[i*(n-1)/(maxPoints-1)])
	}
	return dst
}
