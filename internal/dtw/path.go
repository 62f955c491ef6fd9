package dtw

import "math"

// Coord pairs a frame of the first sequence (I, the teacher) with a frame
// of the second (J, the student).
type Coord struct {
	I int
	J int
}

// Path is a monotonic warping path in forward order.
type Path []Coord

// Valid reports whether p is a complete warping path for sequences of
// lengths n and m: it starts at (0,0), ends at (n-1,m-1), and every step
// advances I, J or both by exactly one.
func (p Path) Valid(n, m int) bool {
	if len(p) == 0 || n <= 0 || m <= 0 {
		return false
	}
	if p[0] != (Coord{}) || p[len(p)-1] != (Coord{I: n - 1, J: m - 1}) {
		return false
	}
	for k := 1; k < len(p); k++ {
		di, dj := p[k].I-p[k-1].I, p[k].J-p[k-1].J
		if di < 0 || dj < 0 || di > 1 || dj > 1 || di+dj == 0 {
			return false
		}
	}
	return true
}

// Cost sums the local distance |a[I]-b[J]| along p.
func (p Path) Cost(a, b []float64) float64 {
	total := 0.0
	for _, c := range p {
		total += math.Abs(a[c.I] - b[c.J])
	}
	return total
}

// Pairs returns the path as [teacher, student] index pairs, the shape JSON
// consumers expect.
func (p Path) Pairs() [][2]int {
	out := make([][2]int, len(p))
	for k, c := range p {
		out[k] = [2]int{c.I, c.J}
	}
	return out
}
