package dtw

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEmptySequence indicates one or both inputs are empty.
	ErrEmptySequence = errors.New("dtw: input sequences must be non-empty")

	// ErrTooLarge indicates an N*M table above Options.MaxCells.
	ErrTooLarge = errors.New("dtw: alignment table too large")
)

// step records which predecessor produced a cell's minimum.
type step uint8

const (
	stepNone step = iota
	stepDiagonal
	stepVertical   // (i-1, j): a advances, b repeats
	stepHorizontal // (i, j-1): b advances, a repeats
)

// Options tunes the aligner. The zero value means an unconstrained search.
type Options struct {
	// Window is the Sakoe-Chiba half-width |i-j| ≤ Window. Zero or negative
	// disables the band.
	Window int

	// MaxCells caps N*M before anything is allocated. The band does not
	// shrink the table, so it does not relax this limit. Zero means no cap.
	MaxCells int
}

// Result is an optimal alignment and its accumulated cost.
type Result struct {
	Path Path
	Cost float64
}

// Align computes the minimum-cost warping path between a and b. Unequal
// lengths are expected and handled; only an empty input is an error.
func Align(a, b []float64, opts *Options) (*Result, error) {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return nil, ErrEmptySequence
	}
	if opts != nil && opts.MaxCells > 0 && n > opts.MaxCells/m {
		return nil, fmt.Errorf("%d x %d frames (limit %d cells): %w", n, m, opts.MaxCells, ErrTooLarge)
	}

	band := math.MaxInt
	if opts != nil && opts.Window > 0 {
		band = max(opts.Window, abs(n-m))
	}

	inf := math.Inf(1)
	cost := make([][]float64, n+1)
	from := make([][]step, n+1)
	for i := range cost {
		cost[i] = make([]float64, m+1)
		from[i] = make([]step, m+1)
	}
	for i := 1; i <= n; i++ {
		cost[i][0] = inf
	}
	for j := 1; j <= m; j++ {
		cost[0][j] = inf
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if abs(i-j) > band {
				cost[i][j] = inf
				continue
			}

			best, dir := cost[i-1][j-1], stepDiagonal
			if v := cost[i-1][j]; v < best {
				best, dir = v, stepVertical
			}
			if v := cost[i][j-1]; v < best {
				best, dir = v, stepHorizontal
			}

			cost[i][j] = math.Abs(a[i-1]-b[j-1]) + best
			from[i][j] = dir
		}
	}

	return &Result{
		Path: backtrace(from, n, m),
		Cost: cost[n][m],
	}, nil
}

// backtrace walks predecessor links from (n,m) to (1,1) and returns the
// path in forward order with 0-based indices.
func backtrace(from [][]step, n, m int) Path {
	path := make(Path, 0, n+m-1)
	i, j := n, m
	for i > 0 && j > 0 {
		path = append(path, Coord{I: i - 1, J: j - 1})
		switch from[i][j] {
		case stepVertical:
			i--
		case stepHorizontal:
			j--
		default:
			i--
			j--
		}
	}

	// reverse path in-place
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
