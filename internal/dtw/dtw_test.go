package dtw_test

import (
	"math/rand"
	"testing"

	"github.com/himanishpuri/VocalCoach/internal/dtw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAlign_EmptyInput verifies that an empty side is reported, never indexed.
func TestAlign_EmptyInput(t *testing.T) {
	_, err := dtw.Align([]float64{}, []float64{1, 2, 3}, nil)
	assert.ErrorIs(t, err, dtw.ErrEmptySequence, "empty first sequence should error")

	_, err = dtw.Align([]float64{1, 2, 3}, nil, nil)
	assert.ErrorIs(t, err, dtw.ErrEmptySequence, "empty second sequence should error")
}

// TestAlign_MaxCells verifies the table-size cap is checked on N*M and that
// a band does not bypass it.
func TestAlign_MaxCells(t *testing.T) {
	opts := &dtw.Options{MaxCells: 12}

	res, err := dtw.Align(make([]float64, 3), make([]float64, 4), opts)
	require.NoError(t, err, "3x4 sits exactly on the cap")
	assert.True(t, res.Path.Valid(3, 4))

	_, err = dtw.Align(make([]float64, 4), make([]float64, 4), opts)
	assert.ErrorIs(t, err, dtw.ErrTooLarge)

	_, err = dtw.Align(make([]float64, 13), make([]float64, 1), opts)
	assert.ErrorIs(t, err, dtw.ErrTooLarge)

	_, err = dtw.Align(make([]float64, 4), make([]float64, 4), &dtw.Options{MaxCells: 12, Window: 1})
	assert.ErrorIs(t, err, dtw.ErrTooLarge)

	_, err = dtw.Align(make([]float64, 400), make([]float64, 400), &dtw.Options{})
	assert.NoError(t, err, "zero means no cap")
}

// TestAlign_SingleFrames checks the 1x1 case and its local distance.
func TestAlign_SingleFrames(t *testing.T) {
	res, err := dtw.Align([]float64{1}, []float64{100}, nil)
	require.NoError(t, err)
	assert.Equal(t, dtw.Path{{I: 0, J: 0}}, res.Path)
	assert.Equal(t, 99.0, res.Cost)
}

// TestAlign_ZeroCostStretch aligns a constant sequence against a longer one.
func TestAlign_ZeroCostStretch(t *testing.T) {
	a := []float64{0, 0, 0}
	b := []float64{0, 0, 0, 0, 0}

	res, err := dtw.Align(a, b, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Cost)
	assert.Equal(t, 0.0, res.Path.Cost(a, b))
	assert.True(t, res.Path.Valid(len(a), len(b)))
}

// TestAlign_PrefersDiagonal checks that equal-cost alternatives resolve to
// the balanced diagonal path.
func TestAlign_PrefersDiagonal(t *testing.T) {
	a := []float64{5, 5, 5}
	b := []float64{5, 5, 5}

	res, err := dtw.Align(a, b, nil)
	require.NoError(t, err)
	assert.Equal(t, dtw.Path{{0, 0}, {1, 1}, {2, 2}}, res.Path)
}

// TestAlign_TieBreak pins the predecessor order on tied tables.
func TestAlign_TieBreak(t *testing.T) {
	a := []float64{0, 1}
	b := []float64{0, 1}
	res, err := dtw.Align(a, b, nil)
	require.NoError(t, err)
	assert.Equal(t, dtw.Path{{0, 0}, {1, 1}}, res.Path)

	// D[2][2] predecessors: diag=D[1][1]=1, vertical=D[1][2]=1, horizontal=D[2][1]=1.
	a = []float64{0, 1}
	b = []float64{1, 0}
	res, err = dtw.Align(a, b, nil)
	require.NoError(t, err)
	assert.Equal(t, dtw.Path{{0, 0}, {1, 1}}, res.Path, "diagonal wins a three-way tie")

	// A spike in the middle of a is paid exactly once.
	a = []float64{0, 9, 0}
	b = []float64{0, 0}
	res, err = dtw.Align(a, b, nil)
	require.NoError(t, err)
	assert.True(t, res.Path.Valid(3, 2))
	assert.Equal(t, 9.0, res.Cost)
}

// TestAlign_Subsequence checks a perfect stretched match.
func TestAlign_Subsequence(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{1, 2, 2, 3}

	res, err := dtw.Align(a, b, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Cost)
	assert.Equal(t, dtw.Path{{0, 0}, {1, 1}, {1, 2}, {2, 3}}, res.Path)
}

// TestAlign_TeacherStudentScenario pins the path for a short melody whose
// third student note is off.
func TestAlign_TeacherStudentScenario(t *testing.T) {
	teacher := []float64{220, 220, 330, 330}
	student := []float64{220, 220, 260, 330}

	res, err := dtw.Align(teacher, student, nil)
	require.NoError(t, err)
	assert.Equal(t, 40.0, res.Cost)
	assert.Equal(t, dtw.Path{{0, 0}, {0, 1}, {1, 2}, {2, 3}, {3, 3}}, res.Path)
	assert.Equal(t, res.Cost, res.Path.Cost(teacher, student))
}

// TestAlign_RandomProperties checks monotonicity, endpoints and that the
// reported cost matches the path for random inputs of unequal length.
func TestAlign_RandomProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		n, m := 1+rng.Intn(40), 1+rng.Intn(40)
		a, b := make([]float64, n), make([]float64, m)
		for i := range a {
			a[i] = 100 + rng.Float64()*300
		}
		for j := range b {
			b[j] = 100 + rng.Float64()*300
		}

		for _, opts := range []*dtw.Options{nil, {Window: 3}} {
			res, err := dtw.Align(a, b, opts)
			require.NoError(t, err)
			require.True(t, res.Path.Valid(n, m), "trial %d (%dx%d) produced invalid path", trial, n, m)
			assert.InDelta(t, res.Cost, res.Path.Cost(a, b), 1e-9)
			assert.GreaterOrEqual(t, len(res.Path), max(n, m))
			assert.LessOrEqual(t, len(res.Path), n+m-1)
		}
	}
}

// TestAlign_WindowWidensToLengthGap checks that a narrow band is widened to
// the length gap, still reaches the corner and never beats the free search.
func TestAlign_WindowWidensToLengthGap(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{1, 1, 1, 1, 1, 1, 2, 3}

	free, err := dtw.Align(a, b, nil)
	require.NoError(t, err)
	banded, err := dtw.Align(a, b, &dtw.Options{Window: 1})
	require.NoError(t, err)

	assert.True(t, banded.Path.Valid(len(a), len(b)))
	assert.GreaterOrEqual(t, banded.Cost, free.Cost)
	for _, c := range banded.Path {
		assert.LessOrEqual(t, c.I-c.J, len(b)-len(a))
		assert.LessOrEqual(t, c.J-c.I, len(b)-len(a))
	}
}

func TestPath_Valid(t *testing.T) {
	assert.False(t, dtw.Path{}.Valid(1, 1))
	assert.False(t, dtw.Path{{1, 0}}.Valid(2, 1), "must start at origin")
	assert.False(t, dtw.Path{{0, 0}, {2, 1}}.Valid(3, 2), "no skipped frames")
	assert.False(t, dtw.Path{{0, 0}, {0, 0}}.Valid(1, 1), "every step must advance")
	assert.False(t, dtw.Path{{0, 0}, {1, 1}}.Valid(3, 2), "must end at the corner")
	assert.True(t, dtw.Path{{0, 0}, {1, 0}, {1, 1}}.Valid(2, 2))
}

func TestPath_Pairs(t *testing.T) {
	p := dtw.Path{{0, 0}, {1, 2}}
	assert.Equal(t, [][2]int{{0, 0}, {1, 2}}, p.Pairs())
}
