package discrepancy

import (
	"math"
	"testing"

	"github.com/himanishpuri/VocalCoach/internal/dtw"
	"github.com/himanishpuri/VocalCoach/internal/pitch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var diagonal3 = dtw.Path{{I: 0, J: 0}, {I: 1, J: 1}, {I: 2, J: 2}}

func TestDetectTolerance(t *testing.T) {
	teacher := pitch.Sequence{10, 10, 10}
	student := pitch.Sequence{10.6, 10.6, 10.6}
	times := pitch.TimeAxis{0, 1, 2}

	tests := []struct {
		tolerance float64
		want      []float64
	}{
		{tolerance: 0.5, want: []float64{0, 1, 2}},
		{tolerance: 1.0, want: []float64{}},
	}

	for _, tt := range tests {
		ds, err := Detect(teacher, student, times, times, diagonal3, Options{Tolerance: tt.tolerance})
		require.NoError(t, err)
		assert.Equal(t, tt.want, Timestamps(ds), "tolerance %.1f", tt.tolerance)
	}
}

func TestDetectUsesStudentTime(t *testing.T) {
	teacher := pitch.Sequence{220, 220, 330, 330}
	student := pitch.Sequence{220, 220, 260, 330}
	teacherTimes := pitch.TimeAxis{0, 1, 2, 3}
	studentTimes := pitch.TimeAxis{0, 1.5, 3, 4.5}
	path := dtw.Path{{I: 0, J: 0}, {I: 0, J: 1}, {I: 1, J: 2}, {I: 2, J: 3}, {I: 3, J: 3}}

	ds, err := Detect(teacher, student, teacherTimes, studentTimes, path, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, ds, 1)

	d := ds[0]
	assert.Equal(t, 1, d.TeacherIdx)
	assert.Equal(t, 2, d.StudentIdx)
	assert.Equal(t, 40.0, d.Diff)
	assert.Equal(t, 3.0, d.Time)
	assert.Equal(t, 1.0, d.TeacherTime)
}

func TestDetectKeepsDuplicates(t *testing.T) {
	teacher := pitch.Sequence{100, 100, 100}
	student := pitch.Sequence{300}
	path := dtw.Path{{I: 0, J: 0}, {I: 1, J: 0}, {I: 2, J: 0}}

	ds, err := Detect(teacher, student, pitch.TimeAxis{0, 1, 2}, pitch.TimeAxis{7}, path, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 7, 7}, Timestamps(ds))
}

func TestDetectSemitoneScale(t *testing.T) {
	// 440 -> 466.16 is one semitone; 0 marks an unvoiced frame.
	teacher := pitch.Sequence{440, 440, 0, 0}
	student := pitch.Sequence{466.16, 445, 0, 220}
	times := pitch.TimeAxis{0, 1, 2, 3}
	path := dtw.Path{{I: 0, J: 0}, {I: 1, J: 1}, {I: 2, J: 2}, {I: 3, J: 3}}

	ds, err := Detect(teacher, student, times, times, path, Options{Tolerance: 0.5, Scale: ScaleSemitone})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 3}, Timestamps(ds))
	assert.InDelta(t, 1.0, ds[0].Diff, 1e-3)
	assert.True(t, math.IsInf(ds[1].Diff, 1))
}

func TestDetectErrors(t *testing.T) {
	seq := pitch.Sequence{1, 2, 3}
	times := pitch.TimeAxis{0, 1, 2}

	_, err := Detect(seq, seq, times[:2], times, diagonal3, DefaultOptions())
	assert.ErrorIs(t, err, ErrAxisMismatch)

	_, err = Detect(seq, seq, times, times[:1], diagonal3, DefaultOptions())
	assert.ErrorIs(t, err, ErrAxisMismatch)

	_, err = Detect(seq, seq, times, times, dtw.Path{{I: 0, J: 0}, {I: 3, J: 1}}, DefaultOptions())
	assert.ErrorIs(t, err, ErrPathOutOfRange)

	for _, tol := range []float64{-0.1, math.NaN(), math.Inf(1)} {
		_, err = Detect(seq, seq, times, times, diagonal3, Options{Tolerance: tol})
		assert.ErrorIs(t, err, ErrInvalidTolerance)
	}
}

func TestParseScale(t *testing.T) {
	s, err := ParseScale("semitone")
	require.NoError(t, err)
	assert.Equal(t, ScaleSemitone, s)

	s, err = ParseScale("")
	require.NoError(t, err)
	assert.Equal(t, ScaleHz, s)

	_, err = ParseScale("cents")
	assert.Error(t, err)
}
