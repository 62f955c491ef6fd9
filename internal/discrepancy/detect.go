// Package discrepancy walks a warping path and flags the student frames whose
// pitch strays from the teacher's by more than a tolerance.
package discrepancy

import (
	"errors"
	"fmt"
	"math"

	"github.com/himanishpuri/VocalCoach/internal/dtw"
	"github.com/himanishpuri/VocalCoach/internal/pitch"
)

// DefaultTolerance is the largest pitch difference accepted without a flag.
const DefaultTolerance = 0.5

var (
	// ErrAxisMismatch indicates a time axis whose length differs from its sequence.
	ErrAxisMismatch = errors.New("discrepancy: time axis length does not match sequence")

	// ErrPathOutOfRange indicates a path index outside its sequence.
	ErrPathOutOfRange = errors.New("discrepancy: path index out of range")

	// ErrInvalidTolerance indicates a negative or non-finite tolerance.
	ErrInvalidTolerance = errors.New("discrepancy: tolerance must be a finite value >= 0")
)

// Scale selects the unit pitch differences are measured in.
type Scale int

const (
	// ScaleHz compares raw pitch values.
	ScaleHz Scale = iota

	// ScaleSemitone compares pitches on a semitone scale relative to A4.
	// An unvoiced frame against a voiced one always counts as a discrepancy;
	// two unvoiced frames never do.
	ScaleSemitone
)

func (s Scale) String() string {
	switch s {
	case ScaleHz:
		return "hz"
	case ScaleSemitone:
		return "semitone"
	default:
		return "unknown"
	}
}

// ParseScale maps "hz" or "semitone" to a Scale.
func ParseScale(name string) (Scale, error) {
	switch name {
	case "", "hz":
		return ScaleHz, nil
	case "semitone", "semitones":
		return ScaleSemitone, nil
	}
	return ScaleHz, fmt.Errorf("discrepancy: unknown scale %q", name)
}

// Options configures Detect.
type Options struct {
	Tolerance float64
	Scale     Scale
}

// DefaultOptions returns the 0.5 tolerance on the raw scale.
func DefaultOptions() Options {
	return Options{Tolerance: DefaultTolerance, Scale: ScaleHz}
}

// Discrepancy is one path pair whose pitches differ beyond tolerance.
type Discrepancy struct {
	TeacherIdx   int
	StudentIdx   int
	TeacherPitch float64
	StudentPitch float64
	Diff         float64 // in the configured scale
	TeacherTime  float64
	Time         float64 // student time, the flagged timestamp
}

// Detect returns one Discrepancy per offending path pair, in path order.
// The same student frame can appear several times when the path repeats it.
func Detect(
	teacher, student pitch.Sequence,
	teacherTimes, studentTimes pitch.TimeAxis,
	path dtw.Path,
	opts Options,
) ([]Discrepancy, error) {
	if math.IsNaN(opts.Tolerance) || math.IsInf(opts.Tolerance, 0) || opts.Tolerance < 0 {
		return nil, fmt.Errorf("tolerance %v: %w", opts.Tolerance, ErrInvalidTolerance)
	}
	if len(teacherTimes) != len(teacher) {
		return nil, fmt.Errorf("teacher: %d times for %d frames: %w", len(teacherTimes), len(teacher), ErrAxisMismatch)
	}
	if len(studentTimes) != len(student) {
		return nil, fmt.Errorf("student: %d times for %d frames: %w", len(studentTimes), len(student), ErrAxisMismatch)
	}

	var out []Discrepancy
	for k, c := range path {
		if c.I < 0 || c.I >= len(teacher) || c.J < 0 || c.J >= len(student) {
			return nil, fmt.Errorf("step %d (%d,%d): %w", k, c.I, c.J, ErrPathOutOfRange)
		}

		diff := difference(teacher[c.I], student[c.J], opts.Scale)
		if diff <= opts.Tolerance {
			continue
		}
		out = append(out, Discrepancy{
			TeacherIdx:   c.I,
			StudentIdx:   c.J,
			TeacherPitch: teacher[c.I],
			StudentPitch: student[c.J],
			Diff:         diff,
			TeacherTime:  teacherTimes[c.I],
			Time:         studentTimes[c.J],
		})
	}
	return out, nil
}

// Timestamps extracts the flagged student times in path order.
func Timestamps(ds []Discrepancy) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = d.Time
	}
	return out
}

func difference(a, b float64, scale Scale) float64 {
	if scale != ScaleSemitone {
		return math.Abs(a - b)
	}

	aVoiced, bVoiced := a > 0, b > 0
	switch {
	case !aVoiced && !bVoiced:
		return 0
	case aVoiced != bVoiced:
		return math.Inf(1)
	}
	return math.Abs(semitones(a) - semitones(b))
}

func semitones(hz float64) float64 {
	return 12 * math.Log2(hz/440.0)
}
