package pitch

import (
	"errors"
	"fmt"
	"math"
)

// Unvoiced is the value a frame with no pitch candidates reduces to.
const Unvoiced = 0.0

var (
	// ErrNonFinite indicates a sequence or time axis holding NaN or ±Inf.
	ErrNonFinite = errors.New("pitch: non-finite value")

	// ErrDecreasingTime indicates a time axis that moves backwards.
	ErrDecreasingTime = errors.New("pitch: time axis must be non-decreasing")

	// ErrInvalidFrameConfig indicates an unusable extractor configuration.
	ErrInvalidFrameConfig = errors.New("pitch: invalid frame configuration")
)

// Candidate is one pitch hypothesis inside a frame.
type Candidate struct {
	Pitch    float64 // Hz
	Strength float64 // spectral magnitude at the peak
}

// Frame holds every candidate found in one analysis window. An empty frame
// means silence or an unvoiced segment.
type Frame []Candidate

// Matrix is the time-major multi-candidate pitch estimate of a recording.
type Matrix []Frame

// Sequence holds one representative pitch per frame.
type Sequence []float64

// TimeAxis maps frame index to seconds in the originating recording.
type TimeAxis []float64

// Validate rejects non-finite pitch values.
func (s Sequence) Validate() error {
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("frame %d: %w", i, ErrNonFinite)
		}
	}
	return nil
}

// Validate checks that the axis is finite and non-decreasing.
func (t TimeAxis) Validate() error {
	for i, v := range t {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("time %d: %w", i, ErrNonFinite)
		}
		if i > 0 && v < t[i-1] {
			return fmt.Errorf("time %d (%.4fs < %.4fs): %w", i, v, t[i-1], ErrDecreasingTime)
		}
	}
	return nil
}

// Last returns the final timestamp, or 0 for an empty axis.
func (t TimeAxis) Last() float64 {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1]
}

// FrameTimes builds the time axis for n frames spaced hopSize samples apart.
func FrameTimes(n, hopSize, sampleRate int) TimeAxis {
	times := make(TimeAxis, n)
	step := float64(hopSize) / float64(sampleRate)
	for i := range times {
		times[i] = float64(i) * step
	}
	return times
}
