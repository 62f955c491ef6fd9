// Package engine runs one teacher/student comparison end to end:
// reduce -> align -> detect -> segment -> annotate.
//
// Every function is pure. A Report holds no references into its inputs, so
// concurrent analyses need no coordination.
package engine

import (
	"fmt"

	"github.com/himanishpuri/VocalCoach/internal/discrepancy"
	"github.com/himanishpuri/VocalCoach/internal/dtw"
	"github.com/himanishpuri/VocalCoach/internal/lyrics"
	"github.com/himanishpuri/VocalCoach/internal/pitch"
)

// Performance is one recording as delivered by pitch extraction.
type Performance struct {
	Pitches pitch.Matrix
	Times   pitch.TimeAxis
}

// Options configures an analysis run.
type Options struct {
	Tolerance float64           // pitchTolerance
	Scale     discrepancy.Scale // unit Tolerance is expressed in
	Reducer   pitch.Mode        // how candidate frames collapse
	Window    int               // Sakoe-Chiba band, 0 = unconstrained
	Marker    string            // wraps flagged words
	MaxCells  int               // cap on teacher*student frames, 0 = none
}

// DefaultMaxCells bounds one alignment to roughly 225 MB of tables
// (float64 cost plus one step byte per cell).
const DefaultMaxCells = 25_000_000

// DefaultOptions returns the 0.5 raw-scale tolerance, max-pitch reduction,
// an unbanded aligner capped at DefaultMaxCells and "*" markers.
func DefaultOptions() Options {
	return Options{
		Tolerance: discrepancy.DefaultTolerance,
		Scale:     discrepancy.ScaleHz,
		Reducer:   pitch.MaxPitch,
		Marker:    lyrics.DefaultMarker,
		MaxCells:  DefaultMaxCells,
	}
}

// Report is the outcome of one analysis.
type Report struct {
	Annotated     string
	Words         []lyrics.WordResult
	Flags         []float64 // flagged student timestamps, path order, duplicates kept
	Discrepancies []discrepancy.Discrepancy
	Path          dtw.Path
	Cost          float64
	TeacherFrames int
	StudentFrames int
	Duration      float64 // seconds the lyrics were spread over
	// Unplaced counts flags outside [0, Duration]. They match no word, which
	// happens when the student runs longer than the teacher.
	Unplaced int
}

// FlaggedWords counts the marked words.
func (r *Report) FlaggedWords() int {
	return lyrics.CountFlagged(r.Words)
}

// Analyze reduces both pitch matrices and compares them.
func Analyze(teacher, student Performance, text string, opts Options) (*Report, error) {
	return AnalyzeSequences(
		pitch.ReduceWith(teacher.Pitches, opts.Reducer), teacher.Times,
		pitch.ReduceWith(student.Pitches, opts.Reducer), student.Times,
		text, opts,
	)
}

// AnalyzeSequences compares two already reduced pitch sequences. The lyrics
// are spread over the teacher's time axis, from 0 to its last timestamp;
// flags are taken on the student's axis.
func AnalyzeSequences(
	teacher pitch.Sequence, teacherTimes pitch.TimeAxis,
	student pitch.Sequence, studentTimes pitch.TimeAxis,
	text string, opts Options,
) (*Report, error) {
	if len(teacher) == 0 || len(student) == 0 {
		return nil, dtw.ErrEmptySequence
	}
	if err := validate("teacher", teacher, teacherTimes); err != nil {
		return nil, err
	}
	if err := validate("student", student, studentTimes); err != nil {
		return nil, err
	}

	duration := teacherTimes.Last()
	spans, err := lyrics.SegmentDuration(text, duration)
	if err != nil {
		return nil, err
	}

	aligned, err := dtw.Align(teacher, student, &dtw.Options{Window: opts.Window, MaxCells: opts.MaxCells})
	if err != nil {
		return nil, err
	}

	ds, err := discrepancy.Detect(teacher, student, teacherTimes, studentTimes, aligned.Path, discrepancy.Options{
		Tolerance: opts.Tolerance,
		Scale:     opts.Scale,
	})
	if err != nil {
		return nil, err
	}

	marker := opts.Marker
	if marker == "" {
		marker = lyrics.DefaultMarker
	}
	flags := discrepancy.Timestamps(ds)
	words := lyrics.Mark(spans, flags)

	return &Report{
		Annotated:     lyrics.Render(words, marker),
		Words:         words,
		Flags:         flags,
		Discrepancies: ds,
		Path:          aligned.Path,
		Cost:          aligned.Cost,
		TeacherFrames: len(teacher),
		StudentFrames: len(student),
		Duration:      duration,
		Unplaced:      unplaced(flags, duration),
	}, nil
}

func validate(side string, seq pitch.Sequence, times pitch.TimeAxis) error {
	if len(times) != len(seq) {
		return fmt.Errorf("%s: %d times for %d frames: %w", side, len(times), len(seq), discrepancy.ErrAxisMismatch)
	}
	if err := seq.Validate(); err != nil {
		return fmt.Errorf("%s pitch: %w", side, err)
	}
	if err := times.Validate(); err != nil {
		return fmt.Errorf("%s times: %w", side, err)
	}
	return nil
}

func unplaced(flags []float64, duration float64) int {
	n := 0
	for _, t := range flags {
		if t < 0 || t > duration {
			n++
		}
	}
	return n
}
