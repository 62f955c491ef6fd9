// Package lyrics apportions lyric words over a recording and marks the words
// that contain flagged timestamps.
//
// Segmentation is deliberately naive: every word receives an equal share of
// the total duration. There is no phonetic alignment, so a word sung long or
// short will be mis-timed; flags are only as precise as this approximation.
package lyrics

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// DefaultMarker wraps flagged words.
const DefaultMarker = "*"

var (
	// ErrDegenerateLyrics indicates text with no words after whitespace splitting.
	ErrDegenerateLyrics = errors.New("lyrics: text contains no words")

	// ErrInvalidDuration indicates a negative or non-finite duration, or a
	// non-positive frame rate.
	ErrInvalidDuration = errors.New("lyrics: invalid duration")
)

// WordSpan is the interval apportioned to one word, in seconds.
type WordSpan struct {
	Word  string
	Start float64
	End   float64
}

// Contains reports whether t lies in the span, both ends inclusive.
func (s WordSpan) Contains(t float64) bool {
	return s.Start <= t && t <= s.End
}

// WordResult is a span plus its verdict.
type WordResult struct {
	WordSpan
	Flagged bool
}

// Words splits text on Unicode whitespace.
func Words(text string) []string {
	return strings.Fields(text)
}

// Segment splits text into words spread evenly over totalFrames frames at
// frameRate frames per second.
func Segment(text string, totalFrames int, frameRate float64) ([]WordSpan, error) {
	if totalFrames < 0 {
		return nil, fmt.Errorf("%d frames: %w", totalFrames, ErrInvalidDuration)
	}
	if !(frameRate > 0) || math.IsInf(frameRate, 0) {
		return nil, fmt.Errorf("frame rate %v: %w", frameRate, ErrInvalidDuration)
	}
	return SegmentDuration(text, float64(totalFrames)/frameRate)
}

// SegmentDuration splits text into words spread evenly over [0, duration].
// Spans are contiguous and the last one ends exactly at duration.
func SegmentDuration(text string, duration float64) ([]WordSpan, error) {
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration < 0 {
		return nil, fmt.Errorf("duration %v: %w", duration, ErrInvalidDuration)
	}

	words := Words(text)
	if len(words) == 0 {
		return nil, ErrDegenerateLyrics
	}

	n := float64(len(words))
	spans := make([]WordSpan, len(words))
	for k, w := range words {
		spans[k] = WordSpan{
			Word:  w,
			Start: float64(k) * duration / n,
			End:   float64(k+1) * duration / n,
		}
	}
	// Pin shared edges so no rounding gap opens between neighbours.
	for k := 1; k < len(spans); k++ {
		spans[k].Start = spans[k-1].End
	}
	spans[len(spans)-1].End = duration

	return spans, nil
}

// Mark flags every span that contains at least one timestamp. The result
// depends only on which timestamps are present, not on their order or
// multiplicity.
func Mark(spans []WordSpan, flags []float64) []WordResult {
	out := make([]WordResult, len(spans))
	for k, s := range spans {
		out[k] = WordResult{WordSpan: s}
		for _, t := range flags {
			if s.Contains(t) {
				out[k].Flagged = true
				break
			}
		}
	}
	return out
}

// Render joins the words with single spaces, wrapping flagged ones in marker.
func Render(results []WordResult, marker string) string {
	var b strings.Builder
	for k, r := range results {
		if k > 0 {
			b.WriteByte(' ')
		}
		if r.Flagged {
			b.WriteString(marker)
			b.WriteString(r.Word)
			b.WriteString(marker)
			continue
		}
		b.WriteString(r.Word)
	}
	return b.String()
}

// Annotate marks and renders with DefaultMarker.
func Annotate(spans []WordSpan, flags []float64) string {
	return AnnotateWith(spans, flags, DefaultMarker)
}

// AnnotateWith marks and renders with a custom marker.
func AnnotateWith(spans []WordSpan, flags []float64, marker string) string {
	return Render(Mark(spans, flags), marker)
}

// CountFlagged returns how many results are flagged.
func CountFlagged(results []WordResult) int {
	n := 0
	for _, r := range results {
		if r.Flagged {
			n++
		}
	}
	return n
}
