package lyrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentDurationCoverage(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		duration float64
	}{
		{"four words", "a b c d", 3},
		{"uneven split", "yani kani ca papani janmantara krtani ca", 10},
		{"unicode whitespace", "tāni sarvāṇi\tnaśyanti\n pradakṣiṇapade pade", 7.3},
		{"single word", "om", 2.5},
		{"zero duration", "x y", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans, err := SegmentDuration(tt.text, tt.duration)
			require.NoError(t, err)
			require.Len(t, spans, len(Words(tt.text)))

			want := tt.duration / float64(len(spans))
			assert.Equal(t, 0.0, spans[0].Start)
			assert.Equal(t, tt.duration, spans[len(spans)-1].End)
			for k, s := range spans {
				assert.InDelta(t, want, s.End-s.Start, 1e-9, "span %d duration", k)
				if k > 0 {
					assert.Equal(t, spans[k-1].End, s.Start, "span %d must start where %d ends", k, k-1)
				}
			}
		})
	}
}

func TestSegmentFromFrames(t *testing.T) {
	spans, err := Segment("one two", 100, 50)
	require.NoError(t, err)
	require.Len(t, spans, 2)
	assert.Equal(t, WordSpan{Word: "one", Start: 0, End: 1}, spans[0])
	assert.Equal(t, WordSpan{Word: "two", Start: 1, End: 2}, spans[1])
}

func TestSegmentErrors(t *testing.T) {
	_, err := SegmentDuration("", 4)
	assert.ErrorIs(t, err, ErrDegenerateLyrics)

	_, err = SegmentDuration(" \t\n ", 4)
	assert.ErrorIs(t, err, ErrDegenerateLyrics)

	_, err = Segment("", 10, 1)
	assert.ErrorIs(t, err, ErrDegenerateLyrics)

	for _, d := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err = SegmentDuration("a", d)
		assert.ErrorIs(t, err, ErrInvalidDuration)
	}

	_, err = Segment("a", 10, 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = Segment("a", -1, 10)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestAnnotate(t *testing.T) {
	spans, err := SegmentDuration("a b c d", 3)
	require.NoError(t, err)

	assert.Equal(t, "a b *c* d", Annotate(spans, []float64{2}))
	assert.Equal(t, "a b c d", Annotate(spans, nil))
	assert.Equal(t, "*a* b c *d*", Annotate(spans, []float64{0, 3, 3, 3}))
	assert.Equal(t, "a _b_ c d", AnnotateWith(spans, []float64{1.0}, "_"))
}

func TestAnnotateInclusiveBoundaries(t *testing.T) {
	spans := []WordSpan{{"x", 0, 1}, {"y", 1, 2}}
	assert.Equal(t, "*x* *y*", Annotate(spans, []float64{1}), "a boundary timestamp marks both neighbours")
	assert.Equal(t, "x y", Annotate(spans, []float64{-0.1, 2.1}), "timestamps outside every span are ignored")
}

func TestAnnotateIsDeterministic(t *testing.T) {
	spans, err := SegmentDuration("one two three four five", 5)
	require.NoError(t, err)

	flags := []float64{4.2, 0.5, 4.2, 2.5}
	reversed := []float64{2.5, 4.2, 0.5, 4.2}

	first := Annotate(spans, flags)
	assert.Equal(t, first, Annotate(spans, flags))
	assert.Equal(t, first, Annotate(spans, reversed))
	assert.Equal(t, "*one* two *three* four *five*", first)
}

func TestMarkAndCount(t *testing.T) {
	spans, err := SegmentDuration("a b c", 3)
	require.NoError(t, err)

	results := Mark(spans, []float64{1.5})
	require.Len(t, results, 3)
	assert.False(t, results[0].Flagged)
	assert.True(t, results[1].Flagged)
	assert.False(t, results[2].Flagged)
	assert.Equal(t, 1, CountFlagged(results))
	assert.Equal(t, "a _b_ c", Render(results, "_"))
}
