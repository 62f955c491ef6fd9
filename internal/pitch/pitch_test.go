package pitch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq float64, sampleRate int, seconds float64) []float64 {
	n := int(seconds * float64(sampleRate))
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.8 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestReduce(t *testing.T) {
	tests := []struct {
		name string
		in   Matrix
		mode Mode
		want Sequence
	}{
		{
			name: "max pitch per frame",
			in: Matrix{
				{{Pitch: 220, Strength: 5}, {Pitch: 440, Strength: 1}},
				{{Pitch: 330, Strength: 2}},
			},
			mode: MaxPitch,
			want: Sequence{440, 330},
		},
		{
			name: "strongest candidate per frame",
			in: Matrix{
				{{Pitch: 220, Strength: 5}, {Pitch: 440, Strength: 1}},
				{{Pitch: 330, Strength: 2}, {Pitch: 660, Strength: 3}},
			},
			mode: Strongest,
			want: Sequence{220, 660},
		},
		{
			name: "empty frames become unvoiced",
			in:   Matrix{nil, {{Pitch: 300, Strength: 1}}, {}},
			mode: MaxPitch,
			want: Sequence{Unvoiced, 300, Unvoiced},
		},
		{
			name: "non-finite candidates are skipped",
			in:   Matrix{{{Pitch: math.NaN(), Strength: 9}, {Pitch: 250, Strength: 1}}, {{Pitch: math.Inf(1), Strength: 1}}},
			mode: Strongest,
			want: Sequence{250, Unvoiced},
		},
		{
			name: "empty matrix",
			in:   Matrix{},
			mode: MaxPitch,
			want: Sequence{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReduceWith(tt.in, tt.mode)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, len(tt.in), "one value per frame")
		})
	}
}

func TestReduceDefaultsToMaxPitch(t *testing.T) {
	m := Matrix{{{Pitch: 100, Strength: 10}, {Pitch: 900, Strength: 0.1}}}
	assert.Equal(t, Sequence{900}, Reduce(m))
}

func TestParseMode(t *testing.T) {
	for name, want := range map[string]Mode{"": MaxPitch, "max": MaxPitch, "Max-Pitch": MaxPitch, "strongest": Strongest} {
		got, err := ParseMode(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseMode("median")
	assert.Error(t, err)
}

func TestTimeAxisValidate(t *testing.T) {
	assert.NoError(t, TimeAxis{0, 0.5, 0.5, 1}.Validate())
	assert.ErrorIs(t, TimeAxis{0, 1, 0.5}.Validate(), ErrDecreasingTime)
	assert.ErrorIs(t, TimeAxis{0, math.NaN()}.Validate(), ErrNonFinite)
	assert.ErrorIs(t, Sequence{1, math.Inf(-1)}.Validate(), ErrNonFinite)
	assert.Equal(t, 0.0, TimeAxis{}.Last())
}

func TestFrameTimes(t *testing.T) {
	times := FrameTimes(4, 512, 22050)
	require.Len(t, times, 4)
	assert.Equal(t, 0.0, times[0])
	assert.InDelta(t, 3*512.0/22050.0, times[3], 1e-12)
}

func TestExtractSine(t *testing.T) {
	e := NewExtractor(DefaultSampleRate)
	samples := sine(440, e.SampleRate, 1.0)

	m, times, err := e.Extract(samples)
	require.NoError(t, err)
	require.NotEmpty(t, m)
	require.Len(t, times, len(m))

	wantFrames := (len(samples)-e.FrameSize)/e.HopSize + 1
	assert.Len(t, m, wantFrames)

	binHz := float64(e.SampleRate) / float64(e.FrameSize)
	for i, v := range ReduceWith(m, Strongest) {
		assert.InDelta(t, 440.0, v, binHz, "frame %d", i)
	}
}

func TestExtractSilence(t *testing.T) {
	e := NewExtractor(DefaultSampleRate)
	m, _, err := e.Extract(make([]float64, e.FrameSize*3))
	require.NoError(t, err)
	require.NotEmpty(t, m)

	for _, v := range Reduce(m) {
		assert.Equal(t, Unvoiced, v)
	}
}

func TestExtractShortInput(t *testing.T) {
	e := NewExtractor(DefaultSampleRate)
	m, times, err := e.Extract(make([]float64, e.FrameSize-1))
	require.NoError(t, err)
	assert.Empty(t, m)
	assert.Empty(t, times)
}

func TestExtractInvalidConfig(t *testing.T) {
	bad := []*Extractor{
		{SampleRate: 0, FrameSize: 2048, HopSize: 512, FMin: 150, FMax: 4000},
		{SampleRate: 22050, FrameSize: 2, HopSize: 512, FMin: 150, FMax: 4000},
		{SampleRate: 22050, FrameSize: 2048, HopSize: 0, FMin: 150, FMax: 4000},
		{SampleRate: 22050, FrameSize: 2048, HopSize: 512, FMin: 500, FMax: 100},
		{SampleRate: 22050, FrameSize: 2048, HopSize: 512, FMin: 150, FMax: 4000, Threshold: 1.5},
	}
	for _, e := range bad {
		_, _, err := e.Extract(make([]float64, 4096))
		assert.ErrorIs(t, err, ErrInvalidFrameConfig)
	}
}
