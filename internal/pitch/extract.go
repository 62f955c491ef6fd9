package pitch

import (
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Tunables
const (
	DefaultSampleRate = 22050
	DefaultFrameSize  = 2048
	DefaultHopSize    = 512
	DefaultFMin       = 150.0
	DefaultFMax       = 4000.0
	DefaultThreshold  = 0.1
)

// Extractor turns a mono waveform into a multi-candidate pitch matrix by
// picking spectral peaks out of a Hann-windowed STFT.
type Extractor struct {
	SampleRate int
	FrameSize  int
	HopSize    int
	FMin       float64 // lowest accepted candidate, Hz
	FMax       float64 // highest accepted candidate, Hz
	Threshold  float64 // fraction of the frame's peak magnitude a candidate must exceed
}

// NewExtractor returns an extractor with the default framing for sampleRate.
func NewExtractor(sampleRate int) *Extractor {
	if sampleRate == 0 {
		sampleRate = DefaultSampleRate
	}
	return &Extractor{
		SampleRate: sampleRate,
		FrameSize:  DefaultFrameSize,
		HopSize:    DefaultHopSize,
		FMin:       DefaultFMin,
		FMax:       DefaultFMax,
		Threshold:  DefaultThreshold,
	}
}

func (e *Extractor) validate() error {
	switch {
	case e.SampleRate <= 0:
		return fmt.Errorf("sample rate %d: %w", e.SampleRate, ErrInvalidFrameConfig)
	case e.FrameSize < 4:
		return fmt.Errorf("frame size %d: %w", e.FrameSize, ErrInvalidFrameConfig)
	case e.HopSize <= 0:
		return fmt.Errorf("hop size %d: %w", e.HopSize, ErrInvalidFrameConfig)
	case e.FMin < 0 || e.FMax <= e.FMin:
		return fmt.Errorf("frequency range [%.1f, %.1f]: %w", e.FMin, e.FMax, ErrInvalidFrameConfig)
	case e.Threshold < 0 || e.Threshold >= 1:
		return fmt.Errorf("threshold %.3f: %w", e.Threshold, ErrInvalidFrameConfig)
	}
	return nil
}

// Extract computes the pitch matrix and its time axis. Audio shorter than one
// frame yields zero frames.
func (e *Extractor) Extract(samples []float64) (Matrix, TimeAxis, error) {
	if err := e.validate(); err != nil {
		return nil, nil, err
	}

	win := window.Hann(e.FrameSize)
	frames := make(Matrix, 0, len(samples)/e.HopSize+1)
	buf := make([]float64, e.FrameSize)

	for start := 0; start+e.FrameSize <= len(samples); start += e.HopSize {
		for i := range buf {
			buf[i] = samples[start+i] * win[i]
		}
		mag := magnitudeSpectrum(fft.FFTReal(buf))
		frames = append(frames, e.candidates(mag))
	}

	return frames, FrameTimes(len(frames), e.HopSize, e.SampleRate), nil
}

// magnitudeSpectrum keeps the non-negative frequency half, Nyquist included.
func magnitudeSpectrum(spectrum []complex128) []float64 {
	half := len(spectrum)/2 + 1
	mag := make([]float64, half)
	for i := 0; i < half; i++ {
		mag[i] = cmplx.Abs(spectrum[i])
	}
	return mag
}

// candidates returns every local spectral maximum inside [FMin, FMax] that
// clears the relative threshold, refined by parabolic interpolation.
func (e *Extractor) candidates(mag []float64) Frame {
	peak := 0.0
	for _, m := range mag {
		if m > peak {
			peak = m
		}
	}
	if peak == 0 {
		return nil
	}

	binHz := float64(e.SampleRate) / float64(e.FrameSize)
	floor := e.Threshold * peak

	var frame Frame
	for k := 1; k < len(mag)-1; k++ {
		alpha, beta, gamma := mag[k-1], mag[k], mag[k+1]
		if beta <= floor || beta <= alpha || beta < gamma {
			continue
		}

		shift := 0.0
		if denom := alpha - 2*beta + gamma; denom != 0 {
			shift = 0.5 * (alpha - gamma) / denom
		}
		freq := (float64(k) + shift) * binHz
		if freq < e.FMin || freq > e.FMax {
			continue
		}
		frame = append(frame, Candidate{
			Pitch:    freq,
			Strength: beta - 0.25*(alpha-gamma)*shift,
		})
	}
	return frame
}
