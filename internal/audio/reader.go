package audio

import (
	"errors"
	"fmt"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const pcmFormat = 1

// Format describes a WAV file's stream.
type Format struct {
	AudioFormat uint16
	Channels    int
	SampleRate  int
	BitDepth    int
	Duration    time.Duration
}

// IsAnalysisReady reports whether the stream can be read as-is: PCM, mono,
// 16-bit, at sampleRate.
func (f *Format) IsAnalysisReady(sampleRate int) bool {
	return f.AudioFormat == pcmFormat && f.Channels == 1 && f.BitDepth == 16 && f.SampleRate == sampleRate
}

// ReadWAVFormat reads the header of a WAV file without decoding samples.
func ReadWAVFormat(path string) (*Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, errors.New("not a valid WAV file")
	}

	dur, err := d.Duration()
	if err != nil {
		return nil, fmt.Errorf("reading WAV duration: %w", err)
	}

	return &Format{
		AudioFormat: d.WavAudioFormat,
		Channels:    int(d.NumChans),
		SampleRate:  int(d.SampleRate),
		BitDepth:    int(d.BitDepth),
		Duration:    dur,
	}, nil
}

// ReadWavAsFloat64 decodes an integer PCM WAV file and returns mono samples
// normalized to [-1,1] along with the sample rate. Multi-channel audio is
// averaged down to one channel.
func ReadWavAsFloat64(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, 0, errors.New("not a valid WAV file")
	}
	if d.WavAudioFormat != pcmFormat {
		return nil, 0, fmt.Errorf("unsupported WAV audio format %d: only PCM (1) supported", d.WavAudioFormat)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decoding PCM samples: %w", err)
	}

	samples, err := downmix(buf, int(d.BitDepth))
	if err != nil {
		return nil, 0, err
	}
	return samples, int(d.SampleRate), nil
}

// downmix converts interleaved integer samples to mono float64 by averaging
// channels.
func downmix(buf *goaudio.IntBuffer, bitDepth int) ([]float64, error) {
	if bitDepth < 8 || bitDepth > 32 {
		return nil, fmt.Errorf("unsupported bits per sample: %d", bitDepth)
	}
	channels := 1
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}

	scale := 1.0 / float64(int64(1)<<(bitDepth-1))
	// 8-bit WAV is unsigned
	offset := 0
	if bitDepth == 8 {
		offset = 128
	}

	frames := len(buf.Data) / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c]-offset) * scale
		}
		out[i] = sum / float64(channels)
	}
	return out, nil
}

// WriteMonoWAV encodes samples in [-1,1] as a 16-bit PCM mono WAV file.
func WriteMonoWAV(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	data := make([]int, len(samples))
	for i, s := range samples {
		switch {
		case s > 1:
			s = 1
		case s < -1:
			s = -1
		}
		data[i] = int(s * 32767)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, pcmFormat)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encoding WAV: %w", err)
	}
	return enc.Close()
}
