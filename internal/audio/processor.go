package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/himanishpuri/VocalCoach/pkg/utils"
)

const (
	DefaultSampleRate     = 22050
	DefaultConvertTimeout = 60 * time.Second
)

type ConvertWAVConfig struct {
	SampleRate int           // e.g. 16000, 22050, 44100
	Timeout    time.Duration // applied when ctx has no deadline
}

// ConvertToMonoWAV converts an audio file to mono 16-bit PCM WAV
// and saves it to outputDir, keeping the base filename.
func ConvertToMonoWAV(
	ctx context.Context,
	inputPath string,
	outputDir string,
	cfg ConvertWAVConfig,
) (string, error) {

	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConvertTimeout
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if err := utils.MakeDir(outputDir); err != nil {
		return "", err
	}

	baseName := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(outputDir, fmt.Sprintf("%s.%d.wav", baseName, cfg.SampleRate))

	tmpPath := outputPath + ".tmp.wav"
	defer utils.DeleteFile(tmpPath)

	cmd := exec.CommandContext(
		ctx,
		"ffmpeg",
		"-y",
		"-v", "quiet",
		"-i", inputPath,
		"-ac", "1", // mono
		"-ar", fmt.Sprintf("%d", cfg.SampleRate),
		"-c:a", "pcm_s16le",
		tmpPath,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ffmpeg failed: %v (%s)", err, out)
	}

	if err := utils.MoveFile(tmpPath, outputPath); err != nil {
		return "", err
	}

	return outputPath, nil
}

// PrepareWAV returns a path to a mono 16-bit WAV at cfg.SampleRate. Files
// already in that shape are used in place; anything else goes through ffmpeg
// into a fresh directory under outputDir, so concurrent calls on same-named
// inputs never share files. cleanup removes whatever PrepareWAV created and
// is safe to call in both cases.
func PrepareWAV(
	ctx context.Context,
	inputPath string,
	outputDir string,
	cfg ConvertWAVConfig,
) (path string, cleanup func(), err error) {
	noop := func() {}
	if err := ctx.Err(); err != nil {
		return "", noop, err
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}

	if strings.EqualFold(filepath.Ext(inputPath), ".wav") {
		if f, err := ReadWAVFormat(inputPath); err == nil && f.IsAnalysisReady(cfg.SampleRate) {
			return inputPath, noop, nil
		}
	}

	if err := utils.MakeDir(outputDir); err != nil {
		return "", noop, err
	}
	workDir, err := os.MkdirTemp(outputDir, "convert-*")
	if err != nil {
		return "", noop, fmt.Errorf("creating conversion dir: %w", err)
	}
	cleanup = func() { utils.DeleteDir(workDir) }

	out, err := ConvertToMonoWAV(ctx, inputPath, workDir, cfg)
	if err != nil {
		cleanup()
		return "", noop, err
	}
	return out, cleanup, nil
}

// FFmpegAvailable reports whether the ffmpeg binary is on PATH.
func FFmpegAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}
