//go:build !js && !wasm

package vocalcoach

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/himanishpuri/VocalCoach/internal/audio"
	"github.com/himanishpuri/VocalCoach/internal/discrepancy"
	"github.com/himanishpuri/VocalCoach/internal/dtw"
	"github.com/himanishpuri/VocalCoach/internal/engine"
	"github.com/himanishpuri/VocalCoach/internal/lyrics"
	"github.com/himanishpuri/VocalCoach/internal/pitch"
	"github.com/himanishpuri/VocalCoach/pkg/logger"
	"github.com/himanishpuri/VocalCoach/pkg/models"
)

// vocalService is the default implementation of the Service interface.
type vocalService struct {
	storage Storage
	log     Logger
	config  *Config
	engine  engine.Options
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}
	if cfg.Extractor == nil {
		cfg.Extractor = pitch.NewExtractor(cfg.SampleRate)
	}
	if !validTolerance(cfg.Tolerance) {
		return nil, fmt.Errorf("default tolerance %g: %w", cfg.Tolerance, discrepancy.ErrInvalidTolerance)
	}

	scale, err := discrepancy.ParseScale(cfg.Scale)
	if err != nil {
		return nil, err
	}
	reducer, err := pitch.ParseMode(cfg.Reducer)
	if err != nil {
		return nil, err
	}

	stor := cfg.Storage
	if stor == nil {
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &vocalService{
		storage: stor,
		log:     cfg.Logger,
		config:  cfg,
		engine: engine.Options{
			Tolerance: cfg.Tolerance,
			Scale:     scale,
			Reducer:   reducer,
			Window:    cfg.Window,
			Marker:    cfg.Marker,
			MaxCells:  cfg.MaxAlignCells,
		},
	}, nil
}

// AddReference extracts and stores the teacher's pitch track for audioPath.
func (s *vocalService) AddReference(ctx context.Context, audioPath, title, text string) (string, error) {
	if len(lyrics.Words(text)) == 0 {
		return "", lyrics.ErrDegenerateLyrics
	}
	if title == "" {
		title = s.defaultTitle(ctx, audioPath)
	}
	s.log.Infof("Processing reference: %s", title)

	track, err := s.extract(ctx, audioPath)
	if err != nil {
		return "", err
	}

	seq := pitch.ReduceWith(track.matrix, s.engine.Reducer)
	frames := make([]models.PitchFrame, len(seq))
	for i, p := range seq {
		frames[i] = models.PitchFrame{Index: i, Time: track.times[i], Pitch: p}
	}

	id, err := s.storage.CreateReference(models.Reference{
		Title:      title,
		Lyrics:     text,
		SampleRate: track.sampleRate,
		DurationMs: track.durationMs,
	}, frames)
	if err != nil {
		return "", fmt.Errorf("failed to store reference: %w", err)
	}

	s.log.Infof("Stored reference ID=%s with %d pitch frames", id, len(frames))
	return id, nil
}

// Analyze compares a student recording against a stored reference and
// persists the outcome.
func (s *vocalService) Analyze(ctx context.Context, referenceID, studentAudioPath string, tolerance float64) (*models.AnalysisResult, error) {
	opts, err := s.options(tolerance)
	if err != nil {
		return nil, err
	}
	ref, err := s.storage.GetReferenceByID(referenceID)
	if err != nil {
		return nil, err
	}
	frames, err := s.storage.GetPitchFrames(referenceID)
	if err != nil {
		return nil, fmt.Errorf("loading reference pitch track: %w", err)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("reference %s: %w", referenceID, ErrNoPitchFrames)
	}

	teacher := make(pitch.Sequence, len(frames))
	teacherTimes := make(pitch.TimeAxis, len(frames))
	for i, f := range frames {
		teacher[i] = f.Pitch
		teacherTimes[i] = f.Time
	}

	s.log.Infof("Analyzing %s against %q", studentAudioPath, ref.Title)
	track, err := s.extract(ctx, studentAudioPath)
	if err != nil {
		return nil, err
	}

	student := pitch.ReduceWith(track.matrix, opts.Reducer)

	report, err := s.run(ctx, func() (*engine.Report, error) {
		return engine.AnalyzeSequences(teacher, teacherTimes, student, track.times, ref.Lyrics, opts)
	})
	if err != nil {
		return nil, err
	}

	result := toResult(report, opts.Tolerance)
	result.ReferenceID = referenceID
	result.StudentFile = filepath.Base(studentAudioPath)
	if _, err := s.storage.SaveAnalysis(result); err != nil {
		return nil, fmt.Errorf("failed to store analysis: %w", err)
	}

	s.log.Infof("Analysis %s: %d/%d words flagged", result.ID, result.FlaggedWords, result.TotalWords)
	return result, nil
}

// Compare analyses two recordings without touching storage.
func (s *vocalService) Compare(ctx context.Context, teacherPath, studentPath, text string, tolerance float64) (*models.AnalysisResult, error) {
	if len(lyrics.Words(text)) == 0 {
		return nil, lyrics.ErrDegenerateLyrics
	}
	opts, err := s.options(tolerance)
	if err != nil {
		return nil, err
	}

	teacher, err := s.extract(ctx, teacherPath)
	if err != nil {
		return nil, fmt.Errorf("teacher: %w", err)
	}
	student, err := s.extract(ctx, studentPath)
	if err != nil {
		return nil, fmt.Errorf("student: %w", err)
	}

	report, err := s.run(ctx, func() (*engine.Report, error) {
		return engine.Analyze(
			engine.Performance{Pitches: teacher.matrix, Times: teacher.times},
			engine.Performance{Pitches: student.matrix, Times: student.times},
			text, opts,
		)
	})
	if err != nil {
		return nil, err
	}
	result := toResult(report, opts.Tolerance)
	result.StudentFile = filepath.Base(studentPath)
	return result, nil
}

// CompareSequences analyses pitch tracks supplied by the caller.
func (s *vocalService) CompareSequences(ctx context.Context, in SequenceInput) (*models.AnalysisResult, error) {
	opts, err := s.options(in.Tolerance)
	if err != nil {
		return nil, err
	}
	report, err := s.run(ctx, func() (*engine.Report, error) {
		return engine.AnalyzeSequences(
			in.TeacherPitches, in.TeacherTimes,
			in.StudentPitches, in.StudentTimes,
			in.Lyrics, opts,
		)
	})
	if err != nil {
		return nil, err
	}
	return toResult(report, opts.Tolerance), nil
}

func (s *vocalService) GetReference(id string) (*models.Reference, error) {
	return s.storage.GetReferenceByID(id)
}

func (s *vocalService) ListReferences() ([]models.Reference, error) {
	return s.storage.ListReferences()
}

// DeleteReference removes a reference with its pitch track and analyses.
func (s *vocalService) DeleteReference(id string) error {
	if err := s.storage.DeleteReferenceByID(id); err != nil {
		return err
	}
	s.log.Infof("Deleted reference ID=%s", id)
	return nil
}

func (s *vocalService) ListAnalyses(referenceID string) ([]models.AnalysisResult, error) {
	if _, err := s.storage.GetReferenceByID(referenceID); err != nil {
		return nil, err
	}
	return s.storage.ListAnalyses(referenceID)
}

func (s *vocalService) GetAnalysis(id string) (*models.AnalysisResult, error) {
	return s.storage.GetAnalysisByID(id)
}

func (s *vocalService) Stats() (Stats, error) {
	return s.storage.Stats()
}

// Close releases all resources held by the service.
func (s *vocalService) Close() error {
	return s.storage.Close()
}

// options resolves a per-call tolerance: 0 selects the configured default.
func (s *vocalService) options(tolerance float64) (engine.Options, error) {
	opts := s.engine
	switch {
	case !validTolerance(tolerance):
		return opts, fmt.Errorf("tolerance %g: %w", tolerance, discrepancy.ErrInvalidTolerance)
	case tolerance > 0:
		opts.Tolerance = tolerance
	}
	return opts, nil
}

func validTolerance(t float64) bool {
	return t >= 0 && !math.IsInf(t, 1)
}

// run executes fn under the analysis timeout. The engine itself is not
// interruptible, so on expiry the call returns ctx.Err() and the goroutine's
// result is discarded.
func (s *vocalService) run(ctx context.Context, fn func() (*engine.Report, error)) (*engine.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := ctx.Deadline(); !ok && s.config.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.AnalysisTimeout)
		defer cancel()
	}

	type outcome struct {
		report *engine.Report
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := fn()
		done <- outcome{r, err}
	}()

	select {
	case <-ctx.Done():
		s.log.Warnf("Analysis abandoned: %v", ctx.Err())
		return nil, ctx.Err()
	case out := <-done:
		if out.err == nil && out.report.Unplaced > 0 {
			s.log.Warnf("%d flagged frame(s) fall past the end of the lyric timeline and mark no word", out.report.Unplaced)
		}
		return out.report, out.err
	}
}

type extracted struct {
	matrix     pitch.Matrix
	times      pitch.TimeAxis
	sampleRate int
	durationMs int
}

// defaultTitle prefers the recording's own tags over its file name.
func (s *vocalService) defaultTitle(ctx context.Context, audioPath string) string {
	tags, err := audio.ReadTags(ctx, audioPath)
	if err != nil {
		s.log.Debugf("No tags for %s: %v", audioPath, err)
		return filepath.Base(audioPath)
	}
	if t := tags.DisplayTitle(); t != "" {
		return t
	}
	return filepath.Base(audioPath)
}

func (s *vocalService) extract(ctx context.Context, path string) (*extracted, error) {
	wavPath, cleanup, err := audio.PrepareWAV(ctx, path, s.config.TempDir, audio.ConvertWAVConfig{
		SampleRate: s.config.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("audio conversion failed: %w", err)
	}
	defer cleanup()

	samples, sampleRate, err := audio.ReadWavAsFloat64(wavPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV file: %w", err)
	}

	ex := *s.config.Extractor
	ex.SampleRate = sampleRate
	m, times, err := ex.Extract(samples)
	if err != nil {
		return nil, fmt.Errorf("pitch extraction failed: %w", err)
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrNoPitchFrames)
	}
	s.log.Debugf("Extracted %d pitch frames from %s", len(m), path)

	return &extracted{
		matrix:     m,
		times:      times,
		sampleRate: sampleRate,
		durationMs: len(samples) * 1000 / sampleRate,
	}, nil
}

func toResult(r *engine.Report, tolerance float64) *models.AnalysisResult {
	words := make([]models.WordMark, len(r.Words))
	for i, w := range r.Words {
		words[i] = models.WordMark{Word: w.Word, Start: w.Start, End: w.End, Flagged: w.Flagged}
	}
	flags := r.Flags
	if flags == nil {
		flags = []float64{}
	}
	return &models.AnalysisResult{
		Tolerance:     tolerance,
		Annotated:     r.Annotated,
		Words:         words,
		Flags:         flags,
		Path:          r.Path.Pairs(),
		Cost:          r.Cost,
		FlaggedWords:  r.FlaggedWords(),
		TotalWords:    len(r.Words),
		UnplacedFlags: r.Unplaced,
	}
}

// IsInputError reports whether err stems from invalid caller input rather
// than an internal failure.
func IsInputError(err error) bool {
	for _, target := range []error{
		lyrics.ErrDegenerateLyrics,
		lyrics.ErrInvalidDuration,
		discrepancy.ErrAxisMismatch,
		discrepancy.ErrInvalidTolerance,
		discrepancy.ErrPathOutOfRange,
		pitch.ErrNonFinite,
		pitch.ErrDecreasingTime,
		pitch.ErrInvalidFrameConfig,
		dtw.ErrEmptySequence,
		dtw.ErrTooLarge,
		ErrNoPitchFrames,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
