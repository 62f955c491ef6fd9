package vocalcoach

import (
	"os"
	"time"

	"github.com/himanishpuri/VocalCoach/internal/engine"
	"github.com/himanishpuri/VocalCoach/internal/pitch"
)

const (
	DefaultDBPath          = "vocalcoach.sqlite3"
	DefaultAnalysisTimeout = 30 * time.Second
)

type Config struct {
	DBPath          string
	TempDir         string
	SampleRate      int
	Tolerance       float64 // used when a call passes tolerance 0
	Scale           string  // "hz" or "semitone"
	Reducer         string  // "max" or "strongest"
	Window          int     // DTW band, 0 = unconstrained
	MaxAlignCells   int     // teacher*student frame cap, 0 = none
	Marker          string
	AnalysisTimeout time.Duration
	Extractor       *pitch.Extractor
	Logger          Logger
	Storage         Storage
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

func WithSampleRate(rate int) Option {
	return func(c *Config) {
		c.SampleRate = rate
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

// WithTolerance sets the pitchTolerance applied when a call does not name one.
func WithTolerance(tol float64) Option {
	return func(c *Config) {
		c.Tolerance = tol
	}
}

func WithScale(scale string) Option {
	return func(c *Config) {
		c.Scale = scale
	}
}

func WithReducer(mode string) Option {
	return func(c *Config) {
		c.Reducer = mode
	}
}

func WithWindow(band int) Option {
	return func(c *Config) {
		c.Window = band
	}
}

// WithMaxAlignCells caps the teacher*student frame product of one alignment.
// Larger inputs fail with dtw.ErrTooLarge before any table is allocated.
func WithMaxAlignCells(n int) Option {
	return func(c *Config) {
		c.MaxAlignCells = n
	}
}

func WithMarker(marker string) Option {
	return func(c *Config) {
		c.Marker = marker
	}
}

// WithAnalysisTimeout bounds each Analyze/Compare call when the caller's
// context carries no deadline of its own.
func WithAnalysisTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.AnalysisTimeout = d
	}
}

// WithExtractor replaces the default spectral-peak extractor settings. The
// sample rate is always taken from the decoded audio.
func WithExtractor(e *pitch.Extractor) Option {
	return func(c *Config) {
		c.Extractor = e
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:          DefaultDBPath,
		TempDir:         os.TempDir(),
		SampleRate:      pitch.DefaultSampleRate,
		Tolerance:       0.5,
		Scale:           "hz",
		Reducer:         "max",
		MaxAlignCells:   engine.DefaultMaxCells,
		Marker:          "*",
		AnalysisTimeout: DefaultAnalysisTimeout,
	}
}
