// Package config loads VocalCoach settings from an optional YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/himanishpuri/VocalCoach/internal/discrepancy"
	"github.com/himanishpuri/VocalCoach/internal/engine"
	"github.com/himanishpuri/VocalCoach/internal/pitch"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath = "VOCALCOACH_CONFIG"
	EnvDBPath     = "VOCALCOACH_DB_PATH"
	EnvTempDir    = "VOCALCOACH_TEMP_DIR"
	EnvTolerance  = "VOCALCOACH_TOLERANCE"
)

type Config struct {
	Audio    AudioConfig    `yaml:"audio"`
	Pitch    PitchConfig    `yaml:"pitch"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
}

type AudioConfig struct {
	SampleRate     int           `yaml:"sample_rate"`
	TempDir        string        `yaml:"temp_dir"`
	ConvertTimeout time.Duration `yaml:"convert_timeout"`
}

type PitchConfig struct {
	FrameSize int     `yaml:"frame_size"`
	HopSize   int     `yaml:"hop_size"`
	FMin      float64 `yaml:"fmin"`
	FMax      float64 `yaml:"fmax"`
	Threshold float64 `yaml:"threshold"`
	Reducer   string  `yaml:"reducer"` // "max" (or "max-pitch") or "strongest"
}

type AnalysisConfig struct {
	PitchTolerance float64       `yaml:"pitch_tolerance"`
	Scale          string        `yaml:"scale"` // "hz" or "semitone"
	Window         int           `yaml:"window"`
	MaxCells       int           `yaml:"max_cells"` // teacher*student frame cap, 0 = none
	Marker         string        `yaml:"marker"`
	Timeout        time.Duration `yaml:"timeout"`
}

type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	CORSOrigins string `yaml:"cors_origins"`
	LogLevel    string `yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate:     22050,
			TempDir:        os.TempDir(),
			ConvertTimeout: 60 * time.Second,
		},
		Pitch: PitchConfig{
			FrameSize: 2048,
			HopSize:   512,
			FMin:      150,
			FMax:      4000,
			Threshold: 0.1,
			Reducer:   "max",
		},
		Analysis: AnalysisConfig{
			PitchTolerance: 0.5,
			Scale:          "hz",
			MaxCells:       engine.DefaultMaxCells,
			Marker:         "*",
			Timeout:        30 * time.Second,
		},
		Storage: StorageConfig{DBPath: "vocalcoach.sqlite3"},
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: "*",
			LogLevel:    "INFO",
		},
	}
}

// Load reads path over the defaults and then applies environment overrides.
// An empty path falls back to $VOCALCOACH_CONFIG; a missing file is not an
// error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv(EnvTempDir); v != "" {
		c.Audio.TempDir = v
	}
	if v := os.Getenv(EnvTolerance); v != "" {
		tol, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTolerance, err)
		}
		c.Analysis.PitchTolerance = tol
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Pitch.HopSize <= 0 || c.Pitch.FrameSize <= 0 {
		return fmt.Errorf("pitch.frame_size and pitch.hop_size must be positive")
	}
	if tol := c.Analysis.PitchTolerance; tol < 0 || math.IsNaN(tol) || math.IsInf(tol, 0) {
		return fmt.Errorf("analysis.pitch_tolerance must be a finite non-negative number, got %g", tol)
	}
	if c.Analysis.Window < 0 {
		return fmt.Errorf("analysis.window must not be negative, got %d", c.Analysis.Window)
	}
	if c.Analysis.MaxCells < 0 {
		return fmt.Errorf("analysis.max_cells must not be negative, got %d", c.Analysis.MaxCells)
	}
	if _, err := discrepancy.ParseScale(c.Analysis.Scale); err != nil {
		return fmt.Errorf("analysis.scale: %w", err)
	}
	if _, err := pitch.ParseMode(c.Pitch.Reducer); err != nil {
		return fmt.Errorf("pitch.reducer: %w", err)
	}
	return nil
}

// Write saves the configuration as YAML.
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
