//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"flag"
	"os"
	"strings"

	"github.com/himanishpuri/VocalCoach/internal/config"
	"github.com/himanishpuri/VocalCoach/internal/pitch"
	"github.com/himanishpuri/VocalCoach/pkg/logger"
	"github.com/himanishpuri/VocalCoach/pkg/vocalcoach"
)

var (
	configPath     string
	port           int
	dbPath         string
	tempDir        string
	sampleRate     int
	tolerance      float64
	allowedOrigins string
)

func init() {
	flag.StringVar(&configPath, "config", "", "Path to YAML config (default $VOCALCOACH_CONFIG)")
	flag.IntVar(&port, "port", 0, "HTTP server port (overrides server.port)")
	flag.StringVar(&dbPath, "db", "", "Path to SQLite database (overrides storage.db_path)")
	flag.StringVar(&tempDir, "temp", "", "Temporary directory (overrides audio.temp_dir)")
	flag.IntVar(&sampleRate, "rate", 0, "Audio sample rate (overrides audio.sample_rate)")
	flag.Float64Var(&tolerance, "tolerance", 0, "Default pitch tolerance (overrides analysis.pitch_tolerance)")
	flag.StringVar(&allowedOrigins, "origins", "", "Comma-separated list of allowed CORS origins (use * for all)")
}

func main() {
	flag.Parse()
	log := logger.GetLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg)

	if lvl, err := logger.ParseLevel(cfg.Server.LogLevel); err == nil && os.Getenv("LOG_LEVEL") == "" {
		log.SetLevel(lvl)
	}

	service, err := vocalcoach.NewService(serviceOptions(cfg, log.With("service"))...)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	server := NewServer(service, &ServerConfig{
		Port:           cfg.Server.Port,
		DBPath:         cfg.Storage.DBPath,
		TempDir:        cfg.Audio.TempDir,
		SampleRate:     cfg.Audio.SampleRate,
		Tolerance:      cfg.Analysis.PitchTolerance,
		AllowedOrigins: parseOrigins(cfg.Server.CORSOrigins),
	}, log.With("http"))
	if err := server.Start(); err != nil {
		log.Errorf("Server failed: %v", err)
		service.Close()
		os.Exit(1)
	}
}

// applyFlags lets explicitly set flags win over file and environment.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = port
		case "db":
			cfg.Storage.DBPath = dbPath
		case "temp":
			cfg.Audio.TempDir = tempDir
		case "rate":
			cfg.Audio.SampleRate = sampleRate
		case "tolerance":
			cfg.Analysis.PitchTolerance = tolerance
		case "origins":
			cfg.Server.CORSOrigins = allowedOrigins
		}
	})
}

func serviceOptions(cfg *config.Config, log vocalcoach.Logger) []vocalcoach.Option {
	return []vocalcoach.Option{
		vocalcoach.WithDBPath(cfg.Storage.DBPath),
		vocalcoach.WithTempDir(cfg.Audio.TempDir),
		vocalcoach.WithSampleRate(cfg.Audio.SampleRate),
		vocalcoach.WithTolerance(cfg.Analysis.PitchTolerance),
		vocalcoach.WithScale(cfg.Analysis.Scale),
		vocalcoach.WithReducer(cfg.Pitch.Reducer),
		vocalcoach.WithWindow(cfg.Analysis.Window),
		vocalcoach.WithMaxAlignCells(cfg.Analysis.MaxCells),
		vocalcoach.WithMarker(cfg.Analysis.Marker),
		vocalcoach.WithAnalysisTimeout(cfg.Analysis.Timeout),
		vocalcoach.WithExtractor(&pitch.Extractor{
			SampleRate: cfg.Audio.SampleRate,
			FrameSize:  cfg.Pitch.FrameSize,
			HopSize:    cfg.Pitch.HopSize,
			FMin:       cfg.Pitch.FMin,
			FMax:       cfg.Pitch.FMax,
			Threshold:  cfg.Pitch.Threshold,
		}),
		vocalcoach.WithLogger(log),
	}
}

func parseOrigins(s string) []string {
	if s == "" || s == "*" {
		return []string{"*"}
	}
	origins := strings.Split(s, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}
