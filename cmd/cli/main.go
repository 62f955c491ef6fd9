//go:build !js && !wasm

package main

import (
	"fmt"
	"os"

	"github.com/himanishpuri/VocalCoach/internal/config"
	"github.com/himanishpuri/VocalCoach/internal/pitch"
	"github.com/himanishpuri/VocalCoach/pkg/logger"
	"github.com/himanishpuri/VocalCoach/pkg/vocalcoach"
	"github.com/spf13/cobra"
)

// app carries global flags and the loaded configuration to subcommands.
type app struct {
	configPath string
	dbPath     string
	tempDir    string
	sampleRate int
	verbose    bool

	cfg *config.Config
	log *logger.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{log: logger.GetLogger()}

	root := &cobra.Command{
		Use:   "vocalcoach",
		Short: "Compare a student's singing against a teacher's recording",
		Long: `VocalCoach aligns a student recording with a teacher reference using
dynamic time warping, flags frames whose pitch drifts beyond a tolerance, and
marks the affected words in the lyrics.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Path to YAML config (env: VOCALCOACH_CONFIG)")
	pf.StringVar(&a.dbPath, "db", "", "Path to the SQLite database file (env: VOCALCOACH_DB_PATH)")
	pf.StringVar(&a.tempDir, "temp", "", "Directory for temporary audio conversion files (env: VOCALCOACH_TEMP_DIR)")
	pf.IntVar(&a.sampleRate, "rate", 0, "Audio sample rate for processing")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output")

	root.AddCommand(
		newAddCmd(a),
		newAnalyzeCmd(a),
		newCompareCmd(a),
		newListCmd(a),
		newHistoryCmd(a),
		newDeleteCmd(a),
	)
	return root
}

func (a *app) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Storage.DBPath = a.dbPath
	}
	if flags.Changed("temp") {
		cfg.Audio.TempDir = a.tempDir
	}
	if flags.Changed("rate") {
		cfg.Audio.SampleRate = a.sampleRate
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if a.verbose {
		a.log.SetLevel(logger.DEBUG)
	}
	a.cfg = cfg
	return nil
}

// createService creates a VocalCoach service from the loaded configuration
func (a *app) createService() (vocalcoach.Service, error) {
	cfg := a.cfg
	svc, err := vocalcoach.NewService(
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
		vocalcoach.WithLogger(a.log.With("service")),
	)
	if err != nil {
		a.log.Errorf("Service initialization failed: %v", err)
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return svc, nil
}
