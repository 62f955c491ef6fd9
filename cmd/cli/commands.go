//go:build !js && !wasm

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const (
	addTimeout     = 5 * time.Minute
	analyzeTimeout = 2 * time.Minute
)

// lyricsFlags resolves --lyrics / --lyrics-file.
type lyricsFlags struct {
	text string
	file string
}

func (l *lyricsFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&l.text, "lyrics", "", "Lyrics text")
	cmd.Flags().StringVar(&l.file, "lyrics-file", "", "Read lyrics from a file")
	cmd.MarkFlagsMutuallyExclusive("lyrics", "lyrics-file")
}

func (l *lyricsFlags) value() (string, error) {
	if l.file == "" {
		return l.text, nil
	}
	data, err := os.ReadFile(l.file)
	if err != nil {
		return "", fmt.Errorf("reading lyrics: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func newAddCmd(a *app) *cobra.Command {
	var (
		title  string
		lyrics lyricsFlags
	)
	cmd := &cobra.Command{
		Use:   "add <audio_file>",
		Short: "Store a teacher recording as a reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := lyrics.value()
			if err != nil {
				return err
			}
			svc, err := a.createService()
			if err != nil {
				return err
			}
			defer svc.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "🎵 Extracting reference pitch track...")

			ctx, cancel := context.WithTimeout(cmd.Context(), addTimeout)
			defer cancel()

			id, err := svc.AddReference(ctx, args[0], title, text)
			if err != nil {
				a.log.Errorf("AddReference failed: %v", err)
				return fmt.Errorf("failed to add reference: %w", err)
			}
			ref, err := svc.GetReference(id)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "\n✅ Reference added")
			printReference(out, *ref)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Reference title (default: file name)")
	lyrics.register(cmd)
	return cmd
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		tolerance float64
		showPath  bool
	)
	cmd := &cobra.Command{
		Use:   "analyze <reference_id> <audio_file>",
		Short: "Compare a student recording with a stored reference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.createService()
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), analyzeTimeout)
			defer cancel()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "🔍 Analyzing performance...")
			res, err := svc.Analyze(ctx, args[0], args[1], tolerance)
			if err != nil {
				a.log.Errorf("Analyze failed: %v", err)
				return fmt.Errorf("failed to analyze: %w", err)
			}
			printAnalysis(out, res, showPath)
			return nil
		},
	}
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "Pitch tolerance (default: analysis.pitch_tolerance)")
	cmd.Flags().BoolVar(&showPath, "path", false, "Print the warping path")
	return cmd
}

func newCompareCmd(a *app) *cobra.Command {
	var (
		tolerance float64
		showPath  bool
		lyrics    lyricsFlags
	)
	cmd := &cobra.Command{
		Use:   "compare <teacher_audio> <student_audio>",
		Short: "Compare two recordings without storing anything",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := lyrics.value()
			if err != nil {
				return err
			}
			svc, err := a.createService()
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), analyzeTimeout)
			defer cancel()

			res, err := svc.Compare(ctx, args[0], args[1], text, tolerance)
			if err != nil {
				a.log.Errorf("Compare failed: %v", err)
				return fmt.Errorf("failed to compare: %w", err)
			}
			printAnalysis(cmd.OutOrStdout(), res, showPath)
			return nil
		},
	}
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "Pitch tolerance (default: analysis.pitch_tolerance)")
	cmd.Flags().BoolVar(&showPath, "path", false, "Print the warping path")
	lyrics.register(cmd)
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.createService()
			if err != nil {
				return err
			}
			defer svc.Close()

			refs, err := svc.ListReferences()
			if err != nil {
				return fmt.Errorf("failed to list references: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(refs) == 0 {
				fmt.Fprintln(out, "📭 No references in database")
				return nil
			}
			fmt.Fprintf(out, "📚 Found %d reference(s):\n\n", len(refs))
			for i, ref := range refs {
				fmt.Fprintf(out, "%d. ", i+1)
				printReference(out, ref)
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history <reference_id>",
		Short: "Show past analyses for a reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.createService()
			if err != nil {
				return err
			}
			defer svc.Close()

			analyses, err := svc.ListAnalyses(args[0])
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(analyses) == 0 {
				fmt.Fprintln(out, "📭 No analyses yet")
				return nil
			}
			for _, res := range analyses {
				printHistoryLine(out, res)
			}
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <reference_id>",
		Short: "Delete a reference with its pitch track and analyses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.createService()
			if err != nil {
				return err
			}
			defer svc.Close()

			ref, err := svc.GetReference(args[0])
			if err != nil {
				return err
			}
			if err := svc.DeleteReference(ref.ID); err != nil {
				return fmt.Errorf("failed to delete reference: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "✅ Deleted reference:")
			printReference(out, *ref)
			return nil
		},
	}
}
