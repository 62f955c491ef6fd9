//go:build !js && !wasm

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/himanishpuri/VocalCoach/pkg/models"
)

func printReference(w io.Writer, ref models.Reference) {
	fmt.Fprintf(w, "%q (ID: %s)\n", ref.Title, ref.ID)
	if ref.DurationMs > 0 {
		d := ref.DurationMs / 1000
		fmt.Fprintf(w, "   Duration: %d:%02d | Frames: %s | Added %s\n",
			d/60, d%60, humanize.Comma(int64(ref.FrameCount)), humanize.Time(ref.CreatedAt))
	}
	fmt.Fprintf(w, "   Lyrics:   %s\n", truncate(ref.Lyrics, 60))
}

func printAnalysis(w io.Writer, res *models.AnalysisResult, showPath bool) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, res.Annotated)
	fmt.Fprintln(w)

	if res.FlaggedWords == 0 {
		fmt.Fprintf(w, "✅ All %d words within tolerance %g\n", res.TotalWords, res.Tolerance)
	} else {
		fmt.Fprintf(w, "🎯 %d of %d words off pitch (%.0f%% accuracy, tolerance %g)\n",
			res.FlaggedWords, res.TotalWords, res.Accuracy()*100, res.Tolerance)
		for _, word := range res.Words {
			if word.Flagged {
				fmt.Fprintf(w, "   %-16s %6.2fs - %6.2fs\n", word.Word, word.Start, word.End)
			}
		}
	}
	fmt.Fprintf(w, "   Flagged frames: %s | Alignment cost: %s\n",
		humanize.Comma(int64(len(res.Flags))), humanize.Ftoa(res.Cost))
	if res.UnplacedFlags > 0 {
		fmt.Fprintf(w, "   ⚠️  %d flagged frame(s) past the end of the lyrics\n", res.UnplacedFlags)
	}
	if res.ID != "" {
		fmt.Fprintf(w, "   Analysis ID: %s\n", res.ID)
	}

	if showPath {
		pairs := make([]string, len(res.Path))
		for i, p := range res.Path {
			pairs[i] = fmt.Sprintf("(%d,%d)", p[0], p[1])
		}
		fmt.Fprintf(w, "   Path: %s\n", strings.Join(pairs, " "))
	}
}

func printHistoryLine(w io.Writer, res models.AnalysisResult) {
	fmt.Fprintf(w, "%s  %-20s %3.0f%%  %s\n",
		res.CreatedAt.Local().Format(time.DateTime),
		truncate(res.StudentFile, 20),
		res.Accuracy()*100,
		res.Annotated)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
