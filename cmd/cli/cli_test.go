//go:build !js && !wasm

package main

import (
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/himanishpuri/VocalCoach/internal/audio"
	"github.com/himanishpuri/VocalCoach/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const toneRate = audio.DefaultSampleRate

var idPattern = regexp.MustCompile(`ID: ([0-9a-f-]{36})`)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func execute(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("VOCALCOACH_CONFIG", "")
	t.Setenv("VOCALCOACH_DB_PATH", "")
	t.Setenv("VOCALCOACH_TOLERANCE", "")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--db", db, "--temp", filepath.Dir(db)}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeTones(t *testing.T, name string, notes ...float64) string {
	t.Helper()
	var samples []float64
	for _, f := range notes {
		for i := 0; i < toneRate; i++ {
			samples = append(samples, 0.8*math.Sin(2*math.Pi*f*float64(i)/toneRate))
		}
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, audio.WriteMonoWAV(path, samples, toneRate))
	return path
}

func TestReferenceWorkflow(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.sqlite3")

	out, err := execute(t, db, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No references")

	teacher := writeTones(t, "teacher.wav", 220, 330)
	out, err = execute(t, db, "add", teacher, "--title", "Warmup", "--lyrics", "low high")
	require.NoError(t, err)
	assert.Contains(t, out, `"Warmup"`)
	m := idPattern.FindStringSubmatch(out)
	require.Len(t, m, 2, "no reference ID in %q", out)
	id := m[1]

	out, err = execute(t, db, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 reference(s)")
	assert.Contains(t, out, id)

	out, err = execute(t, db, "analyze", id, writeTones(t, "clean.wav", 220, 330))
	require.NoError(t, err)
	assert.Contains(t, out, "All 2 words within tolerance")

	out, err = execute(t, db, "analyze", id, writeTones(t, "flat.wav", 220, 262), "--path")
	require.NoError(t, err)
	assert.Contains(t, out, "*high*")
	assert.Contains(t, out, "words off pitch")
	assert.Contains(t, out, "Path: (0,0)")

	out, err = execute(t, db, "history", id)
	require.NoError(t, err)
	assert.Contains(t, out, "flat.wav")
	assert.Contains(t, out, "clean.wav")

	out, err = execute(t, db, "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted reference")

	_, err = execute(t, db, "delete", id)
	assert.Error(t, err)
}

func TestCompareLyricsFile(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "cli.sqlite3")
	lyricsPath := filepath.Join(dir, "lyrics.txt")
	require.NoError(t, os.WriteFile(lyricsPath, []byte("low high\n"), 0o644))

	teacher := writeTones(t, "teacher.wav", 220, 330)
	student := writeTones(t, "student.wav", 220, 262)

	out, err := execute(t, db, "compare", teacher, student, "--lyrics-file", lyricsPath)
	require.NoError(t, err)
	assert.Contains(t, out, "*high*")
	assert.NotContains(t, out, "Analysis ID")

	out, err = execute(t, db, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No references")
}

func TestCompareReportsUnplacedFlags(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.sqlite3")
	teacher := writeTones(t, "teacher.wav", 220)
	student := writeTones(t, "student.wav", 220, 330)

	out, err := execute(t, db, "compare", teacher, student, "--lyrics", "la")
	require.NoError(t, err)
	assert.Contains(t, out, "past the end of the lyrics")
}

func TestCommandValidation(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.sqlite3")
	wav := writeTones(t, "a.wav", 220)

	tests := []struct {
		name string
		args []string
	}{
		{"add without file", []string{"add", "--lyrics", "a"}},
		{"add without lyrics", []string{"add", wav}},
		{"both lyrics flags", []string{"add", wav, "--lyrics", "a", "--lyrics-file", "x.txt"}},
		{"analyze missing audio", []string{"analyze", "some-id"}},
		{"analyze unknown reference", []string{"analyze", "missing", wav}},
		{"negative tolerance", []string{"compare", wav, wav, "--lyrics", "a", "--tolerance", "-1"}},
		{"list with args", []string{"list", "extra"}},
		{"bad rate", []string{"--rate", "-5", "list"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, db, tt.args...)
			assert.Error(t, err)
		})
	}
}
