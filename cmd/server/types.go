package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/himanishpuri/VocalCoach/pkg/models"
)

const (
	// MaxCompareFrames bounds each side of POST /api/compare.
	MaxCompareFrames = 20000

	// MaxCompareCells bounds teacher*student frames. The aligner is O(N*M)
	// in time and memory, about 9 bytes per cell.
	MaxCompareCells = 25_000_000

	// LargeCompareCells triggers logging for large comparisons
	LargeCompareCells = MaxCompareCells / 4

	maxUploadBytes = 100 << 20
)

// CompareRequest is the request body for POST /api/compare
type CompareRequest struct {
	TeacherPitches []float64 `json:"teacher_pitches"`
	TeacherTimes   []float64 `json:"teacher_times"`
	StudentPitches []float64 `json:"student_pitches"`
	StudentTimes   []float64 `json:"student_times"`
	Lyrics         string    `json:"lyrics"`
	// Tolerance of 0 or omitted selects the server default.
	Tolerance float64 `json:"tolerance,omitempty"`
}

// Validate checks request shape. Value checks (finite pitches, ordered
// times) are left to the engine.
func (r *CompareRequest) Validate() error {
	if len(r.TeacherPitches) == 0 || len(r.StudentPitches) == 0 {
		return fmt.Errorf("teacher_pitches and student_pitches cannot be empty")
	}
	if len(r.TeacherTimes) != len(r.TeacherPitches) {
		return fmt.Errorf("teacher_times has %d entries for %d pitches", len(r.TeacherTimes), len(r.TeacherPitches))
	}
	if len(r.StudentTimes) != len(r.StudentPitches) {
		return fmt.Errorf("student_times has %d entries for %d pitches", len(r.StudentTimes), len(r.StudentPitches))
	}
	if n := max(len(r.TeacherPitches), len(r.StudentPitches)); n > MaxCompareFrames {
		return fmt.Errorf("too many frames: %d (maximum: %d)", n, MaxCompareFrames)
	}
	if n := len(r.TeacherPitches) * len(r.StudentPitches); n > MaxCompareCells {
		return fmt.Errorf("comparison too large: %d x %d frames (maximum: %d cells)",
			len(r.TeacherPitches), len(r.StudentPitches), MaxCompareCells)
	}
	if r.Lyrics == "" {
		return fmt.Errorf("lyrics is required")
	}
	if r.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative")
	}
	return nil
}

// ReferenceDTO represents a reference recording in API responses
type ReferenceDTO struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Lyrics     string    `json:"lyrics"`
	SampleRate int       `json:"sample_rate"`
	FrameCount int       `json:"frame_count"`
	DurationMs int       `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
	Added      string    `json:"added"` // e.g. "3 minutes ago"
}

func toReferenceDTO(ref models.Reference) ReferenceDTO {
	return ReferenceDTO{
		ID:         ref.ID,
		Title:      ref.Title,
		Lyrics:     ref.Lyrics,
		SampleRate: ref.SampleRate,
		FrameCount: ref.FrameCount,
		DurationMs: ref.DurationMs,
		CreatedAt:  ref.CreatedAt,
		Added:      humanize.Time(ref.CreatedAt),
	}
}

// ListReferencesResponse is the response for GET /api/references
type ListReferencesResponse struct {
	References []ReferenceDTO `json:"references"`
	Count      int            `json:"count"`
}

// AddReferenceResponse is the response for POST /api/references
type AddReferenceResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	Title   string `json:"title"`
}

// DeleteReferenceResponse is the response for DELETE /api/references/{id}
type DeleteReferenceResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ListAnalysesResponse is the response for GET /api/references/{id}/analyses
type ListAnalysesResponse struct {
	ReferenceID string                  `json:"reference_id"`
	Analyses    []models.AnalysisResult `json:"analyses"`
	Count       int                     `json:"count"`
}

// MetricsResponse provides server health and database metrics
type MetricsResponse struct {
	Status       string  `json:"status"`
	DatabasePath string  `json:"database_path"`
	References   int64   `json:"references"`
	PitchFrames  int64   `json:"pitch_frames"`
	Analyses     int64   `json:"analyses"`
	SampleRate   int     `json:"sample_rate"`
	Tolerance    float64 `json:"tolerance"`
	Uptime       string  `json:"uptime"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
