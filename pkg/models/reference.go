package models

import "time"

// Reference is a stored teacher recording with its lyrics.
type Reference struct {
	ID         string    `json:"id"` // UUID
	Title      string    `json:"title"`
	Lyrics     string    `json:"lyrics"`
	SampleRate int       `json:"sample_rate"`
	FrameCount int       `json:"frame_count"`
	DurationMs int       `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// PitchFrame is one reduced frame of a reference's pitch track.
type PitchFrame struct {
	Index int     `json:"index"`
	Time  float64 `json:"time"`  // seconds
	Pitch float64 `json:"pitch"` // 0 = unvoiced
}
