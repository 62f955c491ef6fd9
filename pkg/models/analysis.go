package models

import "time"

// WordMark is one lyric word with its time span and verdict.
type WordMark struct {
	Word    string  `json:"word"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Flagged bool    `json:"flagged"`
}

// AnalysisResult is the outcome of comparing a student take with a reference.
type AnalysisResult struct {
	ID            string     `json:"id,omitempty"`
	ReferenceID   string     `json:"reference_id,omitempty"`
	StudentFile   string     `json:"student_file,omitempty"`
	Tolerance     float64    `json:"tolerance"`
	Annotated     string     `json:"annotated"`
	Words         []WordMark `json:"words"`
	Flags         []float64  `json:"flags"`
	Path          [][2]int   `json:"path,omitempty"`
	Cost          float64    `json:"cost"`
	FlaggedWords  int        `json:"flagged_words"`
	TotalWords    int        `json:"total_words"`
	// UnplacedFlags counts flagged student times past the end of the lyric
	// timeline; they mark no word.
	UnplacedFlags int        `json:"unplaced_flags"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Accuracy is the share of words sung within tolerance, in [0,1].
func (a *AnalysisResult) Accuracy() float64 {
	if a.TotalWords == 0 {
		return 0
	}
	return float64(a.TotalWords-a.FlaggedWords) / float64(a.TotalWords)
}
