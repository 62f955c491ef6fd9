package vocalcoach

import (
	"context"
	"errors"

	"github.com/himanishpuri/VocalCoach/pkg/models"
)

var (
	ErrReferenceNotFound = errors.New("reference not found")
	ErrAnalysisNotFound  = errors.New("analysis not found")
	ErrNoPitchFrames     = errors.New("audio produced no pitch frames")
)

type Service interface {
	AddReference(ctx context.Context, audioPath, title, lyrics string) (string, error)
	Analyze(ctx context.Context, referenceID, studentAudioPath string, tolerance float64) (*models.AnalysisResult, error)
	Compare(ctx context.Context, teacherPath, studentPath, lyrics string, tolerance float64) (*models.AnalysisResult, error)
	CompareSequences(ctx context.Context, in SequenceInput) (*models.AnalysisResult, error)
	GetReference(id string) (*models.Reference, error)
	ListReferences() ([]models.Reference, error)
	DeleteReference(id string) error
	ListAnalyses(referenceID string) ([]models.AnalysisResult, error)
	GetAnalysis(id string) (*models.AnalysisResult, error)
	Stats() (Stats, error)
	Close() error
}

type Storage interface {
	CreateReference(ref models.Reference, frames []models.PitchFrame) (string, error)
	GetReferenceByID(id string) (*models.Reference, error)
	ListReferences() ([]models.Reference, error)
	GetPitchFrames(referenceID string) ([]models.PitchFrame, error)
	DeleteReferenceByID(id string) error
	SaveAnalysis(a *models.AnalysisResult) (string, error)
	GetAnalysisByID(id string) (*models.AnalysisResult, error)
	ListAnalyses(referenceID string) ([]models.AnalysisResult, error)
	Stats() (Stats, error)
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}

// Stats counts stored rows.
type Stats struct {
	References  int64 `json:"references"`
	PitchFrames int64 `json:"pitch_frames"`
	Analyses    int64 `json:"analyses"`
}

// SequenceInput is a comparison of already extracted pitch tracks.
type SequenceInput struct {
	TeacherPitches []float64
	TeacherTimes   []float64
	StudentPitches []float64
	StudentTimes   []float64
	Lyrics         string
	Tolerance      float64
}
