//go:build !js && !wasm

package vocalcoach

import (
	"errors"

	"github.com/himanishpuri/VocalCoach/pkg/models"
	"github.com/himanishpuri/VocalCoach/pkg/vocalcoach/storage"
)

// storageAdapter adapts storage.DBClient to the Storage interface, mapping
// its not-found errors onto this package's sentinels.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStorage creates a new SQLite storage backend.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func mapErr(err, sentinel error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return errors.Join(sentinel, err)
	}
	return err
}

func (s *storageAdapter) CreateReference(ref models.Reference, frames []models.PitchFrame) (string, error) {
	return s.db.CreateReference(ref, frames)
}

func (s *storageAdapter) GetReferenceByID(id string) (*models.Reference, error) {
	ref, err := s.db.GetReferenceByID(id)
	return ref, mapErr(err, ErrReferenceNotFound)
}

func (s *storageAdapter) ListReferences() ([]models.Reference, error) {
	return s.db.ListReferences()
}

func (s *storageAdapter) GetPitchFrames(referenceID string) ([]models.PitchFrame, error) {
	return s.db.GetPitchFrames(referenceID)
}

func (s *storageAdapter) DeleteReferenceByID(id string) error {
	return mapErr(s.db.DeleteReferenceByID(id), ErrReferenceNotFound)
}

func (s *storageAdapter) SaveAnalysis(a *models.AnalysisResult) (string, error) {
	return s.db.SaveAnalysis(a)
}

func (s *storageAdapter) GetAnalysisByID(id string) (*models.AnalysisResult, error) {
	a, err := s.db.GetAnalysisByID(id)
	return a, mapErr(err, ErrAnalysisNotFound)
}

func (s *storageAdapter) ListAnalyses(referenceID string) ([]models.AnalysisResult, error) {
	return s.db.ListAnalyses(referenceID)
}

func (s *storageAdapter) Stats() (Stats, error) {
	st, err := s.db.Stats()
	return Stats{References: st.References, PitchFrames: st.PitchFrames, Analyses: st.Analyses}, err
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}
