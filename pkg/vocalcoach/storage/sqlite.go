//go:build !js && !wasm
// +build !js,!wasm

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/himanishpuri/VocalCoach/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "vocalcoach.sqlite3"

const frameBatchSize = 500

var (
	ErrNotFound     = errors.New("record not found")
	errDBClientNil  = errors.New("db client is nil")
	errMissingRefID = errors.New("reference id is required")
)

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

type Reference struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	Title      string `gorm:"index:idx_reference_title"`
	Lyrics     string
	SampleRate int
	FrameCount int
	DurationMs int
	CreatedAt  time.Time
}

type PitchFrame struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	ReferenceID string `gorm:"type:varchar(36);index:idx_frame_reference,priority:1"`
	FrameIndex  int    `gorm:"index:idx_frame_reference,priority:2"`
	Time        float64
	Pitch       float64
}

type Analysis struct {
	ID            string `gorm:"primaryKey;type:varchar(36)"`
	ReferenceID   string `gorm:"type:varchar(36);index:idx_analysis_reference"`
	StudentFile   string
	Tolerance     float64
	Annotated     string
	Words         []models.WordMark `gorm:"serializer:json"`
	Flags         []float64         `gorm:"serializer:json"`
	Path          [][2]int          `gorm:"serializer:json"`
	Cost          float64
	FlaggedWords  int
	TotalWords    int
	UnplacedFlags int
	CreatedAt     time.Time `gorm:"index:idx_analysis_created"`
}

// Stats summarises table sizes.
type Stats struct {
	References  int64
	PitchFrames int64
	Analyses    int64
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("VOCALCOACH_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}
	// sqlite serialises writers; one connection avoids SQLITE_BUSY
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Reference{}, &PitchFrame{}, &Analysis{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *DBClient) ready() error {
	if c == nil || c.DB == nil {
		return errDBClientNil
	}
	return nil
}

// CreateReference stores the reference together with its pitch track in one
// transaction and returns the new ID.
func (c *DBClient) CreateReference(ref models.Reference, frames []models.PitchFrame) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}

	row := Reference{
		ID:         uuid.NewString(),
		Title:      ref.Title,
		Lyrics:     ref.Lyrics,
		SampleRate: ref.SampleRate,
		FrameCount: len(frames),
		DurationMs: ref.DurationMs,
	}

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("creating reference: %w", err)
		}
		if len(frames) == 0 {
			return nil
		}
		entries := make([]PitchFrame, len(frames))
		for i, f := range frames {
			entries[i] = PitchFrame{ReferenceID: row.ID, FrameIndex: f.Index, Time: f.Time, Pitch: f.Pitch}
		}
		if err := tx.CreateInBatches(entries, frameBatchSize).Error; err != nil {
			return fmt.Errorf("batch insert pitch frames: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return row.ID, nil
}

func (c *DBClient) GetReferenceByID(id string) (*models.Reference, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	var row Reference
	if err := c.DB.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound(err, "reference "+id)
	}
	ref := row.toModel()
	return &ref, nil
}

func (c *DBClient) ListReferences() ([]models.Reference, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	var rows []Reference
	if err := c.DB.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing references: %w", err)
	}
	out := make([]models.Reference, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// GetPitchFrames returns a reference's pitch track in frame order.
func (c *DBClient) GetPitchFrames(referenceID string) ([]models.PitchFrame, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	var rows []PitchFrame
	if err := c.DB.Where("reference_id = ?", referenceID).Order("frame_index").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying pitch frames: %w", err)
	}
	out := make([]models.PitchFrame, len(rows))
	for i, r := range rows {
		out[i] = models.PitchFrame{Index: r.FrameIndex, Time: r.Time, Pitch: r.Pitch}
	}
	return out, nil
}

// DeleteReferenceByID removes the reference, its pitch frames and its
// analyses.
func (c *DBClient) DeleteReferenceByID(id string) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reference_id = ?", id).Delete(&PitchFrame{}).Error; err != nil {
			return err
		}
		if err := tx.Where("reference_id = ?", id).Delete(&Analysis{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&Reference{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("reference %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

func (c *DBClient) SaveAnalysis(a *models.AnalysisResult) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}
	if a.ReferenceID == "" {
		return "", errMissingRefID
	}
	row := Analysis{
		ID:            uuid.NewString(),
		ReferenceID:   a.ReferenceID,
		StudentFile:   a.StudentFile,
		Tolerance:     a.Tolerance,
		Annotated:     a.Annotated,
		Words:         a.Words,
		Flags:         a.Flags,
		Path:          a.Path,
		Cost:          a.Cost,
		FlaggedWords:  a.FlaggedWords,
		TotalWords:    a.TotalWords,
		UnplacedFlags: a.UnplacedFlags,
	}
	if err := c.DB.Create(&row).Error; err != nil {
		return "", fmt.Errorf("saving analysis: %w", err)
	}
	a.ID = row.ID
	a.CreatedAt = row.CreatedAt
	return row.ID, nil
}

func (c *DBClient) GetAnalysisByID(id string) (*models.AnalysisResult, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	var row Analysis
	if err := c.DB.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound(err, "analysis "+id)
	}
	res := row.toModel()
	return &res, nil
}

// ListAnalyses returns a reference's analyses, newest first. The warping
// path is omitted from list results.
func (c *DBClient) ListAnalyses(referenceID string) ([]models.AnalysisResult, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	var rows []Analysis
	err := c.DB.Omit("path").
		Where("reference_id = ?", referenceID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	out := make([]models.AnalysisResult, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

func (c *DBClient) Stats() (Stats, error) {
	var s Stats
	if err := c.ready(); err != nil {
		return s, err
	}
	if err := c.DB.Model(&Reference{}).Count(&s.References).Error; err != nil {
		return s, err
	}
	if err := c.DB.Model(&PitchFrame{}).Count(&s.PitchFrames).Error; err != nil {
		return s, err
	}
	if err := c.DB.Model(&Analysis{}).Count(&s.Analyses).Error; err != nil {
		return s, err
	}
	return s, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (r Reference) toModel() models.Reference {
	return models.Reference{
		ID:         r.ID,
		Title:      r.Title,
		Lyrics:     r.Lyrics,
		SampleRate: r.SampleRate,
		FrameCount: r.FrameCount,
		DurationMs: r.DurationMs,
		CreatedAt:  r.CreatedAt,
	}
}

func (a Analysis) toModel() models.AnalysisResult {
	return models.AnalysisResult{
		ID:            a.ID,
		ReferenceID:   a.ReferenceID,
		StudentFile:   a.StudentFile,
		Tolerance:     a.Tolerance,
		Annotated:     a.Annotated,
		Words:         a.Words,
		Flags:         a.Flags,
		Path:          a.Path,
		Cost:          a.Cost,
		FlaggedWords:  a.FlaggedWords,
		TotalWords:    a.TotalWords,
		UnplacedFlags: a.UnplacedFlags,
		CreatedAt:     a.CreatedAt,
	}
}
