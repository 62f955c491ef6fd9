package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/himanishpuri/VocalCoach/pkg/utils"
	"github.com/himanishpuri/VocalCoach/pkg/vocalcoach"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service vocalcoach.Service
	config  *ServerConfig
	log     vocalcoach.Logger
	started time.Time
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	TempDir        string
	SampleRate     int
	Tolerance      float64
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewServer creates a new server instance
func NewServer(service vocalcoach.Service, config *ServerConfig, log vocalcoach.Logger) *Server {
	if config.RequestTimeout == 0 {
		config.RequestTimeout = 5 * time.Minute
	}
	return &Server{
		service: service,
		config:  config,
		log:     log,
		started: time.Now(),
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// respondServiceError maps service errors onto 404, 400 or 500.
func (s *Server) respondServiceError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, vocalcoach.ErrReferenceNotFound), errors.Is(err, vocalcoach.ErrAnalysisNotFound):
		s.log.Warnf("%s: %v", action, err)
		s.respondError(w, http.StatusNotFound, err.Error())
	case vocalcoach.IsInputError(err):
		s.log.Warnf("%s: %v", action, err)
		s.respondError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Errorf("%s: %v", action, err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("%s: %v", action, err))
	}
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "VocalCoach API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":          "GET /health",
			"metrics":         "GET /api/health/metrics",
			"references":      "GET /api/references",
			"addReference":    "POST /api/references",
			"getReference":    "GET /api/references/{id}",
			"deleteReference": "DELETE /api/references/{id}",
			"analyses":        "GET /api/references/{id}/analyses",
			"analyze":         "POST /api/references/{id}/analyses",
			"getAnalysis":     "GET /api/analyses/{id}",
			"compare":         "POST /api/compare",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats()
	if err != nil {
		s.log.Errorf("Failed to read stats: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	}

	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:       "healthy",
		DatabasePath: s.config.DBPath,
		References:   stats.References,
		PitchFrames:  stats.PitchFrames,
		Analyses:     stats.Analyses,
		SampleRate:   s.config.SampleRate,
		Tolerance:    s.config.Tolerance,
		Uptime:       strings.TrimSpace(humanize.RelTime(s.started, time.Now(), "", "")),
	})
}

// handleListReferences handles GET /api/references
func (s *Server) handleListReferences(w http.ResponseWriter, r *http.Request) {
	refs, err := s.service.ListReferences()
	if err != nil {
		s.respondServiceError(w, "Failed to list references", err)
		return
	}

	dtos := make([]ReferenceDTO, len(refs))
	for i, ref := range refs {
		dtos[i] = toReferenceDTO(ref)
	}
	s.respondJSON(w, http.StatusOK, ListReferencesResponse{References: dtos, Count: len(dtos)})
}

// handleGetReference handles GET /api/references/{id}
func (s *Server) handleGetReference(w http.ResponseWriter, r *http.Request) {
	ref, err := s.service.GetReference(r.PathValue("id"))
	if err != nil {
		s.respondServiceError(w, "Failed to get reference", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toReferenceDTO(*ref))
}

// handleDeleteReference handles DELETE /api/references/{id}
func (s *Server) handleDeleteReference(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.DeleteReference(id); err != nil {
		s.respondServiceError(w, "Failed to delete reference", err)
		return
	}
	s.respondJSON(w, http.StatusOK, DeleteReferenceResponse{
		Message: "Reference deleted successfully",
		ID:      id,
	})
}

// handleAddReference handles POST /api/references (multipart: audio, title, lyrics)
func (s *Server) handleAddReference(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	title := r.FormValue("title")
	lyrics := r.FormValue("lyrics")
	if strings.TrimSpace(lyrics) == "" {
		s.respondError(w, http.StatusBadRequest, "lyrics is required")
		return
	}

	path, cleanup, ok := s.saveUpload(w, r, "audio", "reference")
	if !ok {
		return
	}
	defer cleanup()

	id, err := s.service.AddReference(ctx, path, title, lyrics)
	if err != nil {
		s.respondServiceError(w, "Failed to add reference", err)
		return
	}

	ref, err := s.service.GetReference(id)
	if err == nil {
		title = ref.Title
	}
	s.respondJSON(w, http.StatusCreated, AddReferenceResponse{
		Message: "Reference added successfully",
		ID:      id,
		Title:   title,
	})
}

// handleListAnalyses handles GET /api/references/{id}/analyses
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	analyses, err := s.service.ListAnalyses(id)
	if err != nil {
		s.respondServiceError(w, "Failed to list analyses", err)
		return
	}
	s.respondJSON(w, http.StatusOK, ListAnalysesResponse{ReferenceID: id, Analyses: analyses, Count: len(analyses)})
}

// handleAnalyze handles POST /api/references/{id}/analyses (multipart: audio, tolerance)
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	var tolerance float64
	if v := r.FormValue("tolerance"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil || t < 0 {
			s.respondError(w, http.StatusBadRequest, "tolerance must be a non-negative number")
			return
		}
		tolerance = t
	}

	path, cleanup, ok := s.saveUpload(w, r, "audio", "student")
	if !ok {
		return
	}
	defer cleanup()

	result, err := s.service.Analyze(ctx, r.PathValue("id"), path, tolerance)
	if err != nil {
		s.respondServiceError(w, "Failed to analyze performance", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, result)
}

// handleGetAnalysis handles GET /api/analyses/{id}
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.GetAnalysis(r.PathValue("id"))
	if err != nil {
		s.respondServiceError(w, "Failed to get analysis", err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// handleCompare handles POST /api/compare (pre-extracted pitch tracks, nothing stored)
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Errorf("Failed to decode request: %v", err)
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if n := len(req.TeacherPitches) * len(req.StudentPitches); n >= LargeCompareCells {
		s.log.Warnf("Large comparison received: %d x %d frames", len(req.TeacherPitches), len(req.StudentPitches))
	}

	result, err := s.service.CompareSequences(ctx, vocalcoach.SequenceInput{
		TeacherPitches: req.TeacherPitches,
		TeacherTimes:   req.TeacherTimes,
		StudentPitches: req.StudentPitches,
		StudentTimes:   req.StudentTimes,
		Lyrics:         req.Lyrics,
		Tolerance:      req.Tolerance,
	})
	if err != nil {
		s.respondServiceError(w, "Failed to compare", err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// saveUpload copies a multipart file into its own directory under the temp
// dir, keeping the client's file name. On failure it has already written the
// error response.
func (s *Server) saveUpload(w http.ResponseWriter, r *http.Request, field, prefix string) (string, func(), bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		s.log.Errorf("Failed to get %s file: %v", field, err)
		s.respondError(w, http.StatusBadRequest, field+" file is required")
		return "", nil, false
	}
	defer file.Close()

	dir := filepath.Join(s.config.TempDir, prefix+"-"+uuid.NewString())
	if err := utils.MakeDir(dir); err != nil {
		s.log.Errorf("Failed to create upload dir: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to process upload")
		return "", nil, false
	}
	cleanup := func() {
		if err := utils.DeleteDir(dir); err != nil {
			s.log.Warnf("Failed to remove %s: %v", dir, err)
		}
	}

	tempFile := filepath.Join(dir, filepath.Base(header.Filename))
	out, err := os.Create(tempFile)
	if err != nil {
		cleanup()
		s.log.Errorf("Failed to create temp file: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to process upload")
		return "", nil, false
	}

	n, err := io.Copy(out, file)
	out.Close()
	if err != nil {
		cleanup()
		s.log.Errorf("Failed to save file: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to save uploaded file")
		return "", nil, false
	}

	s.log.Infof("Received %s (%s)", header.Filename, humanize.Bytes(uint64(n)))
	return tempFile, cleanup, true
}
