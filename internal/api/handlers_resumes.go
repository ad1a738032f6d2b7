package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/cvgest/internal/parser"
	"github.com/dgallion1/cvgest/internal/pipeline"
	"github.com/dgallion1/cvgest/internal/store"
)

// handleUpload queues a résumé file for processing.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	userID := strings.TrimSpace(r.FormValue("user_id"))
	if userID == "" {
		jsonError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	opts := pipeline.Options{
		Refine:         formBool(r, "refine"),
		Force:          formBool(r, "force"),
		JobDescription: r.FormValue("job_description"),
		PositionTitle:  r.FormValue("position_title"),
	}
	if opts.Refine && s.refiner == nil {
		jsonError(w, "refine requested but no language model is configured", http.StatusServiceUnavailable)
		return
	}

	job := pipeline.NewJob(userID, strings.TrimSpace(r.FormValue("doc_id")), filename, data, opts)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"doc_id":   job.DocID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/resumes/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// handleListResumes lists stored résumés for a user.
func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireStorage(w, r)
	if !ok {
		return
	}
	recs, err := s.resumes.ListResumes(r.Context(), userID)
	if err != nil {
		jsonError(w, "failed to list resumes: "+err.Error(), http.StatusInternalServerError)
		return
	}

	type summary struct {
		DocID       string `json:"doc_id"`
		Filename    string `json:"filename"`
		Name        string `json:"name"`
		Language    string `json:"language"`
		Refined     bool   `json:"refined"`
		Sections    int    `json:"sections"`
		ArtifactURL string `json:"artifact_url,omitempty"`
		CreatedAt   string `json:"created_at"`
	}
	out := make([]summary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, summary{
			DocID:       rec.DocID,
			Filename:    rec.Filename,
			Name:        rec.Personal.Name,
			Language:    rec.Language,
			Refined:     rec.Refined,
			Sections:    rec.Sections.Len(),
			ArtifactURL: rec.ArtifactURL,
			CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"resumes": out})
}

func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireStorage(w, r)
	if !ok {
		return
	}
	rec, err := s.resumes.GetResume(r.Context(), userID, chi.URLParam(r, "docID"))
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "resume not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to read resume: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleDeleteResume deletes a stored résumé and its hash index entry.
func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireStorage(w, r)
	if !ok {
		return
	}
	docID := chi.URLParam(r, "docID")
	err := s.resumes.DeleteResume(r.Context(), userID, docID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "resume not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to delete resume: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"doc_id": docID, "deleted": true})
}

// requireStorage checks that persistence is configured and user_id given.
func (s *Server) requireStorage(w http.ResponseWriter, r *http.Request) (string, bool) {
	if s.resumes == nil {
		jsonError(w, "storage is not configured", http.StatusServiceUnavailable)
		return "", false
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return "", false
	}
	return userID, true
}

func formBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.FormValue(key))
	return err == nil && v
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
