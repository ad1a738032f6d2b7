package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dgallion1/cvgest/internal/jobposting"
	"github.com/dgallion1/cvgest/internal/refine"
	"github.com/dgallion1/cvgest/internal/render"
	"github.com/dgallion1/cvgest/internal/resume"
	"github.com/dgallion1/cvgest/internal/textutil"
)

type parseRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Personal resume.PersonalInfo `json:"personal"`
	Sections *resume.SectionMap  `json:"sections"`
	Language textutil.Language   `json:"language"`
	Keywords []string            `json:"keywords"`
}

// handleParse segments plain text synchronously.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}

	parsed := resume.Parse(req.Text)
	lang := textutil.DetectLanguage(req.Text)
	writeJSON(w, http.StatusOK, parseResponse{
		Personal: parsed.Personal,
		Sections: parsed.Sections,
		Language: lang,
		Keywords: textutil.Keywords(req.Text, s.cfg.KeywordCount, lang),
	})
}

type photoPayload struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"` // base64 in JSON
}

type renderRequest struct {
	Sections *resume.SectionMap  `json:"sections"`
	Personal resume.PersonalInfo `json:"personal"`
	Photo    *photoPayload       `json:"photo,omitempty"`
	Format   string              `json:"format"`
}

// handleRender turns sections into an HTML page or Markdown.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Sections.Len() == 0 {
		jsonError(w, "sections are required", http.StatusBadRequest)
		return
	}

	doc := render.Document{Sections: req.Sections, Personal: req.Personal}
	if req.Photo != nil {
		doc.Photo = &render.Photo{ContentType: req.Photo.ContentType, Data: req.Photo.Data}
	}

	switch strings.ToLower(req.Format) {
	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(render.Markdown(doc)))
	case "", "html":
		out, err := render.HTML(doc)
		if err != nil {
			jsonError(w, "render failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(out))
	default:
		jsonError(w, "format must be html or markdown", http.StatusBadRequest)
	}
}

type coverLetterRequest struct {
	JobDescription string              `json:"job_description"`
	Sections       *resume.SectionMap  `json:"sections"`
	Personal       resume.PersonalInfo `json:"personal"`
	Company        string              `json:"company"`
	CompanyCity    string              `json:"company_city"`
	Recruiter      string              `json:"recruiter"`
	PositionTitle  string              `json:"position_title"`
	Language       string              `json:"language"`
}

type coverLetterResponse struct {
	Letter   *refine.CoverLetter `json:"letter"`
	Language textutil.Language   `json:"language"`
	Markdown string              `json:"markdown"`
	HTML     string              `json:"html"`
}

// handleCoverLetter generates a letter for a job posting (text or URL).
func (s *Server) handleCoverLetter(w http.ResponseWriter, r *http.Request) {
	if s.refiner == nil {
		jsonError(w, "no language model configured", http.StatusServiceUnavailable)
		return
	}
	var req coverLetterRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		jsonError(w, "job_description is required", http.StatusBadRequest)
		return
	}
	if req.Sections.Len() == 0 {
		jsonError(w, "sections are required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	jd, err := s.fetcher.Fetch(ctx, req.JobDescription)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, jobposting.ErrFetch) {
			status = http.StatusBadGateway
		}
		jsonError(w, err.Error(), status)
		return
	}

	lang := textutil.DetectLanguage(jd)
	if req.Language != "" {
		lang = textutil.ParseLanguage(req.Language)
	}

	letter, err := s.refiner.CoverLetter(ctx, refine.CoverLetterRequest{
		JobDescription: jd,
		Sections:       req.Sections,
		Personal:       req.Personal,
		Company:        req.Company,
		Recruiter:      req.Recruiter,
		PositionTitle:  req.PositionTitle,
		Language:       lang,
	})
	if err != nil {
		s.log.Error("cover letter failed", "error", err)
		jsonError(w, "cover letter generation failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	doc := render.CoverLetterDocument{
		Personal:      req.Personal,
		Recruiter:     req.Recruiter,
		Company:       req.Company,
		CompanyCity:   req.CompanyCity,
		PositionTitle: req.PositionTitle,
		Language:      lang,
		Date:          time.Now(),
		Letter:        letter,
	}
	html, err := render.CoverLetterHTML(doc)
	if err != nil {
		jsonError(w, "render failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, coverLetterResponse{
		Letter:   letter,
		Language: lang,
		Markdown: render.CoverLetterMarkdown(doc),
		HTML:     html,
	})
}

// decodeJSON reads a size-limited JSON body into v, answering 400 on
// failure.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
