package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/cvgest/internal/artifacts"
	"github.com/dgallion1/cvgest/internal/events"
	"github.com/dgallion1/cvgest/internal/jobposting"
	"github.com/dgallion1/cvgest/internal/parser"
	"github.com/dgallion1/cvgest/internal/refine"
	"github.com/dgallion1/cvgest/internal/render"
	"github.com/dgallion1/cvgest/internal/resume"
	"github.com/dgallion1/cvgest/internal/store"
	"github.com/dgallion1/cvgest/internal/textutil"
)

// ResumeStore persists processed résumés and answers dedup lookups.
type ResumeStore interface {
	PutResume(ctx context.Context, rec store.Record) error
	FindByHash(ctx context.Context, userID, hash string) (string, error)
}

// ArtifactStore keeps rendered files.
type ArtifactStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Deps are the optional collaborators of a worker. Nil Refiner, Store or
// Artifacts disable the matching phase.
type Deps struct {
	Refiner   *refine.Refiner
	Store     ResumeStore
	Artifacts ArtifactStore
	Fetcher   *jobposting.Fetcher
	Events    events.Publisher
}

// Worker processes a single résumé job.
type Worker struct {
	deps         Deps
	log          *slog.Logger
	parserOpts   parser.Options
	keywordCount int
}

func NewWorker(deps Deps, log *slog.Logger, parserOpts parser.Options, keywordCount int) *Worker {
	if deps.Events == nil {
		deps.Events = events.NopPublisher{}
	}
	if deps.Fetcher == nil {
		deps.Fetcher = jobposting.NewFetcher(10 * time.Second)
	}
	if keywordCount <= 0 {
		keywordCount = textutil.DefaultKeywordCount
	}
	return &Worker{deps: deps, log: log, parserOpts: parserOpts, keywordCount: keywordCount}
}

// Process runs the full pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "user_id", job.UserID)
	defer job.releaseFileData()

	// Phase 1: Parse
	w.transition(ctx, job, StatusParsing, "parsing", "")
	doc, err := parser.Extract(bytes.NewReader(job.FileData()), job.Filename, w.parserOpts)
	if err != nil {
		log.Error("parse failed", "error", err)
		w.fail(ctx, job, "parsing", fmt.Sprintf("parse: %s", err))
		return
	}
	if strings.TrimSpace(doc.Text) == "" {
		log.Warn("no text extracted")
		w.fail(ctx, job, "parsing", "no extractable text")
		return
	}
	job.SetContentHash(ContentHashHex([]byte(doc.Text)))

	// Phase 1.5: Dedup check
	if w.deps.Store != nil && !job.Options.Force {
		existing, err := w.deps.Store.FindByHash(ctx, job.UserID, job.ContentHash)
		if err != nil {
			log.Warn("dedup check failed, proceeding", "error", err)
		} else if existing != "" {
			log.Info("duplicate resume, skipping", "existing_doc_id", existing)
			job.SetResult(&Result{Sections: resume.NewSectionMap(), DuplicateOf: existing})
			w.transition(ctx, job, StatusDupSkipped, "dedup", "")
			return
		}
	}

	// Phase 2: Segment
	w.transition(ctx, job, StatusSegmenting, "segmenting", "")
	parsed := resume.Parse(doc.Text)
	lang := textutil.DetectLanguage(doc.Text)
	result := &Result{
		Personal: parsed.Personal,
		Sections: parsed.Sections,
		Language: lang,
		Keywords: textutil.Keywords(doc.Text, w.keywordCount, lang),
	}
	job.SetResult(result)
	log.Info("segmented resume", "sections", parsed.Sections.Len(), "language", lang)

	hadErrors := false

	// Phase 3: Refine (optional)
	if job.Options.Refine {
		w.transition(ctx, job, StatusRefining, "refining", "")
		if err := w.refine(ctx, job, result); err != nil {
			log.Error("refinement failed", "error", err)
			job.AddError(err.Error())
			hadErrors = true
		}
		job.SetResult(result)
	}

	// Phase 4: Render
	w.transition(ctx, job, StatusRendering, "rendering", "")
	rdoc := render.Document{Sections: result.Sections, Personal: result.Personal}
	result.Markdown = render.Markdown(rdoc)
	html, err := render.HTML(rdoc)
	if err != nil {
		log.Error("render failed", "error", err)
		job.AddError(fmt.Sprintf("render: %s", err))
		hadErrors = true
	}
	result.HTML = html
	job.SetResult(result)

	// Phase 5: Store
	w.transition(ctx, job, StatusStoring, "storing", "")
	if w.deps.Artifacts != nil && html != "" {
		url, err := w.deps.Artifacts.Upload(ctx, artifacts.ResumeKey(store.Slugify(job.UserID), store.Slugify(job.DocID)), []byte(html), "text/html; charset=utf-8")
		if err != nil {
			log.Error("artifact upload failed", "error", err)
			job.AddError(fmt.Sprintf("artifact: %s", err))
			hadErrors = true
		} else {
			result.ArtifactURL = url
		}
	}
	if w.deps.Store != nil {
		err := w.deps.Store.PutResume(ctx, store.Record{
			DocID:       job.DocID,
			UserID:      job.UserID,
			Filename:    job.Filename,
			ContentHash: job.ContentHash,
			Language:    string(result.Language),
			Keywords:    result.Keywords,
			Refined:     result.Refined,
			Personal:    result.Personal,
			Sections:    result.Sections,
			ArtifactURL: result.ArtifactURL,
			CreatedAt:   job.CreatedAt,
		})
		if err != nil {
			log.Error("store failed", "error", err)
			job.AddError(fmt.Sprintf("store: %s", err))
			hadErrors = true
		}
	}
	job.SetResult(result)

	if hadErrors {
		w.transition(ctx, job, StatusPartial, "done", "")
	} else {
		w.transition(ctx, job, StatusCompleted, "done", "")
	}
	log.Info("job finished", "status", job.Snapshot().Status, "refined", result.Refined)
}

// refine rewrites result.Sections through the LLM. On failure result keeps
// the parsed sections.
func (w *Worker) refine(ctx context.Context, job *Job, result *Result) error {
	if w.deps.Refiner == nil {
		return fmt.Errorf("refine: no language model configured")
	}

	var jobText string
	if jd := strings.TrimSpace(job.Options.JobDescription); jd != "" {
		text, err := w.deps.Fetcher.Fetch(ctx, jd)
		if err != nil {
			job.AddError(fmt.Sprintf("job description: %s", err))
		} else {
			jobText = text
		}
	}
	if jobText != "" {
		result.JobKeywords = textutil.Keywords(jobText, w.keywordCount, textutil.DetectLanguage(jobText))
	}

	refined, err := w.deps.Refiner.Refine(ctx, refine.Request{
		Sections:      result.Sections,
		Keywords:      result.Keywords,
		JobKeywords:   result.JobKeywords,
		Language:      result.Language,
		PositionTitle: job.Options.PositionTitle,
	})
	if err != nil {
		return err
	}
	result.Sections = refined
	result.Refined = true
	return nil
}

func (w *Worker) fail(ctx context.Context, job *Job, phase, msg string) {
	job.AddError(msg)
	w.transition(ctx, job, StatusFailed, phase, msg)
}

// transition sets the status and publishes it. Publish failures are logged
// and never fail the job.
func (w *Worker) transition(ctx context.Context, job *Job, status JobStatus, phase, errMsg string) {
	job.SetStatus(status, phase)
	err := w.deps.Events.Publish(ctx, events.JobEvent{
		JobID:  job.ID,
		DocID:  job.DocID,
		UserID: job.UserID,
		Status: string(status),
		Phase:  phase,
		Error:  errMsg,
		Time:   time.Now().UTC(),
	})
	if err != nil {
		w.log.Warn("publish event failed", "job_id", job.ID, "status", status, "error", err)
	}
}
