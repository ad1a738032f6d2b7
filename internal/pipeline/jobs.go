package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/cvgest/internal/resume"
	"github.com/dgallion1/cvgest/internal/textutil"
)

// JobStatus represents the state of a résumé processing job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusSegmenting JobStatus = "segmenting"
	StatusRefining   JobStatus = "refining"
	StatusRendering  JobStatus = "rendering"
	StatusStoring    JobStatus = "storing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusPartial    JobStatus = "partial"
	StatusDupSkipped JobStatus = "duplicate_skipped"
)

// Terminal reports whether no further transitions follow.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusPartial, StatusDupSkipped:
		return true
	}
	return false
}

// Options are the per-upload processing choices.
type Options struct {
	Refine         bool   `json:"refine"`
	Force          bool   `json:"force"`
	JobDescription string `json:"-"`
	PositionTitle  string `json:"position_title,omitempty"`
}

// Job tracks the state of a single résumé upload.
type Job struct {
	mu sync.Mutex

	ID     string `json:"job_id"`
	DocID  string `json:"doc_id"`
	UserID string `json:"user_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Options  Options   `json:"options"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
	result   *Result
}

// Progress counts what the segmenter produced.
type Progress struct {
	Sections int      `json:"sections"`
	Entries  int      `json:"entries"`
	Keywords int      `json:"keywords"`
	Errors   []string `json:"errors"`
}

// Result is the output of a processed job.
type Result struct {
	Personal    resume.PersonalInfo `json:"personal"`
	Sections    *resume.SectionMap  `json:"sections"`
	Language    textutil.Language   `json:"language"`
	Keywords    []string            `json:"keywords"`
	JobKeywords []string            `json:"job_keywords,omitempty"`
	Refined     bool                `json:"refined"`
	Markdown    string              `json:"markdown,omitempty"`
	HTML        string              `json:"html,omitempty"`
	ArtifactURL string              `json:"artifact_url,omitempty"`
	DuplicateOf string              `json:"duplicate_of,omitempty"`
}

func (r *Result) clone() *Result {
	if r == nil {
		return nil
	}
	out := *r
	out.Sections = r.Sections.Clone()
	out.Keywords = append([]string(nil), r.Keywords...)
	out.JobKeywords = append([]string(nil), r.JobKeywords...)
	return &out
}

// NewJob builds a queued job for an upload. An empty docID defaults to a
// prefix of the content hash.
func NewJob(userID, docID, filename string, data []byte, opts Options) *Job {
	if docID == "" {
		docID = ContentHashHex(data)[:16]
	}
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		DocID:     docID,
		UserID:    userID,
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		Options:   opts,
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len is the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetResult stores a copy of r and updates the progress counters. The
// caller may keep mutating r.
func (j *Job) SetResult(r *Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = r.clone()
	j.Progress.Sections = r.Sections.Len()
	j.Progress.Entries = 0
	for _, s := range r.Sections.Sections() {
		j.Progress.Entries += len(s.Content.Entries)
	}
	j.Progress.Keywords = len(r.Keywords)
	j.UpdatedAt = time.Now()
}

// SetContentHash records the hash of the extracted text.
func (j *Job) SetContentHash(h string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = h
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// releaseFileData drops the upload once the job no longer needs it.
func (j *Job) releaseFileData() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	DocID       string    `json:"doc_id"`
	UserID      string    `json:"user_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	Options     Options   `json:"options"`
	ContentHash string    `json:"content_hash,omitempty"`
	Progress    Progress  `json:"progress"`
	Result      *Result   `json:"result,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	return JobSnapshot{
		ID:          j.ID,
		DocID:       j.DocID,
		UserID:      j.UserID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Options:     j.Options,
		ContentHash: j.ContentHash,
		Progress: Progress{
			Sections: j.Progress.Sections,
			Entries:  j.Progress.Entries,
			Keywords: j.Progress.Keywords,
			Errors:   errs,
		},
		Result:    j.result.clone(),
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
