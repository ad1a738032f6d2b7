// Package refine rewrites parsed résumé sections with a language model and
// drafts cover letters.
package refine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/dgallion1/cvgest/internal/resume"
	"github.com/dgallion1/cvgest/internal/textutil"
)

// LLM generates a text completion for a prompt.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrNoJSON is returned when a model reply holds no JSON object.
var ErrNoJSON = errors.New("no JSON object in model reply")

// Request describes one refinement.
type Request struct {
	Sections      *resume.SectionMap
	Keywords      []string // from the résumé
	JobKeywords   []string // from the job posting
	Language      textutil.Language
	PositionTitle string
}

// CoverLetterRequest describes one cover letter.
type CoverLetterRequest struct {
	JobDescription string
	Sections       *resume.SectionMap
	Personal       resume.PersonalInfo
	Company        string
	Recruiter      string
	PositionTitle  string
	Language       textutil.Language
}

// CoverLetter is the structured letter body returned by the model.
type CoverLetter struct {
	Opening        string   `json:"opening"`
	BodyParagraphs []string `json:"body_paragraphs"`
	Achievements   []string `json:"achievements"`
	Closing        string   `json:"closing"`
}

// Refiner drives an LLM with retries and records call latency.
type Refiner struct {
	llm     LLM
	stats   *LLMStats
	log     *slog.Logger
	backoff func(attempt int) time.Duration
}

func NewRefiner(llm LLM, stats *LLMStats, log *slog.Logger) *Refiner {
	return &Refiner{
		llm:     llm,
		stats:   stats,
		log:     log,
		backoff: Backoff,
	}
}

// Stats returns the latency snapshot of recent calls.
func (r *Refiner) Stats() StatsSnapshot {
	return r.stats.Snapshot()
}

// Refine asks the model to rewrite req.Sections for the target position and
// returns the normalized result. Sections the model drops are restored from
// the input.
func (r *Refiner) Refine(ctx context.Context, req Request) (*resume.SectionMap, error) {
	prompt, err := BuildRefinePrompt(req)
	if err != nil {
		return nil, err
	}
	reply, err := r.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("refine: %w", err)
	}

	raw, err := extractJSONObject(reply)
	if err != nil {
		return nil, fmt.Errorf("refine: %w", err)
	}
	refined := resume.NewSectionMap()
	if err := json.Unmarshal(raw, refined); err != nil {
		return nil, fmt.Errorf("refine: %w", err)
	}
	return ValidateRefined(req.Sections, refined), nil
}

// CoverLetter asks the model for a cover letter body.
func (r *Refiner) CoverLetter(ctx context.Context, req CoverLetterRequest) (*CoverLetter, error) {
	prompt, err := BuildCoverLetterPrompt(req)
	if err != nil {
		return nil, err
	}
	reply, err := r.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("cover letter: %w", err)
	}

	raw, err := extractJSONObject(reply)
	if err != nil {
		return nil, fmt.Errorf("cover letter: %w", err)
	}
	var letter CoverLetter
	if err := json.Unmarshal(raw, &letter); err != nil {
		return nil, fmt.Errorf("cover letter: decode: %w", err)
	}
	letter.Opening, _ = sanitizeLine(letter.Opening)
	letter.Closing, _ = sanitizeLine(letter.Closing)
	letter.BodyParagraphs = sanitizeLines(letter.BodyParagraphs)
	letter.Achievements = sanitizeLines(letter.Achievements)
	if letter.Opening == "" && len(letter.BodyParagraphs) == 0 && letter.Closing == "" {
		return nil, fmt.Errorf("cover letter: empty letter")
	}
	return &letter, nil
}

// generate calls the model, retrying transient failures with backoff.
func (r *Refiner) generate(ctx context.Context, prompt string) (string, error) {
	var (
		reply   string
		lastErr error
	)
	for attempt := 0; attempt < MaxRetries; attempt++ {
		start := time.Now()
		reply, lastErr = r.llm.Generate(ctx, prompt)
		elapsed := time.Since(start).Milliseconds()
		if lastErr == nil {
			r.stats.Record(elapsed)
			return reply, nil
		}
		r.stats.RecordFailure(elapsed)
		if !IsRetryable(lastErr) {
			return "", lastErr
		}
		r.log.Warn("retryable llm error", "attempt", attempt, "error", lastErr)
		if attempt == MaxRetries-1 {
			break
		}
		select {
		case <-time.After(r.backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

var jsonObjectRe = regexp.MustCompile(`\{[\s\S]*\}`)

// extractJSONObject returns the span from the first '{' to the last '}'.
// Models often wrap JSON in prose or code fences.
func extractJSONObject(reply string) ([]byte, error) {
	m := jsonObjectRe.FindString(strings.TrimSpace(reply))
	if m == "" {
		return nil, ErrNoJSON
	}
	return []byte(m), nil
}
