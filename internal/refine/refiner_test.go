package refine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dgallion1/cvgest/internal/resume"
	"github.com/dgallion1/cvgest/internal/textutil"
)

// scriptedLLM replays canned replies and records the prompts it saw.
type scriptedLLM struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	prompts []string
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.prompts)
	s.prompts = append(s.prompts, prompt)
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(s.replies) {
		return s.replies[i], nil
	}
	return "", errors.New("no scripted reply")
}

func newTestRefiner(llm LLM) *Refiner {
	r := NewRefiner(llm, NewLLMStats("test", time.Hour), slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.backoff = func(int) time.Duration { return 0 }
	return r
}

func sampleSections() *resume.SectionMap {
	return resume.ParseSections("Jane Doe\nEXPERIENCE\nAcme Corp – Developer | Jan 2020 - Present\nBuilt billing exports.\nSkills\nGo, Rust\nEducation\nB.Sc. Physics")
}

func TestRefiner_Refine(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"Here you go:\n```json\n" + `{
  "Professional Summary": ["Backend engineer focused on <b>payments</b>."],
  "Experience": [
    {"title": "Acme Corp – Developer | Jan 2020 - Present", "bullets": ["• Built <b>billing</b> exports in Go."]},
    "Side Project\nShipped a CLI"
  ],
  "Skills": "Go, Rust, Kafka"
}` + "\n```"}}
	r := newTestRefiner(llm)

	out, err := r.Refine(context.Background(), Request{
		Sections:      sampleSections(),
		Keywords:      []string{"billing"},
		JobKeywords:   []string{"payments", "kafka"},
		Language:      textutil.French,
		PositionTitle: "Backend Engineer",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		resume.SectionSummary, resume.SectionExperience, resume.SectionSkills,
		resume.SectionHeader, resume.SectionEducation,
	}, out.Keys())

	exp, _ := out.Get(resume.SectionExperience)
	require.Len(t, exp.Entries, 2)
	assert.Equal(t, []string{"Built <b>billing</b> exports in Go."}, exp.Entries[0].Bullets)
	assert.Equal(t, resume.Entry{Title: "Side Project", Bullets: []string{"Shipped a CLI"}}, exp.Entries[1])

	skills, _ := out.Get(resume.SectionSkills)
	assert.Equal(t, []string{"Go, Rust, Kafka"}, skills.Lines)

	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "Respond in French")
	assert.Contains(t, prompt, "billing, payments, kafka")
	assert.Contains(t, prompt, "'Backend Engineer'")
	assert.Contains(t, prompt, `"Acme Corp – Developer | Jan 2020 - Present"`)

	snap := r.Stats()
	assert.Equal(t, 1, snap.Count)
	assert.Equal(t, 0, snap.Failures)
}

func TestRefiner_RetriesTransientErrors(t *testing.T) {
	llm := &scriptedLLM{
		errs:    []error{&RetryableError{StatusCode: 529, Message: "overloaded"}, nil},
		replies: []string{"", `{"Skills": ["Go"]}`},
	}
	r := newTestRefiner(llm)

	out, err := r.Refine(context.Background(), Request{Sections: resume.NewSectionMap()})
	require.NoError(t, err)
	assert.Equal(t, []string{resume.SectionSkills}, out.Keys())
	assert.Len(t, llm.prompts, 2)

	snap := r.Stats()
	assert.Equal(t, 1, snap.Count)
	assert.Equal(t, 1, snap.Failures)
}

func TestRefiner_GivesUpAfterMaxRetries(t *testing.T) {
	retryable := &RetryableError{StatusCode: 429, Message: "slow down"}
	llm := &scriptedLLM{errs: []error{retryable, retryable, retryable, retryable}}
	r := newTestRefiner(llm)

	_, err := r.Refine(context.Background(), Request{Sections: resume.NewSectionMap()})
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.Len(t, llm.prompts, MaxRetries)
}

func TestRefiner_DoesNotRetryPermanentErrors(t *testing.T) {
	llm := &scriptedLLM{errs: []error{errors.New("bad request")}}
	r := newTestRefiner(llm)

	_, err := r.Refine(context.Background(), Request{Sections: resume.NewSectionMap()})
	require.Error(t, err)
	assert.Len(t, llm.prompts, 1)
}

func TestRefiner_NoJSONInReply(t *testing.T) {
	r := newTestRefiner(&scriptedLLM{replies: []string{"I cannot help with that."}})

	_, err := r.Refine(context.Background(), Request{Sections: sampleSections()})
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestRefiner_CoverLetter(t *testing.T) {
	llm := &scriptedLLM{replies: []string{`{
  "opening": "I am excited to apply for the <b>Backend Engineer</b> role.",
  "body_paragraphs": ["At Acme I built billing exports.", ""],
  "achievements": ["- Cut costs by 20%"],
  "closing": "I look forward to speaking with you."
}`}}
	r := newTestRefiner(llm)

	letter, err := r.CoverLetter(context.Background(), CoverLetterRequest{
		JobDescription: strings.Repeat("Go ", 600),
		Sections:       sampleSections(),
		Personal:       resume.PersonalInfo{Name: "Jane Doe"},
		Company:        "Globex",
		PositionTitle:  "Backend Engineer",
		Language:       textutil.English,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"At Acme I built billing exports."}, letter.BodyParagraphs)
	assert.Equal(t, []string{"Cut costs by 20%"}, letter.Achievements)

	prompt := llm.prompts[0]
	assert.Contains(t, prompt, `Address to "Hiring Manager"`)
	assert.Contains(t, prompt, "Position: Backend Engineer at Globex")
	assert.Contains(t, prompt, `"name":"Jane Doe"`)
	assert.Contains(t, prompt, "### Experience\nAcme Corp – Developer | Jan 2020 - Present\n- Built billing exports.")
	jd := prompt[strings.Index(prompt, "JOB DESCRIPTION: ")+len("JOB DESCRIPTION: ") : strings.Index(prompt, "\nRESUME: ")]
	assert.Len(t, jd, 1000)
}

func TestRefiner_CoverLetterEmpty(t *testing.T) {
	r := newTestRefiner(&scriptedLLM{replies: []string{`{"opening": "", "body_paragraphs": []}`}})
	_, err := r.CoverLetter(context.Background(), CoverLetterRequest{Sections: resume.NewSectionMap()})
	assert.Error(t, err)
}

func TestClassifyGeminiError(t *testing.T) {
	assert.True(t, IsRetryable(classifyGeminiError(status.Error(codes.ResourceExhausted, "quota"))))
	assert.True(t, IsRetryable(classifyGeminiError(status.Error(codes.Unavailable, "down"))))
	assert.False(t, IsRetryable(classifyGeminiError(status.Error(codes.InvalidArgument, "bad"))))
	assert.False(t, IsRetryable(classifyGeminiError(errors.New("boom"))))
}
