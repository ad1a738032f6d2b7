// Command cvgest parses a résumé file and prints its sections.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"

	"github.com/dgallion1/cvgest/internal/config"
	"github.com/dgallion1/cvgest/internal/jobposting"
	"github.com/dgallion1/cvgest/internal/parser"
	"github.com/dgallion1/cvgest/internal/refine"
	"github.com/dgallion1/cvgest/internal/render"
	"github.com/dgallion1/cvgest/internal/resume"
	"github.com/dgallion1/cvgest/internal/textutil"
)

type options struct {
	format   string
	refine   bool
	job      string
	position string
	language string
	keywords int
	verbose  bool
	file     string
}

// output is the JSON shape printed with --format json.
type output struct {
	Personal    resume.PersonalInfo `json:"personal"`
	Sections    *resume.SectionMap  `json:"sections"`
	Language    textutil.Language   `json:"language"`
	Keywords    []string            `json:"keywords"`
	JobKeywords []string            `json:"job_keywords,omitempty"`
	Refined     bool                `json:"refined"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, "cvgest:", err)
		return 2
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if err := process(ctx, opts, config.Load(), log, stdout); err != nil {
		fmt.Fprintln(stderr, "cvgest:", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := pflag.NewFlagSet("cvgest", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.format, "format", "f", "json", "Output format: json, markdown or html")
	fs.BoolVar(&opts.refine, "refine", false, "Rewrite sections with the configured language model")
	fs.StringVar(&opts.job, "job", "", "Job description text or URL to tailor refinement to")
	fs.StringVar(&opts.position, "position", "", "Target position title")
	fs.StringVar(&opts.language, "language", "", "Résumé language (en, fr); detected when empty")
	fs.IntVar(&opts.keywords, "keywords", textutil.DefaultKeywordCount, "Number of keywords to extract")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: cvgest [flags] <file>\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return opts, fmt.Errorf("expected exactly one input file")
	}
	opts.file = fs.Arg(0)

	switch opts.format {
	case "json", "markdown", "html":
	default:
		return opts, fmt.Errorf("unknown format %q", opts.format)
	}
	if opts.job != "" && !opts.refine {
		return opts, fmt.Errorf("--job requires --refine")
	}
	return opts, nil
}

func process(ctx context.Context, opts options, cfg config.Config, log *slog.Logger, w io.Writer) error {
	f, err := os.Open(opts.file)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := parser.Extract(f, opts.file, parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext})
	if err != nil {
		return fmt.Errorf("parse %s: %w", opts.file, err)
	}
	if strings.TrimSpace(doc.Text) == "" {
		return fmt.Errorf("parse %s: no extractable text", opts.file)
	}

	cv := resume.Parse(doc.Text)
	lang := textutil.DetectLanguage(doc.Text)
	if opts.language != "" {
		lang = textutil.ParseLanguage(opts.language)
	}
	out := output{
		Personal: cv.Personal,
		Sections: cv.Sections,
		Language: lang,
		Keywords: textutil.Keywords(doc.Text, opts.keywords, lang),
	}
	log.Debug("parsed", "file", opts.file, "sections", cv.Sections.Len(), "language", lang)

	if opts.refine {
		if err := refineOutput(ctx, opts, cfg, log, &out); err != nil {
			return err
		}
	}

	return write(w, opts.format, out)
}

func refineOutput(ctx context.Context, opts options, cfg config.Config, log *slog.Logger, out *output) error {
	if cfg.LLMProvider == config.ProviderNone {
		return fmt.Errorf("--refine needs LLM_PROVIDER or an API key in the environment")
	}
	if err := cfg.ValidateLLM(); err != nil {
		return err
	}
	refiner, closeLLM, err := refine.NewFromConfig(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLLM()

	if opts.job != "" {
		text, err := jobposting.NewFetcher(cfg.JobFetchTimeout).Fetch(ctx, opts.job)
		if err != nil {
			return err
		}
		out.JobKeywords = textutil.Keywords(text, opts.keywords, textutil.DetectLanguage(text))
	}

	refined, err := refiner.Refine(ctx, refine.Request{
		Sections:      out.Sections,
		Keywords:      out.Keywords,
		JobKeywords:   out.JobKeywords,
		Language:      out.Language,
		PositionTitle: opts.position,
	})
	if err != nil {
		return err
	}
	out.Sections = refined
	out.Refined = true
	return nil
}

func write(w io.Writer, format string, out output) error {
	doc := render.Document{Sections: out.Sections, Personal: out.Personal}
	switch format {
	case "markdown":
		_, err := io.WriteString(w, render.Markdown(doc))
		return err
	case "html":
		page, err := render.HTML(doc)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, page)
		return err
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
}
