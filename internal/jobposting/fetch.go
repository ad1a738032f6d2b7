// Package jobposting resolves a job description given either as text or as
// the URL of a posting page.
package jobposting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrFetch wraps every failure to retrieve or read a posting URL.
var ErrFetch = errors.New("fetch job posting")

const maxPageBytes = 5 << 20

// Fetcher downloads job posting pages.
type Fetcher struct {
	httpClient *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{httpClient: &http.Client{Timeout: timeout}}
}

// IsURL reports whether input should be fetched rather than used as text.
func IsURL(input string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "http")
}

// Fetch returns input unchanged unless it looks like a URL, in which case the
// page is downloaded and its visible text returned.
func (f *Fetcher) Fetch(ctx context.Context, input string) (string, error) {
	if !IsURL(input) {
		return input, nil
	}
	url := strings.TrimSpace(input)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrFetch, url, err)
	}
	req.Header.Set("User-Agent", "cvgest/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrFetch, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %s: status %d", ErrFetch, url, resp.StatusCode)
	}

	text, err := ExtractText(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrFetch, url, err)
	}
	return text, nil
}

// ExtractText parses an HTML page, drops script and style elements, and
// joins the remaining text fragments with single spaces.
func ExtractText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	var parts []string
	collectText(doc.Selection, &parts)
	return strings.Join(parts, " "), nil
}

func collectText(s *goquery.Selection, parts *[]string) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			if t := strings.Join(strings.Fields(c.Text()), " "); t != "" {
				*parts = append(*parts, t)
			}
			return
		}
		collectText(c, parts)
	})
}
