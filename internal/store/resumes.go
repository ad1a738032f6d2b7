package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/dgallion1/cvgest/internal/resume"
)

const source = "cvgest"

// Record is a processed résumé as persisted per user.
type Record struct {
	DocID       string              `json:"doc_id"`
	UserID      string              `json:"user_id"`
	Filename    string              `json:"filename"`
	ContentHash string              `json:"content_hash"`
	Language    string              `json:"language"`
	Keywords    []string            `json:"keywords"`
	Refined     bool                `json:"refined"`
	Personal    resume.PersonalInfo `json:"personal"`
	Sections    *resume.SectionMap  `json:"sections"`
	ArtifactURL string              `json:"artifact_url,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

func resumesPrefix(userID string) string {
	return fmt.Sprintf("cvgest/users/%s/resumes", Slugify(userID))
}

// ResumeKey is where a record lives.
func ResumeKey(userID, docID string) string {
	return resumesPrefix(userID) + "/" + Slugify(docID)
}

func hashPrefix(userID, hash string) string {
	return resumesPrefix(userID) + "/by_hash/" + Slugify(hash)
}

// PutResume writes the record and its content-hash index entry.
func (c *Client) PutResume(ctx context.Context, rec Record) error {
	if rec.UserID == "" || rec.DocID == "" {
		return errors.New("put resume: user and doc id are required")
	}
	err := c.PutNode(ctx, ResumeKey(rec.UserID, rec.DocID), NodeRequest{
		Value:      rec,
		MemoryType: "document",
		Salience:   0.5,
		Source:     source + ":" + rec.DocID,
	})
	if err != nil {
		return err
	}
	if rec.ContentHash == "" {
		return nil
	}
	return c.PutNode(ctx, hashPrefix(rec.UserID, rec.ContentHash)+"/"+Slugify(rec.DocID), NodeRequest{
		Value: map[string]any{
			"doc_id":     rec.DocID,
			"filename":   rec.Filename,
			"created_at": rec.CreatedAt.Format(time.RFC3339),
		},
		MemoryType: "metacognitive",
		Salience:   0.1,
		Source:     source + ":" + rec.DocID,
	})
}

// GetResume loads one record. A missing record yields ErrNotFound.
func (c *Client) GetResume(ctx context.Context, userID, docID string) (*Record, error) {
	node, err := c.GetNode(ctx, ResumeKey(userID, docID))
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(node.Value, &rec); err != nil {
		return nil, fmt.Errorf("decode resume %s: %w", docID, err)
	}
	return &rec, nil
}

// ListResumes returns every record stored for the user. Hash index
// entries and undecodable values are skipped.
func (c *Client) ListResumes(ctx context.Context, userID string) ([]Record, error) {
	prefix := resumesPrefix(userID)
	nodes, err := c.ListChildren(ctx, prefix, 500)
	if err != nil {
		return nil, err
	}
	out := []Record{}
	for _, n := range nodes {
		rest := strings.TrimPrefix(strings.TrimPrefix(n.Key, prefix), "/")
		if rest == "" || strings.Contains(rest, "/") || strings.HasPrefix(rest, "by_hash") {
			continue
		}
		var rec Record
		if err := json.Unmarshal(n.Value, &rec); err != nil || rec.DocID == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// DeleteResume removes a record and its hash index entry.
func (c *Client) DeleteResume(ctx context.Context, userID, docID string) error {
	rec, err := c.GetResume(ctx, userID, docID)
	if err != nil {
		return err
	}
	if err := c.DeleteNode(ctx, ResumeKey(userID, docID), true); err != nil {
		return err
	}
	if rec.ContentHash != "" {
		err := c.DeleteNode(ctx, hashPrefix(userID, rec.ContentHash)+"/"+Slugify(docID), false)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return nil
}

// FindByHash returns the doc ID already stored for this content hash, or
// "" when there is none.
func (c *Client) FindByHash(ctx context.Context, userID, hash string) (string, error) {
	nodes, err := c.ListChildren(ctx, hashPrefix(userID, hash), 1)
	if err != nil {
		return "", err
	}
	if len(nodes) == 0 {
		return "", nil
	}
	var v struct {
		DocID string `json:"doc_id"`
	}
	if json.Unmarshal(nodes[0].Value, &v) == nil && v.DocID != "" {
		return v.DocID, nil
	}
	return path.Base(nodes[0].Key), nil
}

var slugInvalid = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Slugify makes s safe to use as a single key segment.
func Slugify(s string) string {
	s = slugInvalid.ReplaceAllString(strings.TrimSpace(s), "-")
	s = strings.Trim(strings.ReplaceAll(s, "..", "-"), "-.")
	if s == "" {
		return "unknown"
	}
	return s
}
