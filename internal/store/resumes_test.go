package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/cvgest/internal/resume"
)

// fakePathstore is an in-memory stand-in for the pathstore KV API.
type fakePathstore struct {
	mu    sync.Mutex
	nodes map[string]json.RawMessage
}

func newFakePathstore(t *testing.T) (*fakePathstore, *Client) {
	t.Helper()
	f := &fakePathstore{nodes: map[string]json.RawMessage{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, NewClient(srv.URL+"/", "secret")
}

func (f *fakePathstore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer secret" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	key := strings.TrimPrefix(r.URL.Path, "/kv/")

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPut:
		var req struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.nodes[key] = req.Value
		w.WriteHeader(http.StatusCreated)

	case r.Method == http.MethodGet && strings.HasSuffix(key, "/*"):
		prefix := strings.TrimSuffix(key, "*")
		var keys []string
		for k := range f.nodes {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		nodes := []Node{}
		for _, k := range keys {
			nodes = append(nodes, Node{Key: k, Value: f.nodes[k]})
		}
		json.NewEncoder(w).Encode(map[string]any{"nodes": nodes})

	case r.Method == http.MethodGet:
		v, ok := f.nodes[key]
		if !ok {
			http.Error(w, "missing", http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(Node{Key: key, Value: v})

	case r.Method == http.MethodDelete:
		_, ok := f.nodes[key]
		if !ok {
			http.Error(w, "missing", http.StatusNotFound)
			return
		}
		delete(f.nodes, key)
		if r.URL.Query().Get("children") == "true" {
			for k := range f.nodes {
				if strings.HasPrefix(k, key+"/") {
					delete(f.nodes, k)
				}
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (f *fakePathstore) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k := range f.nodes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sampleRecord(docID, hash string) Record {
	sections := resume.NewSectionMap()
	sections.Set(resume.SectionSkills, resume.PlainContent("Go", "Rust"))
	sections.Set(resume.SectionExperience, resume.EntryContent(resume.Entry{
		Title:   "Acme – Dev | 2020 - 2023",
		Bullets: []string{"Built billing"},
	}))
	return Record{
		DocID:       docID,
		UserID:      "user@example.com",
		Filename:    "cv.pdf",
		ContentHash: hash,
		Language:    "english",
		Keywords:    []string{"billing"},
		Personal:    resume.PersonalInfo{Name: "Jane Doe"},
		Sections:    sections,
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestPutAndGetResume(t *testing.T) {
	fake, c := newFakePathstore(t)
	ctx := context.Background()

	require.NoError(t, c.PutResume(ctx, sampleRecord("doc1", "abc123")))
	assert.Equal(t, []string{
		"cvgest/users/user-example.com/resumes/by_hash/abc123/doc1",
		"cvgest/users/user-example.com/resumes/doc1",
	}, fake.keys())

	got, err := c.GetResume(ctx, "user@example.com", "doc1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Personal.Name)
	assert.Equal(t, "abc123", got.ContentHash)
	assert.Equal(t, []string{resume.SectionSkills, resume.SectionExperience}, got.Sections.Keys())
	exp, _ := got.Sections.Get(resume.SectionExperience)
	assert.Equal(t, []string{"Built billing"}, exp.Entries[0].Bullets)
}

func TestGetResume_Missing(t *testing.T) {
	_, c := newFakePathstore(t)
	_, err := c.GetResume(context.Background(), "u1", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutResume_RequiresIDs(t *testing.T) {
	_, c := newFakePathstore(t)
	assert.Error(t, c.PutResume(context.Background(), Record{UserID: "u1"}))
}

func TestListResumes_SkipsHashIndex(t *testing.T) {
	_, c := newFakePathstore(t)
	ctx := context.Background()
	require.NoError(t, c.PutResume(ctx, sampleRecord("doc1", "h1")))
	require.NoError(t, c.PutResume(ctx, sampleRecord("doc2", "h2")))

	recs, err := c.ListResumes(ctx, "user@example.com")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "doc1", recs[0].DocID)
	assert.Equal(t, "doc2", recs[1].DocID)

	empty, err := c.ListResumes(ctx, "someone-else")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFindByHash(t *testing.T) {
	_, c := newFakePathstore(t)
	ctx := context.Background()
	require.NoError(t, c.PutResume(ctx, sampleRecord("doc1", "h1")))

	docID, err := c.FindByHash(ctx, "user@example.com", "h1")
	require.NoError(t, err)
	assert.Equal(t, "doc1", docID)

	docID, err = c.FindByHash(ctx, "user@example.com", "other")
	require.NoError(t, err)
	assert.Empty(t, docID)
}

func TestDeleteResume(t *testing.T) {
	fake, c := newFakePathstore(t)
	ctx := context.Background()
	require.NoError(t, c.PutResume(ctx, sampleRecord("doc1", "h1")))

	require.NoError(t, c.DeleteResume(ctx, "user@example.com", "doc1"))
	assert.Empty(t, fake.keys())

	err := c.DeleteResume(ctx, "user@example.com", "doc1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_Unauthorized(t *testing.T) {
	_, c := newFakePathstore(t)
	c.apiKey = "wrong"

	err := c.PutNode(context.Background(), "cvgest/x", NodeRequest{Value: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"doc1":             "doc1",
		"user@example.com": "user-example.com",
		" spaces  inside ": "spaces-inside",
		"../../etc/passwd": "etc-passwd",
		"":                 "unknown",
		"///":              "unknown",
		"Jane_Doe-CV.v2":   "Jane_Doe-CV.v2",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}
