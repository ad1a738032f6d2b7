package refine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaudeClient_Generate(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"{\"Skills\":"},{"type":"tool_use"},{"type":"text","text":"[\"Go\"]}"}]}`))
	}))
	defer srv.Close()

	c := NewClaudeClient("test-key", "claude-test").WithURL(srv.URL)
	defer c.Close()

	text, err := c.Generate(context.Background(), "refine this")
	require.NoError(t, err)
	assert.Equal(t, `{"Skills":["Go"]}`, text)
	assert.Equal(t, "claude-test", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "refine this", got.Messages[0].Content)
}

func TestClaudeClient_StatusHandling(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"type":"x","message":"nope"}}`, tt.status)
		}))
		_, err := NewClaudeClient("k", "m").WithURL(srv.URL).Generate(context.Background(), "p")
		srv.Close()

		require.Error(t, err, "status %d", tt.status)
		assert.Equal(t, tt.retryable, IsRetryable(err), "status %d", tt.status)
	}
}

func TestClaudeClient_ErrorBodyAndEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	_, err := NewClaudeClient("k", "m").WithURL(srv.URL).Generate(context.Background(), "p")
	assert.ErrorContains(t, err, "empty response")
}
