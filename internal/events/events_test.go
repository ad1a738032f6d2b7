package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobEvent_RoutingKey(t *testing.T) {
	assert.Equal(t, "job.abc-123", JobEvent{JobID: "abc-123"}.RoutingKey())
}

func TestMessage(t *testing.T) {
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	msg, err := message(JobEvent{JobID: "j1", DocID: "d1", UserID: "u1", Status: "completed", Phase: "done", Time: at})
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, "job.completed", msg.Type)
	assert.Equal(t, at, msg.Timestamp)
	assert.JSONEq(t, `{"job_id":"j1","doc_id":"d1","user_id":"u1","status":"completed","phase":"done","time":"2026-05-01T12:00:00Z"}`, string(msg.Body))
}

func TestMessage_StampsTime(t *testing.T) {
	msg, err := message(JobEvent{JobID: "j1", Status: "failed", Error: "boom"})
	require.NoError(t, err)
	assert.False(t, msg.Timestamp.IsZero())

	var e JobEvent
	require.NoError(t, json.Unmarshal(msg.Body, &e))
	assert.Equal(t, "boom", e.Error)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), JobEvent{JobID: "x"}))
	assert.NoError(t, p.Close())
}
