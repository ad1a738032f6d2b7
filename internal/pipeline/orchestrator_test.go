package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/cvgest/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		WorkerCount:  2,
		MaxQueueSize: 10,
		JobTTL:       time.Hour,
		KeywordCount: 10,
	}
}

func TestOrchestrator_ProcessesJobs(t *testing.T) {
	o := NewOrchestrator(testConfig(), Deps{}, discardLogger())
	o.Start(context.Background())
	defer o.Stop()

	var ids []string
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		job := NewJob("u1", "", name, []byte(sampleCV+name), Options{})
		require.NoError(t, o.Submit(job))
		ids = append(ids, job.ID)
	}

	require.Eventually(t, func() bool {
		for _, id := range ids {
			if !o.GetJob(id).Snapshot().Status.Terminal() {
				return false
			}
		}
		return true
	}, 5*time.Second, 10*time.Millisecond)

	for _, id := range ids {
		assert.Equal(t, StatusCompleted, o.GetJob(id).Snapshot().Status)
	}
	assert.Nil(t, o.GetJob("missing"))
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 1
	o := NewOrchestrator(cfg, Deps{}, discardLogger())

	require.NoError(t, o.Submit(NewJob("u1", "", "a.txt", []byte("a"), Options{})))
	assert.Equal(t, 1, o.QueueDepth())

	job := NewJob("u1", "", "b.txt", []byte("b"), Options{})
	err := o.Submit(job)
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, StatusFailed, job.Snapshot().Status)
	assert.NotNil(t, o.GetJob(job.ID))
}

func TestOrchestrator_SubmitAfterStop(t *testing.T) {
	o := NewOrchestrator(testConfig(), Deps{}, discardLogger())
	o.Start(context.Background())
	o.Stop()
	o.Stop()

	err := o.Submit(NewJob("u1", "", "a.txt", []byte("a"), Options{}))
	assert.ErrorIs(t, err, ErrStopped)
}
