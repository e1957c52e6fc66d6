package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mlisboa17/assistente-pessoal/internal/config"
	"github.com/mlisboa17/assistente-pessoal/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(store jobs.JobStore, maxRetries int) *Queue {
	return NewQueue(config.Jobs{Workers: 2, Buffer: 10, MaxRetries: maxRetries}, store, WithBackoff(time.Millisecond))
}

func waitForStatus(t *testing.T, store *Store, jobID string, want jobs.JobStatus) *jobs.ExtractDocumentJob {
	t.Helper()
	var got *jobs.ExtractDocumentJob
	require.Eventually(t, func() bool {
		j, err := store.GetJob(context.Background(), jobID)
		if err != nil {
			return false
		}
		got = j
		return j.Status == want
	}, 2*time.Second, 5*time.Millisecond)
	return got
}

func TestQueue_ProcessesJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := NewStore()
	q := newTestQueue(store, 3)
	defer q.Close()

	require.NoError(t, q.Start(ctx, func(ctx context.Context, job *jobs.ExtractDocumentJob) error {
		job.DocumentID = "doc-" + job.SourceURI
		return nil
	}))

	job := &jobs.ExtractDocumentJob{SourceURI: "gs://b/a.pdf"}
	require.NoError(t, q.Publish(ctx, job))
	assert.NotEmpty(t, job.JobID)
	assert.Equal(t, 3, job.MaxRetries)

	got := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	assert.Equal(t, "doc-gs://b/a.pdf", got.DocumentID)
	assert.NotNil(t, got.CompletedAt)
}

func TestQueue_RetriesThenSucceeds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := NewStore()
	q := newTestQueue(store, 3)
	defer q.Close()

	var calls atomic.Int32
	require.NoError(t, q.Start(ctx, func(ctx context.Context, job *jobs.ExtractDocumentJob) error {
		if calls.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	}))

	job := &jobs.ExtractDocumentJob{SourceURI: "gs://b/a.pdf"}
	require.NoError(t, q.Publish(ctx, job))

	got := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	assert.Equal(t, 2, got.RetryCount)
	assert.Empty(t, got.Error)
	assert.Equal(t, int32(3), calls.Load())
}

func TestQueue_GivesUpAfterMaxRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := NewStore()
	q := newTestQueue(store, 1)
	defer q.Close()

	var calls atomic.Int32
	require.NoError(t, q.Start(ctx, func(ctx context.Context, job *jobs.ExtractDocumentJob) error {
		calls.Add(1)
		return errors.New("still broken")
	}))

	job := &jobs.ExtractDocumentJob{SourceURI: "gs://b/a.pdf"}
	require.NoError(t, q.Publish(ctx, job))

	got := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	assert.Equal(t, "still broken", got.Error)
	assert.Equal(t, int32(2), calls.Load())
}

func TestQueue_PermanentErrorIsNotRetried(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := NewStore()
	q := newTestQueue(store, 3)
	defer q.Close()

	var calls atomic.Int32
	require.NoError(t, q.Start(ctx, func(ctx context.Context, job *jobs.ExtractDocumentJob) error {
		calls.Add(1)
		return fmt.Errorf("unsupported media: %w", jobs.ErrPermanent)
	}))

	job := &jobs.ExtractDocumentJob{SourceURI: "gs://b/a.bin"}
	require.NoError(t, q.Publish(ctx, job))

	got := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	assert.Equal(t, 0, got.RetryCount)
	assert.Equal(t, int32(1), calls.Load())
}

func TestQueue_ClosedQueueRejects(t *testing.T) {
	q := newTestQueue(nil, 0)
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())

	err := q.Publish(context.Background(), &jobs.ExtractDocumentJob{})
	assert.ErrorIs(t, err, jobs.ErrQueueClosed)
	assert.ErrorIs(t, q.Start(context.Background(), nil), jobs.ErrQueueClosed)
}
