package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := New()
	ctx := context.Background()

	q.Enqueue(Job{MessageID: 1})
	q.Enqueue(Job{MessageID: 2})
	q.Enqueue(Job{MessageID: 3})

	for want := int64(1); want <= 3; want++ {
		job, err := q.Dequeue(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, job.MessageID)
	}
	assert.Zero(t, q.Len())
}

func TestQueue_DequeueBlocksUntilEnqueue(t *testing.T) {
	q := New()
	ctx := context.Background()

	done := make(chan Job, 1)
	go func() {
		job, err := q.Dequeue(ctx)
		if err == nil {
			done <- job
		}
	}()

	select {
	case <-done:
		t.Fatal("Dequeue returned before any job was enqueued")
	case <-time.After(50 * time.Millisecond):
	}

	q.Enqueue(Job{MessageID: 9})

	select {
	case job := <-done:
		assert.Equal(t, int64(9), job.MessageID)
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not wake up after Enqueue")
	}
}

func TestQueue_DequeueCancel(t *testing.T) {
	q := New()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Dequeue(ctx)
		errCh <- err
	}()

	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not observe cancellation")
	}
}

func TestQueue_ConcurrentEnqueueKeepsAllJobs(t *testing.T) {
	q := New()
	ctx := context.Background()

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			q.Enqueue(Job{MessageID: id})
		}(int64(i))
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for i := 0; i < n; i++ {
		job, err := q.Dequeue(ctx)
		require.NoError(t, err)
		assert.False(t, seen[job.MessageID], "job %d dequeued twice", job.MessageID)
		seen[job.MessageID] = true
	}
	assert.Len(t, seen, n)
}
