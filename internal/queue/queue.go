// Package queue implements the FIFO job queue feeding the pipeline worker.
package queue

import (
	"context"
	"sync"
)

// SourceKind classifies the uploaded media.
type SourceKind int

const (
	// SourceAudio is an audio file upload with its own file name.
	SourceAudio SourceKind = iota
	// SourceVoice is a recorded voice message.
	SourceVoice
	// SourceVideo is a video upload whose audio stream must be extracted.
	SourceVideo
	// SourceDocument is a file attachment treated like a video container.
	SourceDocument
	// SourceLocal is a file already on the local filesystem (inbox drop).
	SourceLocal
)

// Source references the media to process.
type Source struct {
	Kind     SourceKind
	FileID   string // platform file reference; empty for SourceLocal
	FileName string // original file name, if the platform provided one
	Path     string // local path for SourceLocal
}

// Job is one unit of pipeline work. It exists only in memory: owned by the
// queue until dequeued, then by the worker until the job finishes.
type Job struct {
	ChatID    int64
	MessageID int64 // the uploaded message anchoring the transcript
	NoticeID  int64 // id of the placeholder message the worker updates
	UserID    int64
	Lang      string
	Source    Source
}

// Queue is an unbounded FIFO. Enqueue never blocks; Dequeue blocks until an
// item arrives or the context is cancelled. A handle is injected into both
// the enqueue-side handlers and the worker; there is no package-level queue.
type Queue struct {
	mu     sync.Mutex
	items  []Job
	signal chan struct{}
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{signal: make(chan struct{}, 1)}
}

// Enqueue appends a job. Never blocks the caller.
func (q *Queue) Enqueue(job Job) {
	q.mu.Lock()
	q.items = append(q.items, job)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Dequeue removes and returns the oldest job, blocking until one is
// available. Returns ctx.Err() on cancellation.
func (q *Queue) Dequeue(ctx context.Context) (Job, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			job := q.items[0]
			q.items = q.items[1:]
			if len(q.items) > 0 {
				// More work pending: keep the signal armed so the
				// next Dequeue does not sleep.
				select {
				case q.signal <- struct{}{}:
				default:
				}
			}
			q.mu.Unlock()
			return job, nil
		}
		q.mu.Unlock()

		select {
		case <-q.signal:
		case <-ctx.Done():
			return Job{}, ctx.Err()
		}
	}
}

// Len reports the number of queued jobs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
