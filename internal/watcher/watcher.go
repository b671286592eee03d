// Package watcher turns files dropped into a local inbox directory into
// pipeline jobs, so operators can batch-process recordings without going
// through the chat platform.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/voiceinsight/voiceinsight/internal/localize"
	"github.com/voiceinsight/voiceinsight/internal/queue"
)

// mediaExtensions lists file types the pipeline can process from the inbox.
var mediaExtensions = map[string]bool{
	".ogg": true, ".oga": true, ".opus": true, ".mp3": true, ".wav": true,
	".m4a": true, ".aac": true, ".flac": true,
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true, ".webm": true, ".m4v": true,
}

// Notifier is the slice of the platform boundary the watcher needs: it posts
// a notice to the operator chat and uses the notice id as the job anchor.
type Notifier interface {
	SendMessage(ctx context.Context, chatID, replyTo int64, text string) (int64, error)
}

// Watcher monitors the inbox directory and enqueues one job per dropped
// media file. Files are claimed by moving them into a holding directory, so
// a restart never enqueues half-processed leftovers from the inbox itself.
type Watcher struct {
	dir      string
	holding  string
	chatID   int64
	queue    *queue.Queue
	notifier Notifier
	fsw      *fsnotify.Watcher
	settle   time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a Watcher over dir. Jobs are anchored to chatID: the notice
// message posted there becomes the conversation handle for results.
func New(dir string, chatID int64, q *queue.Queue, notifier Notifier) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	holding := filepath.Join(dir, ".queued")
	if err := os.MkdirAll(holding, 0o755); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("create holding dir: %w", err)
	}

	return &Watcher{
		dir:      dir,
		holding:  holding,
		chatID:   chatID,
		queue:    q,
		notifier: notifier,
		fsw:      fsw,
		settle:   500 * time.Millisecond,
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Run watches until ctx is cancelled. Files already present at startup are
// admitted first.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	defer w.fsw.Close()

	w.sweep(ctx)
	log.Info().Str("dir", w.dir).Msg("inbox watcher started")

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !mediaExtensions[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}
			if filepath.Dir(event.Name) != w.dir {
				continue
			}
			// Writers append in bursts; wait for the file to settle
			// before claiming it.
			w.schedule(ctx, event.Name)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("inbox watch error")
		}
	}
}

// schedule arms (or re-arms) the settle timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.admit(ctx, path)
	})
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

// sweep admits media files already sitting in the inbox.
func (w *Watcher) sweep(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		log.Warn().Err(err).Str("dir", w.dir).Msg("inbox sweep failed")
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !mediaExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		w.admit(ctx, filepath.Join(w.dir, entry.Name()))
	}
}

// admit claims path into the holding directory and enqueues a job for it.
func (w *Watcher) admit(ctx context.Context, path string) {
	base := filepath.Base(path)
	held := filepath.Join(w.holding, uuid.NewString()+strings.ToLower(filepath.Ext(base)))
	if err := os.Rename(path, held); err != nil {
		// Already claimed by an earlier event, or gone.
		log.Debug().Err(err).Str("file", base).Msg("inbox file not claimed")
		return
	}

	noticeID, err := w.notifier.SendMessage(ctx, w.chatID, 0, localize.Get("file_added_to_queue", "en"))
	if err != nil {
		log.Error().Err(err).Str("file", base).Msg("failed to announce inbox file")
		if renameErr := os.Rename(held, path); renameErr != nil {
			log.Warn().Err(renameErr).Str("file", base).Msg("failed to return file to inbox")
		}
		return
	}

	w.queue.Enqueue(queue.Job{
		ChatID:    w.chatID,
		MessageID: noticeID,
		NoticeID:  noticeID,
		UserID:    w.chatID,
		Lang:      "en",
		Source: queue.Source{
			Kind:     queue.SourceLocal,
			FileName: base,
			Path:     held,
		},
	})
	log.Info().Str("file", base).Int64("notice_id", noticeID).Msg("inbox file queued")
}
