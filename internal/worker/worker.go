// Package worker runs the single-consumer pipeline loop: staging,
// transcription and persistence for each queued upload.
package worker

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/voiceinsight/voiceinsight/internal/bot"
	"github.com/voiceinsight/voiceinsight/internal/localize"
	"github.com/voiceinsight/voiceinsight/internal/platform"
	"github.com/voiceinsight/voiceinsight/internal/queue"
	"github.com/voiceinsight/voiceinsight/internal/stager"
	"github.com/voiceinsight/voiceinsight/internal/store"
	"github.com/voiceinsight/voiceinsight/internal/transcriber"
)

// Worker drains the job queue sequentially. With exactly one worker per
// process, jobs never race on the filesystem or on transcript creation.
type Worker struct {
	queue       *queue.Queue
	stager      *stager.Stager
	transcriber transcriber.Transcriber
	store       *store.Store
	messenger   platform.Messenger
}

// New wires a Worker to its collaborators.
func New(q *queue.Queue, s *stager.Stager, t transcriber.Transcriber, st *store.Store, m platform.Messenger) *Worker {
	return &Worker{queue: q, stager: s, transcriber: t, store: st, messenger: m}
}

// Run processes jobs in strict submission order until the context is
// cancelled. Pipeline errors are caught at the job boundary, reported on the
// placeholder message, and never terminate the loop.
func (w *Worker) Run(ctx context.Context) error {
	log.Info().Msg("Queue worker started")

	for {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			log.Info().Msg("Queue worker stopped")
			return err
		}
		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job queue.Job) {
	lang := job.Lang

	w.notify(ctx, job, localize.Get("start_processing", lang), nil)

	audioPath, cleanup, err := w.stager.Stage(ctx, job)
	if err != nil {
		if errors.Is(err, stager.ErrUnsupportedContent) {
			w.notify(ctx, job, localize.Get("unknown_content_type", lang), nil)
			return
		}
		log.Error().Int64("chat_id", job.ChatID).Int64("notice_id", job.NoticeID).Err(err).Msg("Staging failed")
		w.notify(ctx, job, localize.Get("processing_error", lang), nil)
		return
	}
	defer cleanup()

	result, err := w.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		log.Error().Int64("chat_id", job.ChatID).Int64("notice_id", job.NoticeID).Err(err).Msg("Transcription failed")
		w.notify(ctx, job, localize.Get("processing_error", lang), nil)
		return
	}

	// The notice message anchors the transcript: its id names the cache
	// key the menu callbacks look up later.
	_, err = w.store.CreateTranscription(ctx, job.UserID, job.ChatID, job.NoticeID, result.Text)
	if err != nil && !errors.Is(err, store.ErrDuplicateTranscription) {
		log.Error().Int64("chat_id", job.ChatID).Int64("notice_id", job.NoticeID).Err(err).Msg("Transcript persist failed")
		w.notify(ctx, job, localize.Get("processing_error", lang), nil)
		return
	}
	if errors.Is(err, store.ErrDuplicateTranscription) {
		log.Warn().Int64("chat_id", job.ChatID).Int64("notice_id", job.NoticeID).Msg("Transcript already exists, reusing")
	}

	w.notify(ctx, job, bot.CompletedText(lang), bot.BaseMenu(lang))

	log.Info().
		Int64("chat_id", job.ChatID).
		Int64("notice_id", job.NoticeID).
		Str("language", result.Language).
		Msg("Job completed")
}

// notify updates the placeholder message; delivery failures are logged, not
// fatal to the job.
func (w *Worker) notify(ctx context.Context, job queue.Job, text string, menu *platform.Menu) {
	if err := w.messenger.EditMessage(ctx, job.ChatID, job.NoticeID, text, menu); err != nil {
		log.Error().Int64("chat_id", job.ChatID).Int64("notice_id", job.NoticeID).Err(err).Msg("Placeholder update failed")
	}
}
