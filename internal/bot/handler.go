package bot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/voiceinsight/voiceinsight/internal/localize"
	"github.com/voiceinsight/voiceinsight/internal/platform"
	"github.com/voiceinsight/voiceinsight/internal/queue"
	"github.com/voiceinsight/voiceinsight/internal/store"
	"github.com/voiceinsight/voiceinsight/internal/summarizer"
	"github.com/voiceinsight/voiceinsight/pkg/textutil"
)

// Handler is the interaction state machine. It reconciles what is cached in
// the store with what the user is shown: transcripts are read-only here,
// summaries are generated lazily on first request and cached by
// (transcription, prompt).
type Handler struct {
	store     *store.Store
	queue     *queue.Queue
	messenger platform.Messenger
	generator summarizer.Generator
	tempDir   string
}

// NewHandler wires the state machine to its collaborators. tempDir hosts the
// short-lived files materialized for document downloads.
func NewHandler(st *store.Store, q *queue.Queue, m platform.Messenger, g summarizer.Generator, tempDir string) *Handler {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Handler{store: st, queue: q, messenger: m, generator: g, tempDir: tempDir}
}

// HandleUpdate routes one inbound platform update. Errors are handled
// internally: each maps to a localized user-visible message and a logged
// diagnostic, so the dispatcher never crashes on a bad update.
func (h *Handler) HandleUpdate(ctx context.Context, update *platform.Update) {
	switch {
	case update.Callback != nil:
		h.handleCallback(ctx, update.Callback)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *platform.Message) {
	lang := msg.Lang()

	if msg.From != nil {
		if err := h.store.UpsertUser(ctx, store.UserInfo{
			ID:        msg.From.ID,
			UserName:  msg.From.UserName,
			FirstName: msg.From.FirstName,
			LastName:  msg.From.LastName,
		}); err != nil {
			log.Error().Int64("user_id", msg.From.ID).Err(err).Msg("User registration failed")
		}
	}

	switch {
	case msg.HasMedia():
		h.enqueueUpload(ctx, msg, lang)
	case msg.Text == "/start" || msg.Text == "/help":
		if _, err := h.messenger.SendMessage(ctx, msg.ChatID, 0, localize.Get("start_answer", lang)); err != nil {
			log.Error().Int64("chat_id", msg.ChatID).Err(err).Msg("Welcome message failed")
		}
	case msg.Text != "" && msg.ReplyTo != nil:
		h.handleAdHocPrompt(ctx, msg, lang)
	case msg.Text == "":
		// Stickers, locations and other payloads never reach staging.
		if _, err := h.messenger.SendMessage(ctx, msg.ChatID, msg.ID, localize.Get("unknown_content_type", lang)); err != nil {
			log.Error().Int64("chat_id", msg.ChatID).Err(err).Msg("Unsupported-type reply failed")
		}
	}
}

// enqueueUpload answers the upload with a queue notice and hands the job to
// the worker. The notice message id anchors the transcript and names the
// staging directory.
func (h *Handler) enqueueUpload(ctx context.Context, msg *platform.Message, lang string) {
	noticeID, err := h.messenger.SendMessage(ctx, msg.ChatID, msg.ID, localize.Get("file_added_to_queue", lang))
	if err != nil {
		log.Error().Int64("chat_id", msg.ChatID).Err(err).Msg("Queue notice failed")
		return
	}

	var userID int64
	if msg.From != nil {
		userID = msg.From.ID
	}

	h.queue.Enqueue(queue.Job{
		ChatID:    msg.ChatID,
		MessageID: msg.ID,
		NoticeID:  noticeID,
		UserID:    userID,
		Lang:      lang,
		Source:    sourceOf(msg),
	})
}

func sourceOf(msg *platform.Message) queue.Source {
	switch {
	case msg.Audio != nil:
		return queue.Source{Kind: queue.SourceAudio, FileID: msg.Audio.FileID, FileName: msg.Audio.FileName}
	case msg.Voice != nil:
		return queue.Source{Kind: queue.SourceVoice, FileID: msg.Voice.FileID}
	case msg.Video != nil:
		return queue.Source{Kind: queue.SourceVideo, FileID: msg.Video.FileID, FileName: msg.Video.FileName}
	default:
		return queue.Source{Kind: queue.SourceDocument, FileID: msg.Document.FileID, FileName: msg.Document.FileName}
	}
}

func (h *Handler) handleCallback(ctx context.Context, callback *platform.Callback) {
	msg := callback.Message
	if msg == nil {
		return
	}
	lang := msg.Lang()

	event, err := ParseCallback(callback.Data)
	if err != nil {
		log.Warn().Str("data", callback.Data).Err(err).Msg("Rejected callback token")
		h.answer(ctx, callback.ID, localize.Get("unknown_error", lang))
		return
	}

	switch ev := event.(type) {
	case OpenMenu:
		h.edit(ctx, msg, CompletedText(lang), BaseMenu(lang))
	case SelectArtifact:
		h.edit(ctx, msg, localize.Get(string(ev.Kind), lang), DetailMenu(lang, ev.Kind))
	case ShowArtifact:
		h.showArtifact(ctx, callback, ev.Kind, lang)
	case DownloadArtifact:
		h.downloadArtifact(ctx, callback, ev.Kind, lang)
	}
}

// showArtifact renders the (possibly freshly generated) artifact text in
// place, truncated to the display limit.
func (h *Handler) showArtifact(ctx context.Context, callback *platform.Callback, kind ArtifactKind, lang string) {
	msg := callback.Message

	content, ok := h.artifactText(ctx, callback, kind, lang)
	if !ok {
		return
	}

	limited := textutil.Limit(content)
	// Editing a message to its current text is a platform error; skip the
	// no-op instead.
	if strings.TrimSpace(msg.Text) == strings.TrimSpace(limited) {
		return
	}
	h.edit(ctx, msg, limited, DetailMenu(lang, kind))
}

// downloadArtifact materializes the full, untruncated artifact text as a
// temporary file, sends it as a document and restores the detail view.
func (h *Handler) downloadArtifact(ctx context.Context, callback *platform.Callback, kind ArtifactKind, lang string) {
	msg := callback.Message

	content, ok := h.artifactText(ctx, callback, kind, lang)
	if !ok {
		return
	}

	filePath := filepath.Join(h.tempDir, textutil.ArtifactFileName(msg.ChatID, msg.ID, string(kind)))
	if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
		log.Error().Str("file", filePath).Err(err).Msg("Artifact file write failed")
		h.edit(ctx, msg, localize.Get("unknown_error", lang), DetailMenu(lang, kind))
		return
	}
	defer func() {
		if err := os.Remove(filePath); err != nil {
			log.Warn().Str("file", filePath).Err(err).Msg("Failed to remove artifact file")
		}
	}()

	replyTo := msg.ID
	if msg.ReplyTo != nil {
		replyTo = msg.ReplyTo.ID
	}
	if err := h.messenger.SendDocument(ctx, msg.ChatID, replyTo, filePath); err != nil {
		log.Error().Int64("chat_id", msg.ChatID).Err(err).Msg("Document send failed")
		h.edit(ctx, msg, localize.Get("unknown_error", lang), DetailMenu(lang, kind))
		return
	}

	h.edit(ctx, msg, localize.Get(string(kind), lang), DetailMenu(lang, kind))
}

// artifactText resolves the text body for one artifact type, generating and
// caching a summary on a cache miss. Returns ok=false when the user was
// already informed of the outcome.
func (h *Handler) artifactText(ctx context.Context, callback *platform.Callback, kind ArtifactKind, lang string) (string, bool) {
	msg := callback.Message

	transcription, err := h.store.GetTranscription(ctx, msg.ChatID, msg.ID)
	if err != nil {
		log.Error().Int64("chat_id", msg.ChatID).Int64("message_id", msg.ID).Err(err).Msg("Transcript lookup failed")
		h.answer(ctx, callback.ID, localize.Get("unknown_error", lang))
		return "", false
	}
	if transcription == nil {
		h.answer(ctx, callback.ID, localize.Get("transcription_not_found", lang))
		return "", false
	}

	if kind == KindTranscription {
		return transcription.Text, true
	}

	prompt, err := h.store.GetPromptByName(ctx, string(kind))
	if err != nil || prompt == nil {
		log.Error().Str("prompt", string(kind)).Err(err).Msg("Prompt lookup failed")
		h.answer(ctx, callback.ID, localize.Get("unknown_content_type", lang))
		return "", false
	}

	cached, err := h.store.GetSummary(ctx, transcription.ID, prompt.ID)
	if err != nil {
		log.Error().Int64("transcription_id", transcription.ID).Err(err).Msg("Summary cache read failed")
		h.answer(ctx, callback.ID, localize.Get("unknown_error", lang))
		return "", false
	}
	if cached != nil {
		return cached.Text, true
	}

	// Cache miss: generate, flatten, store. Errors never end up in the
	// cache.
	h.edit(ctx, msg, localize.Get("start_summarization", lang), nil)

	raw, err := h.generator.Generate(ctx, prompt.Text, transcription.Text)
	if err != nil {
		var genErr *summarizer.GenerationError
		if errors.As(err, &genErr) {
			log.Error().Str("prompt", string(kind)).Str("detail", genErr.Detail).Msg("Generation returned malformed response")
		} else {
			log.Error().Str("prompt", string(kind)).Err(err).Msg("Generation request failed")
		}
		h.edit(ctx, msg, localize.Get("unknown_error", lang), DetailMenu(lang, kind))
		return "", false
	}

	content := summarizer.Flatten(raw)
	if _, err := h.store.SaveSummary(ctx, transcription.ID, prompt.ID, content); err != nil {
		if errors.Is(err, store.ErrDuplicateSummary) {
			// A concurrent request won the race; serve its cached text.
			if winner, readErr := h.store.GetSummary(ctx, transcription.ID, prompt.ID); readErr == nil && winner != nil {
				return winner.Text, true
			}
		}
		log.Error().Int64("transcription_id", transcription.ID).Err(err).Msg("Summary cache write failed")
		h.edit(ctx, msg, localize.Get("unknown_error", lang), DetailMenu(lang, kind))
		return "", false
	}

	return content, true
}

// handleAdHocPrompt treats a free-text reply to a detail view as a one-off
// summarization instruction. Results are shown but never cached: only named
// prompts are memoized.
func (h *Handler) handleAdHocPrompt(ctx context.Context, msg *platform.Message, lang string) {
	sourceText := msg.ReplyTo.Text
	transcription, err := h.store.GetTranscription(ctx, msg.ChatID, msg.ReplyTo.ID)
	if err != nil {
		log.Error().Int64("chat_id", msg.ChatID).Err(err).Msg("Transcript lookup failed")
	}
	if transcription != nil {
		sourceText = transcription.Text
	}
	if sourceText == "" {
		return
	}

	noticeID, err := h.messenger.SendMessage(ctx, msg.ChatID, msg.ID, localize.Get("start_summarization", lang))
	if err != nil {
		log.Error().Int64("chat_id", msg.ChatID).Err(err).Msg("Ad-hoc notice failed")
		return
	}

	raw, err := h.generator.Generate(ctx, msg.Text, sourceText)
	if err != nil {
		log.Error().Err(err).Msg("Ad-hoc generation failed")
		h.editByID(ctx, msg.ChatID, noticeID, localize.Get("unknown_error", lang), nil)
		return
	}

	h.editByID(ctx, msg.ChatID, noticeID, textutil.Limit(summarizer.Flatten(raw)), nil)
}

func (h *Handler) edit(ctx context.Context, msg *platform.Message, text string, menu *platform.Menu) {
	h.editByID(ctx, msg.ChatID, msg.ID, text, menu)
}

func (h *Handler) editByID(ctx context.Context, chatID, messageID int64, text string, menu *platform.Menu) {
	if err := h.messenger.EditMessage(ctx, chatID, messageID, text, menu); err != nil {
		log.Error().Int64("chat_id", chatID).Int64("message_id", messageID).Err(err).Msg("Message edit failed")
	}
}

func (h *Handler) answer(ctx context.Context, callbackID, text string) {
	if err := h.messenger.AnswerCallback(ctx, callbackID, text); err != nil {
		log.Error().Str("callback_id", callbackID).Err(err).Msg("Callback answer failed")
	}
}
