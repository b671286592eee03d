// Package stager prepares the per-job working directory: it fetches the
// source media and normalizes it to a local audio file for transcription.
package stager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/voiceinsight/voiceinsight/internal/queue"
	"github.com/voiceinsight/voiceinsight/internal/transcoder"
	"github.com/voiceinsight/voiceinsight/pkg/textutil"
)

// ErrUnsupportedContent marks an upload that is neither audio/voice nor
// video/document. Handlers short-circuit it before staging begins.
var ErrUnsupportedContent = errors.New("unsupported content type")

// resolveAttempts bounds retries of the remote file-location lookup. The
// lookup is cheap, so failed attempts are retried immediately.
const resolveAttempts = 3

// videoExtensions classifies local inbox drops that need audio extraction.
var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true, ".webm": true, ".m4v": true,
}

// FileFetcher is the subset of the platform boundary the stager needs.
type FileFetcher interface {
	ResolveFile(ctx context.Context, fileID string) (string, error)
	Download(ctx context.Context, remotePath, destPath string) error
}

// Stager allocates working directories and produces staged audio files.
type Stager struct {
	root       string
	files      FileFetcher
	transcoder transcoder.Transcoder
}

// New creates a Stager rooted at dir.
func New(root string, files FileFetcher, tc transcoder.Transcoder) *Stager {
	return &Stager{root: root, files: files, transcoder: tc}
}

// Stage fetches the job's media into an isolated working directory and
// returns the path of a local audio file plus a cleanup func that removes
// the whole directory. On error the directory is already removed; cleanup
// is only returned on success and must be called exactly once.
func (s *Stager) Stage(ctx context.Context, job queue.Job) (audioPath string, cleanup func(), err error) {
	dir := filepath.Join(s.root, textutil.StagingDirName(job.ChatID, job.NoticeID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create working directory: %w", err)
	}

	cleanup = func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn().Str("dir", dir).Err(err).Msg("Failed to remove working directory")
		}
	}
	defer func() {
		if err != nil {
			cleanup()
		}
	}()

	switch job.Source.Kind {
	case queue.SourceAudio, queue.SourceVoice:
		audioPath, err = s.fetch(ctx, dir, job.Source)
	case queue.SourceVideo, queue.SourceDocument:
		audioPath, err = s.fetchAndExtract(ctx, dir, job.Source)
	case queue.SourceLocal:
		audioPath, err = s.stageLocal(ctx, dir, job.Source.Path)
	default:
		err = ErrUnsupportedContent
	}
	if err != nil {
		return "", nil, err
	}

	return audioPath, cleanup, nil
}

// fetch downloads the referenced file straight into the working directory.
func (s *Stager) fetch(ctx context.Context, dir string, src queue.Source) (string, error) {
	name := src.FileName
	if name == "" {
		if src.Kind == queue.SourceVoice {
			name = "voice.ogg"
		} else {
			name = "audio"
		}
	}
	dest := filepath.Join(dir, filepath.Base(name))

	remotePath, err := s.resolveWithRetry(ctx, src.FileID)
	if err != nil {
		return "", err
	}
	if err := s.files.Download(ctx, remotePath, dest); err != nil {
		return "", fmt.Errorf("download media: %w", err)
	}
	return dest, nil
}

// fetchAndExtract downloads a video container and extracts its audio stream.
// The video intermediate is deleted as soon as extraction succeeds.
func (s *Stager) fetchAndExtract(ctx context.Context, dir string, src queue.Source) (string, error) {
	name := src.FileName
	if name == "" {
		name = "video.bin"
	}
	videoPath := filepath.Join(dir, filepath.Base(name))

	remotePath, err := s.resolveWithRetry(ctx, src.FileID)
	if err != nil {
		return "", err
	}
	if err := s.files.Download(ctx, remotePath, videoPath); err != nil {
		return "", fmt.Errorf("download media: %w", err)
	}

	audioPath, err := s.transcoder.ExtractAudio(ctx, videoPath)
	if err != nil {
		return "", fmt.Errorf("extract audio: %w", err)
	}

	if err := os.Remove(videoPath); err != nil {
		log.Warn().Str("file", videoPath).Err(err).Msg("Failed to remove video intermediate")
	}

	return audioPath, nil
}

// stageLocal copies an inbox drop into the working directory, extracting
// audio when the file is a video container.
func (s *Stager) stageLocal(ctx context.Context, dir, srcPath string) (string, error) {
	dest := filepath.Join(dir, filepath.Base(srcPath))
	if err := copyFile(srcPath, dest); err != nil {
		return "", fmt.Errorf("copy local media: %w", err)
	}

	if videoExtensions[strings.ToLower(filepath.Ext(dest))] {
		audioPath, err := s.transcoder.ExtractAudio(ctx, dest)
		if err != nil {
			return "", fmt.Errorf("extract audio: %w", err)
		}
		if err := os.Remove(dest); err != nil {
			log.Warn().Str("file", dest).Err(err).Msg("Failed to remove video intermediate")
		}
		return audioPath, nil
	}

	return dest, nil
}

// resolveWithRetry retries the remote file-location lookup up to
// resolveAttempts times before giving up.
func (s *Stager) resolveWithRetry(ctx context.Context, fileID string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= resolveAttempts; attempt++ {
		remotePath, err := s.files.ResolveFile(ctx, fileID)
		if err == nil {
			return remotePath, nil
		}
		lastErr = err
		log.Warn().Str("file_id", fileID).Int("attempt", attempt).Err(err).Msg("File location lookup failed")
	}
	return "", fmt.Errorf("resolve file after %d attempts: %w", resolveAttempts, lastErr)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
