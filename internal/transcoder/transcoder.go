// Package transcoder extracts audio-only streams from video containers via
// an external ffmpeg binary.
package transcoder

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/voiceinsight/voiceinsight/pkg/executor"
)

// Transcoder converts a video file into an audio file next to it.
type Transcoder interface {
	ExtractAudio(ctx context.Context, videoPath string) (string, error)
}

type implTranscoder struct {
	binary string
	exec   executor.Executor
}

// New creates a Transcoder backed by the given ffmpeg binary.
func New(binary string, exec executor.Executor) Transcoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &implTranscoder{binary: binary, exec: exec}
}

// ExtractAudio strips the video stream, copying the audio codec as-is.
// The output lands in the same directory as the input, so cleanup of the
// job's working directory removes both.
func (t *implTranscoder) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	audioPath := filepath.Join(filepath.Dir(videoPath), "audio.aac")

	// -vn drops the video stream; -acodec copy avoids a re-encode.
	args := []string{
		"-i", videoPath,
		"-vn",
		"-acodec", "copy",
		"-y",
		audioPath,
	}

	log.Debug().Str("video", videoPath).Str("audio", audioPath).Msg("Extracting audio stream")

	if _, err := t.exec.Execute(ctx, t.binary, args...); err != nil {
		return "", fmt.Errorf("ffmpeg extract audio: %w", err)
	}

	return audioPath, nil
}
