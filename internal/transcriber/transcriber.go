// Package transcriber invokes the external ASR+diarization capability and
// shapes its raw segments into a speaker-turn transcript.
package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// Segment is one recognized stretch of audio. Speaker is empty when
// diarization could not attribute the segment.
type Segment struct {
	Text    string `json:"text"`
	Speaker string `json:"speaker,omitempty"`
}

// Result is a finished transcription.
type Result struct {
	Language string
	Text     string
}

// Transcriber converts a staged audio file into a speaker-turn transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (Result, error)
}

type response struct {
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// Client talks to an OpenAI-compatible transcription endpoint with
// diarization enabled. Construct it once and inject it; the remote model is
// loaded on the server side at first use.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the ASR service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Transcribe uploads the audio file and merges the returned segments into
// speaker turns.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return Result{}, fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return Result{}, fmt.Errorf("create multipart file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return Result{}, fmt.Errorf("copy audio into request: %w", err)
	}
	if err := writer.WriteField("diarize", "true"); err != nil {
		return Result{}, fmt.Errorf("write diarize field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return Result{}, fmt.Errorf("close multipart writer: %w", err)
	}

	url := c.baseURL + "/v1/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return Result{}, fmt.Errorf("build transcription request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("transcription service returned %d: %s", resp.StatusCode, detail)
	}

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Result{}, fmt.Errorf("decode transcription response: %w", err)
	}

	log.Debug().
		Str("file", audioPath).
		Str("language", decoded.Language).
		Int("segments", len(decoded.Segments)).
		Dur("took", time.Since(start)).
		Msg("Transcription finished")

	return Result{
		Language: decoded.Language,
		Text:     MergeTurns(decoded.Segments, decoded.Language),
	}, nil
}
