// Package summarizer invokes the external text-generation capability and
// flattens its markdown output to plain text.
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// GenerationError marks a structurally invalid or error-shaped response from
// the generation capability, as opposed to a transport failure. Nothing is
// cached when it occurs.
type GenerationError struct {
	Detail string
}

func (e *GenerationError) Error() string {
	return "generation failed: " + e.Detail
}

// Generator produces a summary of text under the given system instruction.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, text string) (string, error)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the LLM service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Generate sends one request carrying the prompt body as the system
// instruction and the transcript as user content, and returns the raw
// markdown the model produced.
func (c *Client) Generate(ctx context.Context, systemPrompt, text string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	url := c.baseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &GenerationError{Detail: fmt.Sprintf("status %d: %s", resp.StatusCode, truncateDetail(body))}
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", &GenerationError{Detail: "unparseable response: " + truncateDetail(body)}
	}
	if len(decoded.Choices) == 0 || decoded.Choices[0].Message.Content == "" {
		return "", &GenerationError{Detail: "response carries no content: " + truncateDetail(body)}
	}

	log.Debug().Dur("took", time.Since(start)).Msg("Generation finished")

	return decoded.Choices[0].Message.Content, nil
}

func truncateDetail(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
