package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Client is an HTTP Messenger talking to a bot-API style gateway. The API
// host answers control calls under apiURL; resolved files are fetched from
// filesURL (some deployments serve files from a separate host).
type Client struct {
	apiURL   string
	filesURL string
	http     *http.Client
}

var _ Messenger = (*Client)(nil)

// NewClient builds a Messenger against the given endpoints.
func NewClient(apiURL, filesURL string, timeout time.Duration) *Client {
	return &Client{
		apiURL:   strings.TrimRight(apiURL, "/"),
		filesURL: strings.TrimRight(filesURL, "/"),
		http:     &http.Client{Timeout: timeout},
	}
}

type sendMessageRequest struct {
	ChatID  int64  `json:"chat_id"`
	ReplyTo int64  `json:"reply_to_message_id,omitempty"`
	Text    string `json:"text"`
}

type sendMessageResponse struct {
	MessageID int64 `json:"message_id"`
}

func (c *Client) SendMessage(ctx context.Context, chatID, replyTo int64, text string) (int64, error) {
	var resp sendMessageResponse
	err := c.post(ctx, "/sendMessage", sendMessageRequest{
		ChatID:  chatID,
		ReplyTo: replyTo,
		Text:    text,
	}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.MessageID, nil
}

type editMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	Menu      *Menu  `json:"reply_markup,omitempty"`
}

func (c *Client) EditMessage(ctx context.Context, chatID, messageID int64, text string, menu *Menu) error {
	return c.post(ctx, "/editMessageText", editMessageRequest{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		Menu:      menu,
	}, nil)
}

func (c *Client) SendDocument(ctx context.Context, chatID, replyTo int64, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("chat_id", fmt.Sprintf("%d", chatID)); err != nil {
		return fmt.Errorf("write field: %w", err)
	}
	if replyTo != 0 {
		if err := mw.WriteField("reply_to_message_id", fmt.Sprintf("%d", replyTo)); err != nil {
			return fmt.Errorf("write field: %w", err)
		}
	}
	part, err := mw.CreateFormFile("document", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy document: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/sendDocument", &body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("send document: status %d", resp.StatusCode)
	}
	return nil
}

type answerCallbackRequest struct {
	CallbackID string `json:"callback_query_id"`
	Text       string `json:"text,omitempty"`
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	return c.post(ctx, "/answerCallbackQuery", answerCallbackRequest{
		CallbackID: callbackID,
		Text:       text,
	}, nil)
}

type getFileResponse struct {
	FilePath string `json:"file_path"`
}

func (c *Client) ResolveFile(ctx context.Context, fileID string) (string, error) {
	u := c.apiURL + "/getFile?file_id=" + url.QueryEscape(fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolve file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("resolve file: status %d", resp.StatusCode)
	}

	var out getFileResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode file info: %w", err)
	}
	if out.FilePath == "" {
		return "", fmt.Errorf("resolve file: empty path for %s", fileID)
	}
	return out.FilePath, nil
}

func (c *Client) Download(ctx context.Context, remotePath, destPath string) error {
	u := c.filesURL + "/" + strings.TrimLeft(remotePath, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download: status %d", resp.StatusCode)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(destPath)
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	return f.Close()
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("call %s: status %d", path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return nil
}
