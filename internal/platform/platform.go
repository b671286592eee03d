// Package platform defines the chat-platform boundary: the inbound update
// types the gateway decodes and the Messenger interface the pipeline talks
// back through. Client is the HTTP transport; tests use fakes.
package platform

import "context"

// UserRef identifies the sender of a message.
type UserRef struct {
	ID           int64  `json:"id"`
	UserName     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	LanguageCode string `json:"language_code"`
}

// Attachment references a media payload held by the platform.
type Attachment struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
}

// Message is one inbound chat message.
type Message struct {
	ID       int64       `json:"message_id"`
	ChatID   int64       `json:"chat_id"`
	From     *UserRef    `json:"from"`
	Text     string      `json:"text"`
	ReplyTo  *Message    `json:"reply_to_message"`
	Audio    *Attachment `json:"audio"`
	Voice    *Attachment `json:"voice"`
	Video    *Attachment `json:"video"`
	Document *Attachment `json:"document"`
}

// Callback is a button press on a rendered menu.
type Callback struct {
	ID      string   `json:"id"`
	Data    string   `json:"data"`
	Message *Message `json:"message"`
}

// Update is one inbound event from the platform. Exactly one field is set.
type Update struct {
	Message  *Message  `json:"message"`
	Callback *Callback `json:"callback_query"`
}

// Lang resolves the language code for a message, walking the reply chain
// when the message itself carries none.
func (m *Message) Lang() string {
	if m == nil {
		return "en"
	}
	if m.From != nil && m.From.LanguageCode != "" {
		return m.From.LanguageCode
	}
	return m.ReplyTo.Lang()
}

// HasMedia reports whether the message carries a processable upload.
func (m *Message) HasMedia() bool {
	return m.Audio != nil || m.Voice != nil || m.Video != nil || m.Document != nil
}

// Button is one menu entry; Data is the callback token sent back on press.
type Button struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// Menu is a button grid attached to a message.
type Menu struct {
	Rows [][]Button `json:"rows"`
}

// Messenger is the outbound half of the platform boundary.
type Messenger interface {
	// SendMessage posts text to a chat, optionally replying to a message
	// (replyTo 0 = no reply). Returns the new message id.
	SendMessage(ctx context.Context, chatID, replyTo int64, text string) (int64, error)

	// EditMessage replaces the text and menu of a previously sent message.
	EditMessage(ctx context.Context, chatID, messageID int64, text string, menu *Menu) error

	// SendDocument uploads a local file as a document reply.
	SendDocument(ctx context.Context, chatID, replyTo int64, path string) error

	// AnswerCallback acknowledges a button press with a short notice.
	AnswerCallback(ctx context.Context, callbackID, text string) error

	// ResolveFile looks up the remote location of a platform file.
	// Failures may be transient; callers retry.
	ResolveFile(ctx context.Context, fileID string) (string, error)

	// Download fetches a resolved remote file into destPath.
	Download(ctx context.Context, remotePath, destPath string) error
}
