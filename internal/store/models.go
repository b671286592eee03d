package store

import (
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// User is the platform identity of a requester. The primary key is the
// platform user id, not an autoincrement, so repeated registrations upsert.
type User struct {
	ID        int64 `gorm:"primaryKey"`
	UserName  sql.NullString
	FirstName sql.NullString
	LastName  sql.NullString
	CreatedAt string `gorm:"not null"`
	UpdatedAt string `gorm:"not null"`
}

func (User) TableName() string { return "users" }

// BeforeCreate hook to ensure timestamps are set.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().Format(time.RFC3339)
	if u.CreatedAt == "" {
		u.CreatedAt = now
	}
	if u.UpdatedAt == "" {
		u.UpdatedAt = now
	}
	return nil
}

// Prompt is a named instruction template controlling summarization style.
// Rows are seeded by migration and read-only to the pipeline.
type Prompt struct {
	ID        int64         `gorm:"primaryKey;autoIncrement"`
	UserID    sql.NullInt64 `gorm:"index"`
	Name      string        `gorm:"uniqueIndex;not null"`
	Text      string        `gorm:"type:text;not null"`
	CreatedAt string        `gorm:"not null"`
	UpdatedAt string        `gorm:"not null"`
}

func (Prompt) TableName() string { return "prompts" }

// BeforeCreate hook to ensure timestamps are set.
func (p *Prompt) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().Format(time.RFC3339)
	if p.CreatedAt == "" {
		p.CreatedAt = now
	}
	if p.UpdatedAt == "" {
		p.UpdatedAt = now
	}
	return nil
}

// Transcription is the speaker-attributed text produced from one upload.
// Exactly one row may exist per (chat_id, message_id); rows are immutable.
type Transcription struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	UserID    int64  `gorm:"index;not null"`
	ChatID    int64  `gorm:"uniqueIndex:idx_transcriptions_chat_message,priority:1;not null"`
	MessageID int64  `gorm:"uniqueIndex:idx_transcriptions_chat_message,priority:2;not null"`
	Text      string `gorm:"type:text;not null"`
	CreatedAt string `gorm:"not null"`
	UpdatedAt string `gorm:"not null"`
}

func (Transcription) TableName() string { return "transcriptions" }

// BeforeCreate hook to ensure timestamps are set.
func (t *Transcription) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().Format(time.RFC3339)
	if t.CreatedAt == "" {
		t.CreatedAt = now
	}
	if t.UpdatedAt == "" {
		t.UpdatedAt = now
	}
	return nil
}

// Summary is the cached output of applying one prompt to one transcription.
// The unique index on (transcription_id, prompt_id) is the cache key.
type Summary struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	TranscriptionID int64  `gorm:"uniqueIndex:idx_summaries_transcription_prompt,priority:1;not null"`
	PromptID        int64  `gorm:"uniqueIndex:idx_summaries_transcription_prompt,priority:2;not null"`
	Text            string `gorm:"type:text;not null"`
}

func (Summary) TableName() string { return "summaries" }
