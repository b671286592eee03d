package store

import (
	"context"

	"gorm.io/gorm"
)

// CreateTranscription persists the transcript for one upload. The unique
// index on (chat_id, message_id) rejects duplicates; a violation surfaces as
// ErrDuplicateTranscription and the transaction is rolled back.
func (s *Store) CreateTranscription(ctx context.Context, userID, chatID, messageID int64, text string) (*Transcription, error) {
	transcription := Transcription{
		UserID:    userID,
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&transcription).Error
	})
	if isUniqueViolation(err) {
		return nil, ErrDuplicateTranscription
	}
	if err != nil {
		return nil, err
	}
	return &transcription, nil
}

// GetTranscription retrieves the transcript anchored at (chat_id, message_id).
// Returns nil when none exists.
func (s *Store) GetTranscription(ctx context.Context, chatID, messageID int64) (*Transcription, error) {
	var transcription Transcription
	err := s.DB.WithContext(ctx).
		Where("chat_id = ? AND message_id = ?", chatID, messageID).
		First(&transcription).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &transcription, nil
}
