package store

import (
	"context"

	"gorm.io/gorm"
)

// SaveSummary writes one cache entry for (transcription_id, prompt_id).
// A concurrent duplicate surfaces as ErrDuplicateSummary after rollback; the
// caller re-reads the winning row instead of presenting a failure.
func (s *Store) SaveSummary(ctx context.Context, transcriptionID, promptID int64, text string) (*Summary, error) {
	summary := Summary{
		TranscriptionID: transcriptionID,
		PromptID:        promptID,
		Text:            text,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&summary).Error
	})
	if isUniqueViolation(err) {
		return nil, ErrDuplicateSummary
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetSummary performs the cache point lookup by (transcription_id, prompt_id).
// Returns nil on a cache miss.
func (s *Store) GetSummary(ctx context.Context, transcriptionID, promptID int64) (*Summary, error) {
	var summary Summary
	err := s.DB.WithContext(ctx).
		Where("transcription_id = ? AND prompt_id = ?", transcriptionID, promptID).
		First(&summary).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
