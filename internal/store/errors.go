package store

import (
	"errors"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// ErrDuplicateTranscription is returned when a transcript already exists for
// a (chat_id, message_id) pair. Callers treat it as "already exists, re-read".
var ErrDuplicateTranscription = errors.New("transcription already exists for this message")

// ErrDuplicateSummary is returned when a summary already exists for a
// (transcription_id, prompt_id) pair. A concurrent writer won the race; the
// caller re-reads the cached row.
var ErrDuplicateSummary = errors.New("summary already exists for this prompt")

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
