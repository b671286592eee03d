// Package textutil provides text shaping helpers shared by the worker and the
// bot handlers.
package textutil

import (
	"fmt"
	"unicode/utf8"
)

// MessageLimit is the maximum length of an inline chat message, in runes.
// Longer bodies are truncated for display; downloads always carry the full
// text.
const MessageLimit = 4096

// Limit truncates text to MessageLimit runes of output, replacing the tail
// with an ellipsis marker. Text at or under the limit is returned unchanged.
func Limit(text string) string {
	if utf8.RuneCountInString(text) <= MessageLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:MessageLimit-3]) + "..."
}

// StagingDirName derives the per-job working directory name. The notice
// message id is unique per job, so names never collide.
func StagingDirName(chatID, messageID int64) string {
	return fmt.Sprintf("%d_%d", chatID, messageID)
}

// ArtifactFileName derives the temp file name used for document downloads.
func ArtifactFileName(chatID, messageID int64, kind string) string {
	return fmt.Sprintf("%d_%d_%s.txt", chatID, messageID, kind)
}
