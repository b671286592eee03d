package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// ImportLegacyFiles migrates artifacts from the old filesystem cache into the
// store. Early deployments kept per-job directories named {chat_id}_{message_id}
// holding transcription and summary text files; this walks them once, creating
// the owning user, the transcript row, and one summary row per named prompt.
// Directories that were already imported are skipped.
func (s *Store) ImportLegacyFiles(ctx context.Context, root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("read legacy root: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		chatID, messageID, err := parseLegacyDirName(entry.Name())
		if err != nil {
			log.Warn().Str("dir", entry.Name()).Err(err).Msg("Skipping unrecognized legacy directory")
			continue
		}

		if err := s.importLegacyDir(ctx, filepath.Join(root, entry.Name()), chatID, messageID); err != nil {
			log.Error().Str("dir", entry.Name()).Err(err).Msg("Legacy import failed for directory")
		}
	}

	return nil
}

func (s *Store) importLegacyDir(ctx context.Context, dir string, chatID, messageID int64) error {
	// The old layout used the chat id as the owner id for private chats.
	if err := s.UpsertUser(ctx, UserInfo{ID: chatID, UserName: strconv.FormatInt(chatID, 10)}); err != nil {
		return fmt.Errorf("upsert legacy user: %w", err)
	}

	text, err := readLegacyFile(dir, "transcription")
	if err != nil {
		return fmt.Errorf("read legacy transcription: %w", err)
	}
	if text == "" {
		return fmt.Errorf("no transcription file in %s", dir)
	}

	transcription, err := s.CreateTranscription(ctx, chatID, chatID, messageID, text)
	if errors.Is(err, ErrDuplicateTranscription) {
		// Already imported on a previous run.
		return nil
	}
	if err != nil {
		return fmt.Errorf("create legacy transcription: %w", err)
	}

	for _, name := range []string{"summary", "short_summary", "protocol"} {
		body, err := readLegacyFile(dir, name)
		if err != nil || body == "" {
			continue
		}
		prompt, err := s.GetPromptByName(ctx, name)
		if err != nil || prompt == nil {
			continue
		}
		if _, err := s.SaveSummary(ctx, transcription.ID, prompt.ID, body); err != nil && !errors.Is(err, ErrDuplicateSummary) {
			log.Warn().Str("dir", dir).Str("prompt", name).Err(err).Msg("Legacy summary import failed")
		}
	}

	return nil
}

// readLegacyFile returns the content of the first file in dir whose name
// starts with prefix, or "" when none exists.
func readLegacyFile(dir, prefix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", nil
}

func parseLegacyDirName(name string) (chatID, messageID int64, err error) {
	parts := strings.SplitN(name, "_", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("directory name %q is not {chat}_{message}", name)
	}
	chatID, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	messageID, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return chatID, messageID, nil
}
