package transcriber

import (
	"strings"

	"github.com/voiceinsight/voiceinsight/internal/localize"
)

// MergeTurns coalesces raw per-segment output into speaker turns: a new line
// starts whenever the speaker changes, and consecutive segments from the same
// speaker are appended to the current line. Segments without a speaker label
// share a localized placeholder, so unlabeled runs still form one turn.
func MergeTurns(segments []Segment, language string) string {
	var lines []string
	prevSpeaker := ""

	for _, segment := range segments {
		speaker := segment.Speaker
		if speaker == "" {
			speaker = localize.Get("unknown_speaker", language)
		}

		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}

		if speaker != prevSpeaker || len(lines) == 0 {
			lines = append(lines, speaker+": "+text)
			prevSpeaker = speaker
		} else {
			lines[len(lines)-1] += " " + text
		}
	}

	result := strings.Join(lines, "\n")
	if language == "ru" {
		// Cosmetic: diarization labels speakers SPEAKER_NN regardless of
		// the detected language.
		result = strings.ReplaceAll(result, "SPEAKER_", "Участник_")
	}
	return result
}
