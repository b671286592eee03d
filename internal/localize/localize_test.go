package localize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	assert.Equal(t, "Транскрипция", Get("transcription", "ru"))
	assert.Equal(t, "Transcription", Get("transcription", "en"))
	assert.Equal(t, "Transcription", Get("transcription", ""))
}

func TestGet_UnknownKey(t *testing.T) {
	assert.Empty(t, Get("no_such_key", "en"))
}

func TestGet_FallsBackForUnknownLanguage(t *testing.T) {
	assert.Equal(t, "Summary", Get("summary", "de"))
}
