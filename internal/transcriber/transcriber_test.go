package transcriber

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeTurns_CoalescesSameSpeaker(t *testing.T) {
	segments := []Segment{
		{Speaker: "SPEAKER_00", Text: " hi"},
		{Speaker: "SPEAKER_00", Text: "there "},
		{Speaker: "SPEAKER_01", Text: "yo"},
	}

	got := MergeTurns(segments, "en")
	assert.Equal(t, "SPEAKER_00: hi there\nSPEAKER_01: yo", got)
}

func TestMergeTurns_SpeakerAlternation(t *testing.T) {
	segments := []Segment{
		{Speaker: "A", Text: "one"},
		{Speaker: "B", Text: "two"},
		{Speaker: "A", Text: "three"},
	}

	got := MergeTurns(segments, "en")
	assert.Equal(t, "A: one\nB: two\nA: three", got)
}

func TestMergeTurns_UnlabeledSegmentsSharePlaceholder(t *testing.T) {
	segments := []Segment{
		{Text: "first"},
		{Text: "second"},
		{Speaker: "SPEAKER_00", Text: "third"},
	}

	got := MergeTurns(segments, "en")
	assert.Equal(t, "SPEAKER: first second\nSPEAKER_00: third", got)
}

func TestMergeTurns_RussianSubstitution(t *testing.T) {
	segments := []Segment{
		{Speaker: "SPEAKER_00", Text: "привет"},
		{Speaker: "SPEAKER_01", Text: "здравствуйте"},
	}

	got := MergeTurns(segments, "ru")
	assert.Equal(t, "Участник_00: привет\nУчастник_01: здравствуйте", got)
}

func TestMergeTurns_EmptyInput(t *testing.T) {
	assert.Empty(t, MergeTurns(nil, "en"))
	assert.Empty(t, MergeTurns([]Segment{{Speaker: "A", Text: "  "}}, "en"))
}

func TestClient_Transcribe(t *testing.T) {
	audioPath := filepath.Join(t.TempDir(), "voice.ogg")
	require.NoError(t, os.WriteFile(audioPath, []byte("ogg-bytes"), 0o644))

	var gotDiarize string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1 << 20))
		gotDiarize = r.FormValue("diarize")

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		file.Close()

		json.NewEncoder(w).Encode(response{
			Language: "en",
			Segments: []Segment{
				{Speaker: "SPEAKER_00", Text: "hello"},
				{Speaker: "SPEAKER_00", Text: "world"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Minute)
	result, err := client.Transcribe(context.Background(), audioPath)
	require.NoError(t, err)

	assert.Equal(t, "true", gotDiarize)
	assert.Equal(t, "en", result.Language)
	assert.Equal(t, "SPEAKER_00: hello world", result.Text)
}

func TestClient_Transcribe_ServerError(t *testing.T) {
	audioPath := filepath.Join(t.TempDir(), "voice.ogg")
	require.NoError(t, os.WriteFile(audioPath, []byte("x"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Minute)
	_, err := client.Transcribe(context.Background(), audioPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_Transcribe_MissingFile(t *testing.T) {
	client := NewClient("http://127.0.0.1:0", time.Minute)
	_, err := client.Transcribe(context.Background(), filepath.Join(t.TempDir(), "absent.ogg"))
	require.Error(t, err)
}
