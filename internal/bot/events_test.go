package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data string
		want Event
	}{
		{"home", OpenMenu{}},
		{"transcription", SelectArtifact{Kind: KindTranscription}},
		{"summary", SelectArtifact{Kind: KindSummary}},
		{"short_summary", SelectArtifact{Kind: KindShortSummary}},
		{"protocol", SelectArtifact{Kind: KindProtocol}},
		{"show_transcription", ShowArtifact{Kind: KindTranscription}},
		{"show_summary", ShowArtifact{Kind: KindSummary}},
		{"download_protocol", DownloadArtifact{Kind: KindProtocol}},
		{"download_short_summary", DownloadArtifact{Kind: KindShortSummary}},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			got, err := ParseCallback(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCallback_RejectsUnknownTokens(t *testing.T) {
	for _, data := range []string{"", "nonsense", "show_", "show_haiku", "download_", "download_x", "summary_extra"} {
		_, err := ParseCallback(data)
		assert.Error(t, err, "token %q must be rejected", data)
	}
}

func TestArtifactKindValid(t *testing.T) {
	assert.True(t, KindTranscription.Valid())
	assert.False(t, ArtifactKind("haiku").Valid())
	assert.False(t, ArtifactKind("").Valid())
}
