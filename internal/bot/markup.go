package bot

import (
	"github.com/voiceinsight/voiceinsight/internal/localize"
	"github.com/voiceinsight/voiceinsight/internal/platform"
)

// BaseMenu is the artifact-type chooser shown after processing completes.
func BaseMenu(lang string) *platform.Menu {
	return &platform.Menu{Rows: [][]platform.Button{
		{
			{Label: localize.Get("transcription", lang), Data: string(KindTranscription)},
			{Label: localize.Get("summary", lang), Data: string(KindSummary)},
		},
		{
			{Label: localize.Get("short_summary", lang), Data: string(KindShortSummary)},
			{Label: localize.Get("protocol", lang), Data: string(KindProtocol)},
		},
	}}
}

// DetailMenu carries the show/download/back controls for one artifact type.
func DetailMenu(lang string, kind ArtifactKind) *platform.Menu {
	return &platform.Menu{Rows: [][]platform.Button{
		{
			{Label: localize.Get("download", lang), Data: "download_" + string(kind)},
			{Label: localize.Get("show", lang), Data: "show_" + string(kind)},
		},
		{
			{Label: localize.Get("back", lang), Data: "home"},
		},
	}}
}

// CompletedText is the body of the menu message once a job has finished.
func CompletedText(lang string) string {
	return localize.Get("processing_completed", lang) + "\n" + localize.Get("transcription_result_hint", lang)
}
