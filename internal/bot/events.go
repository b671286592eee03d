// Package bot maps inbound UI events to pipeline calls and cache reads, and
// renders the resulting text/menu pairs.
package bot

import (
	"fmt"
	"strings"
)

// ArtifactKind names one user-facing derived text for an upload.
type ArtifactKind string

const (
	KindTranscription ArtifactKind = "transcription"
	KindSummary       ArtifactKind = "summary"
	KindShortSummary  ArtifactKind = "short_summary"
	KindProtocol      ArtifactKind = "protocol"
)

// Valid reports whether the kind is one of the dispatchable artifact types.
func (k ArtifactKind) Valid() bool {
	switch k {
	case KindTranscription, KindSummary, KindShortSummary, KindProtocol:
		return true
	}
	return false
}

// Event is a parsed UI event. The concrete types below are the only
// implementations, so handlers can switch exhaustively instead of branching
// on raw callback strings.
type Event interface {
	isEvent()
}

// OpenMenu returns the user to the artifact-type chooser.
type OpenMenu struct{}

// SelectArtifact opens the detail view for one artifact type.
type SelectArtifact struct{ Kind ArtifactKind }

// ShowArtifact renders the artifact text in place of the detail view.
type ShowArtifact struct{ Kind ArtifactKind }

// DownloadArtifact sends the full artifact text as a document.
type DownloadArtifact struct{ Kind ArtifactKind }

func (OpenMenu) isEvent()         {}
func (SelectArtifact) isEvent()   {}
func (ShowArtifact) isEvent()     {}
func (DownloadArtifact) isEvent() {}

// ParseCallback converts a wire callback token into an Event. Unknown tokens
// are rejected rather than silently ignored.
func ParseCallback(data string) (Event, error) {
	switch {
	case data == "home":
		return OpenMenu{}, nil
	case strings.HasPrefix(data, "show_"):
		kind := ArtifactKind(strings.TrimPrefix(data, "show_"))
		if !kind.Valid() {
			return nil, fmt.Errorf("unknown artifact type in callback %q", data)
		}
		return ShowArtifact{Kind: kind}, nil
	case strings.HasPrefix(data, "download_"):
		kind := ArtifactKind(strings.TrimPrefix(data, "download_"))
		if !kind.Valid() {
			return nil, fmt.Errorf("unknown artifact type in callback %q", data)
		}
		return DownloadArtifact{Kind: kind}, nil
	default:
		kind := ArtifactKind(data)
		if !kind.Valid() {
			return nil, fmt.Errorf("unknown callback token %q", data)
		}
		return SelectArtifact{Kind: kind}, nil
	}
}
