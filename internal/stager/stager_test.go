package stager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voiceinsight/voiceinsight/internal/queue"
)

type fakeFetcher struct {
	resolveErrs int // number of leading ResolveFile calls that fail
	resolved    int
	downloads   int
	content     []byte
}

func (f *fakeFetcher) ResolveFile(ctx context.Context, fileID string) (string, error) {
	f.resolved++
	if f.resolved <= f.resolveErrs {
		return "", errors.New("temporary lookup failure")
	}
	return "/remote/" + fileID, nil
}

func (f *fakeFetcher) Download(ctx context.Context, remotePath, destPath string) error {
	f.downloads++
	return os.WriteFile(destPath, f.content, 0o644)
}

type fakeTranscoder struct {
	calls int
	fail  bool
}

func (f *fakeTranscoder) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	f.calls++
	if f.fail {
		return "", errors.New("codec not supported")
	}
	audioPath := filepath.Join(filepath.Dir(videoPath), "audio.aac")
	if err := os.WriteFile(audioPath, []byte("aac"), 0o644); err != nil {
		return "", err
	}
	return audioPath, nil
}

func TestStage_Voice(t *testing.T) {
	root := t.TempDir()
	fetcher := &fakeFetcher{content: []byte("ogg-bytes")}
	s := New(root, fetcher, &fakeTranscoder{})

	job := queue.Job{ChatID: 10, NoticeID: 77, Source: queue.Source{Kind: queue.SourceVoice, FileID: "v1"}}
	audioPath, cleanup, err := s.Stage(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "10_77", "voice.ogg"), audioPath)
	data, err := os.ReadFile(audioPath)
	require.NoError(t, err)
	assert.Equal(t, "ogg-bytes", string(data))

	cleanup()
	_, err = os.Stat(filepath.Join(root, "10_77"))
	assert.True(t, os.IsNotExist(err), "cleanup must remove the working directory")
}

func TestStage_VideoExtractsAudioAndRemovesIntermediate(t *testing.T) {
	root := t.TempDir()
	fetcher := &fakeFetcher{content: []byte("mp4-bytes")}
	tc := &fakeTranscoder{}
	s := New(root, fetcher, tc)

	job := queue.Job{ChatID: 10, NoticeID: 78, Source: queue.Source{
		Kind: queue.SourceVideo, FileID: "vid1", FileName: "talk.mp4",
	}}
	audioPath, cleanup, err := s.Stage(context.Background(), job)
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, 1, tc.calls)
	assert.Equal(t, filepath.Join(root, "10_78", "audio.aac"), audioPath)
	_, err = os.Stat(filepath.Join(root, "10_78", "talk.mp4"))
	assert.True(t, os.IsNotExist(err), "video intermediate must be deleted after extraction")
}

func TestStage_ResolveRetriesThenSucceeds(t *testing.T) {
	root := t.TempDir()
	fetcher := &fakeFetcher{resolveErrs: 2, content: []byte("x")}
	s := New(root, fetcher, &fakeTranscoder{})

	job := queue.Job{ChatID: 1, NoticeID: 2, Source: queue.Source{Kind: queue.SourceVoice, FileID: "v1"}}
	_, cleanup, err := s.Stage(context.Background(), job)
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, 3, fetcher.resolved, "two failures then success on the third attempt")
}

func TestStage_ResolveExhaustedRemovesDir(t *testing.T) {
	root := t.TempDir()
	fetcher := &fakeFetcher{resolveErrs: 3}
	s := New(root, fetcher, &fakeTranscoder{})

	job := queue.Job{ChatID: 1, NoticeID: 3, Source: queue.Source{Kind: queue.SourceVoice, FileID: "v1"}}
	_, _, err := s.Stage(context.Background(), job)
	require.Error(t, err)

	assert.Equal(t, 3, fetcher.resolved)
	assert.Zero(t, fetcher.downloads)
	_, statErr := os.Stat(filepath.Join(root, "1_3"))
	assert.True(t, os.IsNotExist(statErr), "failed staging must not leave the working directory behind")
}

func TestStage_TranscodeFailureRemovesDir(t *testing.T) {
	root := t.TempDir()
	fetcher := &fakeFetcher{content: []byte("mp4")}
	s := New(root, fetcher, &fakeTranscoder{fail: true})

	job := queue.Job{ChatID: 1, NoticeID: 4, Source: queue.Source{Kind: queue.SourceVideo, FileID: "v1"}}
	_, _, err := s.Stage(context.Background(), job)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(root, "1_4"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestStage_LocalAudioFile(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(t.TempDir(), "meeting.ogg")
	require.NoError(t, os.WriteFile(src, []byte("ogg"), 0o644))

	s := New(root, &fakeFetcher{}, &fakeTranscoder{})
	job := queue.Job{ChatID: 5, NoticeID: 6, Source: queue.Source{Kind: queue.SourceLocal, Path: src}}
	audioPath, cleanup, err := s.Stage(context.Background(), job)
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, filepath.Join(root, "5_6", "meeting.ogg"), audioPath)
}

func TestStage_LocalVideoFileIsExtracted(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(t.TempDir(), "meeting.mp4")
	require.NoError(t, os.WriteFile(src, []byte("mp4"), 0o644))

	tc := &fakeTranscoder{}
	s := New(root, &fakeFetcher{}, tc)
	job := queue.Job{ChatID: 5, NoticeID: 7, Source: queue.Source{Kind: queue.SourceLocal, Path: src}}
	audioPath, cleanup, err := s.Stage(context.Background(), job)
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, 1, tc.calls)
	assert.Equal(t, "audio.aac", filepath.Base(audioPath))
}

func TestStage_UnknownKind(t *testing.T) {
	s := New(t.TempDir(), &fakeFetcher{}, &fakeTranscoder{})
	job := queue.Job{ChatID: 1, NoticeID: 8, Source: queue.Source{Kind: queue.SourceKind(99)}}
	_, _, err := s.Stage(context.Background(), job)
	assert.ErrorIs(t, err, ErrUnsupportedContent)
}
