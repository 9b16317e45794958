package services

import (
	"context"
	"felixrec/internal/structures"
	"felixrec/internal/testutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFfmpeg writes a shell script standing in for ffmpeg. The script receives the
// output path as its last argument.
func fakeFfmpeg(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\nfor last; do :; done\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func newTestCapture(binary string) CaptureInterface {
	conf := &structures.Config{Recorder: structures.RecorderConfig{FfmpegPath: binary}}
	return NewFfmpegCapture(conf, &testutil.MockLogger{})
}

func TestFfmpegCapture_WritesOutput(t *testing.T) {
	binary := fakeFfmpeg(t, `printf 'ID3-audio' > "$last"`)
	out := filepath.Join(t.TempDir(), "audio", "a.mp3")

	err := newTestCapture(binary).Capture(context.Background(), "http://stream", 60, out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "ID3-audio", string(data))
}

func TestFfmpegCapture_EmptyOutput(t *testing.T) {
	binary := fakeFfmpeg(t, `: > "$last"`)
	out := filepath.Join(t.TempDir(), "a.mp3")

	err := newTestCapture(binary).Capture(context.Background(), "http://stream", 60, out)
	assert.ErrorIs(t, err, ErrEmptyCapture)
}

func TestFfmpegCapture_ProcessFailure(t *testing.T) {
	binary := fakeFfmpeg(t, `echo "Connection refused" >&2; exit 1`)
	out := filepath.Join(t.TempDir(), "a.mp3")

	err := newTestCapture(binary).Capture(context.Background(), "http://stream", 60, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Connection refused")
}

func TestFfmpegCapture_MissingBinary(t *testing.T) {
	out := filepath.Join(t.TempDir(), "a.mp3")
	err := newTestCapture("/nonexistent/ffmpeg").Capture(context.Background(), "http://stream", 60, out)
	assert.Error(t, err)
}

func TestFfmpegCapture_InvalidDuration(t *testing.T) {
	err := newTestCapture("ffmpeg").Capture(context.Background(), "http://stream", 0, "/tmp/a.mp3")
	assert.Error(t, err)
}

func TestCaptureArgs(t *testing.T) {
	args := captureArgs("http://stream", 3600, "/data/a.mp3")
	assert.Equal(t, "/data/a.mp3", args[len(args)-1])
	assert.Contains(t, args, "3600")
	assert.Contains(t, args, "http://stream")
	assert.Contains(t, args, "libmp3lame")
}

func TestGenerateFilename(t *testing.T) {
	at := time.Date(2026, 10, 17, 9, 5, 3, 0, time.UTC)

	tests := []struct {
		name    string
		program string
		want    string
	}{
		{"plain", "Morning", "Morning_20261017_090503.mp3"},
		{"spaces and punctuation", "Jazz: Late Night / Live!", "Jazz_Late_Night_Live_20261017_090503.mp3"},
		{"korean", "배철수의 음악캠프", "배철수의_음악캠프_20261017_090503.mp3"},
		{"empty", "  ", "recording_20261017_090503.mp3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateFilename(tt.program, at))
		})
	}
}
