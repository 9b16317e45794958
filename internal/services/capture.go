package services

import (
	"bytes"
	"context"
	"errors"
	"felixrec/internal/providers"
	"felixrec/internal/structures"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ErrEmptyCapture = errors.New("capture produced no audio")

const filenameTimeLayout = "20060102_150405"

var unsafeFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)

type CaptureInterface interface {
	Capture(ctx context.Context, streamURL string, durationSecs int, outputPath string) error
}

// FfmpegCapture records a stream to MP3 with an ffmpeg child process.
type FfmpegCapture struct {
	binary string
	logger providers.Logger
}

func NewFfmpegCapture(conf *structures.Config, logger providers.Logger) CaptureInterface {
	return &FfmpegCapture{binary: conf.Recorder.FfmpegPath, logger: logger}
}

// Capture blocks for about durationSecs. The output file must exist and be non-empty afterwards.
func (f *FfmpegCapture) Capture(ctx context.Context, streamURL string, durationSecs int, outputPath string) error {
	if durationSecs <= 0 {
		return fmt.Errorf("invalid capture duration %ds", durationSecs)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create audio directory: %w", err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.binary, captureArgs(streamURL, durationSecs, outputPath)...)
	cmd.Stderr = &stderr

	f.logger.Infof(providers.TypeExecutor, "Capturing %s for %ds into %s", streamURL, durationSecs, outputPath)
	start := time.Now()
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, lastLine(stderr.String()))
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("capture output: %w", err)
	}
	if info.Size() == 0 {
		return ErrEmptyCapture
	}

	f.logger.Infof(providers.TypeExecutor, "Captured %d bytes into %s in %s", info.Size(), outputPath, time.Since(start).Round(time.Second))
	return nil
}

func captureArgs(streamURL string, durationSecs int, outputPath string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", streamURL,
		"-t", strconv.Itoa(durationSecs),
		"-vn",
		"-acodec", "libmp3lame",
		"-b:a", "128k",
		"-y",
		outputPath,
	}
}

// GenerateFilename builds "{program}_{YYYYMMDD_HHmmss}.mp3" with unsafe characters replaced.
func GenerateFilename(programName string, at time.Time) string {
	name := unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(programName), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "recording"
	}
	return fmt.Sprintf("%s_%s.mp3", name, at.Format(filenameTimeLayout))
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
