package media

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
)

func TestDetect_WithStubs(t *testing.T) {
	ffmpeg := writeScript(t, "ffmpeg", fakeFFmpeg)
	ffprobe := writeScript(t, "ffprobe", fakeFFprobe)

	caps := Detect(context.Background(), ffmpeg, ffprobe, discardLogger())

	if !caps.EncoderAvailable() {
		t.Errorf("EncoderAvailable() = false, caps = %+v", caps)
	}
	if !caps.ProberAvailable() {
		t.Errorf("ProberAvailable() = false, caps = %+v", caps)
	}
	if caps.FFmpegVersion != "ffmpeg version 6.1-test Copyright (c) the FFmpeg developers" {
		t.Errorf("FFmpegVersion = %q", caps.FFmpegVersion)
	}
	if caps.FFprobeVersion != "ffprobe version 6.1-test" {
		t.Errorf("FFprobeVersion = %q", caps.FFprobeVersion)
	}
	if caps.DetectedAt.IsZero() {
		t.Error("DetectedAt not set")
	}
}

func TestDetect_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	caps := Detect(context.Background(), missing, missing, discardLogger())

	if caps.EncoderAvailable() || caps.ProberAvailable() || caps.ThumbnailsAvailable() {
		t.Errorf("expected nothing available, got %+v", caps)
	}
}

func TestDetect_NoLibx264(t *testing.T) {
	ffmpeg := writeScript(t, "ffmpeg", "#!/bin/sh\necho \"ffmpeg version 5\"\n")

	caps := Detect(context.Background(), ffmpeg, "", discardLogger())

	if !caps.ThumbnailsAvailable() {
		t.Error("ThumbnailsAvailable() = false, want true")
	}
	if caps.EncoderAvailable() {
		t.Error("EncoderAvailable() = true without libx264")
	}
}

func TestLimitedWriter_KeepsOnlyTail(t *testing.T) {
	var buf bytes.Buffer
	lw := &limitedWriter{w: &buf, limit: 10}

	lw.Write([]byte("hello"))
	if buf.String() != "hello" {
		t.Errorf("after short write got %q, want %q", buf.String(), "hello")
	}

	n, err := lw.Write([]byte(" world of test data"))
	if err != nil || n != 19 {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if got := buf.String(); got != " test data" {
		t.Errorf("after overflow got %q, want %q", got, " test data")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("0123456789", 4); got != "...6789" {
		t.Errorf("truncate long = %q", got)
	}
}
