package media_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"dubtrack/internal/media"
	"dubtrack/internal/services"
)

func stubProbe(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestProberParsesDuration(t *testing.T) {
	prober := media.NewProber(stubProbe(t, `echo "93.480000"`))

	duration, err := prober.Duration(context.Background(), "/media/film.mkv")
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if duration != 93*time.Second+480*time.Millisecond {
		t.Fatalf("duration %v", duration)
	}
}

func TestProberWrapsToolFailure(t *testing.T) {
	prober := media.NewProber(stubProbe(t, "exit 1"))

	_, err := prober.Duration(context.Background(), "/media/missing.mkv")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("error %v, want ErrExternalTool", err)
	}
}

func TestProberRejectsUnparseableOutput(t *testing.T) {
	prober := media.NewProber(stubProbe(t, `echo "N/A"`))

	if _, err := prober.Duration(context.Background(), "/media/film.mkv"); err == nil {
		t.Fatal("expected parse error")
	}
}
