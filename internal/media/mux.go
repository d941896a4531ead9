package media

import (
	"context"
	"os/exec"
	"strings"

	"dubtrack/internal/services"
)

// Muxer combines a master dubbed-audio track with the original video into an
// output container via ffmpeg. A mux failure is fatal for that file only.
type Muxer struct {
	Binary string
}

// NewMuxer constructs a muxer using the given ffmpeg binary name or path.
func NewMuxer(binary string) *Muxer {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Muxer{Binary: binary}
}

// Mux replaces the video's audio with the dubbed track, copying the video
// stream untouched.
func (m *Muxer) Mux(ctx context.Context, videoPath, audioPath, outputPath string) error {
	args := []string{
		"-nostats", "-hide_banner", "-loglevel", "warning",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v", "-map", "1:a",
		"-c:v", "copy",
		"-c:a", "aac", "-ac", "2", "-ab", "160k",
		"-y", outputPath,
	}
	cmd := exec.CommandContext(ctx, m.Binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			detail = err.Error()
		}
		return services.Wrap(services.ErrExternalTool, "mux", "ffmpeg", detail, err)
	}
	return nil
}
