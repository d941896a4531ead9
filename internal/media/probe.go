package media

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"dubtrack/internal/services"
)

// Prober reads container durations via ffprobe.
type Prober struct {
	Binary string
}

// NewProber constructs a prober using the given ffprobe binary name or path.
func NewProber(binary string) *Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{Binary: binary}
}

// Duration returns the container duration of the file at path.
func (p *Prober) Duration(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, p.Binary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "probe", "ffprobe", path, err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "probe", "ffprobe",
			"unparseable duration for "+path, err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
