package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks a translation response whose shape does not match
	// the request (wrong line count, bad tags, rejected by a strictness
	// policy). Recovered locally via retry and bisection.
	ErrValidation = errors.New("validation error")
	// ErrDesync marks a synthesized clip whose echoed text could not be
	// matched back to the requested text with enough confidence.
	ErrDesync = errors.New("desync")
	// ErrExternalTool marks failures of external binaries such as ffmpeg.
	ErrExternalTool = errors.New("external tool error")
	// ErrConfiguration marks unusable settings detected at runtime.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransient marks network or backend failures worth retrying.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
