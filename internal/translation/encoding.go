package translation

import (
	"fmt"
	"strings"
)

// Mode selects how a batch's lines are serialized into one request payload.
type Mode string

const (
	// ModePlain sends newline-delimited lines and expects the same back.
	ModePlain Mode = "plain"
	// ModeHTML wraps each line in an indexed tag. Models that merge or
	// reflow adjacent lines break the tag structure, which validation
	// catches; in practice this mode keeps line mapping intact far more
	// often than plain text.
	ModeHTML Mode = "html"
)

// ParseMode converts a configuration string into a Mode.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(ModeHTML):
		return ModeHTML, nil
	case string(ModePlain):
		return ModePlain, nil
	default:
		return "", fmt.Errorf("unknown line wrap mode %q", value)
	}
}

// EncodePayload serializes batch lines for the request body.
func EncodePayload(mode Mode, lines []string) string {
	if mode == ModePlain {
		return strings.Join(lines, "\n")
	}
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "<L%d>%s</L%d>", i+1, line, i+1)
	}
	return b.String()
}

// DecodePayload parses the model's response back into exactly want lines.
// A shape mismatch returns an error describing the first problem found.
func DecodePayload(mode Mode, response string, want int) ([]string, error) {
	if mode == ModePlain {
		return decodePlain(response, want)
	}
	return decodeHTML(response, want)
}

func decodePlain(response string, want int) ([]string, error) {
	raw := strings.Split(strings.TrimSpace(response), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) != want {
		return nil, fmt.Errorf("line count mismatch: got %d, want %d", len(lines), want)
	}
	return lines, nil
}

// decodeHTML extracts the text between each <Ln>...</Ln> pair. Known failure
// shapes: missing tags, mismatched numbers (<L1>...</L2>), duplicated tags.
func decodeHTML(response string, want int) ([]string, error) {
	if strings.Count(response, "<L") != want || strings.Count(response, "</L") != want {
		return nil, fmt.Errorf("tag count mismatch: want %d tagged lines", want)
	}
	lines := make([]string, 0, want)
	for i := 1; i <= want; i++ {
		open := fmt.Sprintf("<L%d>", i)
		closing := fmt.Sprintf("</L%d>", i)
		start := strings.Index(response, open)
		end := strings.Index(response, closing)
		if start == -1 || end == -1 || end < start {
			return nil, fmt.Errorf("tag L%d missing or out of order", i)
		}
		lines = append(lines, strings.TrimSpace(response[start+len(open):end]))
	}
	return lines, nil
}
