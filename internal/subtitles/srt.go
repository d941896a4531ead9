package subtitles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// ParseSRTFile reads an SRT subtitle file into a CueSet.
func ParseSRTFile(path string) (*CueSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open srt: %w", err)
	}
	defer file.Close()
	set, err := ParseSRT(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return set, nil
}

// ParseSRT parses SRT content. Cue numbers in the file are ignored; indices
// are reassigned sequentially so they are dense and stable. Multi-line cue
// text is joined with spaces.
func ParseSRT(r io.Reader) (*CueSet, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	set := &CueSet{}
	var (
		current  *Cue
		haveTime bool
	)
	flush := func() {
		if current != nil && haveTime && current.Text != "" {
			current.Index = len(set.Cues) + 1
			set.Cues = append(set.Cues, *current)
		}
		current = nil
		haveTime = false
	}

	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\uFEFF"))
		switch {
		case line == "":
			flush()
		case current == nil && isDigits(line):
			current = &Cue{}
		case strings.Contains(line, "-->"):
			if current == nil {
				current = &Cue{}
			}
			start, end, err := parseTimecodeLine(line)
			if err != nil {
				return nil, err
			}
			current.Start, current.End = start, end
			haveTime = true
		case current != nil && haveTime:
			if current.Text != "" {
				current.Text += " "
			}
			current.Text += line
		}
	}
	flush()
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// WriteSRT writes the set as SRT using the selector to pick each cue's text.
func WriteSRT(w io.Writer, set *CueSet, text func(*Cue) string) error {
	for i := range set.Cues {
		c := &set.Cues[i]
		body := strings.TrimSpace(text(c))
		if body == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			c.Index, formatTimecode(c.Start), formatTimecode(c.End), body); err != nil {
			return fmt.Errorf("write srt: %w", err)
		}
	}
	return nil
}

// WriteTranslatedSRT writes an SRT carrying translated text, falling back to
// source text for untranslated cues.
func WriteTranslatedSRT(path string, set *CueSet) error {
	return writeSRTFile(path, set, func(c *Cue) string {
		if c.Translated != "" {
			return c.Translated
		}
		return c.Text
	})
}

// WriteBilingualSRT writes an SRT with translated text above the source line.
func WriteBilingualSRT(path string, set *CueSet) error {
	return writeSRTFile(path, set, func(c *Cue) string {
		if c.Translated == "" {
			return c.Text
		}
		return c.Translated + "\n" + c.Text
	})
}

func writeSRTFile(path string, set *CueSet, text func(*Cue) string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create srt: %w", err)
	}
	defer file.Close()
	writer := bufio.NewWriter(file)
	if err := WriteSRT(writer, set, text); err != nil {
		return err
	}
	return writer.Flush()
}

func parseTimecodeLine(line string) (time.Duration, time.Duration, error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid timecode line %q", line)
	}
	start, err := parseTimecode(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	end, err := parseTimecode(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseTimecode(value string) (time.Duration, error) {
	// SRT standard uses a comma before milliseconds; tolerate a period.
	value = strings.ReplaceAll(value, ",", ".")
	hms := strings.Split(value, ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.ParseFloat(hms[2], 64)
	if errH != nil || errM != nil || errS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	total := float64(hours*3600+minutes*60) + seconds
	return time.Duration(total * float64(time.Second)), nil
}

func formatTimecode(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	millis := d.Milliseconds()
	hours := millis / 3_600_000
	millis -= hours * 3_600_000
	minutes := millis / 60_000
	millis -= minutes * 60_000
	seconds := millis / 1000
	millis -= seconds * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
