package translation

import (
	"fmt"
	"strings"

	"dubtrack/internal/language"
	"dubtrack/internal/textutil"
)

// Policy inspects a decoded response against its source lines and rejects it
// when the content looks wrong despite having the right shape. The exact
// detection rules are deliberately pluggable; the builders below cover the
// known failure modes.
type Policy func(source, translated []string) error

// RejectEmptyLines rejects responses that return an empty line for a
// non-empty input line.
func RejectEmptyLines() Policy {
	return func(source, translated []string) error {
		for i := range translated {
			if strings.TrimSpace(translated[i]) == "" && strings.TrimSpace(source[i]) != "" {
				return fmt.Errorf("line %d: empty translation for non-empty input", i+1)
			}
		}
		return nil
	}
}

// RejectPassthrough rejects responses where a line came back essentially
// identical to its source, which usually means the model echoed instead of
// translating. Short lines are exempt: names and interjections often survive
// translation unchanged.
func RejectPassthrough(threshold float64) Policy {
	if threshold <= 0 {
		threshold = 0.95
	}
	return func(source, translated []string) error {
		for i := range translated {
			if len([]rune(source[i])) < 12 {
				continue
			}
			if textutil.Similarity(source[i], translated[i]) >= threshold {
				return fmt.Errorf("line %d: untranslated passthrough", i+1)
			}
		}
		return nil
	}
}

// RejectWrongScript rejects responses where a line's letters mostly fall
// outside the target language's script. Disabled automatically when the
// target script has no registered unicode ranges.
func RejectWrongScript(target language.Target, minShare float64) Policy {
	if minShare <= 0 {
		minShare = 0.5
	}
	enabled := language.ScriptKnown(target.Script)
	return func(source, translated []string) error {
		if !enabled {
			return nil
		}
		for i := range translated {
			if share := language.ScriptShare(translated[i], target.Script); share < minShare {
				return fmt.Errorf("line %d: script share %.2f below %.2f for %s", i+1, share, minShare, target.Script)
			}
		}
		return nil
	}
}
