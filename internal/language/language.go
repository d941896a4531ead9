package language

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Target describes the translation target language: the BCP 47 tag supplied
// in configuration plus the script the translated text is expected to use.
type Target struct {
	Tag    language.Tag
	Script string // ISO 15924 code, e.g. "Hans", "Latn"
}

// ParseTarget normalizes a configured target language value ("zh-Hans",
// "ja", "pt-BR", or a bare word like "japanese") into a Target.
func ParseTarget(value string) (Target, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Target{}, fmt.Errorf("target language is empty")
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return Target{}, fmt.Errorf("parse target language %q: %w", trimmed, err)
	}
	script, _ := tag.Script()
	return Target{Tag: tag, Script: script.String()}, nil
}

// DisplayName returns the English display name for the target, used in
// translation prompts ("translate the following text to Simplified Chinese").
func (t Target) DisplayName() string {
	name := display.English.Tags().Name(t.Tag)
	if name == "" {
		return t.Tag.String()
	}
	return name
}

// scriptRanges maps ISO 15924 script codes to the unicode ranges whose
// letters count as belonging to that script. Japanese and Korean include the
// Han ranges their orthographies borrow.
var scriptRanges = map[string][]*unicode.RangeTable{
	"Hans": {unicode.Han},
	"Hant": {unicode.Han},
	"Jpan": {unicode.Hiragana, unicode.Katakana, unicode.Han},
	"Kore": {unicode.Hangul, unicode.Han},
	"Latn": {unicode.Latin},
	"Cyrl": {unicode.Cyrillic},
	"Arab": {unicode.Arabic},
	"Grek": {unicode.Greek},
	"Deva": {unicode.Devanagari},
	"Thai": {unicode.Thai},
	"Hebr": {unicode.Hebrew},
}

// ScriptKnown reports whether the script has registered unicode ranges. An
// unknown script disables script-based response validation rather than
// rejecting everything.
func ScriptKnown(script string) bool {
	_, ok := scriptRanges[script]
	return ok
}

// ScriptShare returns the fraction of letters in text that belong to the
// given script, ignoring digits, punctuation, and whitespace. Returns 1 for
// text with no letters at all, since such lines carry no script signal.
func ScriptShare(text, script string) float64 {
	ranges, ok := scriptRanges[script]
	if !ok {
		return 1
	}
	var letters, matched int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		for _, table := range ranges {
			if unicode.Is(table, r) {
				matched++
				break
			}
		}
	}
	if letters == 0 {
		return 1
	}
	return float64(matched) / float64(letters)
}
