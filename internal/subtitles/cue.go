package subtitles

import (
	"fmt"
	"time"
)

// Cue is one time-coded subtitle line. Index is assigned at parse time,
// never changes, and is the join key for every downstream stage: translation
// results and audio segments are matched to cues by Index, not by position.
type Cue struct {
	Index      int
	Start      time.Duration
	End        time.Duration
	Text       string
	Translated string
}

// CueSet is an ordered sequence of cues; insertion order is timeline order.
// The Translator fills Translated in place; no stage ever reorders the set.
type CueSet struct {
	Cues []Cue
}

// Validate checks the structural invariants: every cue spans forward in time
// and the set is ordered by start.
func (s *CueSet) Validate() error {
	for i := range s.Cues {
		c := &s.Cues[i]
		if c.End <= c.Start {
			return fmt.Errorf("cue %d: end %s not after start %s", c.Index, c.End, c.Start)
		}
		if i > 0 && c.Start < s.Cues[i-1].Start {
			return fmt.Errorf("cue %d: starts before cue %d", c.Index, s.Cues[i-1].Index)
		}
	}
	return nil
}

// Len returns the number of cues.
func (s *CueSet) Len() int {
	return len(s.Cues)
}

// ByIndex returns the cue with the given index, or nil.
func (s *CueSet) ByIndex(index int) *Cue {
	// Indices are 1-based and usually dense, so try the direct slot first.
	if index >= 1 && index <= len(s.Cues) && s.Cues[index-1].Index == index {
		return &s.Cues[index-1]
	}
	for i := range s.Cues {
		if s.Cues[i].Index == index {
			return &s.Cues[i]
		}
	}
	return nil
}

// Sections splits the set at gaps longer than maxGap between adjacent cues.
// Each element shares backing storage with the receiver so translations
// written through a section land in the original set. A non-positive maxGap
// yields a single section.
func (s *CueSet) Sections(maxGap time.Duration) []CueSet {
	if len(s.Cues) == 0 {
		return nil
	}
	if maxGap <= 0 {
		return []CueSet{{Cues: s.Cues}}
	}
	var out []CueSet
	start := 0
	for i := 1; i < len(s.Cues); i++ {
		if s.Cues[i].Start-s.Cues[i-1].End > maxGap {
			out = append(out, CueSet{Cues: s.Cues[start:i]})
			start = i
		}
	}
	out = append(out, CueSet{Cues: s.Cues[start:]})
	return out
}

// MergeShort joins cues shorter than minChars runes with their neighbor when
// the silence between them is at most maxGap, so fragments like split
// sentences translate as one line. Indices are reassigned afterwards; call
// this before any stage has recorded them. A non-positive minChars disables
// merging.
func (s *CueSet) MergeShort(minChars int, maxGap time.Duration) {
	if minChars <= 0 || len(s.Cues) < 2 {
		return
	}
	merged := make([]Cue, 0, len(s.Cues))
	for _, c := range s.Cues {
		if len(merged) > 0 {
			prev := &merged[len(merged)-1]
			short := len([]rune(c.Text)) < minChars || len([]rune(prev.Text)) < minChars
			if short && c.Start-prev.End <= maxGap {
				prev.Text += " " + c.Text
				if c.End > prev.End {
					prev.End = c.End
				}
				continue
			}
		}
		merged = append(merged, c)
	}
	for i := range merged {
		merged[i].Index = i + 1
	}
	s.Cues = merged
}

// Translated reports whether every cue has translated text.
func (s *CueSet) Translated() bool {
	for i := range s.Cues {
		if s.Cues[i].Translated == "" {
			return false
		}
	}
	return true
}

// Bounds returns the start of the first cue and the end of the last.
func (s *CueSet) Bounds() (time.Duration, time.Duration) {
	if len(s.Cues) == 0 {
		return 0, 0
	}
	return s.Cues[0].Start, s.Cues[len(s.Cues)-1].End
}
