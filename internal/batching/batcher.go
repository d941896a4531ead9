// Package batching groups cues into translation request batches.
package batching

import (
	"dubtrack/internal/subtitles"
)

// Batch is a contiguous run of cues sent as one translation request. Indices
// are cue indices in set order; batches never share a cue and their union
// covers the whole input.
type Batch struct {
	Indices []int
}

// Limits bounds the size of a single batch. MaxChars of zero disables the
// character budget.
type Limits struct {
	MaxLines int
	MaxChars int
}

// Partition splits the cue set into batches greedily: cues are appended to
// the current batch until adding the next one would exceed a limit. A single
// cue over the character budget still becomes its own one-cue batch; cues are
// never dropped or split. The result is deterministic for a given input.
func Partition(set *subtitles.CueSet, limits Limits) []Batch {
	if set == nil || len(set.Cues) == 0 {
		return nil
	}
	maxLines := limits.MaxLines
	if maxLines <= 0 {
		maxLines = 1
	}

	var (
		batches []Batch
		current Batch
		chars   int
	)
	flush := func() {
		if len(current.Indices) > 0 {
			batches = append(batches, current)
			current = Batch{}
			chars = 0
		}
	}
	for i := range set.Cues {
		cue := &set.Cues[i]
		size := len([]rune(cue.Text))
		if len(current.Indices) >= maxLines {
			flush()
		}
		if limits.MaxChars > 0 && len(current.Indices) > 0 && chars+size > limits.MaxChars {
			flush()
		}
		current.Indices = append(current.Indices, cue.Index)
		chars += size
	}
	flush()
	return batches
}

// PartitionSections batches each section independently and concatenates the
// results, so no batch spans a long silence gap. Sections are contiguous,
// which keeps the combined result a contiguous partition of the full set.
func PartitionSections(sections []subtitles.CueSet, limits Limits) []Batch {
	var batches []Batch
	for i := range sections {
		batches = append(batches, Partition(&sections[i], limits)...)
	}
	return batches
}
