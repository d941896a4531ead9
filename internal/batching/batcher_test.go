package batching_test

import (
	"strings"
	"testing"
	"time"

	"dubtrack/internal/batching"
	"dubtrack/internal/subtitles"
)

func makeSet(texts ...string) *subtitles.CueSet {
	set := &subtitles.CueSet{}
	for i, text := range texts {
		start := time.Duration(i) * 2 * time.Second
		set.Cues = append(set.Cues, subtitles.Cue{
			Index: i + 1,
			Start: start,
			End:   start + time.Second,
			Text:  text,
		})
	}
	return set
}

func TestPartitionCoversEveryCueOnce(t *testing.T) {
	set := makeSet("one", "two", "three", "four", "five", "six", "seven")
	batches := batching.Partition(set, batching.Limits{MaxLines: 3})

	seen := map[int]int{}
	for _, batch := range batches {
		for _, index := range batch.Indices {
			seen[index]++
		}
	}
	if len(seen) != set.Len() {
		t.Fatalf("covered %d cues, want %d", len(seen), set.Len())
	}
	for index, count := range seen {
		if count != 1 {
			t.Fatalf("cue %d appears %d times", index, count)
		}
	}
}

func TestPartitionRespectsLineLimit(t *testing.T) {
	set := makeSet("a", "b", "c", "d", "e")
	batches := batching.Partition(set, batching.Limits{MaxLines: 2})

	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(batches))
	}
	for i, batch := range batches {
		if len(batch.Indices) > 2 {
			t.Fatalf("batch %d has %d cues, limit is 2", i, len(batch.Indices))
		}
	}
}

func TestPartitionRespectsCharLimit(t *testing.T) {
	set := makeSet(strings.Repeat("x", 30), strings.Repeat("y", 30), "short")

	batches := batching.Partition(set, batching.Limits{MaxLines: 10, MaxChars: 34})
	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(batches))
	}

	// A budget with room left packs the short cue with its predecessor.
	batches = batching.Partition(set, batching.Limits{MaxLines: 10, MaxChars: 40})
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}
	if got := batches[1].Indices; len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("second batch %v, want [2 3]", got)
	}
}

func TestPartitionOversizedCueGetsOwnBatch(t *testing.T) {
	set := makeSet(strings.Repeat("x", 500), "short")
	batches := batching.Partition(set, batching.Limits{MaxLines: 10, MaxChars: 100})

	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}
	if len(batches[0].Indices) != 1 || batches[0].Indices[0] != 1 {
		t.Fatalf("oversized cue not isolated: %v", batches[0].Indices)
	}
}

func TestPartitionPreservesOrder(t *testing.T) {
	set := makeSet("a", "b", "c", "d", "e", "f")
	batches := batching.Partition(set, batching.Limits{MaxLines: 4})

	var flat []int
	for _, batch := range batches {
		flat = append(flat, batch.Indices...)
	}
	for i := 1; i < len(flat); i++ {
		if flat[i] <= flat[i-1] {
			t.Fatalf("indices out of order: %v", flat)
		}
	}
}

func TestPartitionSectionsNeverSpansGap(t *testing.T) {
	set := makeSet("a", "b", "c", "d")
	// Open a 30s gap between cues 2 and 3.
	set.Cues[2].Start = 40 * time.Second
	set.Cues[2].End = 41 * time.Second
	set.Cues[3].Start = 42 * time.Second
	set.Cues[3].End = 43 * time.Second

	sections := set.Sections(10 * time.Second)
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	batches := batching.PartitionSections(sections, batching.Limits{MaxLines: 10})
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}
	if got := batches[0].Indices; len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("first batch %v, want [1 2]", got)
	}
	if got := batches[1].Indices; len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Fatalf("second batch %v, want [3 4]", got)
	}
}
