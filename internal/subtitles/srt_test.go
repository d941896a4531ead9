package subtitles_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dubtrack/internal/subtitles"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:03,500
First line

2
00:00:04,000 --> 00:00:06,000
Second line
continues here

3
00:00:30,000 --> 00:00:32,000
Third line
`

func TestParseSRT(t *testing.T) {
	set, err := subtitles.ParseSRT(strings.NewReader(sampleSRT))
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if set.Len() != 3 {
		t.Fatalf("got %d cues, want 3", set.Len())
	}
	first := set.Cues[0]
	if first.Index != 1 || first.Start != time.Second || first.End != 3500*time.Millisecond {
		t.Fatalf("unexpected first cue: %+v", first)
	}
	if got := set.Cues[1].Text; got != "Second line continues here" {
		t.Fatalf("multiline text %q, want joined with space", got)
	}
}

func TestParseSRTReassignsSparseIndices(t *testing.T) {
	sparse := `7
00:00:01,000 --> 00:00:02,000
One

42
00:00:03,000 --> 00:00:04,000
Two
`
	set, err := subtitles.ParseSRT(strings.NewReader(sparse))
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if set.Cues[0].Index != 1 || set.Cues[1].Index != 2 {
		t.Fatalf("indices not reassigned: %d, %d", set.Cues[0].Index, set.Cues[1].Index)
	}
}

func TestParseSRTStripsByteOrderMark(t *testing.T) {
	set, err := subtitles.ParseSRT(strings.NewReader("\uFEFF" + sampleSRT))
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if set.Len() != 3 {
		t.Fatalf("got %d cues, want 3", set.Len())
	}
	if set.Cues[0].Index != 1 {
		t.Fatalf("first index %d, want 1", set.Cues[0].Index)
	}
}

func TestParseSRTToleratesPeriodMilliseconds(t *testing.T) {
	dotted := `1
00:00:01.250 --> 00:00:02.750
Text
`
	set, err := subtitles.ParseSRT(strings.NewReader(dotted))
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if set.Cues[0].Start != 1250*time.Millisecond {
		t.Fatalf("start %v, want 1.25s", set.Cues[0].Start)
	}
}

func TestParseSRTRejectsOverlapOrdering(t *testing.T) {
	backwards := `1
00:00:10,000 --> 00:00:12,000
Later

2
00:00:01,000 --> 00:00:02,000
Earlier
`
	if _, err := subtitles.ParseSRT(strings.NewReader(backwards)); err == nil {
		t.Fatal("expected ordering error")
	}
}

func TestValidateRejectsBackwardsCue(t *testing.T) {
	set := &subtitles.CueSet{Cues: []subtitles.Cue{
		{Index: 1, Start: 2 * time.Second, End: time.Second, Text: "x"},
	}}
	if err := set.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestByIndexSparse(t *testing.T) {
	set := &subtitles.CueSet{Cues: []subtitles.Cue{
		{Index: 3, Start: 1 * time.Second, End: 2 * time.Second, Text: "a"},
		{Index: 5, Start: 3 * time.Second, End: 4 * time.Second, Text: "b"},
	}}
	if cue := set.ByIndex(5); cue == nil || cue.Text != "b" {
		t.Fatalf("ByIndex(5) = %+v", cue)
	}
	if cue := set.ByIndex(4); cue != nil {
		t.Fatalf("ByIndex(4) = %+v, want nil", cue)
	}
}

func TestMergeShortJoinsFragments(t *testing.T) {
	set := &subtitles.CueSet{Cues: []subtitles.Cue{
		{Index: 1, Start: 0, End: time.Second, Text: "I was"},
		{Index: 2, Start: 1200 * time.Millisecond, End: 2 * time.Second, Text: "just about to say that"},
		{Index: 3, Start: 10 * time.Second, End: 11 * time.Second, Text: "far away"},
	}}
	set.MergeShort(10, 500*time.Millisecond)

	if set.Len() != 2 {
		t.Fatalf("got %d cues, want 2", set.Len())
	}
	first := set.Cues[0]
	if first.Text != "I was just about to say that" {
		t.Fatalf("merged text %q", first.Text)
	}
	if first.Start != 0 || first.End != 2*time.Second {
		t.Fatalf("merged span %v..%v", first.Start, first.End)
	}
	// Indices stay dense after merging.
	if set.Cues[0].Index != 1 || set.Cues[1].Index != 2 {
		t.Fatalf("indices %d, %d", set.Cues[0].Index, set.Cues[1].Index)
	}
}

func TestMergeShortRespectsGapAndDisable(t *testing.T) {
	cues := []subtitles.Cue{
		{Index: 1, Start: 0, End: time.Second, Text: "short"},
		{Index: 2, Start: 5 * time.Second, End: 6 * time.Second, Text: "also short"},
	}
	set := &subtitles.CueSet{Cues: append([]subtitles.Cue(nil), cues...)}
	set.MergeShort(20, 500*time.Millisecond)
	if set.Len() != 2 {
		t.Fatal("cues across a wide gap must not merge")
	}

	set = &subtitles.CueSet{Cues: append([]subtitles.Cue(nil), cues...)}
	set.MergeShort(0, time.Hour)
	if set.Len() != 2 {
		t.Fatal("zero minChars must disable merging")
	}
}

func TestSectionsShareBackingStorage(t *testing.T) {
	set, err := subtitles.ParseSRT(strings.NewReader(sampleSRT))
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	sections := set.Sections(10 * time.Second)
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	sections[1].Cues[0].Translated = "translated"
	if set.Cues[2].Translated != "translated" {
		t.Fatal("section write did not land in original set")
	}
}

func TestWriteTranslatedSRTRoundTrip(t *testing.T) {
	set, err := subtitles.ParseSRT(strings.NewReader(sampleSRT))
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	set.Cues[0].Translated = "Erste Zeile"
	set.Cues[1].Translated = "Zweite Zeile"
	// Third cue stays untranslated and must fall back to source text.

	path := filepath.Join(t.TempDir(), "out.srt")
	if err := subtitles.WriteTranslatedSRT(path, set); err != nil {
		t.Fatalf("WriteTranslatedSRT: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "Erste Zeile") {
		t.Fatal("translated text missing")
	}
	if !strings.Contains(text, "Third line") {
		t.Fatal("fallback source text missing")
	}
	if !strings.Contains(text, "00:00:01,000 --> 00:00:03,500") {
		t.Fatal("timecodes not preserved")
	}

	reparsed, err := subtitles.ParseSRTFile(path)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if reparsed.Len() != set.Len() {
		t.Fatalf("reparsed %d cues, want %d", reparsed.Len(), set.Len())
	}
}

func TestWriteBilingualSRT(t *testing.T) {
	set := &subtitles.CueSet{Cues: []subtitles.Cue{
		{Index: 1, Start: time.Second, End: 2 * time.Second, Text: "source", Translated: "target"},
	}}
	path := filepath.Join(t.TempDir(), "bi.srt")
	if err := subtitles.WriteBilingualSRT(path, set); err != nil {
		t.Fatalf("WriteBilingualSRT: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "target\nsource") {
		t.Fatalf("bilingual layout wrong:\n%s", data)
	}
}
