package translation

import (
	"fmt"
	"strings"
	"testing"
)

func TestEncodePayloadHTML(t *testing.T) {
	got := EncodePayload(ModeHTML, []string{"first", "second"})
	want := "<L1>first</L1>\n<L2>second</L2>"
	if got != want {
		t.Fatalf("EncodePayload = %q, want %q", got, want)
	}
}

func TestEncodePayloadPlain(t *testing.T) {
	got := EncodePayload(ModePlain, []string{"first", "second"})
	if got != "first\nsecond" {
		t.Fatalf("EncodePayload = %q", got)
	}
}

func TestDecodePayloadHTML(t *testing.T) {
	lines, err := DecodePayload(ModeHTML, "<L1>uno</L1>\n<L2>dos</L2>", 2)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if lines[0] != "uno" || lines[1] != "dos" {
		t.Fatalf("lines = %v", lines)
	}
}

func TestDecodePayloadHTMLRejectsMergedTags(t *testing.T) {
	// A model that merged two lines into one tag.
	if _, err := DecodePayload(ModeHTML, "<L1>uno dos</L1>", 2); err == nil {
		t.Fatal("expected tag count error")
	}
}

func TestDecodePayloadHTMLRejectsMismatchedTags(t *testing.T) {
	if _, err := DecodePayload(ModeHTML, "<L1>uno</L2>\n<L2>dos</L1>", 2); err == nil {
		t.Fatal("expected tag mismatch error")
	}
}

func TestDecodePayloadPlainCountMismatch(t *testing.T) {
	if _, err := DecodePayload(ModePlain, "only one line", 2); err == nil {
		t.Fatal("expected line count error")
	}
}

func TestDecodePayloadPlainSkipsBlankLines(t *testing.T) {
	lines, err := DecodePayload(ModePlain, "uno\n\n\ndos\n", 2)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %v", lines)
	}
}

func TestParseMode(t *testing.T) {
	if mode, err := ParseMode(""); err != nil || mode != ModeHTML {
		t.Fatalf("ParseMode(\"\") = %v, %v", mode, err)
	}
	if mode, err := ParseMode("PLAIN"); err != nil || mode != ModePlain {
		t.Fatalf("ParseMode(PLAIN) = %v, %v", mode, err)
	}
	if _, err := ParseMode("xml"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestRejectEmptyLines(t *testing.T) {
	policy := RejectEmptyLines()
	if err := policy([]string{"text"}, []string{"  "}); err == nil {
		t.Fatal("expected rejection")
	}
	if err := policy([]string{"text"}, []string{"ok"}); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
}

func TestRejectPassthrough(t *testing.T) {
	policy := RejectPassthrough(0.95)
	source := []string{"this sentence is long enough to matter"}
	if err := policy(source, source); err == nil {
		t.Fatal("expected passthrough rejection")
	}
	if err := policy(source, []string{"dieser satz wurde tatsaechlich uebersetzt"}); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	// Short lines are exempt even when identical.
	if err := policy([]string{"OK"}, []string{"OK"}); err != nil {
		t.Fatalf("short line rejected: %v", err)
	}
}

func TestDecodeHTMLTrimsWhitespace(t *testing.T) {
	lines, err := DecodePayload(ModeHTML, "<L1>  padded  </L1>", 1)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if lines[0] != "padded" {
		t.Fatalf("line = %q", lines[0])
	}
}

func TestDecodeHTMLLongPayload(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 25; i++ {
		if i > 1 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "<L%d>line</L%d>", i, i)
	}
	lines, err := DecodePayload(ModeHTML, b.String(), 25)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if len(lines) != 25 {
		t.Fatalf("got %d lines", len(lines))
	}
}
