package language_test

import (
	"testing"

	"dubtrack/internal/language"
)

func TestParseTarget(t *testing.T) {
	cases := []struct {
		value  string
		script string
	}{
		{"zh-Hans", "Hans"},
		{"zh-Hant", "Hant"},
		{"ja", "Jpan"},
		{"ko", "Kore"},
		{"de", "Latn"},
		{"ru", "Cyrl"},
	}
	for _, tc := range cases {
		target, err := language.ParseTarget(tc.value)
		if err != nil {
			t.Fatalf("ParseTarget(%q): %v", tc.value, err)
		}
		if target.Script != tc.script {
			t.Errorf("ParseTarget(%q).Script = %q, want %q", tc.value, target.Script, tc.script)
		}
	}
}

func TestParseTargetRejectsGarbage(t *testing.T) {
	if _, err := language.ParseTarget(""); err == nil {
		t.Fatal("expected error for empty value")
	}
	if _, err := language.ParseTarget("!!"); err == nil {
		t.Fatal("expected error for invalid tag")
	}
}

func TestDisplayName(t *testing.T) {
	target, err := language.ParseTarget("zh-Hans")
	if err != nil {
		t.Fatalf("ParseTarget: %v", err)
	}
	if name := target.DisplayName(); name == "" || name == "zh-Hans" {
		t.Fatalf("DisplayName = %q, want a human-readable name", name)
	}
}

func TestScriptShare(t *testing.T) {
	if share := language.ScriptShare("你好世界", "Hans"); share != 1 {
		t.Fatalf("all-Han share = %v, want 1", share)
	}
	if share := language.ScriptShare("hello world", "Hans"); share != 0 {
		t.Fatalf("all-Latin share against Hans = %v, want 0", share)
	}
	if share := language.ScriptShare("你好 ok", "Hans"); share <= 0.4 || share >= 0.6 {
		t.Fatalf("mixed share = %v, want about 0.5", share)
	}
	// No letters means no signal.
	if share := language.ScriptShare("123 ...", "Hans"); share != 1 {
		t.Fatalf("no-letter share = %v, want 1", share)
	}
}

func TestScriptKnown(t *testing.T) {
	if !language.ScriptKnown("Latn") {
		t.Fatal("Latn should be known")
	}
	if language.ScriptKnown("Xyzz") {
		t.Fatal("Xyzz should be unknown")
	}
}
