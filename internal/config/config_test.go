package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("DUBTRACK_TRANSLATION_API_KEY", "")
	t.Setenv("DUBTRACK_SYNTHESIS_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("nonexistent config reported as existing")
	}
	if resolved != path {
		t.Fatalf("resolved path %q, want %q", resolved, path)
	}
	if cfg.Translation.Model != defaultTranslationModel {
		t.Fatalf("model %q", cfg.Translation.Model)
	}
	if cfg.Translation.LineWrapMode != "html" {
		t.Fatalf("line wrap mode %q", cfg.Translation.LineWrapMode)
	}
	if cfg.Synthesis.SampleRate != defaultSampleRate {
		t.Fatalf("sample rate %d", cfg.Synthesis.SampleRate)
	}
	if !filepath.IsAbs(cfg.Paths.WorkDir) {
		t.Fatalf("work dir not expanded: %q", cfg.Paths.WorkDir)
	}
	if strings.HasPrefix(cfg.Paths.OutputDir, "~") {
		t.Fatalf("output dir not expanded: %q", cfg.Paths.OutputDir)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
work_dir = "` + filepath.Join(dir, "work") + `"
output_dir = "` + filepath.Join(dir, "out") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[translation]
api_key = "from-file"
target_language = "ja"
line_wrap_mode = "plain"
max_batch_lines = 5

[synthesis]
voice = "ja-JP-NanamiNeural"
similarity_threshold = 0.85

[pipeline]
strict = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("config file not detected")
	}
	if cfg.Translation.APIKey != "from-file" {
		t.Fatalf("api key %q", cfg.Translation.APIKey)
	}
	if cfg.Translation.TargetLanguage != "ja" {
		t.Fatalf("target language %q", cfg.Translation.TargetLanguage)
	}
	if cfg.Translation.LineWrapMode != "plain" {
		t.Fatalf("line wrap mode %q", cfg.Translation.LineWrapMode)
	}
	if cfg.Translation.MaxBatchLines != 5 {
		t.Fatalf("max batch lines %d", cfg.Translation.MaxBatchLines)
	}
	if cfg.Synthesis.Voice != "ja-JP-NanamiNeural" {
		t.Fatalf("voice %q", cfg.Synthesis.Voice)
	}
	if cfg.Synthesis.SimilarityThreshold != 0.85 {
		t.Fatalf("similarity threshold %v", cfg.Synthesis.SimilarityThreshold)
	}
	if !cfg.Pipeline.Strict {
		t.Fatal("strict not set")
	}
	// Sections absent from the file keep their defaults.
	if cfg.Mux.FfmpegBinary != defaultFfmpegBinary {
		t.Fatalf("ffmpeg binary %q", cfg.Mux.FfmpegBinary)
	}
}

func TestLoadFallsBackToEnvironmentKeys(t *testing.T) {
	t.Setenv("DUBTRACK_TRANSLATION_API_KEY", " env-translate ")
	t.Setenv("DUBTRACK_SYNTHESIS_API_KEY", "env-voice")

	cfg, _, _, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Translation.APIKey != "env-translate" {
		t.Fatalf("translation key %q, want trimmed env value", cfg.Translation.APIKey)
	}
	if cfg.Synthesis.APIKey != "env-voice" {
		t.Fatalf("synthesis key %q", cfg.Synthesis.APIKey)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty model", func(c *Config) { c.Translation.Model = "" }},
		{"empty target language", func(c *Config) { c.Translation.TargetLanguage = "" }},
		{"bad wrap mode", func(c *Config) { c.Translation.LineWrapMode = "xml" }},
		{"zero translation rate", func(c *Config) { c.Translation.RatePerWindow = 0 }},
		{"zero batch lines", func(c *Config) { c.Translation.MaxBatchLines = 0 }},
		{"empty voice", func(c *Config) { c.Synthesis.Voice = "" }},
		{"threshold above one", func(c *Config) { c.Synthesis.SimilarityThreshold = 1.5 }},
		{"zero sample rate", func(c *Config) { c.Synthesis.SampleRate = 0 }},
		{"negative borrow interval", func(c *Config) { c.Timeline.BorrowIntervalSeconds = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample config not detected")
	}
	if cfg.Translation.Model == "" {
		t.Fatal("sample config missing model")
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	expanded, err := ExpandPath("~/somewhere")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if expanded != filepath.Join(home, "somewhere") {
		t.Fatalf("expanded %q", expanded)
	}
	if got, err := ExpandPath(""); err != nil || got != "" {
		t.Fatalf("ExpandPath(\"\") = %q, %v", got, err)
	}
}
