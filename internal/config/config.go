package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Translation contains settings for the LLM translation service.
type Translation struct {
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	TargetLanguage string  `toml:"target_language"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RetryAttempts  int     `toml:"retry_attempts"`
	RatePerWindow  float64 `toml:"rate_per_window"`
	WindowSeconds  float64 `toml:"window_seconds"`
	// LineWrapMode selects the batch payload encoding: "plain" for
	// newline-delimited lines, "html" to wrap each line in an indexed tag so
	// the model cannot merge or reflow lines undetected.
	LineWrapMode string `toml:"line_wrap_mode"`
	// SectionGapSeconds splits the cue set at silence gaps longer than this
	// before batching, so batches never span scene boundaries.
	SectionGapSeconds float64 `toml:"section_gap_seconds"`
	MaxBatchLines     int     `toml:"max_batch_lines"`
	MaxBatchChars     int     `toml:"max_batch_chars"`
	// MergeShortChars joins cues shorter than this many characters with an
	// adjacent cue before batching. Zero disables merging.
	MergeShortChars      int     `toml:"merge_short_chars"`
	MergeShortGapSeconds float64 `toml:"merge_short_gap_seconds"`
	StripEllipsis        bool    `toml:"strip_ellipsis"`
	RejectPassthrough    bool    `toml:"reject_passthrough"`
	RejectWrongScript    bool    `toml:"reject_wrong_script"`
}

// Synthesis contains settings for the voice synthesis service.
type Synthesis struct {
	APIKey              string  `toml:"api_key"`
	BaseURL             string  `toml:"base_url"`
	Voice               string  `toml:"voice"`
	TimeoutSeconds      int     `toml:"timeout_seconds"`
	RetryAttempts       int     `toml:"retry_attempts"`
	RatePerWindow       float64 `toml:"rate_per_window"`
	WindowSeconds       float64 `toml:"window_seconds"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	SampleRate          int     `toml:"sample_rate"`
	CacheClips          bool    `toml:"cache_clips"`
}

// Timeline contains settings for master track assembly.
type Timeline struct {
	MaxDriftSeconds       float64 `toml:"max_drift_seconds"`
	BorrowIntervalSeconds float64 `toml:"borrow_interval_seconds"`
	MinBorrowSeconds      float64 `toml:"min_borrow_seconds"`
}

// Mux contains settings for the external media muxer.
type Mux struct {
	Enabled      bool   `toml:"enabled"`
	FfmpegBinary string `toml:"ffmpeg_binary"`
}

// Pipeline contains cross-stage behavior switches.
type Pipeline struct {
	// Strict escalates desync warnings and unrecoverable single-cue
	// translation failures to file-level errors.
	Strict bool `toml:"strict"`
	// BilingualSubtitles writes a subtitle artifact carrying both source and
	// translated text next to the master track.
	BilingualSubtitles bool `toml:"bilingual_subtitles"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for dubtrack.
//
// Configuration sections by subsystem:
//   - Paths: work, output, and log directories
//   - Translation: LLM service connection, batching, and strictness policy
//   - Synthesis: voice service connection and echo verification
//   - Timeline: drift limits and time-borrow smoothing
//   - Mux: external ffmpeg muxing
//   - Pipeline: strict mode and output artifacts
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Translation Translation `toml:"translation"`
	Synthesis   Synthesis   `toml:"synthesis"`
	Timeline    Timeline    `toml:"timeline"`
	Mux         Mux         `toml:"mux"`
	Pipeline    Pipeline    `toml:"pipeline"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/dubtrack/config.toml")
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// ExpandPath resolves ~ prefixes and makes the path absolute.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("dubtrack.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the work, output, and log directories if needed.
func (c *Config) EnsureDirectories() error {
	for name, dir := range map[string]string{
		"work_dir":   c.Paths.WorkDir,
		"output_dir": c.Paths.OutputDir,
		"log_dir":    c.Paths.LogDir,
	} {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("paths.%s must be set", name)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return filepath.Abs(trimmed)
}
