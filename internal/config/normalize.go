package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranslation()
	c.normalizeSynthesis()
	c.normalizeMux()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTranslation() {
	if c.Translation.APIKey == "" {
		if value, ok := os.LookupEnv("DUBTRACK_TRANSLATION_API_KEY"); ok {
			c.Translation.APIKey = strings.TrimSpace(value)
		}
	}
	c.Translation.BaseURL = strings.TrimSpace(c.Translation.BaseURL)
	if c.Translation.BaseURL == "" {
		c.Translation.BaseURL = defaultTranslationBaseURL
	}
	c.Translation.Model = strings.TrimSpace(c.Translation.Model)
	c.Translation.TargetLanguage = strings.TrimSpace(c.Translation.TargetLanguage)
	c.Translation.LineWrapMode = strings.ToLower(strings.TrimSpace(c.Translation.LineWrapMode))
	if c.Translation.LineWrapMode == "" {
		c.Translation.LineWrapMode = defaultLineWrapMode
	}
	if c.Translation.RetryAttempts <= 0 {
		c.Translation.RetryAttempts = defaultRetryAttempts
	}
	if c.Translation.MaxBatchLines <= 0 {
		c.Translation.MaxBatchLines = defaultMaxBatchLines
	}
}

func (c *Config) normalizeSynthesis() {
	if c.Synthesis.APIKey == "" {
		if value, ok := os.LookupEnv("DUBTRACK_SYNTHESIS_API_KEY"); ok {
			c.Synthesis.APIKey = strings.TrimSpace(value)
		}
	}
	c.Synthesis.BaseURL = strings.TrimSpace(c.Synthesis.BaseURL)
	c.Synthesis.Voice = strings.TrimSpace(c.Synthesis.Voice)
	if c.Synthesis.RetryAttempts <= 0 {
		c.Synthesis.RetryAttempts = defaultRetryAttempts
	}
	if c.Synthesis.SampleRate <= 0 {
		c.Synthesis.SampleRate = defaultSampleRate
	}
}

func (c *Config) normalizeMux() {
	c.Mux.FfmpegBinary = strings.TrimSpace(c.Mux.FfmpegBinary)
	if c.Mux.FfmpegBinary == "" {
		c.Mux.FfmpegBinary = defaultFfmpegBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
