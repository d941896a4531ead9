package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranslation(); err != nil {
		return err
	}
	if err := c.validateSynthesis(); err != nil {
		return err
	}
	if err := c.validateTimeline(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTranslation() error {
	if c.Translation.Model == "" {
		return errors.New("translation.model must be set")
	}
	if c.Translation.TargetLanguage == "" {
		return errors.New("translation.target_language must be set")
	}
	switch c.Translation.LineWrapMode {
	case "plain", "html":
	default:
		return fmt.Errorf("translation.line_wrap_mode must be \"plain\" or \"html\", got %q", c.Translation.LineWrapMode)
	}
	if c.Translation.RatePerWindow <= 0 {
		return errors.New("translation.rate_per_window must be positive")
	}
	if c.Translation.WindowSeconds <= 0 {
		return errors.New("translation.window_seconds must be positive")
	}
	if c.Translation.MaxBatchLines <= 0 {
		return errors.New("translation.max_batch_lines must be positive")
	}
	if c.Translation.MaxBatchChars < 0 {
		return errors.New("translation.max_batch_chars must not be negative")
	}
	if c.Translation.SectionGapSeconds < 0 {
		return errors.New("translation.section_gap_seconds must not be negative")
	}
	if c.Translation.MergeShortChars < 0 {
		return errors.New("translation.merge_short_chars must not be negative")
	}
	if c.Translation.MergeShortGapSeconds < 0 {
		return errors.New("translation.merge_short_gap_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateSynthesis() error {
	if c.Synthesis.Voice == "" {
		return errors.New("synthesis.voice must be set")
	}
	if c.Synthesis.RatePerWindow <= 0 {
		return errors.New("synthesis.rate_per_window must be positive")
	}
	if c.Synthesis.WindowSeconds <= 0 {
		return errors.New("synthesis.window_seconds must be positive")
	}
	if c.Synthesis.SimilarityThreshold < 0 || c.Synthesis.SimilarityThreshold > 1 {
		return errors.New("synthesis.similarity_threshold must be between 0 and 1")
	}
	if c.Synthesis.SampleRate <= 0 {
		return errors.New("synthesis.sample_rate must be positive")
	}
	return nil
}

func (c *Config) validateTimeline() error {
	if c.Timeline.MaxDriftSeconds < 0 {
		return errors.New("timeline.max_drift_seconds must not be negative")
	}
	if c.Timeline.BorrowIntervalSeconds < 0 {
		return errors.New("timeline.borrow_interval_seconds must not be negative")
	}
	if c.Timeline.MinBorrowSeconds < 0 {
		return errors.New("timeline.min_borrow_seconds must not be negative")
	}
	return nil
}
