package config

const (
	defaultWorkDir             = "~/.local/share/dubtrack/work"
	defaultOutputDir           = "~/dubtrack-output"
	defaultLogDir              = "~/.local/share/dubtrack/logs"
	defaultTranslationBaseURL  = "https://openrouter.ai/api/v1/chat/completions"
	defaultTranslationModel    = "google/gemini-3-flash-preview"
	defaultTargetLanguage      = "zh-Hans"
	defaultTranslationTimeout  = 60
	defaultRetryAttempts       = 4
	defaultTranslationRate     = 1
	defaultTranslationWindow   = 1.0
	defaultLineWrapMode        = "html"
	defaultSectionGapSeconds   = 10.0
	defaultMaxBatchLines       = 20
	defaultMaxBatchChars       = 2000
	defaultMergeShortGap       = 1.0
	defaultSynthesisRate       = 3
	defaultSynthesisWindow     = 10.0
	defaultSynthesisTimeout    = 30
	defaultVoice               = "zh-CN-XiaoxiaoNeural"
	defaultSimilarityThreshold = 0.7
	defaultSampleRate          = 24000
	defaultMaxDriftSeconds     = 10.0
	defaultBorrowInterval      = 0.5
	defaultMinBorrow           = 1.0
	defaultFfmpegBinary        = "ffmpeg"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Translation: Translation{
			BaseURL:              defaultTranslationBaseURL,
			Model:                defaultTranslationModel,
			TargetLanguage:       defaultTargetLanguage,
			TimeoutSeconds:       defaultTranslationTimeout,
			RetryAttempts:        defaultRetryAttempts,
			RatePerWindow:        defaultTranslationRate,
			WindowSeconds:        defaultTranslationWindow,
			LineWrapMode:         defaultLineWrapMode,
			SectionGapSeconds:    defaultSectionGapSeconds,
			MaxBatchLines:        defaultMaxBatchLines,
			MaxBatchChars:        defaultMaxBatchChars,
			MergeShortChars:      0,
			MergeShortGapSeconds: defaultMergeShortGap,
			StripEllipsis:        true,
			RejectPassthrough:    false,
			RejectWrongScript:    false,
		},
		Synthesis: Synthesis{
			Voice:               defaultVoice,
			TimeoutSeconds:      defaultSynthesisTimeout,
			RetryAttempts:       defaultRetryAttempts,
			RatePerWindow:       defaultSynthesisRate,
			WindowSeconds:       defaultSynthesisWindow,
			SimilarityThreshold: defaultSimilarityThreshold,
			SampleRate:          defaultSampleRate,
			CacheClips:          true,
		},
		Timeline: Timeline{
			MaxDriftSeconds:       defaultMaxDriftSeconds,
			BorrowIntervalSeconds: defaultBorrowInterval,
			MinBorrowSeconds:      defaultMinBorrow,
		},
		Mux: Mux{
			Enabled:      true,
			FfmpegBinary: defaultFfmpegBinary,
		},
		Pipeline: Pipeline{
			Strict:             false,
			BilingualSubtitles: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
