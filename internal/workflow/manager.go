package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"dubtrack/internal/batching"
	"dubtrack/internal/config"
	"dubtrack/internal/jobs"
	"dubtrack/internal/language"
	"dubtrack/internal/logging"
	"dubtrack/internal/media"
	"dubtrack/internal/ratelimit"
	"dubtrack/internal/services"
	"dubtrack/internal/services/translate"
	"dubtrack/internal/services/voice"
	"dubtrack/internal/stage"
	"dubtrack/internal/synthesis"
	"dubtrack/internal/timeline"
	"dubtrack/internal/translation"
)

// Input names one unit of work: a subtitle file and, optionally, the video
// it belongs to.
type Input struct {
	SubtitlePath string
	VideoPath    string
}

// Manager drives subtitle files through translation, synthesis, assembly,
// and muxing. Each file is an isolated job: one file failing never stops the
// rest of the run.
type Manager struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *jobs.Store

	target      language.Target
	limits      batching.Limits
	sectionGap  time.Duration
	translator  *translation.Translator
	synthesizer *synthesis.Synthesizer
	assembler   *timeline.Assembler
	muxer       *media.Muxer
	prober      *media.Prober
}

// New wires a manager from configuration. The job store is owned by the
// caller and must outlive the manager.
func New(cfg *config.Config, logger *slog.Logger, store *jobs.Store) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("workflow: config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	target, err := language.ParseTarget(cfg.Translation.TargetLanguage)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "target language", "", err)
	}
	mode, err := translation.ParseMode(cfg.Translation.LineWrapMode)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "line wrap mode", "", err)
	}

	limiter := ratelimit.New()
	if err := limiter.Register(ratelimit.ClassTranslation,
		cfg.Translation.RatePerWindow, secondsToDuration(cfg.Translation.WindowSeconds)); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "translation rate", "", err)
	}
	if err := limiter.Register(ratelimit.ClassSynthesis,
		cfg.Synthesis.RatePerWindow, secondsToDuration(cfg.Synthesis.WindowSeconds)); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "synthesis rate", "", err)
	}

	policies := []translation.Policy{translation.RejectEmptyLines()}
	if cfg.Translation.RejectPassthrough {
		policies = append(policies, translation.RejectPassthrough(0))
	}
	if cfg.Translation.RejectWrongScript {
		policies = append(policies, translation.RejectWrongScript(target, 0))
	}

	translator := translation.New(
		translate.NewClient(translate.Config{
			APIKey:         cfg.Translation.APIKey,
			BaseURL:        cfg.Translation.BaseURL,
			Model:          cfg.Translation.Model,
			TimeoutSeconds: cfg.Translation.TimeoutSeconds,
		}),
		limiter, logger,
		translation.Options{
			Mode:          mode,
			Target:        target,
			RetryAttempts: cfg.Translation.RetryAttempts,
			StripEllipsis: cfg.Translation.StripEllipsis,
			Strict:        cfg.Pipeline.Strict,
			Policies:      policies,
		},
	)

	cacheDir := ""
	if cfg.Synthesis.CacheClips {
		cacheDir = filepath.Join(cfg.Paths.WorkDir, "clips")
	}
	synthesizer, err := synthesis.New(
		voice.NewClient(voice.Config{
			APIKey:         cfg.Synthesis.APIKey,
			BaseURL:        cfg.Synthesis.BaseURL,
			SampleRate:     cfg.Synthesis.SampleRate,
			TimeoutSeconds: cfg.Synthesis.TimeoutSeconds,
		}, voice.WithRetryMaxAttempts(cfg.Synthesis.RetryAttempts)),
		limiter, logger,
		synthesis.Options{
			Voice:               cfg.Synthesis.Voice,
			SimilarityThreshold: cfg.Synthesis.SimilarityThreshold,
			Strict:              cfg.Pipeline.Strict,
			CacheDir:            cacheDir,
		},
	)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "synthesizer", "", err)
	}

	m := &Manager{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "workflow"),
		store:  store,
		target: target,
		limits: batching.Limits{
			MaxLines: cfg.Translation.MaxBatchLines,
			MaxChars: cfg.Translation.MaxBatchChars,
		},
		sectionGap:  secondsToDuration(cfg.Translation.SectionGapSeconds),
		translator:  translator,
		synthesizer: synthesizer,
		assembler: timeline.New(logger, timeline.Options{
			SampleRate:     cfg.Synthesis.SampleRate,
			MaxDrift:       secondsToDuration(cfg.Timeline.MaxDriftSeconds),
			BorrowInterval: secondsToDuration(cfg.Timeline.BorrowIntervalSeconds),
			MinBorrow:      secondsToDuration(cfg.Timeline.MinBorrowSeconds),
		}),
	}
	if cfg.Mux.Enabled {
		m.muxer = media.NewMuxer(cfg.Mux.FfmpegBinary)
		m.prober = media.NewProber(probeBinaryFor(cfg.Mux.FfmpegBinary))
	}
	return m, nil
}

// Run processes every input, isolating per-file failures. The returned error
// joins the failures of individual files; a partial run is not an error for
// the files that succeeded.
func (m *Manager) Run(ctx context.Context, inputs []Input) error {
	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, m.logger)
	var failures []error
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}
		if err := m.processFile(ctx, input); err != nil {
			logger.Error("file failed",
				logging.String("subtitle", input.SubtitlePath),
				logging.Error(err),
			)
			failures = append(failures, fmt.Errorf("%s: %w", input.SubtitlePath, err))
			continue
		}
		logger.Info("file completed", logging.String("subtitle", input.SubtitlePath))
	}
	return errors.Join(failures...)
}

// HealthCheck reports per-stage readiness without touching external services.
func (m *Manager) HealthCheck(ctx context.Context) []stage.Health {
	// The mux stage only joins the plan when a video path is present; probe
	// it here with a placeholder so its health is always reported.
	state := &fileState{m: m, input: Input{VideoPath: "probe"}}
	stages := m.stagesFor(state)
	checks := make([]stage.Health, 0, len(stages))
	for _, ps := range stages {
		checks = append(checks, ps.handler.HealthCheck(ctx))
	}
	return checks
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// probeBinaryFor derives the ffprobe path from a configured ffmpeg path so
// both tools come from the same installation.
func probeBinaryFor(ffmpeg string) string {
	if ffmpeg == "" || ffmpeg == "ffmpeg" {
		return "ffprobe"
	}
	dir, base := filepath.Split(ffmpeg)
	if base == "ffmpeg" {
		return filepath.Join(dir, "ffprobe")
	}
	return "ffprobe"
}
