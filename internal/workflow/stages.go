package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"dubtrack/internal/batching"
	"dubtrack/internal/jobs"
	"dubtrack/internal/logging"
	"dubtrack/internal/media"
	"dubtrack/internal/services"
	"dubtrack/internal/stage"
	"dubtrack/internal/subtitles"
	"dubtrack/internal/synthesis"
)

// fileState carries one file's in-memory artifacts between stages. Each job
// gets its own state; stages run strictly in order.
type fileState struct {
	m     *Manager
	input Input

	set      *subtitles.CueSet
	segments []synthesis.Segment
	master   *media.Clip
	base     string
	audio    string
}

// pipelineStage pairs a stage handler with the job status it runs under.
type pipelineStage struct {
	status  jobs.Status
	handler stage.Handler
}

func (m *Manager) stagesFor(state *fileState) []pipelineStage {
	stages := []pipelineStage{
		{status: jobs.StatusTranslating, handler: &translateStage{state}},
		{status: jobs.StatusSynthesizing, handler: &synthesizeStage{state}},
		{status: jobs.StatusAssembling, handler: &assembleStage{state}},
	}
	if m.muxer != nil && state.input.VideoPath != "" {
		stages = append(stages, pipelineStage{status: jobs.StatusMuxing, handler: &muxStage{state}})
	}
	return stages
}

type translateStage struct {
	state *fileState
}

func (s *translateStage) Prepare(ctx context.Context, job *jobs.Job) error {
	set, err := subtitles.ParseSRTFile(s.state.input.SubtitlePath)
	if err != nil {
		return err
	}
	if err := set.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, "translate", "parse subtitles", "", err)
	}
	cfg := s.state.m.cfg.Translation
	if cfg.MergeShortChars > 0 {
		before := set.Len()
		set.MergeShort(cfg.MergeShortChars, secondsToDuration(cfg.MergeShortGapSeconds))
		if merged := before - set.Len(); merged > 0 {
			logging.WithContext(ctx, s.state.m.logger).Info("merged short cues",
				logging.Int("merged", merged),
			)
		}
	}
	s.state.set = set
	job.CueCount = set.Len()
	return nil
}

func (s *translateStage) Execute(ctx context.Context, job *jobs.Job) error {
	m := s.state.m
	sections := s.state.set.Sections(m.sectionGap)
	batches := batching.PartitionSections(sections, m.limits)
	logging.WithContext(ctx, m.logger).Info("cues batched",
		logging.Int("cues", s.state.set.Len()),
		logging.Int("sections", len(sections)),
		logging.Int("batches", len(batches)),
	)
	stats, err := m.translator.Translate(ctx, s.state.set, batches)
	job.BisectedBatches = stats.BisectedBatches
	job.FallbackCues = stats.FallbackCues
	return err
}

func (s *translateStage) HealthCheck(ctx context.Context) stage.Health {
	if strings.TrimSpace(s.state.m.cfg.Translation.APIKey) == "" {
		return stage.Unhealthy("translate", "api key not configured")
	}
	return stage.Healthy("translate")
}

type synthesizeStage struct {
	state *fileState
}

func (s *synthesizeStage) Prepare(ctx context.Context, job *jobs.Job) error {
	if s.state.set == nil || !s.state.set.Translated() {
		return errors.New("synthesize: translation incomplete")
	}
	return nil
}

func (s *synthesizeStage) Execute(ctx context.Context, job *jobs.Job) error {
	segments, err := s.state.m.synthesizer.Run(ctx, s.state.set)
	if err != nil {
		return err
	}
	s.state.segments = segments
	for _, segment := range segments {
		if segment.Desynced {
			job.DesyncedCues++
		}
	}
	return nil
}

func (s *synthesizeStage) HealthCheck(ctx context.Context) stage.Health {
	if strings.TrimSpace(s.state.m.cfg.Synthesis.APIKey) == "" {
		return stage.Unhealthy("synthesize", "api key not configured")
	}
	return stage.Healthy("synthesize")
}

type assembleStage struct {
	state *fileState
}

func (s *assembleStage) Prepare(ctx context.Context, job *jobs.Job) error {
	if len(s.state.segments) == 0 {
		return errors.New("assemble: no synthesized segments")
	}
	base := filepath.Base(s.state.input.SubtitlePath)
	s.state.base = strings.TrimSuffix(base, filepath.Ext(base))
	return nil
}

func (s *assembleStage) Execute(ctx context.Context, job *jobs.Job) error {
	m := s.state.m
	logger := logging.WithContext(ctx, m.logger)

	minTotal := s.minTrackDuration(ctx, logger)
	master, report, err := m.assembler.Assemble(s.state.set, s.state.segments, minTotal)
	if err != nil {
		return err
	}
	s.state.master = master
	logger.Info("master track assembled",
		logging.Duration("duration", master.Duration()),
		logging.Duration("max_drift", report.MaxDrift),
		logging.Duration("borrowed", report.TotalBorrowed),
	)

	s.state.audio = filepath.Join(m.cfg.Paths.OutputDir, s.state.base+".dub.wav")
	if err := media.WriteWAVFile(s.state.audio, master); err != nil {
		return err
	}
	job.AudioFile = s.state.audio

	translated := filepath.Join(m.cfg.Paths.OutputDir, s.state.base+".dub.srt")
	if err := subtitles.WriteTranslatedSRT(translated, s.state.set); err != nil {
		return err
	}
	if m.cfg.Pipeline.BilingualSubtitles {
		bilingual := filepath.Join(m.cfg.Paths.OutputDir, s.state.base+".bilingual.srt")
		if err := subtitles.WriteBilingualSRT(bilingual, s.state.set); err != nil {
			return err
		}
	}
	return nil
}

// minTrackDuration picks the target length for the master track: at least
// the last cue's end, extended to the video's own duration when it can be
// probed. An unprobeable video degrades to cue bounds with a warning.
func (s *assembleStage) minTrackDuration(ctx context.Context, logger *slog.Logger) time.Duration {
	m := s.state.m
	_, end := s.state.set.Bounds()
	if m.prober == nil || s.state.input.VideoPath == "" {
		return end
	}
	probed, err := m.prober.Duration(ctx, s.state.input.VideoPath)
	if err != nil {
		logger.Warn("video duration probe failed, using cue bounds", logging.Error(err))
		return end
	}
	if probed > end {
		return probed
	}
	return end
}

func (s *assembleStage) HealthCheck(ctx context.Context) stage.Health {
	if err := s.state.m.cfg.EnsureDirectories(); err != nil {
		return stage.Unhealthy("assemble", err.Error())
	}
	return stage.Healthy("assemble")
}

type muxStage struct {
	state *fileState
}

func (s *muxStage) Prepare(ctx context.Context, job *jobs.Job) error {
	if s.state.audio == "" {
		return errors.New("mux: master track missing")
	}
	return nil
}

func (s *muxStage) Execute(ctx context.Context, job *jobs.Job) error {
	m := s.state.m
	output := filepath.Join(m.cfg.Paths.OutputDir,
		s.state.base+".dubbed"+filepath.Ext(s.state.input.VideoPath))
	if err := m.muxer.Mux(ctx, s.state.input.VideoPath, s.state.audio, output); err != nil {
		return err
	}
	job.OutputFile = output
	return nil
}

func (s *muxStage) HealthCheck(ctx context.Context) stage.Health {
	binary := s.state.m.muxer.Binary
	if _, err := exec.LookPath(binary); err != nil {
		return stage.Unhealthy("mux", fmt.Sprintf("%s not found in PATH", binary))
	}
	return stage.Healthy("mux")
}
