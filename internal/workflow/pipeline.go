package workflow

import (
	"context"
	"fmt"

	"dubtrack/internal/jobs"
	"dubtrack/internal/logging"
	"dubtrack/internal/services"
)

func (m *Manager) processFile(ctx context.Context, input Input) error {
	job, err := m.store.Create(ctx, input.SubtitlePath, input.VideoPath)
	if err != nil {
		return err
	}
	ctx = services.WithJobID(ctx, job.JobKey)
	logger := logging.WithContext(ctx, m.logger)

	if err := m.runPipeline(ctx, job, input); err != nil {
		job.Status = jobs.StatusFailed
		job.ErrorMessage = err.Error()
		if updateErr := m.store.Update(ctx, job); updateErr != nil {
			logger.Warn("failed to record job failure", logging.Error(updateErr))
		}
		return err
	}
	return nil
}

func (m *Manager) runPipeline(ctx context.Context, job *jobs.Job, input Input) error {
	state := &fileState{m: m, input: input}
	for _, ps := range m.stagesFor(state) {
		if err := m.advance(ctx, job, ps.status); err != nil {
			return err
		}
		stageCtx := services.WithStage(ctx, string(ps.status))
		if err := ps.handler.Prepare(stageCtx, job); err != nil {
			return err
		}
		if err := ps.handler.Execute(stageCtx, job); err != nil {
			return err
		}
	}
	return m.advance(ctx, job, jobs.StatusCompleted)
}

func (m *Manager) advance(ctx context.Context, job *jobs.Job, status jobs.Status) error {
	job.Status = status
	if err := m.store.Update(ctx, job); err != nil {
		return fmt.Errorf("advance to %s: %w", status, err)
	}
	return nil
}
