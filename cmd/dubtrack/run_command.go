package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"dubtrack/internal/config"
	"dubtrack/internal/logging"
	"dubtrack/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var videoPath string

	cmd := &cobra.Command{
		Use:   "run <subtitle.srt> [subtitle.srt...]",
		Short: "Translate, synthesize, and assemble dubbed audio for subtitle files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if videoPath != "" && len(args) > 1 {
				return errors.New("--video applies to a single subtitle file")
			}

			inputs := make([]workflow.Input, 0, len(args))
			for _, arg := range args {
				subtitle, err := config.ExpandPath(arg)
				if err != nil {
					return err
				}
				inputs = append(inputs, workflow.Input{SubtitlePath: subtitle})
			}
			if videoPath != "" {
				video, err := config.ExpandPath(videoPath)
				if err != nil {
					return err
				}
				inputs[0].VideoPath = video
			}

			logger, err := newRunLogger(cfg)
			if err != nil {
				return err
			}

			lock := flock.New(filepath.Join(cfg.Paths.WorkDir, "dubtrack.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !locked {
				return errors.New("another dubtrack run is already in progress")
			}
			defer func() { _ = lock.Unlock() }()

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if reset, err := store.ResetStale(runCtx, "interrupted by previous shutdown"); err != nil {
				logger.Warn("failed to reset stale jobs", logging.Error(err))
			} else if reset > 0 {
				logger.Info("reset stale jobs", logging.Int64("count", reset))
			}

			manager, err := workflow.New(cfg, logger, store)
			if err != nil {
				return err
			}
			return manager.Run(runCtx, inputs)
		},
	}

	cmd.Flags().StringVar(&videoPath, "video", "", "Video file to mux the dubbed track into")
	return cmd
}

func newRunLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr", filepath.Join(cfg.Paths.LogDir, "dubtrack.log")},
	})
}
