package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dubtrack/internal/logging"
	"dubtrack/internal/workflow"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check stage readiness without contacting external services",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			manager, err := workflow.New(cfg, logging.NewNop(), store)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			unhealthy := 0
			for _, health := range manager.HealthCheck(cmd.Context()) {
				label := "OK"
				color := ansiGreen
				if !health.Ready {
					label = "ERROR"
					color = ansiRed
					unhealthy++
				}
				line := fmt.Sprintf("  %-14s [%s]", health.Name+":", label)
				if health.Detail != "" {
					line += " " + health.Detail
				}
				if colorize {
					line = color + line + ansiReset
				}
				fmt.Fprintln(out, line)
			}
			if unhealthy > 0 {
				return errors.New("one or more stages are not ready")
			}
			return nil
		},
	}
}
