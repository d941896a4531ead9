package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"dubtrack/internal/jobs"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect recorded dubbing jobs",
	}
	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsSummaryCommand(ctx))
	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No jobs recorded")
				return nil
			}

			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(list))
			for _, job := range list {
				rows = append(rows, []string{
					shortKey(job.JobKey),
					filepath.Base(job.SubtitlePath),
					renderStatus(job.Status, colorize),
					strconv.Itoa(job.CueCount),
					strconv.Itoa(job.DesyncedCues),
					strconv.Itoa(job.FallbackCues),
					job.UpdatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"JOB", "SUBTITLE", "STATUS", "CUES", "DESYNC", "FALLBACK", "UPDATED"},
				rows,
				3, 4, 5, // numeric columns
			))
			return nil
		},
	}
}

func newJobsSummaryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show aggregate job counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			summary, err := store.Summarize(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total:      %d\n", summary.Total)
			fmt.Fprintf(out, "Pending:    %d\n", summary.Pending)
			fmt.Fprintf(out, "Processing: %d\n", summary.Processing)
			fmt.Fprintf(out, "Completed:  %d\n", summary.Completed)
			fmt.Fprintf(out, "Failed:     %d\n", summary.Failed)
			return nil
		},
	}
}

func shortKey(key string) string {
	if len(key) > 8 {
		return key[:8]
	}
	return key
}

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func renderStatus(status jobs.Status, colorize bool) string {
	if !colorize {
		return string(status)
	}
	switch status {
	case jobs.StatusCompleted:
		return ansiGreen + string(status) + ansiReset
	case jobs.StatusFailed:
		return ansiRed + string(status) + ansiReset
	case jobs.StatusPending:
		return string(status)
	default:
		return ansiYellow + string(status) + ansiReset
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
