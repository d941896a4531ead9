// Package logging configures structured logging for dubtrack.
//
// It wraps log/slog with a human-readable console handler and a JSON
// handler, plus helpers for building attributes and deriving standard
// fields (job, stage, cue) from a context.
package logging
