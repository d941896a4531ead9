// Package jobs persists per-file pipeline state in SQLite so interrupted runs
// can be inspected and reported after the fact.
package jobs
