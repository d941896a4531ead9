// Package services provides shared infrastructure for the external
// collaborators the pipeline talks to: a common error taxonomy with
// sentinel markers, and context annotation helpers that carry job,
// stage, and correlation identifiers across service calls.
package services
