// Package workflow wires the pipeline stages together and drives subtitle
// files through them as isolated, persisted jobs.
package workflow
