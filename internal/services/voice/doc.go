// Package voice implements the HTTP client for the text-to-speech service.
// Desync detection and realignment live in internal/synthesis; this package
// only moves bytes and boundary metadata.
package voice
