// Package translate implements the HTTP client for the LLM translation
// service. The client exposes a single Complete call; prompt construction,
// payload encoding, and response validation live in internal/translation.
package translate
