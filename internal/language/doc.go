// Package language handles target-language normalization for prompts and the
// script expectations used when validating translation responses.
package language
