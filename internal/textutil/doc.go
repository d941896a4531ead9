// Package textutil provides text comparison and cleanup utilities.
//
// The primary use cases are:
//   - Edit-distance similarity between requested and echoed TTS text
//   - Locating the best-matching span of a longer echo for realignment
//   - Sanitizing cache file name tokens and stripping ellipsis artifacts
//
// Similarity and span matching are pure functions so desync recovery can be
// tested without any network collaborator.
package textutil
