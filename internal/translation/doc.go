// Package translation turns batches of subtitle cues into translated text
// through an LLM chat service. Responses are validated for shape and content;
// rejected batches are retried with backoff and bisected down to the single
// offending cue so one bad line cannot poison its neighbors.
package translation
