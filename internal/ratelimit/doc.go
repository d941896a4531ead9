// Package ratelimit implements token-bucket admission control shared by all
// external service calls. One limiter instance is created per process and
// injected into every stage; buckets are keyed by service class so the
// translation and synthesis ceilings are enforced globally across files.
package ratelimit
