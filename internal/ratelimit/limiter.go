package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// ServiceClass names a family of external calls that share one bucket.
type ServiceClass string

const (
	// ClassTranslation covers calls to the LLM translation service.
	ClassTranslation ServiceClass = "translation"
	// ClassSynthesis covers calls to the voice synthesis service.
	ClassSynthesis ServiceClass = "synthesis"
)

// Limiter is a token-bucket admission controller shared by every pipeline
// stage in the process. Acquire blocks until a token for the requested
// service class is available; it never fails except on context cancellation.
// A stuck configuration (zero rate) is rejected at construction instead.
type Limiter struct {
	mu      sync.Mutex
	buckets map[ServiceClass]*bucket

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

type bucket struct {
	capacity float64
	tokens   float64
	fillRate float64 // tokens per second
	last     time.Time
}

// Option customizes the limiter.
type Option func(*Limiter)

// WithClock overrides the time source and sleep function (used in tests).
func WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
		if sleep != nil {
			l.sleep = sleep
		}
	}
}

// New constructs a limiter with no registered classes.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		buckets: make(map[ServiceClass]*bucket),
		now:     time.Now,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Register configures the bucket for a service class: rate requests are
// admitted per window. A class may be registered only once.
func (l *Limiter) Register(class ServiceClass, rate float64, window time.Duration) error {
	if rate <= 0 {
		return fmt.Errorf("rate limit for %s: rate must be positive, got %v", class, rate)
	}
	if window <= 0 {
		return fmt.Errorf("rate limit for %s: window must be positive, got %v", class, window)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.buckets[class]; ok {
		return fmt.Errorf("rate limit for %s already registered", class)
	}
	capacity := math.Ceil(rate)
	l.buckets[class] = &bucket{
		capacity: capacity,
		tokens:   capacity,
		fillRate: rate / window.Seconds(),
		last:     l.now(),
	}
	return nil
}

// Acquire blocks until one token is available for the class, then consumes
// it. Returns an error only when the context is cancelled or the class was
// never registered.
func (l *Limiter) Acquire(ctx context.Context, class ServiceClass) error {
	if ctx == nil {
		return errors.New("rate limit acquire: nil context")
	}
	for {
		wait, err := l.take(class)
		if err != nil {
			return err
		}
		if wait <= 0 {
			return nil
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// take consumes a token if one is available, otherwise returns how long the
// caller should wait before trying again.
func (l *Limiter) take(class ServiceClass) (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[class]
	if !ok {
		return 0, fmt.Errorf("rate limit acquire: class %s not registered", class)
	}
	now := l.now()
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = math.Min(b.capacity, b.tokens+elapsed*b.fillRate)
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return 0, nil
	}
	deficit := 1 - b.tokens
	wait := time.Duration(deficit / b.fillRate * float64(time.Second))
	if wait < time.Millisecond {
		wait = time.Millisecond
	}
	return wait, nil
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
