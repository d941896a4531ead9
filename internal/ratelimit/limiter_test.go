package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"dubtrack/internal/ratelimit"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.now = c.now.Add(d)
	return nil
}

func newTestLimiter(t *testing.T, clock *fakeClock, rate float64, window time.Duration) *ratelimit.Limiter {
	t.Helper()
	limiter := ratelimit.New(ratelimit.WithClock(clock.Now, clock.Sleep))
	if err := limiter.Register(ratelimit.ClassTranslation, rate, window); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return limiter
}

func TestAcquireAdmitsUpToRateImmediately(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	limiter := newTestLimiter(t, clock, 3, time.Minute)

	start := clock.now
	for i := 0; i < 3; i++ {
		if err := limiter.Acquire(context.Background(), ratelimit.ClassTranslation); err != nil {
			t.Fatalf("Acquire %d: %v", i, err)
		}
	}
	if !clock.now.Equal(start) {
		t.Fatalf("first %d acquisitions slept %v, want none", 3, clock.now.Sub(start))
	}
}

func TestAcquireBlocksUntilRefill(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	limiter := newTestLimiter(t, clock, 2, 10*time.Second)

	for i := 0; i < 2; i++ {
		if err := limiter.Acquire(context.Background(), ratelimit.ClassTranslation); err != nil {
			t.Fatalf("Acquire %d: %v", i, err)
		}
	}
	before := clock.now
	if err := limiter.Acquire(context.Background(), ratelimit.ClassTranslation); err != nil {
		t.Fatalf("Acquire blocked: %v", err)
	}
	waited := clock.now.Sub(before)
	// One token refills in window/rate = 5s.
	if waited < 4*time.Second || waited > 6*time.Second {
		t.Fatalf("waited %v, want about 5s", waited)
	}
}

func TestAcquireUnregisteredClassFails(t *testing.T) {
	limiter := ratelimit.New()
	if err := limiter.Acquire(context.Background(), ratelimit.ClassSynthesis); err == nil {
		t.Fatal("expected error for unregistered class")
	}
}

func TestRegisterRejectsNonPositiveRate(t *testing.T) {
	limiter := ratelimit.New()
	if err := limiter.Register(ratelimit.ClassTranslation, 0, time.Second); err == nil {
		t.Fatal("expected error for zero rate")
	}
	if err := limiter.Register(ratelimit.ClassTranslation, 1, 0); err == nil {
		t.Fatal("expected error for zero window")
	}
}

func TestRegisterTwiceFails(t *testing.T) {
	limiter := ratelimit.New()
	if err := limiter.Register(ratelimit.ClassTranslation, 1, time.Second); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := limiter.Register(ratelimit.ClassTranslation, 1, time.Second); err == nil {
		t.Fatal("expected error on duplicate registration")
	}
}

func TestAcquireHonorsContextCancellation(t *testing.T) {
	limiter := ratelimit.New() // real clock
	if err := limiter.Register(ratelimit.ClassTranslation, 1, time.Hour); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := limiter.Acquire(context.Background(), ratelimit.ClassTranslation); err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := limiter.Acquire(ctx, ratelimit.ClassTranslation); err == nil {
		t.Fatal("expected context error")
	}
}
