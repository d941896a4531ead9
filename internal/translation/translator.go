package translation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"dubtrack/internal/batching"
	"dubtrack/internal/language"
	"dubtrack/internal/logging"
	"dubtrack/internal/ratelimit"
	"dubtrack/internal/services"
	"dubtrack/internal/subtitles"
	"dubtrack/internal/textutil"
)

// Completer is the narrow capability the translator needs from the LLM
// service client.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// batchState tracks one batch through its lifecycle. Terminal states are
// stateAccepted and stateFailed.
type batchState string

const (
	statePending   batchState = "pending"
	stateRequested batchState = "requested"
	stateAccepted  batchState = "accepted"
	stateRetrying  batchState = "retrying"
	stateBisected  batchState = "bisected"
	stateFailed    batchState = "failed"
)

// Options configures translator behavior.
type Options struct {
	Mode          Mode
	Target        language.Target
	RetryAttempts int
	StripEllipsis bool
	// Strict aborts the file when a one-cue batch exhausts its retries;
	// otherwise the cue falls back to its source text with a warning.
	Strict   bool
	Policies []Policy

	// BackoffBase is the first retry delay; doubled per attempt. Tests
	// shrink it to keep runs fast.
	BackoffBase time.Duration
}

// Translator resolves translated text for every cue in a set.
type Translator struct {
	client  Completer
	limiter *ratelimit.Limiter
	logger  *slog.Logger
	opts    Options
}

// New constructs a translator.
func New(client Completer, limiter *ratelimit.Limiter, logger *slog.Logger, opts Options) *Translator {
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 3
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = time.Second
	}
	if opts.Mode == "" {
		opts.Mode = ModeHTML
	}
	return &Translator{
		client:  client,
		limiter: limiter,
		logger:  logging.NewComponentLogger(logger, "translator"),
		opts:    opts,
	}
}

// Stats reports what the retry machinery had to do during one Translate run.
type Stats struct {
	BisectedBatches int
	FallbackCues    int
}

type runCounters struct {
	mu    sync.Mutex
	stats Stats
}

// Translate fills Translated for every cue covered by the batches. Batches
// are processed concurrently; each cue is owned by exactly one batch so
// writes never race. The first fatal error cancels remaining work.
func (t *Translator) Translate(ctx context.Context, set *subtitles.CueSet, batches []batching.Batch) (Stats, error) {
	if len(batches) == 0 {
		return Stats{}, nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		counters runCounters
	)
	for i, batch := range batches {
		cues := resolveCues(set, batch)
		if len(cues) == 0 {
			continue
		}
		wg.Add(1)
		go func(label string, cues []*subtitles.Cue) {
			defer wg.Done()
			if err := t.translateBatch(ctx, label, cues, &counters); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				mu.Unlock()
			}
		}(fmt.Sprintf("b%d", i+1), cues)
	}
	wg.Wait()
	return counters.stats, firstErr
}

func resolveCues(set *subtitles.CueSet, batch batching.Batch) []*subtitles.Cue {
	cues := make([]*subtitles.Cue, 0, len(batch.Indices))
	for _, index := range batch.Indices {
		if cue := set.ByIndex(index); cue != nil {
			cues = append(cues, cue)
		}
	}
	return cues
}

// translateBatch runs the retry-then-bisect state machine for one batch.
func (t *Translator) translateBatch(ctx context.Context, label string, cues []*subtitles.Cue, counters *runCounters) error {
	logger := t.logger.With(logging.String(logging.FieldBatch, label), logging.Int("lines", len(cues)))
	state := statePending

	for attempt := 1; attempt <= t.opts.RetryAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.limiter.Acquire(ctx, ratelimit.ClassTranslation); err != nil {
			return err
		}
		state = stateRequested

		translated, err := t.requestOnce(ctx, cues)
		if err == nil {
			t.apply(cues, translated)
			state = stateAccepted
			logger.Debug("batch translated", logging.Int("attempt", attempt))
			return nil
		}
		if !errors.Is(err, services.ErrValidation) {
			state = stateFailed
			return err
		}

		state = stateRetrying
		logger.Warn("translation response rejected",
			logging.String("state", string(state)),
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", t.opts.RetryAttempts),
			logging.Error(err),
		)
		if attempt < t.opts.RetryAttempts {
			if err := sleepContext(ctx, t.backoff(attempt)); err != nil {
				return err
			}
		}
	}

	if len(cues) > 1 {
		// Halving isolates a single bad line in O(log n) requests while a
		// healthy half completes immediately.
		state = stateBisected
		mid := len(cues) / 2
		logger.Info("bisecting failed batch",
			logging.String("state", string(state)),
			logging.Int("left", mid),
			logging.Int("right", len(cues)-mid),
		)
		counters.mu.Lock()
		counters.stats.BisectedBatches++
		counters.mu.Unlock()
		leftErr := t.translateBatch(ctx, label+"L", cues[:mid], counters)
		rightErr := t.translateBatch(ctx, label+"R", cues[mid:], counters)
		return errors.Join(leftErr, rightErr)
	}

	state = stateFailed
	cue := cues[0]
	if t.opts.Strict {
		return services.Wrap(services.ErrValidation, "translate", "batch",
			fmt.Sprintf("cue %d failed after %d attempts", cue.Index, t.opts.RetryAttempts), nil)
	}
	logger.Warn("cue kept source text after repeated rejection",
		logging.String("state", string(state)),
		logging.Int(logging.FieldCueIndex, cue.Index),
	)
	cue.Translated = cue.Text
	counters.mu.Lock()
	counters.stats.FallbackCues++
	counters.mu.Unlock()
	return nil
}

// requestOnce performs one round trip: encode, call, decode, validate.
// Shape and policy problems come back tagged services.ErrValidation.
func (t *Translator) requestOnce(ctx context.Context, cues []*subtitles.Cue) ([]string, error) {
	source := make([]string, len(cues))
	for i, cue := range cues {
		source[i] = cue.Text
	}

	response, err := t.client.Complete(ctx, t.systemPrompt(), EncodePayload(t.opts.Mode, source))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "translate", "request", "", err)
	}

	translated, err := DecodePayload(t.opts.Mode, response, len(source))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "translate", "decode", err.Error(), nil)
	}
	for _, policy := range t.opts.Policies {
		if err := policy(source, translated); err != nil {
			return nil, services.Wrap(services.ErrValidation, "translate", "policy", err.Error(), nil)
		}
	}
	return translated, nil
}

func (t *Translator) apply(cues []*subtitles.Cue, translated []string) {
	for i, cue := range cues {
		text := translated[i]
		if t.opts.StripEllipsis {
			text = textutil.StripTrailingEllipsis(text)
		}
		cue.Translated = strings.TrimSpace(text)
	}
}

func (t *Translator) systemPrompt() string {
	name := t.opts.Target.DisplayName()
	if t.opts.Mode == ModeHTML {
		return fmt.Sprintf(
			"Please translate the following HTML to %s with all HTML tags unchanged. "+
				"The length of each text within an element should approximate the original. "+
				"Output only the translation.", name)
	}
	return fmt.Sprintf(
		"Please translate the following lines to %s. "+
			"Output exactly one translated line per input line, in the same order, "+
			"with no numbering and no explanation.", name)
}

func (t *Translator) backoff(attempt int) time.Duration {
	delay := t.opts.BackoffBase
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
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
