package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"dubtrack/internal/logging"
	"dubtrack/internal/media"
	"dubtrack/internal/ratelimit"
	"dubtrack/internal/services"
	"dubtrack/internal/services/voice"
	"dubtrack/internal/subtitles"
	"dubtrack/internal/textutil"
)

// Speaker is the capability the synthesizer needs from the voice client.
type Speaker interface {
	Synthesize(ctx context.Context, text, voiceName string) (voice.Result, error)
}

// Segment is the synthesized audio for one cue. Desynced marks clips whose
// echoed text never matched the requested text well enough; the timeline
// still places them, but the mismatch is surfaced to the operator.
type Segment struct {
	CueIndex int
	Clip     *media.Clip
	Desynced bool
}

// Options configures synthesis behavior.
type Options struct {
	Voice               string
	SimilarityThreshold float64
	// Strict turns a desynced clip into a file-fatal error instead of a
	// flagged segment.
	Strict      bool
	Concurrency int
	CacheDir    string
}

// Synthesizer turns translated cues into verified audio segments.
type Synthesizer struct {
	client  Speaker
	limiter *ratelimit.Limiter
	logger  *slog.Logger
	opts    Options
	cache   *clipCache
}

// New constructs a synthesizer. CacheDir, when set, must be creatable.
func New(client Speaker, limiter *ratelimit.Limiter, logger *slog.Logger, opts Options) (*Synthesizer, error) {
	if opts.SimilarityThreshold <= 0 || opts.SimilarityThreshold > 1 {
		opts.SimilarityThreshold = 0.7
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	cache, err := newClipCache(opts.CacheDir)
	if err != nil {
		return nil, err
	}
	return &Synthesizer{
		client:  client,
		limiter: limiter,
		logger:  logging.NewComponentLogger(logger, "synthesizer"),
		opts:    opts,
		cache:   cache,
	}, nil
}

// Run synthesizes every cue in the set concurrently and returns segments in
// cue order. The first fatal error cancels outstanding work; desync in
// lenient mode is not fatal.
func (s *Synthesizer) Run(ctx context.Context, set *subtitles.CueSet) ([]Segment, error) {
	if set.Len() == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		segments = make([]Segment, 0, set.Len())
		sem      = make(chan struct{}, s.opts.Concurrency)
	)
	for i := range set.Cues {
		cue := &set.Cues[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}
			segment, err := s.synthesizeCue(ctx, cue)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				return
			}
			segments = append(segments, segment)
		}()
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	sort.Slice(segments, func(a, b int) bool { return segments[a].CueIndex < segments[b].CueIndex })
	return segments, nil
}

func (s *Synthesizer) synthesizeCue(ctx context.Context, cue *subtitles.Cue) (Segment, error) {
	text := strings.TrimSpace(cue.Translated)
	if text == "" {
		text = strings.TrimSpace(cue.Text)
	}
	ctx = services.WithCueIndex(ctx, cue.Index)
	logger := logging.WithContext(ctx, s.logger)

	if audio, ok := s.cache.load(s.opts.Voice, text); ok {
		clip, err := media.DecodeWAV(audio)
		if err == nil {
			logger.Debug("clip served from cache")
			return Segment{CueIndex: cue.Index, Clip: clip}, nil
		}
		logger.Warn("discarding corrupt cached clip", logging.Error(err))
	}

	if err := s.limiter.Acquire(ctx, ratelimit.ClassSynthesis); err != nil {
		return Segment{}, err
	}
	result, err := s.client.Synthesize(ctx, text, s.opts.Voice)
	if err != nil {
		return Segment{}, services.Wrap(services.ErrTransient, "synthesize", "request",
			fmt.Sprintf("cue %d", cue.Index), err)
	}
	clip, err := media.DecodeWAV(result.Audio)
	if err != nil {
		return Segment{}, services.Wrap(services.ErrTransient, "synthesize", "decode",
			fmt.Sprintf("cue %d", cue.Index), err)
	}

	verified, recovered, score := s.verify(text, clip, result)
	switch {
	case verified != nil && !recovered:
		if err := s.cache.store(s.opts.Voice, text, result.Audio); err != nil {
			logger.Warn("clip cache write failed", logging.Error(err))
		}
		return Segment{CueIndex: cue.Index, Clip: verified}, nil
	case verified != nil:
		logger.Info("recovered cue audio from merged echo",
			logging.Float64("score", score),
		)
		return Segment{CueIndex: cue.Index, Clip: verified}, nil
	}

	if s.opts.Strict {
		return Segment{}, services.Wrap(services.ErrDesync, "synthesize", "verify",
			fmt.Sprintf("cue %d echo similarity %.2f below %.2f", cue.Index, score, s.opts.SimilarityThreshold), nil)
	}
	logger.Warn("cue audio desynced from text",
		logging.Float64("score", score),
		logging.Float64("threshold", s.opts.SimilarityThreshold),
	)
	return Segment{CueIndex: cue.Index, Clip: clip, Desynced: true}, nil
}

// verify checks the engine's echoed text against the requested text. When the
// whole echo is too dissimilar, it looks for the best matching span inside
// the boundary stream and slices that region out of the clip; engines that
// merge adjacent requests produce exactly this shape. Returns nil when no
// acceptable match exists, along with the best score seen.
func (s *Synthesizer) verify(want string, clip *media.Clip, result voice.Result) (*media.Clip, bool, float64) {
	normWant := normalize(want)
	score := textutil.Similarity(normWant, normalize(result.EchoedText))
	if score >= s.opts.SimilarityThreshold {
		return clip, false, score
	}
	if len(result.Boundaries) == 0 {
		return nil, false, score
	}

	joined, offsets := joinBoundaries(result.Boundaries)
	span := textutil.BestSpanMatch(joined, normWant)
	if span.Score < s.opts.SimilarityThreshold {
		if span.Score > score {
			score = span.Score
		}
		return nil, false, score
	}

	first, last := -1, -1
	for i, off := range offsets {
		if off.end > span.Start && off.start < span.End {
			if first == -1 {
				first = i
			}
			last = i
		}
	}
	if first == -1 {
		return nil, false, span.Score
	}
	sliced := sliceClip(clip, result.Boundaries[first].Start, result.Boundaries[last].End)
	return sliced, true, span.Score
}

type runeSpan struct {
	start int
	end   int
}

// joinBoundaries concatenates normalized boundary texts with single spaces
// and records each boundary's rune span in the joined string.
func joinBoundaries(boundaries []voice.Boundary) (string, []runeSpan) {
	var b strings.Builder
	offsets := make([]runeSpan, len(boundaries))
	pos := 0
	for i, boundary := range boundaries {
		text := normalize(boundary.Text)
		if i > 0 {
			b.WriteByte(' ')
			pos++
		}
		offsets[i] = runeSpan{start: pos, end: pos + len([]rune(text))}
		b.WriteString(text)
		pos = offsets[i].end
	}
	return b.String(), offsets
}

func sliceClip(clip *media.Clip, from, to time.Duration) *media.Clip {
	start := int(from.Seconds() * float64(clip.SampleRate))
	end := int(to.Seconds() * float64(clip.SampleRate))
	if start < 0 {
		start = 0
	}
	if end > len(clip.Samples) {
		end = len(clip.Samples)
	}
	if start >= end {
		return clip
	}
	return &media.Clip{Samples: clip.Samples[start:end], SampleRate: clip.SampleRate}
}

// normalize lowercases, strips punctuation, and collapses whitespace so echo
// comparison ignores cosmetic differences.
func normalize(text string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			// skip
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
