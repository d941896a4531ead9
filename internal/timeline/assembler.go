package timeline

import (
	"fmt"
	"log/slog"
	"time"

	"dubtrack/internal/logging"
	"dubtrack/internal/media"
	"dubtrack/internal/subtitles"
	"dubtrack/internal/synthesis"
)

// Options configures assembly.
type Options struct {
	SampleRate int
	// MaxDrift is how far a clip may land past its cue start before the
	// assembler warns. Drift never aborts a file; it only degrades sync.
	MaxDrift time.Duration
	// BorrowInterval is the minimum leading silence that must survive when a
	// long clip borrows from the gap before its cue.
	BorrowInterval time.Duration
	// MinBorrow is the smallest leading gap worth borrowing from at all.
	MinBorrow time.Duration
}

// Report summarizes what assembly did to the timeline.
type Report struct {
	MaxDrift      time.Duration
	TotalBorrowed time.Duration
	DriftedCues   int
}

// Assembler lays synthesized segments onto a single silence-padded track at
// the cue timestamps.
type Assembler struct {
	logger *slog.Logger
	opts   Options
}

// New constructs an assembler.
func New(logger *slog.Logger, opts Options) *Assembler {
	if opts.SampleRate <= 0 {
		opts.SampleRate = 24000
	}
	if opts.MaxDrift <= 0 {
		opts.MaxDrift = 3 * time.Second
	}
	if opts.BorrowInterval <= 0 {
		opts.BorrowInterval = 500 * time.Millisecond
	}
	if opts.MinBorrow <= 0 {
		opts.MinBorrow = time.Second
	}
	return &Assembler{logger: logging.NewComponentLogger(logger, "assembler"), opts: opts}
}

// Assemble builds the master track. Segments must be in cue order and share
// the assembler's sample rate. minTotal extends the track with trailing
// silence, typically to the source video's duration, so muxing never
// truncates the picture. Output is deterministic for identical inputs.
func (a *Assembler) Assemble(set *subtitles.CueSet, segments []synthesis.Segment, minTotal time.Duration) (*media.Clip, Report, error) {
	var report Report
	starts, err := a.planStarts(set, segments, &report)
	if err != nil {
		return nil, report, err
	}

	rate := a.opts.SampleRate
	master := &media.Clip{SampleRate: rate}
	cursor := 0 // samples written so far
	for i, segment := range segments {
		if segment.Clip.SampleRate != rate {
			return nil, report, fmt.Errorf("assemble: cue %d sample rate %d, want %d",
				segment.CueIndex, segment.Clip.SampleRate, rate)
		}
		target := durationToSamples(starts[i], rate)
		if cursor < target {
			master.Samples = append(master.Samples, make([]int, target-cursor)...)
			cursor = target
		} else if cursor > target {
			drift := samplesToDuration(cursor-target, rate)
			report.DriftedCues++
			if drift > report.MaxDrift {
				report.MaxDrift = drift
			}
			if drift > a.opts.MaxDrift {
				a.logger.Warn("cue audio drifting past its timestamp",
					logging.Int(logging.FieldCueIndex, segment.CueIndex),
					logging.Duration("drift", drift),
					logging.Duration("max_drift", a.opts.MaxDrift),
				)
			}
		}
		master.Samples = append(master.Samples, segment.Clip.Samples...)
		cursor += len(segment.Clip.Samples)
	}

	if tail := durationToSamples(minTotal, rate); cursor < tail {
		master.Samples = append(master.Samples, make([]int, tail-cursor)...)
	}
	return master, report, nil
}

// planStarts computes the placement time for each segment's cue. A clip that
// overruns the slot before the next cue may start early by borrowing from
// the silence gap ahead of it, keeping at least BorrowInterval of that gap;
// gaps shorter than MinBorrow are never touched.
func (a *Assembler) planStarts(set *subtitles.CueSet, segments []synthesis.Segment, report *Report) ([]time.Duration, error) {
	starts := make([]time.Duration, len(segments))
	prevEnd := time.Duration(0)
	for i, segment := range segments {
		cue := set.ByIndex(segment.CueIndex)
		if cue == nil {
			return nil, fmt.Errorf("assemble: segment references unknown cue %d", segment.CueIndex)
		}
		starts[i] = cue.Start

		var slot time.Duration
		if i+1 < len(segments) {
			if next := set.ByIndex(segments[i+1].CueIndex); next != nil {
				slot = next.Start - cue.Start
			}
		}
		overrun := segment.Clip.Duration() - slot
		gap := cue.Start - prevEnd
		if slot > 0 && overrun > 0 && gap >= a.opts.MinBorrow {
			borrow := gap - a.opts.BorrowInterval
			if borrow > overrun {
				borrow = overrun
			}
			if borrow > 0 {
				starts[i] -= borrow
				report.TotalBorrowed += borrow
				a.logger.Debug("borrowed leading silence for long clip",
					logging.Int(logging.FieldCueIndex, segment.CueIndex),
					logging.Duration("borrowed", borrow),
				)
			}
		}
		prevEnd = starts[i] + segment.Clip.Duration()
	}
	return starts, nil
}

func durationToSamples(d time.Duration, rate int) int {
	if d <= 0 {
		return 0
	}
	return int(d.Seconds() * float64(rate))
}

func samplesToDuration(n, rate int) time.Duration {
	return time.Duration(float64(n) / float64(rate) * float64(time.Second))
}
