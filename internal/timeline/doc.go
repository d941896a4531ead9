// Package timeline places synthesized segments at their cue timestamps on a
// single silence-padded master track. Long clips may borrow leading silence;
// everything else overlaps forward and is reported as drift.
package timeline
