package jobs

import "time"

// Status represents the lifecycle of a dubbing job.
type Status string

const (
	StatusPending      Status = "pending"
	StatusTranslating  Status = "translating"
	StatusSynthesizing Status = "synthesizing"
	StatusAssembling   Status = "assembling"
	StatusMuxing       Status = "muxing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusTranslating,
	StatusSynthesizing,
	StatusAssembling,
	StatusMuxing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Valid reports whether the status is a known lifecycle state.
func (s Status) Valid() bool {
	_, ok := statusSet[s]
	return ok
}

// Terminal reports whether the job will make no further progress.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is one subtitle file's trip through the pipeline, persisted in SQLite.
// JobKey is the stable public identifier used in logs and on the CLI; ID is
// the database rowid.
type Job struct {
	ID           int64
	JobKey       string
	SubtitlePath string
	VideoPath    string
	AudioFile    string
	OutputFile   string
	Status       Status
	ErrorMessage string

	CueCount        int
	DesyncedCues    int
	BisectedBatches int
	FallbackCues    int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary aggregates job counts per key lifecycle state.
type Summary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
}
