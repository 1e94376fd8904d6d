package models

import "time"

// Review outcome labels recorded in a ProgressRecord's history.
const (
	OutcomeSpoken       = "spoken"
	OutcomeFrameSuccess = "frame_success"
	OutcomeFrameFail    = "frame_fail"
	// OutcomeFastTrack marks a record created by a gauntlet commit rather
	// than normal review.
	OutcomeFastTrack = "fast_track"
)

// HistoryEntry is one observed learning event. History is informational;
// the scheduling algorithm never reads it.
type HistoryEntry struct {
	At      time.Time `json:"at"`
	Outcome string    `json:"outcome"`
}

// ProgressRecord tracks a learner's state for a single item. A record exists
// if and only if the learner has interacted with the item at least once.
type ProgressRecord struct {
	// IntervalDays is the current review interval. Zero only before the
	// first successful rating.
	IntervalDays int `json:"interval"`
	// EaseFactor is the SM-2 multiplier, never below 1.3.
	EaseFactor float64 `json:"ease"`
	// NextReviewAt is unset until the item has been rated at least once.
	NextReviewAt *time.Time `json:"next_review_at,omitempty"`
	// SpokenCount is the number of completed spoken recordings (phrases only).
	SpokenCount int `json:"spoken_count,omitempty"`
	// IsUsable is set once the learner produces a valid frame variation
	// (frames only).
	IsUsable bool           `json:"is_usable,omitempty"`
	History  []HistoryEntry `json:"history,omitempty"`
}

// NewProgressRecord returns the defaults applied to an item the learner has
// never interacted with.
func NewProgressRecord() ProgressRecord {
	return ProgressRecord{IntervalDays: 0, EaseFactor: 2.5}
}

// PhraseMastered reports whether the record meets the phrase mastery
// criterion: interval strictly above 3 days and at least 3 spoken recordings.
func (r ProgressRecord) PhraseMastered() bool {
	return r.IntervalDays > 3 && r.SpokenCount >= 3
}
