// Package engine is the progression core: it derives the learner's level and
// review queue from the catalog and progress store, feeds self-graded review
// events through the interval scheduler, and hands out new items on demand.
//
// A Session is constructed once per learner+language pair and passed to every
// call; there is no ambient state. All operations run to completion before
// the next event is processed.
package engine

import (
	"errors"
	"math/rand"
	"time"

	"github.com/example/drillbot/internal/catalog"
	"github.com/example/drillbot/internal/progress"
	"github.com/example/drillbot/pkg/models"
)

var (
	// ErrNoCurrentItem is returned when a review event arrives with an
	// empty queue.
	ErrNoCurrentItem = errors.New("engine: no current item")
	// ErrWrongKind is returned when a review event does not match the
	// current item's kind.
	ErrWrongKind = errors.New("engine: event does not match current item kind")
)

// Session threads one learner's drilling state through the engine.
type Session struct {
	Learner  string
	Catalog  *catalog.Catalog
	Progress *progress.Store

	// Level and Stats are recomputed by Derive, never persisted.
	Level int
	Stats models.LevelStats

	// Queue is a session-scoped projection of the progress store,
	// front = next card. It is rebuilt only when empty.
	Queue []models.Item

	// Practice marks a throwaway shuffled-review queue.
	Practice bool

	SessionStats models.SessionStats

	now func() time.Time
	rng *rand.Rand
}

// Option configures a Session.
type Option func(*Session)

// WithNow overrides the session clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithRand overrides the practice-shuffle randomness, for tests.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// NewSession builds the session context for one learner+language pair.
func NewSession(learner string, cat *catalog.Catalog, prog *progress.Store, opts ...Option) *Session {
	s := &Session{
		Learner:  learner,
		Catalog:  cat,
		Progress: prog,
		Level:    1,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the item at the front of the queue.
func (s *Session) Current() (models.Item, bool) {
	if len(s.Queue) == 0 {
		return models.Item{}, false
	}
	return s.Queue[0], true
}

// Remaining returns how many items are left in the queue.
func (s *Session) Remaining() int {
	return len(s.Queue)
}

// advance drops the front of the queue after a completed review.
func (s *Session) advance() {
	s.Queue = s.Queue[1:]
	if len(s.Queue) == 0 && s.Practice {
		s.Practice = false
	}
}

// NextReviewTime returns the earliest future review across all records, or
// nil when nothing is scheduled ahead. Shown when the queue runs empty.
func (s *Session) NextReviewTime() *time.Time {
	now := s.now()
	var earliest *time.Time
	for _, n := range s.Catalog.LevelNumbers() {
		for _, item := range s.Catalog.Level(n).Items() {
			rec, ok := s.Progress.Get(item.ID)
			if !ok || rec.NextReviewAt == nil || !rec.NextReviewAt.After(now) {
				continue
			}
			if earliest == nil || rec.NextReviewAt.Before(*earliest) {
				t := *rec.NextReviewAt
				earliest = &t
			}
		}
	}
	return earliest
}

// StartPractice replaces the queue with up to limit shuffled items from
// unlocked levels. Practice feeds the normal rating paths; it only changes
// what is enqueued.
func (s *Session) StartPractice(limit int) {
	var pool []models.Item
	for _, n := range s.Catalog.LevelNumbers() {
		if n > s.Level {
			break
		}
		pool = append(pool, s.Catalog.Level(n).Items()...)
	}
	s.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if len(pool) > limit {
		pool = pool[:limit]
	}
	s.Queue = pool
	s.Practice = true
}
