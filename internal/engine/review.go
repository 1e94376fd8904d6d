package engine

import (
	"fmt"

	"github.com/example/drillbot/internal/srs"
	"github.com/example/drillbot/pkg/models"
)

// RatePhrase applies a self-graded recall quality (0-5) to the phrase at the
// front of the queue, reschedules it through the interval scheduler and
// advances the queue. Quality >= 3 counts toward session accuracy.
func (s *Session) RatePhrase(quality int) error {
	item, ok := s.Current()
	if !ok {
		return ErrNoCurrentItem
	}
	if item.Kind != models.KindPhrase {
		return fmt.Errorf("%w: rated a %s as a phrase", ErrWrongKind, item.Kind)
	}

	rec, _ := s.Progress.Get(item.ID)
	interval, ease, err := srs.ComputeNextInterval(quality, rec.IntervalDays, rec.EaseFactor)
	if err != nil {
		return err
	}

	now := s.now()
	next := now.AddDate(0, 0, interval)
	rec.IntervalDays = interval
	rec.EaseFactor = ease
	rec.NextReviewAt = &next
	rec.History = append(rec.History, models.HistoryEntry{
		At:      now,
		Outcome: fmt.Sprintf("quality_%d", quality),
	})
	s.Progress.Put(item.ID, rec)

	s.SessionStats.Total++
	if quality >= srs.PassThreshold {
		s.SessionStats.Correct++
	}

	s.advance()
	return nil
}

// RecordSpoken registers a completed spoken recording for the phrase at the
// front of the queue. It increments the spoken counter, counts as the day's
// engagement for the streak, and leaves the queue position unchanged: the
// learner still rates the card afterwards.
func (s *Session) RecordSpoken() error {
	item, ok := s.Current()
	if !ok {
		return ErrNoCurrentItem
	}
	if item.Kind != models.KindPhrase {
		return fmt.Errorf("%w: recorded a %s as a phrase", ErrWrongKind, item.Kind)
	}

	now := s.now()
	s.Progress.TouchStreak(now)

	rec, _ := s.Progress.Get(item.ID)
	rec.SpokenCount++
	rec.History = append(rec.History, models.HistoryEntry{At: now, Outcome: models.OutcomeSpoken})
	s.Progress.Put(item.ID, rec)
	return nil
}

// ResolveFrame records the outcome of a frame generation attempt for the
// frame at the front of the queue. Frames use fixed intervals rather than
// SM-2: three days after a success, one after a failure. A success marks
// the frame usable, which is the frame mastery criterion.
func (s *Session) ResolveFrame(success bool) error {
	item, ok := s.Current()
	if !ok {
		return ErrNoCurrentItem
	}
	if item.Kind != models.KindFrame {
		return fmt.Errorf("%w: resolved a %s as a frame", ErrWrongKind, item.Kind)
	}

	rec, _ := s.Progress.Get(item.ID)
	now := s.now()

	interval := 1
	outcome := models.OutcomeFrameFail
	if success {
		interval = 3
		outcome = models.OutcomeFrameSuccess
		rec.IsUsable = true
	}
	next := now.AddDate(0, 0, interval)
	rec.IntervalDays = interval
	rec.NextReviewAt = &next
	rec.History = append(rec.History, models.HistoryEntry{At: now, Outcome: outcome})
	s.Progress.Put(item.ID, rec)

	s.advance()
	return nil
}
