package engine

import (
	"github.com/example/drillbot/internal/catalog"
	"github.com/example/drillbot/pkg/models"
)

// coldStartSize is how many level-1 items a brand new learner is seeded with.
const coldStartSize = 5

// Derive recomputes the learner's level, the level stats and the review
// queue. It is invoked at defined points only: after load, after a rating
// empties the queue, after an unlock and after a gauntlet or challenge
// commit. It never rebuilds a non-empty queue, so in-flight session state
// cannot be discarded.
func (s *Session) Derive() {
	if len(s.Queue) > 0 || s.Practice {
		return
	}

	s.Level, s.Stats = s.deriveLevel()
	s.Queue = s.buildQueue()
}

// deriveLevel scans levels from 1 upward. A level's content gate compares
// mastery percentages against a zero threshold, which any state satisfies;
// advancement is therefore controlled by the challenge flag alone. This
// mirrors the shipped behavior and is pinned by tests; do not tighten the
// threshold without revisiting the challenge flow.
func (s *Session) deriveLevel() (int, models.LevelStats) {
	level := 1
	var stats models.LevelStats

	for {
		lvl := s.Catalog.Level(level)
		if lvl == nil {
			// Content ceiling: stay on the last level that has data.
			if level > 1 {
				level--
				if prev := s.Catalog.Level(level); prev != nil {
					stats = s.levelStats(prev)
				}
			}
			break
		}

		stats = s.levelStats(lvl)

		phrasePct, framePct := 1.0, 1.0
		if stats.TotalPhrases > 0 {
			phrasePct = float64(stats.PhrasesMastered) / float64(stats.TotalPhrases)
		}
		if stats.TotalFrames > 0 {
			framePct = float64(stats.FramesUsable) / float64(stats.TotalFrames)
		}
		if phrasePct < 0 || framePct < 0 {
			// Unreachable with the zero threshold; kept for parity with
			// the shipped gate.
			break
		}

		if !s.Progress.ChallengePassed(level) {
			stats.ReadyForChallenge = true
			break
		}
		level++
	}

	return level, stats
}

// DueCount reports how many items are currently due without touching the
// queue. Used by the reminder scheduler, which must not rebuild a live
// session's queue.
func (s *Session) DueCount() int {
	now := s.now()
	count := 0
	for _, n := range s.Catalog.LevelNumbers() {
		if n > s.Level {
			break
		}
		for _, item := range s.Catalog.Level(n).Items() {
			rec, ok := s.Progress.Get(item.ID)
			if !ok || rec.NextReviewAt == nil {
				continue
			}
			if !rec.NextReviewAt.After(now) {
				count++
			}
		}
	}
	return count
}

// levelStats computes the mastery statistics for one level.
func (s *Session) levelStats(lvl *catalog.Level) models.LevelStats {
	stats := models.LevelStats{
		Level:        lvl.Number,
		TotalPhrases: len(lvl.Phrases),
		TotalFrames:  len(lvl.Frames),
		SpokenTarget: len(lvl.Phrases) * 3,
	}

	for _, p := range lvl.Phrases {
		rec, ok := s.Progress.Get(p.ID)
		if !ok {
			continue
		}
		if rec.PhraseMastered() {
			stats.PhrasesMastered++
		}
		spoken := rec.SpokenCount
		if spoken > 3 {
			spoken = 3
		}
		stats.SpokenCurrent += spoken
	}
	for _, f := range lvl.Frames {
		if rec, ok := s.Progress.Get(f.ID); ok && rec.IsUsable {
			stats.FramesUsable++
		}
	}
	return stats
}

// buildQueue collects due items from every unlocked level in catalog order.
// Items without a record are never auto-enqueued here; the one exception is
// the cold-start seed for a learner with no records at all.
func (s *Session) buildQueue() []models.Item {
	now := s.now()
	var queue []models.Item

	for _, n := range s.Catalog.LevelNumbers() {
		if n > s.Level {
			break
		}
		for _, item := range s.Catalog.Level(n).Items() {
			rec, ok := s.Progress.Get(item.ID)
			if !ok {
				continue
			}
			switch item.Kind {
			case models.KindPhrase:
				if rec.NextReviewAt != nil && !rec.NextReviewAt.After(now) {
					queue = append(queue, item)
				}
			case models.KindFrame:
				// A frame touched but never scheduled is due immediately.
				if rec.NextReviewAt == nil || !rec.NextReviewAt.After(now) {
					queue = append(queue, item)
				}
			}
		}
	}

	if s.Progress.Len() == 0 && len(queue) == 0 {
		if lvl1 := s.Catalog.Level(1); lvl1 != nil {
			items := lvl1.Items()
			if len(items) > coldStartSize {
				items = items[:coldStartSize]
			}
			queue = items
		}
	}

	return queue
}
