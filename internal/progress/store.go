// Package progress owns the learner's mutable state: one ProgressRecord per
// item interacted with, the per-level challenge flags and the daily streak.
// Every mutation is written through to the persistence collaborator as a
// whole JSON blob; if persistence fails the store degrades to in-memory for
// the rest of the session rather than failing the operation.
package progress

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/example/drillbot/internal/storage"
	"github.com/example/drillbot/pkg/models"
)

const dateLayout = "2006-01-02"

// snapshot is the persisted blob shape.
type snapshot struct {
	Records    map[string]models.ProgressRecord `json:"records"`
	Challenges map[int]bool                     `json:"challenges,omitempty"`
}

// Store holds progress for one learner+language pair. It is exclusively
// owned by the engine; there is exactly one writer and no concurrent session.
type Store struct {
	learner  string
	language string
	kv       storage.KV

	records    map[string]models.ProgressRecord
	challenges map[int]bool
}

// Open loads the learner's progress blob for a language. A missing blob
// yields an empty store; a persistence failure is logged and the store
// starts empty in memory.
func Open(kv storage.KV, learner, language string) *Store {
	s := &Store{
		learner:    learner,
		language:   language,
		kv:         kv,
		records:    make(map[string]models.ProgressRecord),
		challenges: make(map[int]bool),
	}

	data, ok, err := kv.Load(s.progressKey())
	if err != nil {
		log.Printf("progress: load failed for %s, continuing in memory: %v", s.progressKey(), err)
		return s
	}
	if !ok {
		return s
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("progress: corrupt blob for %s, starting fresh: %v", s.progressKey(), err)
		return s
	}
	if snap.Records != nil {
		s.records = snap.Records
	}
	if snap.Challenges != nil {
		s.challenges = snap.Challenges
	}
	return s
}

func (s *Store) progressKey() string {
	return fmt.Sprintf("progress-%s-%s", s.learner, s.language)
}

func (s *Store) streakKey() string {
	return fmt.Sprintf("streak-%s-%s", s.learner, s.language)
}

// Len returns the number of items the learner has interacted with.
func (s *Store) Len() int {
	return len(s.records)
}

// Get returns the record for an item. A missing record means the learner
// has never interacted with the item; callers receive the defaults.
func (s *Store) Get(itemID string) (models.ProgressRecord, bool) {
	rec, ok := s.records[itemID]
	if !ok {
		return models.NewProgressRecord(), false
	}
	return rec, true
}

// Put stores the record for an item and persists the store.
func (s *Store) Put(itemID string, rec models.ProgressRecord) {
	s.records[itemID] = rec
	s.save()
}

// ChallengePassed reports whether the level's challenge flag is set.
func (s *Store) ChallengePassed(level int) bool {
	return s.challenges[level]
}

// SetChallengePassed records completion of a level's challenge and persists
// the store. This flag is the sole gate for level advancement.
func (s *Store) SetChallengePassed(level int) {
	s.challenges[level] = true
	s.save()
}

// save writes the whole blob. Persistence errors are logged, not returned:
// the session keeps working from memory.
func (s *Store) save() {
	snap := snapshot{Records: s.records, Challenges: nil}
	if len(s.challenges) > 0 {
		snap.Challenges = s.challenges
	}
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("progress: marshal failed for %s: %v", s.progressKey(), err)
		return
	}
	if err := s.kv.Save(s.progressKey(), data); err != nil {
		log.Printf("progress: save failed for %s, continuing in memory: %v", s.progressKey(), err)
	}
}

// Streak returns the current daily streak, treating a streak whose last
// activity is older than yesterday as broken.
func (s *Store) Streak(now time.Time) int {
	rec := s.loadStreak()
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)
	if rec.LastDate == today || rec.LastDate == yesterday {
		return rec.Count
	}
	return 0
}

// TouchStreak registers activity for today and returns the updated streak.
// The counter increments once per day: it continues from yesterday, stays
// put on repeat touches today, and restarts at 1 after a gap.
func (s *Store) TouchStreak(now time.Time) int {
	rec := s.loadStreak()
	today := now.Format(dateLayout)
	if rec.LastDate == today {
		return rec.Count
	}

	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)
	if rec.LastDate == yesterday {
		rec.Count++
	} else {
		rec.Count = 1
	}
	rec.LastDate = today

	data, err := json.Marshal(rec)
	if err != nil {
		log.Printf("progress: marshal streak failed for %s: %v", s.streakKey(), err)
		return rec.Count
	}
	if err := s.kv.Save(s.streakKey(), data); err != nil {
		log.Printf("progress: save streak failed for %s: %v", s.streakKey(), err)
	}
	return rec.Count
}

func (s *Store) loadStreak() models.StreakRecord {
	var rec models.StreakRecord
	data, ok, err := s.kv.Load(s.streakKey())
	if err != nil {
		log.Printf("progress: load streak failed for %s: %v", s.streakKey(), err)
		return rec
	}
	if !ok {
		return rec
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		log.Printf("progress: corrupt streak blob for %s: %v", s.streakKey(), err)
	}
	return rec
}
