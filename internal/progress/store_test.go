package progress_test

import (
	"errors"
	"testing"
	"time"

	"github.com/example/drillbot/internal/progress"
	"github.com/example/drillbot/internal/storage"
	"github.com/example/drillbot/pkg/models"
	. "github.com/smartystreets/goconvey/convey"
)

// failingKV simulates an unavailable persistence collaborator.
type failingKV struct{}

func (failingKV) Load(string) ([]byte, bool, error) { return nil, false, errors.New("db down") }
func (failingKV) Save(string, []byte) error         { return errors.New("db down") }

func TestStore(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	Convey("Given a fresh store", t, func() {
		kv := storage.NewMemory()
		store := progress.Open(kv, "42", "tr")

		Convey("Then unknown items get the documented defaults", func() {
			rec, ok := store.Get("p1")
			So(ok, ShouldBeFalse)
			So(rec.IntervalDays, ShouldEqual, 0)
			So(rec.EaseFactor, ShouldEqual, 2.5)
			So(rec.SpokenCount, ShouldEqual, 0)
			So(rec.IsUsable, ShouldBeFalse)
			So(store.Len(), ShouldEqual, 0)
		})

		Convey("When records and challenge flags are written", func() {
			next := now.AddDate(0, 0, 6)
			store.Put("p1", models.ProgressRecord{
				IntervalDays: 6,
				EaseFactor:   2.6,
				NextReviewAt: &next,
				SpokenCount:  2,
				History:      []models.HistoryEntry{{At: now, Outcome: "quality_5"}},
			})
			store.Put("f1", models.ProgressRecord{IntervalDays: 3, EaseFactor: 2.5, IsUsable: true})
			store.SetChallengePassed(1)

			Convey("Then reopening from the same blob reproduces the mapping", func() {
				reopened := progress.Open(kv, "42", "tr")
				So(reopened.Len(), ShouldEqual, 2)

				rec, ok := reopened.Get("p1")
				So(ok, ShouldBeTrue)
				So(rec.IntervalDays, ShouldEqual, 6)
				So(rec.EaseFactor, ShouldEqual, 2.6)
				So(rec.NextReviewAt.Equal(next), ShouldBeTrue)
				So(rec.SpokenCount, ShouldEqual, 2)
				So(rec.History, ShouldHaveLength, 1)

				frame, _ := reopened.Get("f1")
				So(frame.IsUsable, ShouldBeTrue)
				So(reopened.ChallengePassed(1), ShouldBeTrue)
				So(reopened.ChallengePassed(2), ShouldBeFalse)
			})

			Convey("Then stores are isolated per learner and language", func() {
				other := progress.Open(kv, "42", "ja")
				So(other.Len(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given an unavailable persistence collaborator", t, func() {
		store := progress.Open(failingKV{}, "42", "tr")

		Convey("Then mutations still work in memory", func() {
			store.Put("p1", models.ProgressRecord{IntervalDays: 1, EaseFactor: 2.5})
			rec, ok := store.Get("p1")
			So(ok, ShouldBeTrue)
			So(rec.IntervalDays, ShouldEqual, 1)
			store.SetChallengePassed(3)
			So(store.ChallengePassed(3), ShouldBeTrue)
		})
	})

	Convey("Given the daily streak", t, func() {
		kv := storage.NewMemory()
		store := progress.Open(kv, "42", "tr")

		Convey("When touched for the first time it starts at 1", func() {
			So(store.TouchStreak(now), ShouldEqual, 1)

			Convey("And repeat touches on the same day do not increment", func() {
				So(store.TouchStreak(now.Add(2*time.Hour)), ShouldEqual, 1)
				So(store.Streak(now), ShouldEqual, 1)
			})

			Convey("And a touch the next day continues the streak", func() {
				tomorrow := now.AddDate(0, 0, 1)
				So(store.TouchStreak(tomorrow), ShouldEqual, 2)
				So(store.Streak(tomorrow), ShouldEqual, 2)
			})

			Convey("And a gap breaks the streak", func() {
				later := now.AddDate(0, 0, 3)
				So(store.Streak(later), ShouldEqual, 0)
				So(store.TouchStreak(later), ShouldEqual, 1)
			})
		})
	})
}
