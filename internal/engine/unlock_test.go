package engine_test

import (
	"testing"

	"github.com/example/drillbot/internal/engine"
	"github.com/example/drillbot/pkg/models"
	. "github.com/smartystreets/goconvey/convey"
)

func TestUnlock(t *testing.T) {
	Convey("Given a fresh learner on level 1", t, func() {
		sess, prog := newTestSession()

		Convey("When the first batch is unlocked", func() {
			So(sess.Unlock(), ShouldBeTrue)
			first := append([]models.Item(nil), sess.Queue...)
			So(first, ShouldHaveLength, engine.UnlockLimit)
			So(first[0].ID, ShouldEqual, "p1")

			Convey("And the learner works through it, creating records", func() {
				for range first {
					item, _ := sess.Current()
					var err error
					if item.Kind == models.KindPhrase {
						err = sess.RatePhrase(4)
					} else {
						err = sess.ResolveFrame(true)
					}
					So(err, ShouldBeNil)
				}

				Convey("Then the next unlock never re-offers an already-seen item", func() {
					So(sess.Unlock(), ShouldBeTrue)
					seen := make(map[string]bool)
					for _, item := range first {
						seen[item.ID] = true
					}
					for _, item := range sess.Queue {
						So(seen[item.ID], ShouldBeFalse)
					}
					// 8 level-1 items, 5 already unlocked.
					So(sess.Queue, ShouldHaveLength, 3)
				})
			})
		})

		Convey("When every item in the level already has a record", func() {
			for _, id := range []string{"p1", "p2", "p3", "p4", "p5", "p6", "f1", "f2"} {
				prog.Put(id, models.ProgressRecord{IntervalDays: 1, EaseFactor: 2.5})
			}

			Convey("Then unlock signals level exhaustion with an empty batch", func() {
				So(engine.UnlockBatch(sess.Catalog.Level(1), prog, engine.UnlockLimit), ShouldBeEmpty)
				So(sess.Unlock(), ShouldBeFalse)
			})
		})

		Convey("When a failed item exists it is still never re-offered", func() {
			prog.Put("p1", models.ProgressRecord{IntervalDays: 1, EaseFactor: 2.5})
			batch := engine.UnlockBatch(sess.Catalog.Level(1), prog, engine.UnlockLimit)
			for _, item := range batch {
				So(item.ID, ShouldNotEqual, "p1")
			}
			So(batch[0].ID, ShouldEqual, "p2")
		})
	})
}
