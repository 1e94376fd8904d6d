package gauntlet_test

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/example/drillbot/internal/catalog"
	"github.com/example/drillbot/internal/gauntlet"
	"github.com/example/drillbot/internal/progress"
	"github.com/example/drillbot/internal/storage"
	"github.com/example/drillbot/pkg/models"
	. "github.com/smartystreets/goconvey/convey"
)

const quizCurriculum = `
language: tr
name: Turkish
levels:
  1:
    phrases:
      - {id: p1, text: "Merhaba.", translation: "Hello."}
      - {id: p2, text: "Teşekkürler.", translation: "Thank you."}
      - {id: p3, text: "Güle güle.", translation: "Goodbye."}
      - {id: p4, text: "Evet.", translation: "Yes."}
      - {id: p5, text: "Hayır.", translation: "No."}
    frames: []
    words: []
  2:
    phrases:
      - {id: p6, text: "Yardım lazım.", translation: "I need help."}
      - {id: p7, text: "Bilet ne kadar?", translation: "How much is a ticket?"}
      - {id: p8, text: "Bira istiyorum.", translation: "I want a beer."}
      - {id: p9, text: "Uyumak istiyorum.", translation: "I want to sleep."}
    frames:
      - {id: f1, template: "[Thing] istiyorum.", description: "Wanting something.", example_phrase_ids: [p8]}
      - {id: f2, template: "[Thing] nerede?", description: "Asking where something is."}
    words: []
`

var quizNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func newQuiz() (*gauntlet.Session, *catalog.Catalog, *progress.Store) {
	cat, err := catalog.Parse([]byte(quizCurriculum))
	if err != nil {
		panic(fmt.Sprintf("parse quiz curriculum: %v", err))
	}
	prog := progress.Open(storage.NewMemory(), "42", "tr")
	g := gauntlet.New(cat, prog,
		gauntlet.WithRand(rand.New(rand.NewSource(7))),
		gauntlet.WithNow(func() time.Time { return quizNow }),
	)
	return g, cat, prog
}

// correctFor re-derives the expected answer the way the engine documents it.
func correctFor(cat *catalog.Catalog, id string) string {
	if p := cat.Phrase(id); p != nil {
		return p.Text
	}
	f := cat.Frame(id)
	if len(f.ExamplePhraseIDs) > 0 {
		if p := cat.Phrase(f.ExamplePhraseIDs[0]); p != nil {
			return p.Text
		}
	}
	return "... nerede?"
}

// passBatch answers every question of the current batch correctly.
func passBatch(g *gauntlet.Session, cat *catalog.Catalog) {
	for g.State() == gauntlet.StateQuiz {
		_, err := g.Answer(correctFor(cat, currentItem(g).ID))
		So(err, ShouldBeNil)
	}
}

func currentItem(g *gauntlet.Session) models.Item {
	return g.Batch()[g.QuestionNumber()-1]
}

func TestGauntlet(t *testing.T) {
	Convey("Given a fresh gauntlet session", t, func() {
		g, cat, prog := newQuiz()
		So(g.State(), ShouldEqual, gauntlet.StateIntro)

		Convey("When the learner starts", func() {
			So(g.Start(), ShouldBeNil)
			So(g.State(), ShouldEqual, gauntlet.StateQuiz)

			Convey("Then the first batch is the first five unlearned items in level order", func() {
				ids := itemIDs(g.Batch())
				So(ids, ShouldResemble, []string{"p1", "p2", "p3", "p4", "p5"})
			})

			Convey("Then every question's option set contains the derived correct answer exactly once", func() {
				for i := 0; i < gauntlet.BatchSize; i++ {
					q, err := g.Question()
					So(err, ShouldBeNil)
					correct := correctFor(cat, currentItem(g).ID)
					So(q.Options, ShouldHaveLength, 5)
					So(q.Options, ShouldContain, correct)
					count := 0
					for _, opt := range q.Options {
						if opt == correct {
							count++
						}
					}
					So(count, ShouldEqual, 1)

					ok, err := g.Answer(correct)
					So(err, ShouldBeNil)
					So(ok, ShouldBeTrue)
					if g.State() != gauntlet.StateQuiz {
						break
					}
				}
				So(g.State(), ShouldEqual, gauntlet.StateBatchSuccess)
			})

			Convey("When the learner passes batch 1 and fails in batch 2", func() {
				passBatch(g, cat)
				So(g.State(), ShouldEqual, gauntlet.StateBatchSuccess)
				So(g.Streak(), ShouldEqual, 1)

				So(g.Start(), ShouldBeNil)
				So(itemIDs(g.Batch()), ShouldResemble, []string{"p6", "p7", "p8", "p9", "f1"})

				// Miss the very first question of batch 2.
				wrong := wrongOption(g, cat)
				ok, err := g.Answer(wrong)
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
				So(g.State(), ShouldEqual, gauntlet.StateCommitted)

				Convey("Then exactly batch 1 is committed as mastered", func() {
					for _, id := range []string{"p1", "p2", "p3", "p4", "p5"} {
						rec, ok := prog.Get(id)
						So(ok, ShouldBeTrue)
						So(rec.IntervalDays, ShouldEqual, 10)
						So(rec.EaseFactor, ShouldEqual, 2.5)
						So(rec.SpokenCount, ShouldEqual, 3)
						So(rec.NextReviewAt.Equal(quizNow.AddDate(0, 0, 10)), ShouldBeTrue)
						So(rec.History, ShouldHaveLength, 1)
						So(rec.History[0].Outcome, ShouldEqual, models.OutcomeFastTrack)
					}
					for _, id := range []string{"p6", "p7", "p8", "p9", "f1"} {
						_, ok := prog.Get(id)
						So(ok, ShouldBeFalse)
					}
				})
			})

			Convey("When the learner misses immediately", func() {
				wrong := wrongOption(g, cat)
				_, err := g.Answer(wrong)
				So(err, ShouldBeNil)
				So(g.State(), ShouldEqual, gauntlet.StateCommitted)

				Convey("Then nothing at all is committed", func() {
					So(prog.Len(), ShouldEqual, 0)
				})
			})

			Convey("When the learner cancels mid-quiz after a passed batch", func() {
				passBatch(g, cat)
				So(g.Start(), ShouldBeNil)
				g.Cancel()
				So(g.State(), ShouldEqual, gauntlet.StateCommitted)
				So(prog.Len(), ShouldEqual, 5)
			})
		})

		Convey("When the whole catalog is already learned", func() {
			for _, n := range cat.LevelNumbers() {
				for _, item := range cat.Level(n).Items() {
					prog.Put(item.ID, models.ProgressRecord{IntervalDays: 10, EaseFactor: 2.5})
				}
			}
			So(g.Start(), ShouldBeNil)

			Convey("Then the session reports victory, not an error", func() {
				So(g.State(), ShouldEqual, gauntlet.StateVictory)
			})
		})
	})

	Convey("Given frame question derivation", t, func() {
		g, cat, prog := newQuiz()

		// Learn everything except the two frames so the next batch is frames.
		for _, id := range []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8", "p9"} {
			prog.Put(id, models.ProgressRecord{IntervalDays: 10, EaseFactor: 2.5})
		}
		So(g.Start(), ShouldBeNil)
		So(itemIDs(g.Batch()), ShouldResemble, []string{"f1", "f2"})

		Convey("A frame with a worked example borrows the example's translation and text", func() {
			q, err := g.Question()
			So(err, ShouldBeNil)
			So(q.Prompt, ShouldEqual, "I want a beer.")
			So(correctFor(cat, "f1"), ShouldEqual, "Bira istiyorum.")

			ok, err := g.Answer("Bira istiyorum.")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			Convey("A frame without examples falls back to description and elided template", func() {
				q, err := g.Question()
				So(err, ShouldBeNil)
				So(q.Prompt, ShouldEqual, "Asking where something is.")
				So(q.Options, ShouldContain, "... nerede?")

				ok, err := g.Answer("... nerede?")
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
			})
		})
	})

	Convey("Given state guards", t, func() {
		g, _, _ := newQuiz()
		_, err := g.Question()
		So(err, ShouldWrap, gauntlet.ErrBadState)
		_, err = g.Answer("anything")
		So(err, ShouldWrap, gauntlet.ErrBadState)
	})
}

func itemIDs(items []models.Item) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

// wrongOption picks any option that is not the derived correct answer.
func wrongOption(g *gauntlet.Session, cat *catalog.Catalog) string {
	q, err := g.Question()
	So(err, ShouldBeNil)
	correct := correctFor(cat, currentItem(g).ID)
	for _, opt := range q.Options {
		if opt != correct {
			return opt
		}
	}
	return ""
}
