// Package gauntlet implements the accelerated test-out flow:
// multiple-choice batches that let a learner mass-unlock curriculum items
// outside normal spaced review. A session is ephemeral; only items from
// fully passed batches are ever committed to the progress store.
package gauntlet

import (
	"errors"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/example/drillbot/internal/catalog"
	"github.com/example/drillbot/internal/progress"
	"github.com/example/drillbot/pkg/models"
	"github.com/google/uuid"
)

// State is the gauntlet's session state.
type State string

const (
	// StateIntro waits for explicit start confirmation.
	StateIntro State = "intro"
	// StateQuiz is presenting a batch, one question at a time.
	StateQuiz State = "quiz"
	// StateBatchSuccess follows a 5/5 batch; the learner may continue.
	StateBatchSuccess State = "batch_success"
	// StateFail ends the run after any miss. Prior batches stay accepted.
	StateFail State = "fail"
	// StateVictory means no unlearned items remain anywhere in the catalog.
	StateVictory State = "victory"
	// StateCommitted is terminal: accepted items are in the progress store.
	StateCommitted State = "committed"
)

// BatchSize is the fixed number of questions per batch.
const BatchSize = 5

// distractorCount is how many wrong options accompany the correct one.
const distractorCount = 4

// Committed items jump straight to mastered state.
const (
	commitInterval = 10
	commitEase     = 2.5
	commitSpoken   = 3
)

// candidateScanCap bounds how far past levels the batch scan looks once it
// has plenty of candidates.
const candidateScanCap = 50

// ErrBadState is returned when an operation does not apply to the session's
// current state.
var ErrBadState = errors.New("gauntlet: operation not valid in current state")

var slotPattern = regexp.MustCompile(`\[.*?\]`)

// Question is one multiple-choice recognition prompt. Options always contain
// the correct answer and four distractors in randomized order.
type Question struct {
	Prompt  string
	Options []string
}

// Session is one run of the gauntlet.
type Session struct {
	ID uuid.UUID

	cat  *catalog.Catalog
	prog *progress.Store

	state    State
	batch    []models.Item
	question int
	score    int

	// streak counts fully passed batches.
	streak   int
	accepted []models.Item

	current Question

	rng *rand.Rand
	now func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithRand overrides the shuffle randomness, for tests.
func WithRand(rng *rand.Rand) Option {
	return func(g *Session) { g.rng = rng }
}

// WithNow overrides the session clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(g *Session) { g.now = now }
}

// New creates a session in the intro state.
func New(cat *catalog.Catalog, prog *progress.Store, opts ...Option) *Session {
	g := &Session{
		ID:    uuid.New(),
		cat:   cat,
		prog:  prog,
		state: StateIntro,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// State returns the session's current state.
func (g *Session) State() State {
	return g.state
}

// Streak returns how many batches have been fully passed.
func (g *Session) Streak() int {
	return g.streak
}

// Accepted returns the items provisionally learned in this session.
func (g *Session) Accepted() []models.Item {
	return g.accepted
}

// QuestionNumber returns the 1-based position within the current batch.
func (g *Session) QuestionNumber() int {
	return g.question + 1
}

// Batch returns the items of the batch currently being quizzed.
func (g *Session) Batch() []models.Item {
	return g.batch
}

// Start leaves the intro and draws the first batch. From batch_success it
// draws the next one. If no unlearned items remain the session commits what
// was accepted and reports victory.
func (g *Session) Start() error {
	if g.state != StateIntro && g.state != StateBatchSuccess {
		return ErrBadState
	}

	batch := g.drawBatch()
	if len(batch) == 0 {
		g.state = StateVictory
		g.commit()
		return nil
	}

	g.batch = batch
	g.question = 0
	g.score = 0
	g.state = StateQuiz
	g.prepareQuestion()
	return nil
}

// Question returns the current prompt and options.
func (g *Session) Question() (Question, error) {
	if g.state != StateQuiz {
		return Question{}, ErrBadState
	}
	return g.current, nil
}

// Answer grades the selected option. The correct value is re-derived by the
// same rule that generated the question, never taken from presentation
// state, so grading cannot drift from question generation. A miss ends the
// run immediately; finishing a batch 5/5 accepts it and extends the streak.
func (g *Session) Answer(selected string) (bool, error) {
	if g.state != StateQuiz {
		return false, ErrBadState
	}

	item := g.batch[g.question]
	correct := selected == g.correctAnswer(item)
	if correct {
		g.score++
	}

	if g.question < len(g.batch)-1 {
		if !correct {
			g.fail()
			return false, nil
		}
		g.question++
		g.prepareQuestion()
		return true, nil
	}

	// Batch complete.
	if g.score == len(g.batch) {
		g.accepted = append(g.accepted, g.batch...)
		g.streak++
		g.state = StateBatchSuccess
	} else {
		g.fail()
	}
	return correct, nil
}

// Cancel abandons the session from any non-terminal state, committing
// whatever earlier batches accepted.
func (g *Session) Cancel() {
	if g.state == StateCommitted {
		return
	}
	g.state = StateFail
	g.commit()
}

// fail ends the run; the current batch contributes nothing.
func (g *Session) fail() {
	g.state = StateFail
	g.commit()
}

// commit folds the accepted items into the progress store as fully
// mastered, using the same mutation path as normal review.
func (g *Session) commit() {
	now := g.now()
	next := now.AddDate(0, 0, commitInterval)
	for _, item := range g.accepted {
		rec := models.ProgressRecord{
			IntervalDays: commitInterval,
			EaseFactor:   commitEase,
			NextReviewAt: &next,
			SpokenCount:  commitSpoken,
			History: []models.HistoryEntry{
				{At: now, Outcome: models.OutcomeFastTrack},
			},
		}
		if item.Kind == models.KindFrame {
			rec.IsUsable = true
		}
		g.prog.Put(item.ID, rec)
	}
	if g.state == StateFail || g.state == StateVictory {
		g.state = StateCommitted
	}
}

// drawBatch picks the next BatchSize unlearned items, scanning levels in
// order and skipping anything already accepted this session.
func (g *Session) drawBatch() []models.Item {
	excluded := make(map[string]bool, len(g.accepted))
	for _, item := range g.accepted {
		excluded[item.ID] = true
	}

	var candidates []models.Item
	for _, n := range g.cat.LevelNumbers() {
		for _, item := range g.cat.Level(n).Items() {
			if excluded[item.ID] {
				continue
			}
			if _, ok := g.prog.Get(item.ID); ok {
				continue
			}
			candidates = append(candidates, item)
		}
		if len(candidates) >= candidateScanCap {
			break
		}
	}

	if len(candidates) > BatchSize {
		candidates = candidates[:BatchSize]
	}
	return candidates
}

// prepareQuestion builds the prompt and option set for the current item.
func (g *Session) prepareQuestion() {
	item := g.batch[g.question]
	correct := g.correctAnswer(item)

	distractors := make([]string, 0)
	for _, text := range g.cat.PhraseTexts() {
		if text != "" && text != correct {
			distractors = append(distractors, text)
		}
	}
	g.rng.Shuffle(len(distractors), func(i, j int) {
		distractors[i], distractors[j] = distractors[j], distractors[i]
	})
	if len(distractors) > distractorCount {
		distractors = distractors[:distractorCount]
	}

	options := append([]string{correct}, distractors...)
	g.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	g.current = Question{Prompt: g.prompt(item), Options: options}
}

// prompt derives the question text: a phrase asks for its translation;
// a frame borrows its first worked example, falling back to the frame
// description when no example resolves.
func (g *Session) prompt(item models.Item) string {
	switch item.Kind {
	case models.KindPhrase:
		if p := g.cat.Phrase(item.ID); p != nil {
			return p.Translation
		}
	case models.KindFrame:
		f := g.cat.Frame(item.ID)
		if f == nil {
			return ""
		}
		if example := g.firstExample(f); example != nil {
			return example.Translation
		}
		return f.Description
	}
	return ""
}

// correctAnswer derives the expected option for an item. This single
// derivation is used both to build the option set and to grade answers.
func (g *Session) correctAnswer(item models.Item) string {
	switch item.Kind {
	case models.KindPhrase:
		if p := g.cat.Phrase(item.ID); p != nil {
			return p.Text
		}
	case models.KindFrame:
		f := g.cat.Frame(item.ID)
		if f == nil {
			return ""
		}
		if example := g.firstExample(f); example != nil {
			return example.Text
		}
		return strings.TrimSpace(slotPattern.ReplaceAllString(f.Template, "..."))
	}
	return ""
}

func (g *Session) firstExample(f *models.Frame) *models.Phrase {
	if len(f.ExamplePhraseIDs) == 0 {
		return nil
	}
	return g.cat.Phrase(f.ExamplePhraseIDs[0])
}
