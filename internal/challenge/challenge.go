// Package challenge runs the per-level speaking test that gates advancement.
// The learner works through scripted prompts, records a spoken response for
// each and self-evaluates it against the expected line; completing every
// step sets the level's challenge flag in the progress store, which is the
// only way that flag is ever set.
package challenge

import (
	"errors"

	"github.com/example/drillbot/internal/catalog"
	"github.com/example/drillbot/internal/progress"
	"github.com/example/drillbot/pkg/models"
)

// ErrNoContent is returned when a level has no scenario and no phrases to
// build one from.
var ErrNoContent = errors.New("challenge: no content for level")

// ErrFinished is returned when stepping past a completed run.
var ErrFinished = errors.New("challenge: run already finished")

// fallbackSteps bounds a generated scenario's length.
const fallbackSteps = 4

// ScenarioFor returns the level's challenge scenario. Curricula can author
// scenarios; for levels without one, a scenario is generated from the
// level's first phrases (prompt = translation, expected = text).
func ScenarioFor(cat *catalog.Catalog, level int) (models.ChallengeScenario, error) {
	if authored := cat.Challenge(level); authored != nil {
		return *authored, nil
	}

	lvl := cat.Level(level)
	if lvl == nil || len(lvl.Phrases) == 0 {
		return models.ChallengeScenario{}, ErrNoContent
	}

	scenario := models.ChallengeScenario{
		Level: level,
		Title: "Level review",
	}
	for _, p := range lvl.Phrases {
		if len(scenario.Steps) >= fallbackSteps {
			break
		}
		scenario.Steps = append(scenario.Steps, models.ChallengeStep{
			Prompt:   "Say: " + p.Translation,
			Hint:     p.Pronunciation,
			Expected: p.Text,
		})
	}
	return scenario, nil
}

// Run is one attempt at a level challenge.
type Run struct {
	scenario models.ChallengeScenario
	prog     *progress.Store
	step     int
	done     bool
}

// NewRun starts a challenge attempt for a level.
func NewRun(cat *catalog.Catalog, prog *progress.Store, level int) (*Run, error) {
	scenario, err := ScenarioFor(cat, level)
	if err != nil {
		return nil, err
	}
	return &Run{scenario: scenario, prog: prog}, nil
}

// Scenario returns the scenario being attempted.
func (r *Run) Scenario() models.ChallengeScenario {
	return r.scenario
}

// Step returns the current step and its 1-based position.
func (r *Run) Step() (models.ChallengeStep, int) {
	return r.scenario.Steps[r.step], r.step + 1
}

// Len returns the number of steps in the scenario.
func (r *Run) Len() int {
	return len(r.scenario.Steps)
}

// Done reports whether the run has completed every step.
func (r *Run) Done() bool {
	return r.done
}

// Advance records the learner's self-evaluation of the current step. A
// failed step stays current so it can be retried. Passing the final step
// completes the run and sets the level's challenge flag.
func (r *Run) Advance(success bool) (bool, error) {
	if r.done {
		return true, ErrFinished
	}
	if !success {
		return false, nil
	}
	if r.step < len(r.scenario.Steps)-1 {
		r.step++
		return false, nil
	}
	r.done = true
	r.prog.SetChallengePassed(r.scenario.Level)
	return true, nil
}
