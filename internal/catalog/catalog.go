// Package catalog provides read-only access to per-language curricula:
// numbered levels of phrases, pattern frames and the vocabulary they
// reference. Curricula are authored externally and never mutated at runtime.
package catalog

import (
	"sort"

	"github.com/example/drillbot/pkg/models"
)

// Level is one unlock tier of a curriculum.
type Level struct {
	Number  int
	Phrases []models.Phrase
	Frames  []models.Frame
	Words   []models.Word
}

// Items returns the level's drillable items in catalog order, phrases first.
func (l *Level) Items() []models.Item {
	items := make([]models.Item, 0, len(l.Phrases)+len(l.Frames))
	for _, p := range l.Phrases {
		items = append(items, models.Item{ID: p.ID, Kind: models.KindPhrase, Level: l.Number})
	}
	for _, f := range l.Frames {
		items = append(items, models.Item{ID: f.ID, Kind: models.KindFrame, Level: l.Number})
	}
	return items
}

// Catalog is the full curriculum for one language.
type Catalog struct {
	Language string
	Name     string
	// Voice is the TTS voice identifier handed to the audio collaborator.
	Voice string

	levels     map[int]*Level
	numbers    []int
	phrases    map[string]*models.Phrase
	frames     map[string]*models.Frame
	words      map[string]*models.Word
	challenges map[int]*models.ChallengeScenario
}

// Level returns the level with the given number, or nil if the curriculum
// has no content for it.
func (c *Catalog) Level(n int) *Level {
	return c.levels[n]
}

// LevelNumbers returns the curriculum's level numbers in ascending order.
func (c *Catalog) LevelNumbers() []int {
	return c.numbers
}

// MaxLevel returns the highest level the curriculum has content for.
func (c *Catalog) MaxLevel() int {
	if len(c.numbers) == 0 {
		return 0
	}
	return c.numbers[len(c.numbers)-1]
}

// Phrase resolves a phrase id anywhere in the curriculum.
func (c *Catalog) Phrase(id string) *models.Phrase {
	return c.phrases[id]
}

// Frame resolves a frame id anywhere in the curriculum.
func (c *Catalog) Frame(id string) *models.Frame {
	return c.frames[id]
}

// Word resolves a word id anywhere in the curriculum.
func (c *Catalog) Word(id string) *models.Word {
	return c.words[id]
}

// SupportingWords resolves the vocabulary referenced by a phrase, dropping
// ids the curriculum does not define.
func (c *Catalog) SupportingWords(p *models.Phrase) []models.Word {
	words := make([]models.Word, 0, len(p.WordIDs))
	for _, id := range p.WordIDs {
		if w := c.words[id]; w != nil {
			words = append(words, *w)
		}
	}
	return words
}

// FrameExamples resolves a frame's worked-example phrases.
func (c *Catalog) FrameExamples(f *models.Frame) []models.Phrase {
	examples := make([]models.Phrase, 0, len(f.ExamplePhraseIDs))
	for _, id := range f.ExamplePhraseIDs {
		if p := c.phrases[id]; p != nil {
			examples = append(examples, *p)
		}
	}
	return examples
}

// PhraseTexts returns the target-language text of every phrase in the
// curriculum, in level order. The gauntlet draws distractors from this pool.
func (c *Catalog) PhraseTexts() []string {
	texts := make([]string, 0, len(c.phrases))
	for _, n := range c.numbers {
		for _, p := range c.levels[n].Phrases {
			texts = append(texts, p.Text)
		}
	}
	return texts
}

// Challenge returns the authored challenge scenario for a level, or nil if
// the curriculum does not define one.
func (c *Catalog) Challenge(level int) *models.ChallengeScenario {
	return c.challenges[level]
}

// index rebuilds the lookup maps and sorted level numbers.
func (c *Catalog) index() {
	c.numbers = c.numbers[:0]
	c.phrases = make(map[string]*models.Phrase)
	c.frames = make(map[string]*models.Frame)
	c.words = make(map[string]*models.Word)
	for n, lvl := range c.levels {
		lvl.Number = n
		c.numbers = append(c.numbers, n)
		for i := range lvl.Phrases {
			c.phrases[lvl.Phrases[i].ID] = &lvl.Phrases[i]
		}
		for i := range lvl.Frames {
			c.frames[lvl.Frames[i].ID] = &lvl.Frames[i]
		}
		for i := range lvl.Words {
			c.words[lvl.Words[i].ID] = &lvl.Words[i]
		}
	}
	sort.Ints(c.numbers)
}
