package models

// ItemKind distinguishes the drillable unit types of a curriculum.
type ItemKind string

const (
	// KindPhrase is a fixed target-language sentence drilled by recall and speech.
	KindPhrase ItemKind = "phrase"
	// KindFrame is a generative template with named slots.
	KindFrame ItemKind = "frame"
	// KindWord is atomic vocabulary, referenced by phrases but not drilled on its own.
	KindWord ItemKind = "word"
)

// Item is a lightweight reference to a drillable unit, used by review queues
// and the gauntlet. The catalog resolves it to the full Phrase or Frame.
type Item struct {
	ID    string   `json:"id"`
	Kind  ItemKind `json:"kind"`
	Level int      `json:"level"`
}

// Phrase is a fixed sentence in the target language.
type Phrase struct {
	ID            string   `json:"id" yaml:"id"`
	Text          string   `json:"text" yaml:"text"`
	Translation   string   `json:"translation" yaml:"translation"`
	Pronunciation string   `json:"pronunciation,omitempty" yaml:"pronunciation,omitempty"`
	WordIDs       []string `json:"word_ids,omitempty" yaml:"word_ids,omitempty"`
	// AudioQuery overrides Text when requesting TTS audio.
	AudioQuery string `json:"audio_query,omitempty" yaml:"audio_query,omitempty"`
}

// TTSQuery returns the text to hand to the text-to-speech collaborator.
func (p Phrase) TTSQuery() string {
	if p.AudioQuery != "" {
		return p.AudioQuery
	}
	return p.Text
}

// Frame is a generative pattern with bracketed slot placeholders, e.g.
// "[Thing] istiyorum." mastered by producing valid novel instances.
type Frame struct {
	ID          string            `json:"id" yaml:"id"`
	Template    string            `json:"template" yaml:"template"`
	Description string            `json:"description" yaml:"description"`
	Slots       map[string]string `json:"slots,omitempty" yaml:"slots,omitempty"`
	// ExamplePhraseIDs reference phrases that serve as worked examples.
	ExamplePhraseIDs []string `json:"example_phrase_ids,omitempty" yaml:"example_phrase_ids,omitempty"`
}

// Word is an atomic vocabulary entry referenced by phrases.
type Word struct {
	ID            string `json:"id" yaml:"id"`
	Text          string `json:"text" yaml:"text"`
	Translation   string `json:"translation" yaml:"translation"`
	Pronunciation string `json:"pronunciation,omitempty" yaml:"pronunciation,omitempty"`
}
