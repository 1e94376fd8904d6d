package models

// ChallengeStep is one prompt of a level challenge scenario. The learner
// records a spoken response and self-evaluates it against Expected.
type ChallengeStep struct {
	Prompt   string `json:"prompt" yaml:"prompt"`
	Hint     string `json:"hint,omitempty" yaml:"hint,omitempty"`
	Expected string `json:"expected" yaml:"expected"`
}

// ChallengeScenario is the scripted speaking test that gates advancement
// past a level.
type ChallengeScenario struct {
	Level       int             `json:"level" yaml:"level"`
	Title       string          `json:"title" yaml:"title"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Steps       []ChallengeStep `json:"steps" yaml:"steps"`
}
