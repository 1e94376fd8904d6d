package models

// LevelStats summarizes the learner's standing on their current level.
// Recomputed on every derivation, never persisted.
type LevelStats struct {
	Level           int  `json:"level"`
	PhrasesMastered int  `json:"phrases_mastered"`
	TotalPhrases    int  `json:"total_phrases"`
	FramesUsable    int  `json:"frames_usable"`
	TotalFrames     int  `json:"total_frames"`
	// SpokenCurrent counts spoken repetitions toward SpokenTarget, each
	// phrase contributing at most 3.
	SpokenCurrent int `json:"spoken_current"`
	SpokenTarget  int `json:"spoken_target"`
	// ReadyForChallenge is set when the level's challenge gate is the only
	// thing between the learner and the next level.
	ReadyForChallenge bool `json:"ready_for_challenge"`
}

// SessionStats tracks self-rated accuracy within a single session.
type SessionStats struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}
