package bot

// Config holds the bot's tunables.
type Config struct {
	// PracticeSize is how many items a practice round enqueues.
	PracticeSize int
	// TTSBaseURL prefixes pronunciation links sent with cards. Empty
	// disables audio links.
	TTSBaseURL string
}

// DefaultConfig returns the default bot configuration.
func DefaultConfig() *Config {
	return &Config{
		PracticeSize: 10,
	}
}
