// Package bot is the Telegram front end. It relays UI events into the
// progression engine and renders the recomputed state; no engine code calls
// back into this package.
package bot

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/example/drillbot/internal/catalog"
	"github.com/example/drillbot/internal/challenge"
	"github.com/example/drillbot/internal/engine"
	"github.com/example/drillbot/internal/gauntlet"
	"github.com/example/drillbot/internal/progress"
	"github.com/example/drillbot/internal/scheduler"
	"github.com/example/drillbot/internal/storage"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// learnerState is one chat's active drilling context: the language they
// picked, their engine session and whatever side flow (gauntlet, challenge)
// is in progress.
type learnerState struct {
	language  string
	catalog   *catalog.Catalog
	progress  *progress.Store
	session   *engine.Session
	gauntlet  *gauntlet.Session
	challenge *challenge.Run
	// revealed tracks whether the current card's answer side is shown.
	revealed bool
}

// Bot is the Telegram application.
type Bot struct {
	api        *tgbotapi.BotAPI
	token      string
	kv         storage.KV
	contentDir string
	config     *Config

	scheduler        *scheduler.Scheduler
	schedulerEnabled bool

	adminUserIDs map[int64]bool

	states map[int64]*learnerState
}

// New creates a bot backed by the given blob store and content directory.
func New(kv storage.KV, contentDir string) (*Bot, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	b := &Bot{
		token:            token,
		kv:               kv,
		contentDir:       contentDir,
		config:           DefaultConfig(),
		schedulerEnabled: os.Getenv("ENABLE_SCHEDULER") != "false",
		adminUserIDs:     make(map[int64]bool),
		states:           make(map[int64]*learnerState),
	}
	if base := os.Getenv("TTS_BASE_URL"); base != "" {
		b.config.TTSBaseURL = base
	}
	if adminIDs := os.Getenv("ADMIN_USER_IDS"); adminIDs != "" {
		for _, idStr := range strings.Split(adminIDs, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
			if err != nil {
				log.Printf("Warning: invalid admin user ID: %s", idStr)
				continue
			}
			b.adminUserIDs[id] = true
		}
	}
	return b, nil
}

// isAdmin reports whether the user may run administrative commands.
func (b *Bot) isAdmin(userID int64) bool {
	return b.adminUserIDs[userID]
}

// Start connects to Telegram and processes updates until the channel closes.
// Updates are handled strictly in order: every engine operation runs to
// completion before the next event, which the queue-rebuild invariant
// depends on.
func (b *Bot) Start() error {
	api, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %w", err)
	}
	b.api = api
	log.Printf("Authorized on account %s", api.Self.UserName)

	if b.schedulerEnabled {
		b.scheduler = scheduler.New(b, b)
		b.scheduler.Start()
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	for update := range b.api.GetUpdatesChan(updateConfig) {
		b.handleUpdate(update)
	}
	return nil
}

// Stop gracefully stops the bot.
func (b *Bot) Stop() {
	if b.scheduler != nil {
		b.scheduler.Stop()
	}
	if b.api != nil {
		b.api.StopReceivingUpdates()
	}
	log.Println("Bot stopped")
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		if err := b.handleCommand(update.Message); err != nil {
			log.Printf("Error handling command /%s: %v", update.Message.Command(), err)
		}
	case update.CallbackQuery != nil:
		if err := b.handleCallback(update.CallbackQuery); err != nil {
			log.Printf("Error handling callback %q: %v", update.CallbackQuery.Data, err)
		}
	}
}

// state returns the chat's learner state, if a language has been selected.
func (b *Bot) state(chatID int64) (*learnerState, bool) {
	st, ok := b.states[chatID]
	return st, ok
}

// openLanguage builds the learner state for a chat and language and derives
// the initial level and queue.
func (b *Bot) openLanguage(chatID int64, language string) (*learnerState, error) {
	cat, err := catalog.Load(b.contentDir, language)
	if err != nil {
		return nil, err
	}

	learner := fmt.Sprintf("%d", chatID)
	prog := progress.Open(b.kv, learner, language)
	sess := engine.NewSession(learner, cat, prog)
	sess.Derive()

	st := &learnerState{
		language: language,
		catalog:  cat,
		progress: prog,
		session:  sess,
	}
	b.states[chatID] = st
	return st, nil
}

// DueLearners implements scheduler.Source over the active sessions.
func (b *Bot) DueLearners() []scheduler.Due {
	var due []scheduler.Due
	for chatID, st := range b.states {
		count := st.session.DueCount()
		if count > 0 {
			due = append(due, scheduler.Due{ChatID: chatID, Language: st.language, Count: count})
		}
	}
	return due
}

// SendReminder implements scheduler.Notifier.
func (b *Bot) SendReminder(chatID int64, language string, count int) error {
	text := fmt.Sprintf("⏰ %d reviews are waiting in %s. /learn when you're ready.", count, language)
	return b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(msg tgbotapi.Chattable) error {
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (b *Bot) reply(chatID int64, text string) error {
	return b.send(tgbotapi.NewMessage(chatID, text))
}
