package bot

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/drillbot/internal/catalog"
	"github.com/example/drillbot/internal/challenge"
	"github.com/example/drillbot/internal/gauntlet"
	"github.com/example/drillbot/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data prefixes.
const (
	callbackLanguage      = "lang:"
	callbackReveal        = "reveal"
	callbackSpoken        = "spoken"
	callbackRate          = "rate:"
	callbackFrameYes      = "frame:yes"
	callbackFrameNo       = "frame:no"
	callbackUnlock        = "unlock"
	callbackPractice      = "practice"
	callbackGauntletStart = "gaunt:start"
	callbackGauntletNext  = "gaunt:next"
	callbackGauntletStop  = "gaunt:cancel"
	callbackGauntletAns   = "gaunt:ans:"
	callbackChallenge     = "chal:start"
	callbackChalReveal    = "chal:reveal"
	callbackChalYes       = "chal:yes"
	callbackChalNo        = "chal:no"
)

func (b *Bot) handleCommand(message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	switch message.Command() {
	case "start":
		return b.handleStart(chatID)
	case "help":
		return b.handleHelp(chatID)
	case "learn":
		return b.withState(chatID, b.showCurrentCard)
	case "unlock":
		return b.withState(chatID, b.handleUnlock)
	case "practice":
		return b.withState(chatID, b.handlePractice)
	case "gauntlet":
		return b.withState(chatID, b.handleGauntletIntro)
	case "challenge":
		return b.withState(chatID, b.handleChallengeStart)
	case "stats":
		return b.withState(chatID, b.handleStats)
	case "streak":
		return b.withState(chatID, b.handleStreak)
	case "reload":
		if !b.isAdmin(message.From.ID) {
			return b.reply(chatID, "This command is only available for administrators.")
		}
		return b.withState(chatID, b.handleReload)
	default:
		return b.reply(chatID, "Unknown command. Try /help.")
	}
}

// withState runs a handler that requires a selected language.
func (b *Bot) withState(chatID int64, fn func(int64, *learnerState) error) error {
	st, ok := b.state(chatID)
	if !ok {
		return b.reply(chatID, "Pick a language first with /start.")
	}
	return fn(chatID, st)
}

func (b *Bot) handleStart(chatID int64) error {
	infos, err := catalog.Languages(b.contentDir)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return b.reply(chatID, "No curricula installed.")
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, info := range infos {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(info.Name, callbackLanguage+info.Language),
		))
	}
	msg := tgbotapi.NewMessage(chatID, "Which language are we drilling today?")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	return b.send(msg)
}

func (b *Bot) handleHelp(chatID int64) error {
	return b.reply(chatID, strings.Join([]string{
		"/start — pick a language",
		"/learn — review what's due",
		"/unlock — add 5 new items from your level",
		"/practice — shuffled review of unlocked content",
		"/challenge — the speaking test that unlocks the next level",
		"/gauntlet — test out of upcoming content, 5/5 per batch",
		"/stats — your level progress",
		"/streak — your daily streak",
	}, "\n"))
}

func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) error {
	// Acknowledge so the client stops the spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}

	chatID := callback.Message.Chat.ID
	data := callback.Data

	if language, ok := strings.CutPrefix(data, callbackLanguage); ok {
		return b.handleLanguageSelect(chatID, language)
	}

	st, ok := b.state(chatID)
	if !ok {
		return b.reply(chatID, "Pick a language first with /start.")
	}

	switch {
	case data == callbackReveal:
		st.revealed = true
		return b.showCurrentCard(chatID, st)
	case data == callbackSpoken:
		return b.handleSpoken(chatID, st)
	case strings.HasPrefix(data, callbackRate):
		quality, err := strconv.Atoi(strings.TrimPrefix(data, callbackRate))
		if err != nil {
			return fmt.Errorf("bad rate callback %q: %w", data, err)
		}
		return b.handleRate(chatID, st, quality)
	case data == callbackFrameYes:
		return b.handleFrame(chatID, st, true)
	case data == callbackFrameNo:
		return b.handleFrame(chatID, st, false)
	case data == callbackUnlock:
		return b.handleUnlock(chatID, st)
	case data == callbackPractice:
		return b.handlePractice(chatID, st)
	case data == callbackGauntletStart, data == callbackGauntletNext:
		return b.handleGauntletAdvance(chatID, st)
	case data == callbackGauntletStop:
		return b.handleGauntletCancel(chatID, st)
	case strings.HasPrefix(data, callbackGauntletAns):
		idx, err := strconv.Atoi(strings.TrimPrefix(data, callbackGauntletAns))
		if err != nil {
			return fmt.Errorf("bad answer callback %q: %w", data, err)
		}
		return b.handleGauntletAnswer(chatID, st, idx)
	case data == callbackChallenge:
		return b.handleChallengeStart(chatID, st)
	case data == callbackChalReveal:
		return b.showChallengeStep(chatID, st, true)
	case data == callbackChalYes:
		return b.handleChallengeResult(chatID, st, true)
	case data == callbackChalNo:
		return b.handleChallengeResult(chatID, st, false)
	default:
		return b.reply(chatID, "That button has expired. /learn to continue.")
	}
}

func (b *Bot) handleLanguageSelect(chatID int64, language string) error {
	st, err := b.openLanguage(chatID, language)
	if err != nil {
		return err
	}
	if err := b.reply(chatID, fmt.Sprintf("Drilling %s. Let's go!", st.catalog.Name)); err != nil {
		return err
	}
	return b.showCurrentCard(chatID, st)
}

// --- Card flow ---

func (b *Bot) showCurrentCard(chatID int64, st *learnerState) error {
	item, ok := st.session.Current()
	if !ok {
		st.session.Derive()
		if item, ok = st.session.Current(); !ok {
			return b.showSummary(chatID, st)
		}
	}

	switch item.Kind {
	case models.KindPhrase:
		return b.showPhraseCard(chatID, st, item)
	case models.KindFrame:
		return b.showFrameCard(chatID, st, item)
	default:
		return fmt.Errorf("unexpected item kind %q in queue", item.Kind)
	}
}

func (b *Bot) showPhraseCard(chatID int64, st *learnerState, item models.Item) error {
	p := st.catalog.Phrase(item.ID)
	if p == nil {
		// Dangling reference; skip it.
		st.session.Queue = st.session.Queue[1:]
		return b.showCurrentCard(chatID, st)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🗣 %s\n", p.Text)
	if p.Pronunciation != "" {
		fmt.Fprintf(&sb, "[%s]\n", p.Pronunciation)
	}
	if link := b.ttsLink(st, p.TTSQuery()); link != "" {
		fmt.Fprintf(&sb, "🔊 %s\n", link)
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	if st.revealed {
		fmt.Fprintf(&sb, "\n%s\n", p.Translation)
		for _, w := range st.catalog.SupportingWords(p) {
			fmt.Fprintf(&sb, "  • %s — %s\n", w.Text, w.Translation)
		}
		sb.WriteString("\nHow well did you recall it?")
		rows = append(rows,
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("0", callbackRate+"0"),
				tgbotapi.NewInlineKeyboardButtonData("1", callbackRate+"1"),
				tgbotapi.NewInlineKeyboardButtonData("2", callbackRate+"2"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("3", callbackRate+"3"),
				tgbotapi.NewInlineKeyboardButtonData("4", callbackRate+"4"),
				tgbotapi.NewInlineKeyboardButtonData("5", callbackRate+"5"),
			),
		)
	} else {
		sb.WriteString("\nSay it out loud, then check yourself.")
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎙 I said it", callbackSpoken),
			tgbotapi.NewInlineKeyboardButtonData("Show translation", callbackReveal),
		))
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	return b.send(msg)
}

func (b *Bot) showFrameCard(chatID int64, st *learnerState, item models.Item) error {
	f := st.catalog.Frame(item.ID)
	if f == nil {
		st.session.Queue = st.session.Queue[1:]
		return b.showCurrentCard(chatID, st)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🧩 %s\n%s\n", f.Template, f.Description)
	for slot, desc := range f.Slots {
		fmt.Fprintf(&sb, "  [%s]: %s\n", slot, desc)
	}
	examples := st.catalog.FrameExamples(f)
	if len(examples) > 0 {
		sb.WriteString("\nFor example:\n")
		for _, ex := range examples {
			fmt.Fprintf(&sb, "  %s — %s\n", ex.Text, ex.Translation)
		}
	}
	sb.WriteString("\nMake a new sentence of your own with this pattern.")

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✓ I made one", callbackFrameYes),
			tgbotapi.NewInlineKeyboardButtonData("✗ Not yet", callbackFrameNo),
		),
	)
	return b.send(msg)
}

func (b *Bot) handleSpoken(chatID int64, st *learnerState) error {
	if err := st.session.RecordSpoken(); err != nil {
		return err
	}
	return b.showCurrentCard(chatID, st)
}

func (b *Bot) handleRate(chatID int64, st *learnerState, quality int) error {
	if err := st.session.RatePhrase(quality); err != nil {
		return err
	}
	st.revealed = false
	return b.showCurrentCard(chatID, st)
}

func (b *Bot) handleFrame(chatID int64, st *learnerState, success bool) error {
	if err := st.session.ResolveFrame(success); err != nil {
		return err
	}
	return b.showCurrentCard(chatID, st)
}

// --- Session edges ---

func (b *Bot) showSummary(chatID int64, st *learnerState) error {
	stats := st.session.Stats

	var sb strings.Builder
	fmt.Fprintf(&sb, "All caught up! Level %d.\n", st.session.Level)
	fmt.Fprintf(&sb, "Phrases mastered: %d/%d\n", stats.PhrasesMastered, stats.TotalPhrases)
	fmt.Fprintf(&sb, "Patterns usable: %d/%d\n", stats.FramesUsable, stats.TotalFrames)
	if stats.SpokenTarget > 0 {
		fmt.Fprintf(&sb, "Voice confidence: %d/%d\n", stats.SpokenCurrent, stats.SpokenTarget)
	}
	if s := st.session.SessionStats; s.Total > 0 {
		fmt.Fprintf(&sb, "This session: %d/%d correct\n", s.Correct, s.Total)
	}
	if next := st.session.NextReviewTime(); next != nil {
		fmt.Fprintf(&sb, "Next review due %s\n", next.Format("Mon 15:04"))
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Unlock 5 new items", callbackUnlock),
			tgbotapi.NewInlineKeyboardButtonData("Practice", callbackPractice),
		),
	}
	if stats.ReadyForChallenge {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🔥 Level %d challenge", st.session.Level), callbackChallenge),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⚡ Gauntlet: skip ahead", callbackGauntletStart),
	))

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	return b.send(msg)
}

func (b *Bot) handleUnlock(chatID int64, st *learnerState) error {
	if !st.session.Unlock() {
		return b.reply(chatID, "Level complete — nothing left to unlock. Take the /challenge!")
	}
	if err := b.reply(chatID, fmt.Sprintf("Unlocked %d new items.", st.session.Remaining())); err != nil {
		return err
	}
	return b.showCurrentCard(chatID, st)
}

func (b *Bot) handlePractice(chatID int64, st *learnerState) error {
	st.session.StartPractice(b.config.PracticeSize)
	return b.showCurrentCard(chatID, st)
}

func (b *Bot) handleStats(chatID int64, st *learnerState) error {
	return b.showSummary(chatID, st)
}

// handleReload re-reads the chat's curriculum from disk, picking up freshly
// imported content without a restart.
func (b *Bot) handleReload(chatID int64, st *learnerState) error {
	fresh, err := b.openLanguage(chatID, st.language)
	if err != nil {
		return err
	}
	return b.reply(chatID, fmt.Sprintf("Reloaded %s curriculum.", fresh.catalog.Name))
}

func (b *Bot) handleStreak(chatID int64, st *learnerState) error {
	streak := st.progress.Streak(time.Now())
	return b.reply(chatID, fmt.Sprintf("🔥 %d day streak", streak))
}

func (b *Bot) ttsLink(st *learnerState, text string) string {
	if b.config.TTSBaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s?voice=%s&text=%s",
		b.config.TTSBaseURL, url.QueryEscape(st.catalog.Voice), url.QueryEscape(text))
}

// --- Gauntlet flow ---

func (b *Bot) handleGauntletIntro(chatID int64, st *learnerState) error {
	st.gauntlet = gauntlet.New(st.catalog, st.progress)
	msg := tgbotapi.NewMessage(chatID,
		"⚡ The Gauntlet\n"+
			"Test out of upcoming content. 5/5 to pass a batch; pass and you "+
			"immediately face the next one. One mistake ends the run.")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Start", callbackGauntletStart),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", callbackGauntletStop),
		),
	)
	return b.send(msg)
}

// handleGauntletAdvance starts the first batch or continues after a pass.
func (b *Bot) handleGauntletAdvance(chatID int64, st *learnerState) error {
	if st.gauntlet == nil {
		return b.handleGauntletIntro(chatID, st)
	}
	if err := st.gauntlet.Start(); err != nil {
		return err
	}
	if st.gauntlet.State() == gauntlet.StateVictory {
		return b.finishGauntlet(chatID, st, "🏆 Curriculum complete! Nothing left to test out of.")
	}
	return b.showGauntletQuestion(chatID, st)
}

func (b *Bot) showGauntletQuestion(chatID int64, st *learnerState) error {
	q, err := st.gauntlet.Question()
	if err != nil {
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Streak: %d batches | Q %d/%d\n\n", st.gauntlet.Streak(),
		st.gauntlet.QuestionNumber(), len(st.gauntlet.Batch()))
	fmt.Fprintf(&sb, "How do you say…\n«%s»", q.Prompt)

	var rows [][]tgbotapi.InlineKeyboardButton
	for i, opt := range q.Options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(opt, fmt.Sprintf("%s%d", callbackGauntletAns, i)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Give up", callbackGauntletStop),
	))

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	return b.send(msg)
}

func (b *Bot) handleGauntletAnswer(chatID int64, st *learnerState, idx int) error {
	if st.gauntlet == nil {
		return b.reply(chatID, "No gauntlet running. /gauntlet to start one.")
	}
	q, err := st.gauntlet.Question()
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(q.Options) {
		return fmt.Errorf("answer index %d out of range", idx)
	}

	if _, err := st.gauntlet.Answer(q.Options[idx]); err != nil {
		return err
	}

	switch st.gauntlet.State() {
	case gauntlet.StateQuiz:
		return b.showGauntletQuestion(chatID, st)
	case gauntlet.StateBatchSuccess:
		msg := tgbotapi.NewMessage(chatID, "🏆 Batch complete — 5/5! Keep going?")
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Continue →", callbackGauntletNext),
				tgbotapi.NewInlineKeyboardButtonData("Stop & save", callbackGauntletStop),
			),
		)
		return b.send(msg)
	default:
		// Any miss ends the run; accepted batches are already committed.
		kept := len(st.gauntlet.Accepted())
		return b.finishGauntlet(chatID, st,
			fmt.Sprintf("💀 Streak broken. You kept %d mastered items.", kept))
	}
}

func (b *Bot) handleGauntletCancel(chatID int64, st *learnerState) error {
	if st.gauntlet == nil {
		return b.reply(chatID, "No gauntlet running.")
	}
	kept := len(st.gauntlet.Accepted())
	st.gauntlet.Cancel()
	return b.finishGauntlet(chatID, st,
		fmt.Sprintf("Gauntlet ended. You kept %d mastered items.", kept))
}

func (b *Bot) finishGauntlet(chatID int64, st *learnerState, text string) error {
	st.gauntlet = nil
	// Committed items must drop out of review before the next card.
	st.session.Queue = nil
	st.session.Derive()
	return b.reply(chatID, text)
}

// --- Challenge flow ---

func (b *Bot) handleChallengeStart(chatID int64, st *learnerState) error {
	run, err := challenge.NewRun(st.catalog, st.progress, st.session.Level)
	if err != nil {
		return err
	}
	st.challenge = run

	scenario := run.Scenario()
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏁 Final challenge — level %d\n%s", scenario.Level, scenario.Title)
	if scenario.Description != "" {
		fmt.Fprintf(&sb, "\n%s", scenario.Description)
	}
	if err := b.reply(chatID, sb.String()); err != nil {
		return err
	}
	return b.showChallengeStep(chatID, st, false)
}

func (b *Bot) showChallengeStep(chatID int64, st *learnerState, revealed bool) error {
	if st.challenge == nil {
		return b.reply(chatID, "No challenge running. /challenge to start one.")
	}
	step, n := st.challenge.Step()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Step %d/%d\n%s\n", n, st.challenge.Len(), step.Prompt)
	var rows [][]tgbotapi.InlineKeyboardButton
	if revealed {
		fmt.Fprintf(&sb, "\nExpected: %s\nDid you communicate this effectively?", step.Expected)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes", callbackChalYes),
			tgbotapi.NewInlineKeyboardButtonData("No", callbackChalNo),
		))
	} else {
		if step.Hint != "" {
			fmt.Fprintf(&sb, "Hint: %s\n", step.Hint)
		}
		sb.WriteString("Say it out loud, then evaluate yourself.")
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Evaluate myself", callbackChalReveal),
		))
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	return b.send(msg)
}

func (b *Bot) handleChallengeResult(chatID int64, st *learnerState, success bool) error {
	if st.challenge == nil {
		return b.reply(chatID, "No challenge running. /challenge to start one.")
	}
	done, err := st.challenge.Advance(success)
	if err != nil {
		return err
	}
	if !success {
		if err := b.reply(chatID, "Try again — you need to handle this situation."); err != nil {
			return err
		}
		return b.showChallengeStep(chatID, st, false)
	}
	if !done {
		return b.showChallengeStep(chatID, st, false)
	}

	st.challenge = nil
	st.session.Queue = nil
	st.session.Derive()
	return b.reply(chatID, fmt.Sprintf("🎉 Challenge complete! Welcome to level %d.", st.session.Level))
}
