// Package scheduler runs the periodic jobs of the bot, currently the review
// reminder sweep.
package scheduler

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"
)

// Default window of the day in which reminders may be sent.
const (
	DefaultReminderStartHour = 8
	DefaultReminderEndHour   = 22
)

// Due describes one learner with reviews waiting.
type Due struct {
	ChatID   int64
	Language string
	Count    int
}

// Source enumerates learners with due reviews. Implemented by the bot from
// its active sessions.
type Source interface {
	DueLearners() []Due
}

// Notifier delivers a reminder to a learner.
type Notifier interface {
	SendReminder(chatID int64, language string, count int) error
}

// Scheduler manages the reminder job.
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    Source
	notifier  Notifier
}

// New creates a scheduler sweeping the given source.
func New(source Source, notifier Notifier) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		source:    source,
		notifier:  notifier,
	}
}

// Start begins the hourly reminder sweep without blocking.
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled jobs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) checkAndSendReminders() {
	currentHour := time.Now().Hour()
	startHour := hourFromEnv("REMINDER_START_HOUR", DefaultReminderStartHour)
	endHour := hourFromEnv("REMINDER_END_HOUR", DefaultReminderEndHour)

	if currentHour < startHour || currentHour > endHour {
		return
	}

	for _, due := range s.source.DueLearners() {
		if due.Count == 0 {
			continue
		}
		if err := s.notifier.SendReminder(due.ChatID, due.Language, due.Count); err != nil {
			log.Printf("Error sending reminder to %d: %v", due.ChatID, err)
		}
	}
}

func hourFromEnv(name string, fallback int) int {
	value := os.Getenv(name)
	if value == "" {
		return fallback
	}
	hour, err := strconv.Atoi(value)
	if err != nil || hour < 0 || hour > 23 {
		return fallback
	}
	return hour
}
