package bot

import (
	"log"
	"sync"
	"time"

	"sentinel-bot/quarantine"
	"sentinel-bot/scanner"
	"sentinel-bot/tasks"
)

// releaseSweepInterval is how often expired quarantines are checked. Short
// on purpose: the sweep is a couple of indexed queries.
const releaseSweepInterval = 1 * time.Minute

// Scheduler manages all background tasks: quarantine auto-release, audit
// retention and the periodic moderation stats report.
type Scheduler struct {
	bot     *Bot
	manager *quarantine.Manager
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler for the bot.
func NewScheduler(b *Bot, manager *quarantine.Manager) *Scheduler {
	return &Scheduler{
		bot:     b,
		manager: manager,
		done:    make(chan struct{}),
	}
}

// Start begins all scheduled tasks. Every task joins the scheduler's
// WaitGroup so Stop returns only after they have all exited.
func (s *Scheduler) Start() {
	scanner.StartReleaseSweeper(s.manager, releaseSweepInterval, s.done, &s.wg)
	scanner.StartRetentionCleaner(s.bot.AuditDB, s.bot.Config.AuditRetentionDays, s.done, &s.wg)

	if s.bot.Config.StatsChannelID != "" {
		s.wg.Add(1)
		go s.runStatsReporter()
	}
}

// Stop terminates the scheduler's own goroutines.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	close(s.done)
	s.wg.Wait()
	log.Println("Scheduler stopped.")
}

func (s *Scheduler) runStatsReporter() {
	defer s.wg.Done()
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tasks.UpdateModerationStats(s.bot.Session, s.bot.AuditDB, s.bot.Config.StatsChannelID, s.bot.Config.GuildID, 24*time.Hour)
		case <-s.done:
			return
		}
	}
}
