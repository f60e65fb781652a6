package bot

import (
	"fmt"
	"log"

	"sentinel-bot/decision"
	"sentinel-bot/engine"
	"sentinel-bot/learning"
	"sentinel-bot/model"
	"sentinel-bot/quarantine"
	"sentinel-bot/rules"
	"sentinel-bot/scorer"
	"sentinel-bot/utils/database/audit"
	quarantine_db "sentinel-bot/utils/database/quarantine"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// Bot owns the discord session, the moderation engine and the scheduler.
type Bot struct {
	Session            *discordgo.Session
	Config             *model.Config
	Engine             *engine.Engine
	AuditDB            *sqlx.DB
	QuarantineDB       *sqlx.DB
	RegisteredCommands []*discordgo.ApplicationCommand
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)

	scheduler *Scheduler
	done      chan struct{}
}

// New builds the bot: session, stores, rule set and the fully wired engine.
func New(cfg *model.Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages | discordgo.IntentMessageContent
	dg.StateEnabled = false

	auditDB, err := audit.Init(cfg.AuditDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audit store: %w", err)
	}
	quarantineDB, err := quarantine_db.Init(cfg.QuarantineDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize quarantine store: %w", err)
	}

	ruleSet, err := rules.Load(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule set: %w", err)
	}
	log.Printf("Loaded rule set %s (%d rules)", ruleSet.Version(), ruleSet.Len())

	adapter := NewPlatformAdapter(dg)
	manager := quarantine.NewManager(quarantineDB, adapter, adapter, adapter)
	eng := engine.New(
		auditDB,
		scorer.New(ruleSet),
		decision.NewTracker(),
		manager,
		learning.NewLoop(auditDB),
		adapter,
		adapter,
		adapter,
		cfg.LogWebhookURL,
	)

	b := &Bot{
		Session:      dg,
		Config:       cfg,
		Engine:       eng,
		AuditDB:      auditDB,
		QuarantineDB: quarantineDB,
		done:         make(chan struct{}),
	}
	b.scheduler = NewScheduler(b, manager)
	return b, nil
}

// Done exposes the shutdown channel to background tasks.
func (b *Bot) Done() <-chan struct{} {
	return b.done
}

// Close shuts the bot down gracefully.
func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	close(b.done)
	b.scheduler.Stop()
	if err := b.Session.Close(); err != nil {
		log.Printf("Error closing session: %v", err)
	}
	if err := b.AuditDB.Close(); err != nil {
		log.Printf("Error closing audit store: %v", err)
	}
	if err := b.QuarantineDB.Close(); err != nil {
		log.Printf("Error closing quarantine store: %v", err)
	}
}
