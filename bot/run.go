package bot

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sentinel-bot/commands"
	"sentinel-bot/utils"
)

// Run opens the session, registers commands and blocks until SIGINT/SIGTERM.
func (b *Bot) Run() {
	if err := b.Session.Open(); err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	log.Println("Registering moderation commands...")
	cmds := commands.Generate()
	registered, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, b.Config.GuildID, cmds)
	if err != nil {
		log.Printf("cannot register commands for guild '%s': %v", b.Config.GuildID, err)
	} else {
		b.RegisteredCommands = registered
	}

	b.scheduler.Start()

	fmt.Println("Moderation engine is now running. Press CTRL-C to exit.")
	if err := utils.LogInfo(b.Config.LogWebhookURL, "System", "Startup", "Moderation engine has started successfully."); err != nil {
		log.Printf("Failed to send startup log: %v", err)
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}
