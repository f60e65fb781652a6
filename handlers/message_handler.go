package handlers

import (
	"fmt"
	"log"

	"sentinel-bot/bot"
	"sentinel-bot/engine"
	"sentinel-bot/model"
	"sentinel-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleMessage feeds every incoming message through the moderation engine.
func HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate, b *bot.Bot) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}
	if m.Content == "" {
		return
	}

	createdAt, err := discordgo.SnowflakeTimestamp(m.Author.ID)
	if err != nil {
		log.Printf("Failed to parse account creation time for user %s: %v", m.Author.ID, err)
	}

	roleCount := 0
	if m.Member != nil {
		roleCount = len(m.Member.Roles)
	}

	msg := engine.IncomingMessage{
		AuthorID:        m.Author.ID,
		GuildID:         m.GuildID,
		ChannelID:       m.ChannelID,
		MessageID:       m.ID,
		Content:         m.Content,
		AuthorCreatedAt: createdAt,
		AuthorRoleCount: roleCount,
		AuthorHasAvatar: m.Author.Avatar != "",
		IsDirectMessage: m.GuildID == "",
	}

	event, err := b.Engine.ProcessMessage(msg)
	if err != nil {
		log.Printf("Error processing message %s: %v", m.ID, err)
	}
	if event == nil {
		return
	}

	detail := fmt.Sprintf("User <@%s> in <#%s>: %s (%s severity, score %.2f, action **%s**)\nHash: `%s`",
		event.UserID, event.ChannelID, event.Category, model.Severity(event.Severity),
		event.RiskScore, event.ActionTaken, event.ContentHash)
	if err := utils.LogWarn(b.Config.LogWebhookURL, "Moderation", "Violation", detail); err != nil {
		log.Printf("Failed to send violation report: %v", err)
	}
}
