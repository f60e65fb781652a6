package handlers

import (
	"sentinel-bot/bot"
	"sentinel-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// Register wires the message pipeline and the slash-command dispatch onto
// the bot's session.
func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)

	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		HandleMessage(s, m, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if handler, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			handler(s, i)
		}
	})
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	adminOnly := func(handler func(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot)) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if i.Member == nil {
				utils.SendErrorResponse(s, i, "This command only works inside a server.")
				return
			}
			level := utils.CheckPermission(i.Member.Roles, i.Member.User.ID, b.Config.AdminRoleIDs, b.Config.DeveloperUserIDs)
			if level == utils.GuestPermission {
				utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
				return
			}
			handler(s, i, b)
		}
	}

	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"modscan":    adminOnly(HandleModScan),
		"quarantine": adminOnly(HandleQuarantine),
		"release":    adminOnly(HandleRelease),
		"verdict":    adminOnly(HandleVerdict),
		"modhistory": adminOnly(HandleHistory),
		"modstatus":  adminOnly(HandleStatus),
	}
}
