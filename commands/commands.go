package commands

import "github.com/bwmarrin/discordgo"

// Generate returns the moderation command set registered on startup.
func Generate() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "modscan",
			Description: "Dry-run the moderation engine against a piece of text",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "content",
					Description: "Text to analyze",
					Required:    true,
				},
			},
		},
		{
			Name:        "quarantine",
			Description: "Quarantine a user: strip roles, lock channels, apply timeout",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to quarantine",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Why the user is being quarantined",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "hours",
					Description: "Duration in hours (default 24)",
					Required:    false,
				},
			},
		},
		{
			Name:        "release",
			Description: "Release a user from quarantine and restore their roles",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to release",
					Required:    true,
				},
			},
		},
		{
			Name:        "verdict",
			Description: "Confirm or deny a recorded violation by content hash",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "hash",
					Description: "Content hash of the violation event",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "confirmed",
					Description: "True if the detection was correct",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "severity-adjustment",
					Description: "Optional severity correction (-2 to 2)",
					Required:    false,
				},
			},
		},
		{
			Name:        "modhistory",
			Description: "Show a user's violation history",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to look up",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "days",
					Description: "Lookback window in days (default 30)",
					Required:    false,
				},
			},
		},
		{
			Name:        "modstatus",
			Description: "Show engine status and recent enforcement totals",
		},
	}
}
