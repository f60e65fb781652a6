package tasks

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"sentinel-bot/utils/database/audit"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// GenerateModerationStatsEmbed builds the periodic per-category enforcement
// summary for a guild.
func GenerateModerationStatsEmbed(db *sqlx.DB, guildID string, duration time.Duration) (*discordgo.MessageEmbed, error) {
	since := time.Now().Add(-duration)
	stats, err := audit.GetCategoryStats(db, guildID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get category stats for guild %s: %w", guildID, err)
	}

	total := 0
	var sortedCategories []string
	for category, count := range stats {
		total += count
		sortedCategories = append(sortedCategories, category)
	}
	sort.Slice(sortedCategories, func(i, j int) bool {
		return stats[sortedCategories[i]] > stats[sortedCategories[j]]
	})

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("### Enforcement over the last %s\n", duration.String()))
	builder.WriteString(fmt.Sprintf("**Total: %d**\n\n", total))
	for i, category := range sortedCategories {
		builder.WriteString(fmt.Sprintf("%d. %s: %d\n", i+1, category, stats[category]))
	}
	if total == 0 {
		builder.WriteString("No violations recorded.\n")
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Moderation Report",
		Description: builder.String(),
		Timestamp:   time.Now().Format(time.RFC3339),
		Color:       0x00ff00,
	}
	return embed, nil
}

// UpdateModerationStats posts the enforcement summary to the stats channel.
func UpdateModerationStats(s *discordgo.Session, db *sqlx.DB, channelID, guildID string, duration time.Duration) {
	embed, err := GenerateModerationStatsEmbed(db, guildID, duration)
	if err != nil {
		log.Printf("Failed to generate moderation stats embed: %v", err)
		return
	}
	if _, err := s.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.Printf("Failed to send moderation stats to channel %s: %v", channelID, err)
	}
}
