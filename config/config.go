package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"sentinel-bot/model"

	"github.com/joho/godotenv"
)

// Load loads the configuration from environment variables.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	webhookURL := os.Getenv("LOG_WEBHOOK_URL")
	if webhookURL == "" {
		log.Println("Warning: LOG_WEBHOOK_URL not set, operator reports will be disabled")
	}

	auditDBPath := os.Getenv("AUDIT_DB_PATH")
	if auditDBPath == "" {
		auditDBPath = "data/audit.db"
	}
	quarantineDBPath := os.Getenv("QUARANTINE_DB_PATH")
	if quarantineDBPath == "" {
		quarantineDBPath = "data/quarantine.db"
	}

	retentionDays := 180
	if v := os.Getenv("AUDIT_RETENTION_DAYS"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("Warning: Invalid AUDIT_RETENTION_DAYS value, using default of 180. Error: %v", err)
		} else {
			retentionDays = parsed
		}
	}

	cfg := &model.Config{
		BotToken:           token,
		AppID:              os.Getenv("APP_ID"),
		GuildID:            os.Getenv("GUILD_ID"),
		LogWebhookURL:      webhookURL,
		StatsChannelID:     os.Getenv("STATS_CHANNEL_ID"),
		AuditDBPath:        auditDBPath,
		QuarantineDBPath:   quarantineDBPath,
		RulesPath:          os.Getenv("RULES_PATH"),
		AuditRetentionDays: retentionDays,
		AdminRoleIDs:       splitIDs(os.Getenv("ADMIN_ROLE_IDS")),
		DeveloperUserIDs:   splitIDs(os.Getenv("DEVELOPER_USER_IDS")),
	}
	return cfg, nil
}

// splitIDs splits a comma-separated ID list, dropping empty entries.
func splitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}
