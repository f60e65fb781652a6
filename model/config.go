package model

// Config stores the application configuration.
type Config struct {
	BotToken           string
	AppID              string
	GuildID            string
	LogWebhookURL      string
	StatsChannelID     string
	AuditDBPath        string
	QuarantineDBPath   string
	RulesPath          string
	AuditRetentionDays int
	AdminRoleIDs       []string
	DeveloperUserIDs   []string
}
