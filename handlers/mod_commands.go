package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"sentinel-bot/bot"
	"sentinel-bot/engine"
	"sentinel-bot/model"
	"sentinel-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// optionMap flattens interaction options by name.
func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

// HandleModScan runs the read-only analyzer against supplied text and shows
// what the engine would do, without enforcing anything.
func HandleModScan(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i)
	content := opts["content"].StringValue()

	// A neutral context: established account, no history. The scan shows
	// pure content risk.
	ctx := model.UserRiskContext{
		AccountAgeDays: 365,
		HasAvatar:      true,
		RoleCount:      1,
	}

	result, err := b.Engine.AnalyzeMessage(content, ctx)
	if err != nil {
		utils.SendErrorResponse(s, i, "Analysis failed.")
		return
	}
	if result.Clean() {
		utils.SendSimpleResponse(s, i, "✅ No rule matches. This content would pass.")
		return
	}

	var matched []string
	for _, m := range result.Matches {
		matched = append(matched, fmt.Sprintf("`%s` (%s)", m.PatternID, m.Category))
	}

	embed := &discordgo.MessageEmbed{
		Title: "Moderation Scan",
		Color: 0xE67E22,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Matches", Value: strings.Join(matched, "\n")},
			{Name: "Risk Score", Value: fmt.Sprintf("%.2f", result.RiskScore)},
			{Name: "Severity", Value: result.Severity.String()},
			{Name: "Recommended Action", Value: result.RecommendedAction.String()},
			{Name: "Confidence", Value: fmt.Sprintf("%.2f", result.Confidence)},
		},
	}
	utils.SendEmbedResponse(s, i, embed)
}

// HandleQuarantine quarantines a user on a moderator's request.
func HandleQuarantine(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	opts := optionMap(i)
	targetUser := opts["user"].UserValue(s)
	reason := opts["reason"].StringValue()
	hours := 24
	if opt, ok := opts["hours"]; ok {
		hours = int(opt.IntValue())
	}

	record, err := b.Engine.Quarantine(i.GuildID, targetUser.ID, reason, hours, i.Member.User.ID)
	if errors.Is(err, engine.ErrPermissionDenied) {
		utils.SendFollowUpError(s, i.Interaction, "The platform refused access to the user's roles. Check the bot's role position and permissions.")
		return
	}
	if err != nil {
		log.Printf("Quarantine of user %s failed: %v", targetUser.ID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to quarantine the user: "+err.Error())
		return
	}

	roleIDs, _ := record.OriginalRoleIDs()
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf(
		"🔒 Quarantined <@%s> for %d hour(s). %d role(s) captured. Auto-release at <t:%d:f>.",
		targetUser.ID, hours, len(roleIDs), record.ReleaseAt))
}

// HandleRelease releases a user from quarantine.
func HandleRelease(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	opts := optionMap(i)
	targetUser := opts["user"].UserValue(s)

	if err := b.Engine.Release(targetUser.ID); err != nil {
		log.Printf("Release of user %s failed: %v", targetUser.ID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to release the user.")
		return
	}
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("🔓 Released <@%s> from quarantine.", targetUser.ID))
}

// HandleVerdict records a moderator's confirm/deny judgment on a violation.
func HandleVerdict(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i)
	hash := opts["hash"].StringValue()
	confirmed := opts["confirmed"].BoolValue()
	var severityAdjustment *int
	if opt, ok := opts["severity-adjustment"]; ok {
		adj := int(opt.IntValue())
		severityAdjustment = &adj
	}

	outcome, err := b.Engine.SubmitVerdict(hash, confirmed, i.Member.User.ID, severityAdjustment)
	if errors.Is(err, engine.ErrNotFound) {
		utils.SendErrorResponse(s, i, "No violation event found for that hash.")
		return
	}
	if err != nil {
		log.Printf("Verdict submission for hash %s failed: %v", hash, err)
		utils.SendErrorResponse(s, i, "Failed to record the verdict.")
		return
	}

	verdict := "denied ❌"
	if confirmed {
		verdict = "confirmed ✅"
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf(
		"Verdict %s for `%s` (%s). %d similar incident(s) in the last 30 days; suggested confidence adjustment %+.2f.",
		verdict, hash[:12], outcome.Event.Category, len(outcome.SimilarIncidents), outcome.ConfidenceAdjustment))
}

// HandleHistory shows a user's recent violation events.
func HandleHistory(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i)
	targetUser := opts["user"].UserValue(s)
	days := 30
	if opt, ok := opts["days"]; ok {
		days = int(opt.IntValue())
	}

	events, err := b.Engine.GetUserHistory(targetUser.ID, days)
	if err != nil {
		log.Printf("History lookup for user %s failed: %v", targetUser.ID, err)
		utils.SendErrorResponse(s, i, "Failed to fetch violation history.")
		return
	}
	if len(events) == 0 {
		utils.SendSimpleResponse(s, i, fmt.Sprintf("No violations for <@%s> in the last %d day(s).", targetUser.ID, days))
		return
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("**%d violation(s) in the last %d day(s):**\n", len(events), days))
	limit := len(events)
	if limit > 10 {
		limit = 10
	}
	for _, event := range events[:limit] {
		builder.WriteString(fmt.Sprintf("- <t:%d:d> %s / %s → %s (score %.2f) `%s`\n",
			event.Timestamp, event.Category, model.Severity(event.Severity), event.ActionTaken,
			event.RiskScore, event.ContentHash[:12]))
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Violation history for %s", targetUser.Username),
		Description: builder.String(),
		Color:       0xED4245,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	utils.SendEmbedResponse(s, i, embed)
}
