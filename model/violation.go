package model

// RuleMatch is a single pattern hit produced during analysis.
type RuleMatch struct {
	Category  ViolationCategory
	PatternID string
	Weight    float64
}

// UserRiskContext is a read-only snapshot of the author at analysis time,
// built from the audit log and the chat platform. It is never persisted on
// its own; a JSON copy rides along on the ViolationEvent.
type UserRiskContext struct {
	AccountAgeDays          int  `json:"account_age_days"`
	HasAvatar               bool `json:"has_avatar"`
	RoleCount               int  `json:"role_count"`
	PriorViolationCount     int  `json:"prior_violation_count"`
	RecentViolationCount24h int  `json:"recent_violation_count_24h"`
	IsDirectMessage         bool `json:"is_direct_message"`
	DuplicateSightings      int  `json:"duplicate_sightings"` // distinct recent authors of identical content
}

// AnalysisResult is the scorer's verdict on one message. Consumed
// immediately; the interesting parts are folded into a ViolationEvent.
type AnalysisResult struct {
	Matches            []RuleMatch
	CategoryConfidence map[ViolationCategory]float64
	RiskScore          float64
	Severity           Severity
	RecommendedAction  EnforcementAction
	Confidence         float64
}

// Clean reports whether no rule matched.
func (r *AnalysisResult) Clean() bool {
	return len(r.Matches) == 0
}

// TopCategory returns the matched category with the highest confidence.
func (r *AnalysisResult) TopCategory() ViolationCategory {
	var best ViolationCategory
	bestConf := -1.0
	for cat, conf := range r.CategoryConfidence {
		if conf > bestConf || (conf == bestConf && cat < best) {
			best = cat
			bestConf = conf
		}
	}
	return best
}

// Tri-state moderator verdict values stored on a ViolationEvent.
const (
	VerdictUnknown   = 0
	VerdictConfirmed = 1
	VerdictDenied    = -1
)

// ViolationEvent is a single enforcement decision as persisted in the
// forensic audit log. The table is named 'violation_events'. Immutable once
// written except for moderator_confirmed, which the feedback loop sets
// exactly once.
type ViolationEvent struct {
	ID                 int64   `db:"event_id"` // Primary Key, Auto-increment
	UserID             string  `db:"user_id"`
	GuildID            string  `db:"guild_id"`
	ChannelID          string  `db:"channel_id"`
	MessageID          string  `db:"message_id"`
	Category           string  `db:"category"`
	Severity           int     `db:"severity"`
	ActionTaken        string  `db:"action_taken"`
	ContentHash        string  `db:"content_hash"`
	OriginalContent    string  `db:"original_content"`
	RiskScore          float64 `db:"risk_score"`
	Timestamp          int64   `db:"timestamp"`
	ContextSnapshot    string  `db:"context_snapshot"` // JSON UserRiskContext
	Confidence         float64 `db:"confidence"`
	ModeratorConfirmed int     `db:"moderator_confirmed"` // 0 unknown, 1 confirmed, -1 denied
}
