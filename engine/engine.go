package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"sentinel-bot/decision"
	"sentinel-bot/learning"
	"sentinel-bot/model"
	"sentinel-bot/quarantine"
	"sentinel-bot/scorer"
	"sentinel-bot/utils"
	"sentinel-bot/utils/database/audit"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jmoiron/sqlx"
)

const (
	// duplicateWindow is how long an identical message counts toward the
	// cross-posting burst signal.
	duplicateWindow = 10 * time.Minute
	duplicateCache  = 4096

	// defaultQuarantineHours is used when the decision pipeline itself
	// escalates to quarantine.
	defaultQuarantineHours = 24
)

// timeoutDurations maps severity to the suspension length applied for a
// Timeout action.
var timeoutDurations = map[model.Severity]time.Duration{
	model.SeverityLow:       1 * time.Hour,
	model.SeverityMedium:    6 * time.Hour,
	model.SeverityHigh:      24 * time.Hour,
	model.SeverityCritical:  7 * 24 * time.Hour,
	model.SeverityEmergency: 28 * 24 * time.Hour,
}

// IncomingMessage is the platform-agnostic shape of a message the engine
// evaluates.
type IncomingMessage struct {
	AuthorID        string
	GuildID         string
	ChannelID       string
	MessageID       string
	Content         string
	AuthorCreatedAt time.Time
	AuthorRoleCount int
	AuthorHasAvatar bool
	IsDirectMessage bool
}

// MessageManager deletes offending messages.
type MessageManager interface {
	DeleteMessage(channelID, messageID string) error
}

// BanManager removes users from the guild.
type BanManager interface {
	BanUser(guildID, userID, reason string) error
}

// Engine is the moderation pipeline: scoring, decision, escalation,
// enforcement and audit. One evaluation runs per incoming message;
// evaluations for the same user are serialized by a per-user lock.
type Engine struct {
	auditDB    *sqlx.DB
	scorer     *scorer.Scorer
	tracker    *decision.Tracker
	quarantine *quarantine.Manager
	loop       *learning.Loop
	messages   MessageManager
	bans       BanManager
	susp       quarantine.SuspensionManager

	locks *utils.UserLocker
	dupes *expirable.LRU[string, []string]

	webhookURL string
	now        func() time.Time
}

// New wires the moderation engine together.
func New(auditDB *sqlx.DB, sc *scorer.Scorer, tracker *decision.Tracker, qm *quarantine.Manager, loop *learning.Loop, messages MessageManager, bans BanManager, susp quarantine.SuspensionManager, webhookURL string) *Engine {
	return &Engine{
		auditDB:    auditDB,
		scorer:     sc,
		tracker:    tracker,
		quarantine: qm,
		loop:       loop,
		messages:   messages,
		bans:       bans,
		susp:       susp,
		locks:      utils.NewUserLocker(),
		dupes:      expirable.NewLRU[string, []string](duplicateCache, nil, duplicateWindow),
		webhookURL: webhookURL,
		now:        time.Now,
	}
}

// AnalyzeMessage is the read-only "what would happen" check exposed to
// moderator tooling.
func (e *Engine) AnalyzeMessage(content string, ctx model.UserRiskContext) (*model.AnalysisResult, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: empty content", ErrInvalidInput)
	}
	return e.scorer.Analyze(content, ctx)
}

// ProcessMessage is the production entry point. It returns nil when no
// violation is found. Analysis errors fail open: a scoring bug must not
// punish anyone.
func (e *Engine) ProcessMessage(msg IncomingMessage) (*model.ViolationEvent, error) {
	if msg.Content == "" || msg.AuthorID == "" {
		return nil, fmt.Errorf("%w: message needs content and an author", ErrInvalidInput)
	}

	e.locks.Lock(msg.AuthorID)
	defer e.locks.Unlock(msg.AuthorID)

	hash := audit.HashContent(msg.Content)
	ctx := e.buildContext(msg, hash)

	result, err := e.scorer.Analyze(msg.Content, ctx)
	if err != nil {
		log.Printf("Analysis failed for message %s, treating as no violation: %v", msg.MessageID, err)
		return nil, nil
	}
	if result.Clean() {
		return nil, nil
	}

	category := result.TopCategory()
	action := result.RecommendedAction
	if override := e.tracker.Evaluate(msg.AuthorID, category, action); override != nil {
		action = *override
	}

	if category.ZeroTolerance() && action == model.ActionBan && ctx.AccountAgeDays < 1 {
		log.Printf("Zero-tolerance ban for day-old account %s (category %s); review rule %s if false positives cluster here",
			msg.AuthorID, category, firstPattern(result.Matches))
	}

	e.enforce(msg, category, result.Severity, action)

	event := &model.ViolationEvent{
		UserID:          msg.AuthorID,
		GuildID:         msg.GuildID,
		ChannelID:       msg.ChannelID,
		MessageID:       msg.MessageID,
		Category:        string(category),
		Severity:        int(result.Severity),
		ActionTaken:     action.String(),
		ContentHash:     hash,
		OriginalContent: msg.Content,
		RiskScore:       result.RiskScore,
		Timestamp:       e.now().Unix(),
		Confidence:      result.Confidence,
	}
	if snapshot, err := json.Marshal(ctx); err == nil {
		event.ContextSnapshot = string(snapshot)
	}

	if err := e.record(event); err != nil {
		return event, err
	}
	return event, nil
}

// buildContext assembles the author's risk snapshot from the message, the
// audit history and the duplicate-content tracker.
func (e *Engine) buildContext(msg IncomingMessage, hash string) model.UserRiskContext {
	ctx := model.UserRiskContext{
		AccountAgeDays:  int(e.now().Sub(msg.AuthorCreatedAt).Hours() / 24),
		HasAvatar:       msg.AuthorHasAvatar,
		RoleCount:       msg.AuthorRoleCount,
		IsDirectMessage: msg.IsDirectMessage,
	}

	total, recent, err := audit.CountEventsByUserID(e.auditDB, msg.AuthorID, e.now())
	if err != nil {
		log.Printf("Failed to load violation history for user %s: %v", msg.AuthorID, err)
	} else {
		ctx.PriorViolationCount = total
		ctx.RecentViolationCount24h = recent
	}

	authors, _ := e.dupes.Get(hash)
	seen := false
	for _, a := range authors {
		if a == msg.AuthorID {
			seen = true
			break
		}
	}
	if !seen {
		authors = append(authors, msg.AuthorID)
		e.dupes.Add(hash, authors)
	}
	ctx.DuplicateSightings = len(authors)

	return ctx
}

// enforce executes the decided action. Permission failures are logged and
// tolerated; whatever partial restriction succeeded stands.
func (e *Engine) enforce(msg IncomingMessage, category model.ViolationCategory, severity model.Severity, action model.EnforcementAction) {
	if action >= model.ActionDelete && msg.MessageID != "" {
		if err := e.messages.DeleteMessage(msg.ChannelID, msg.MessageID); err != nil {
			log.Printf("Failed to delete message %s: %v", msg.MessageID, err)
		}
	}

	reason := fmt.Sprintf("%s violation (%s severity)", category, severity)

	switch action {
	case model.ActionTimeout:
		duration, ok := timeoutDurations[severity]
		if !ok {
			duration = time.Hour
		}
		if err := e.susp.TimeoutUser(msg.GuildID, msg.AuthorID, e.now().Add(duration)); err != nil {
			log.Printf("Failed to timeout user %s: %v", msg.AuthorID, err)
		}
	case model.ActionQuarantine:
		if _, err := e.quarantine.Quarantine(msg.GuildID, msg.AuthorID, reason, defaultQuarantineHours, ""); err != nil && !errors.Is(err, quarantine.ErrAlreadyQuarantined) {
			log.Printf("Failed to quarantine user %s: %v", msg.AuthorID, err)
		}
	case model.ActionBan:
		if err := e.bans.BanUser(msg.GuildID, msg.AuthorID, reason); err != nil {
			log.Printf("Failed to ban user %s: %v", msg.AuthorID, err)
		}
	case model.ActionEscalate:
		if err := utils.LogWarn(e.webhookURL, "Moderation", "Escalate",
			fmt.Sprintf("User <@%s> in <#%s> needs human review: %s", msg.AuthorID, msg.ChannelID, reason)); err != nil {
			log.Printf("Failed to report escalation for user %s: %v", msg.AuthorID, err)
		}
	}
}

// record persists the event, retrying once. Enforcement has already
// happened and is never rolled back; a double failure is surfaced to the
// operator channel and returned as ErrPersistenceFailure.
func (e *Engine) record(event *model.ViolationEvent) error {
	id, err := audit.RecordEvent(e.auditDB, *event)
	if err != nil {
		log.Printf("Audit write failed for hash %s, retrying once: %v", event.ContentHash, err)
		id, err = audit.RecordEvent(e.auditDB, *event)
	}
	if err != nil {
		if logErr := utils.LogError(e.webhookURL, "AuditLog", "Record",
			fmt.Sprintf("Failed to persist violation by <@%s> (hash %s): %v", event.UserID, event.ContentHash, err)); logErr != nil {
			log.Printf("Failed to report audit failure: %v", logErr)
		}
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	event.ID = id
	return nil
}

// Quarantine places a user in quarantine on a moderator's behalf.
func (e *Engine) Quarantine(guildID, userID, reason string, durationHours int, moderatorID string) (*model.QuarantineRecord, error) {
	e.locks.Lock(userID)
	defer e.locks.Unlock(userID)
	return e.quarantine.Quarantine(guildID, userID, reason, durationHours, moderatorID)
}

// Release lifts a user's quarantine. Idempotent.
func (e *Engine) Release(userID string) error {
	e.locks.Lock(userID)
	defer e.locks.Unlock(userID)
	return e.quarantine.Release(userID)
}

// SubmitVerdict records a moderator's confirm/deny judgment and returns the
// learning outcome. The suggested confidence adjustment is logged as
// advisory guidance rather than applied to live rule weights.
func (e *Engine) SubmitVerdict(hash string, confirmed bool, moderatorID string, severityAdjustment *int) (*learning.Outcome, error) {
	outcome, err := e.loop.SubmitVerdict(hash, confirmed, moderatorID, severityAdjustment)
	if errors.Is(err, audit.ErrEventNotFound) {
		return nil, fmt.Errorf("%w: no event with hash %s", ErrNotFound, hash)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("Advisory confidence adjustment %+.2f for category %s (not applied to live weights)",
		outcome.ConfidenceAdjustment, outcome.Event.Category)
	return outcome, nil
}

// GetUserHistory returns a user's violation events from the trailing window.
func (e *Engine) GetUserHistory(userID string, days int) ([]model.ViolationEvent, error) {
	since := e.now().AddDate(0, 0, -days)
	return audit.GetEventsByUserID(e.auditDB, userID, &since)
}

// GetAllEvents returns every violation event from the trailing window.
func (e *Engine) GetAllEvents(days int) ([]model.ViolationEvent, error) {
	return audit.GetAllEvents(e.auditDB, e.now().AddDate(0, 0, -days))
}

// ReleaseExpiredQuarantines is called by the scheduler's sweep.
func (e *Engine) ReleaseExpiredQuarantines() (int, error) {
	return e.quarantine.ReleaseExpired()
}

func firstPattern(matches []model.RuleMatch) string {
	if len(matches) == 0 {
		return ""
	}
	return matches[0].PatternID
}
