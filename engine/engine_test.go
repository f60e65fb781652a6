package engine

import (
	"errors"
	"sync"
	"testing"
	"time"

	"sentinel-bot/decision"
	"sentinel-bot/learning"
	"sentinel-bot/model"
	"sentinel-bot/quarantine"
	"sentinel-bot/rules"
	"sentinel-bot/scorer"
	"sentinel-bot/utils/database/audit"
	quarantine_db "sentinel-bot/utils/database/quarantine"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGuild implements every platform interface the engine touches with
// in-memory state.
type fakeGuild struct {
	mu             sync.Mutex
	roles          map[string][]string
	channels       []string
	locked         map[string]map[string]bool
	timeouts       map[string]bool
	banned         map[string]string // userID -> reason
	deleted        []string          // message IDs
	memberRolesErr error
}

func newFakeGuild() *fakeGuild {
	return &fakeGuild{
		roles:    make(map[string][]string),
		channels: []string{"channel1"},
		locked:   make(map[string]map[string]bool),
		timeouts: make(map[string]bool),
		banned:   make(map[string]string),
	}
}

func (f *fakeGuild) MemberRoles(guildID, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.memberRolesErr != nil {
		return nil, f.memberRolesErr
	}
	return append([]string(nil), f.roles[userID]...), nil
}

func (f *fakeGuild) AddRole(guildID, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[userID] = append(f.roles[userID], roleID)
	return nil
}

func (f *fakeGuild) RemoveRole(guildID, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.roles[userID][:0]
	for _, r := range f.roles[userID] {
		if r != roleID {
			kept = append(kept, r)
		}
	}
	f.roles[userID] = kept
	return nil
}

func (f *fakeGuild) GuildChannels(guildID string) ([]string, error) {
	return f.channels, nil
}

func (f *fakeGuild) DenyChannelPermissions(channelID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.locked[channelID] == nil {
		f.locked[channelID] = make(map[string]bool)
	}
	f.locked[channelID][userID] = true
	return nil
}

func (f *fakeGuild) ClearChannelPermissions(channelID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.locked[channelID], userID)
	return nil
}

func (f *fakeGuild) TimeoutUser(guildID, userID string, until time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeouts[userID] = true
	return nil
}

func (f *fakeGuild) RemoveTimeout(guildID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.timeouts, userID)
	return nil
}

func (f *fakeGuild) DeleteMessage(channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeGuild) BanUser(guildID, userID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.banned[userID] = reason
	return nil
}

func (f *fakeGuild) deletedMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func newTestEngine(t *testing.T) (*Engine, *fakeGuild, *sqlx.DB, *sqlx.DB) {
	t.Helper()

	auditDB, err := audit.Init(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { auditDB.Close() })

	qdb, err := quarantine_db.Init(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { qdb.Close() })

	guild := newFakeGuild()
	qm := quarantine.NewManager(qdb, guild, guild, guild)
	sc := scorer.New(rules.DefaultSet())
	loop := learning.NewLoop(auditDB)

	e := New(auditDB, sc, decision.NewTracker(), qm, loop, guild, guild, guild, "")
	return e, guild, auditDB, qdb
}

// newMessage returns a message from an established account; tests tweak the
// fields that matter to them.
func newMessage(userID, messageID, content string) IncomingMessage {
	return IncomingMessage{
		AuthorID:        userID,
		GuildID:         "guild1",
		ChannelID:       "channel1",
		MessageID:       messageID,
		Content:         content,
		AuthorCreatedAt: time.Now().Add(-400 * 24 * time.Hour),
		AuthorRoleCount: 3,
		AuthorHasAvatar: true,
	}
}

func TestScamFromNewAccountIsBanned(t *testing.T) {
	e, guild, auditDB, _ := newTestEngine(t)

	msg := newMessage("user1", "message1", "FREE DISCORD NITRO bit.ly/claim")
	msg.AuthorCreatedAt = time.Now()
	msg.AuthorRoleCount = 0
	msg.AuthorHasAvatar = false

	event, err := e.ProcessMessage(msg)
	require.NoError(t, err)
	require.NotNil(t, event)

	assert.Equal(t, string(model.CategoryScam), event.Category)
	assert.Equal(t, int(model.SeverityCritical), event.Severity)
	assert.Equal(t, model.ActionBan.String(), event.ActionTaken)
	assert.Greater(t, event.RiskScore, 0.8)
	assert.Greater(t, event.ID, int64(0))
	assert.NotEmpty(t, event.ContextSnapshot)

	assert.Contains(t, guild.banned, "user1")
	assert.Equal(t, []string{"message1"}, guild.deletedMessages())

	stored, err := audit.GetEventByHash(auditDB, event.ContentHash)
	require.NoError(t, err)
	assert.Equal(t, model.ActionBan.String(), stored.ActionTaken)
}

func TestCleanMessagePassesThrough(t *testing.T) {
	e, guild, auditDB, _ := newTestEngine(t)

	event, err := e.ProcessMessage(newMessage("user1", "message1", "good morning everyone"))
	require.NoError(t, err)
	assert.Nil(t, event)

	assert.Empty(t, guild.deletedMessages())
	assert.Empty(t, guild.banned)

	events, err := audit.GetEventsByUserID(auditDB, "user1", nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEmptyMessageRejected(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	_, err := e.ProcessMessage(newMessage("user1", "message1", ""))
	assert.ErrorIs(t, err, ErrInvalidInput)

	msg := newMessage("", "message1", "hello")
	_, err = e.ProcessMessage(msg)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRepeatOffenderEscalates(t *testing.T) {
	e, guild, _, qdb := newTestEngine(t)

	first, err := e.ProcessMessage(newMessage("user1", "message1", "screw off"))
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, model.ActionWarn.String(), first.ActionTaken)
	assert.Empty(t, guild.deletedMessages())

	// The prior on record plus the fresh 24h violation push the second
	// offense to critical.
	second, err := e.ProcessMessage(newMessage("user1", "message2", "screw you buddy"))
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, model.ActionQuarantine.String(), second.ActionTaken)
	assert.Contains(t, guild.deletedMessages(), "message2")

	record, err := quarantine_db.GetRecordByUserID(qdb, "user1")
	require.NoError(t, err)
	assert.Equal(t, "guild1", record.GuildID)
}

func TestNewAccountHarassmentIsTimedOut(t *testing.T) {
	e, guild, _, _ := newTestEngine(t)

	msg := newMessage("user1", "message1", "i will hurt you")
	msg.AuthorCreatedAt = time.Now().Add(-3 * 24 * time.Hour)

	event, err := e.ProcessMessage(msg)
	require.NoError(t, err)
	require.NotNil(t, event)

	assert.Equal(t, string(model.CategoryHarassment), event.Category)
	assert.Equal(t, model.ActionTimeout.String(), event.ActionTaken)
	assert.True(t, guild.timeouts["user1"])
	assert.Contains(t, guild.deletedMessages(), "message1")
}

func TestDuplicateContentAcrossUsersFlagsSpam(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	content := "check out this cool art piece"

	for _, user := range []string{"user1", "user2"} {
		event, err := e.ProcessMessage(newMessage(user, "message-"+user, content))
		require.NoError(t, err)
		assert.Nil(t, event)
	}

	// Third distinct author inside the window trips the burst signal.
	event, err := e.ProcessMessage(newMessage("user3", "message3", content))
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, string(model.CategorySpam), event.Category)
	assert.Equal(t, model.ActionWarn.String(), event.ActionTaken)

	history, err := e.GetUserHistory("user3", 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, string(model.CategorySpam), history[0].Category)
}

func TestSubmitVerdictUnknownHash(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	_, err := e.SubmitVerdict("deadbeef", true, "mod1", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitVerdictRoundTrip(t *testing.T) {
	e, _, auditDB, _ := newTestEngine(t)

	msg := newMessage("user1", "message1", "FREE DISCORD NITRO bit.ly/claim")
	msg.AuthorCreatedAt = time.Now()
	event, err := e.ProcessMessage(msg)
	require.NoError(t, err)
	require.NotNil(t, event)

	outcome, err := e.SubmitVerdict(event.ContentHash, false, "mod1", nil)
	require.NoError(t, err)
	assert.False(t, outcome.Confirmed)
	assert.InDelta(t, -0.10, outcome.ConfidenceAdjustment, 1e-9)

	stored, err := audit.GetEventByHash(auditDB, event.ContentHash)
	require.NoError(t, err)
	assert.Equal(t, model.VerdictDenied, stored.ModeratorConfirmed)
}

func TestQuarantineSurfacesPermissionDenied(t *testing.T) {
	e, guild, _, _ := newTestEngine(t)
	guild.memberRolesErr = errors.New("missing access")

	_, err := e.Quarantine("guild1", "user1", "manual", 2, "mod1")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestManualQuarantineAndRelease(t *testing.T) {
	e, guild, _, _ := newTestEngine(t)
	guild.roles["user1"] = []string{"role1"}

	record, err := e.Quarantine("guild1", "user1", "manual", 2, "mod1")
	require.NoError(t, err)
	assert.Equal(t, "user1", record.UserID)
	assert.Empty(t, guild.roles["user1"])

	require.NoError(t, e.Release("user1"))
	assert.Equal(t, []string{"role1"}, guild.roles["user1"])
}

func TestAnalyzeMessageDoesNotEnforce(t *testing.T) {
	e, guild, auditDB, _ := newTestEngine(t)

	result, err := e.AnalyzeMessage("FREE DISCORD NITRO bit.ly/claim", model.UserRiskContext{
		AccountAgeDays: 400,
		HasAvatar:      true,
		RoleCount:      3,
	})
	require.NoError(t, err)
	assert.False(t, result.Clean())
	assert.Equal(t, model.CategoryScam, result.TopCategory())

	assert.Empty(t, guild.banned)
	events, err := audit.GetAllEvents(auditDB, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, events)

	_, err = e.AnalyzeMessage("", model.UserRiskContext{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
