package decision

import (
	"testing"
	"time"

	"sentinel-bot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(now *time.Time) *Tracker {
	t := NewTracker()
	t.now = func() time.Time { return *now }
	return t
}

func TestFirstOffenseNoOverride(t *testing.T) {
	now := time.Now()
	tracker := newTestTracker(&now)

	override := tracker.Evaluate("user1", model.CategorySpam, model.ActionWarn)
	assert.Nil(t, override)
	assert.Equal(t, 1, tracker.WarningCount("user1"))
}

func TestThirdWarningEscalatesToTimeout(t *testing.T) {
	now := time.Now()
	tracker := newTestTracker(&now)

	tracker.Evaluate("user1", model.CategorySpam, model.ActionWarn)
	tracker.Evaluate("user1", model.CategorySpam, model.ActionWarn)

	// Warning count is 2 before this event.
	override := tracker.Evaluate("user1", model.CategorySpam, model.ActionWarn)
	require.NotNil(t, override)
	assert.Equal(t, model.ActionTimeout, *override)
}

func TestFifthWarningOverridesTimeoutWithQuarantine(t *testing.T) {
	now := time.Now()
	tracker := newTestTracker(&now)

	for i := 0; i < 4; i++ {
		tracker.Evaluate("user1", model.CategorySpam, model.ActionWarn)
	}

	override := tracker.Evaluate("user1", model.CategorySpam, model.ActionTimeout)
	require.NotNil(t, override)
	assert.Equal(t, model.ActionQuarantine, *override)
}

func TestSeventhWarningBans(t *testing.T) {
	now := time.Now()
	tracker := newTestTracker(&now)

	for i := 0; i < 6; i++ {
		tracker.Evaluate("user1", model.CategorySpam, model.ActionWarn)
	}

	override := tracker.Evaluate("user1", model.CategorySpam, model.ActionQuarantine)
	require.NotNil(t, override)
	assert.Equal(t, model.ActionBan, *override)
}

func TestZeroToleranceSkipsLadder(t *testing.T) {
	now := time.Now()
	tracker := newTestTracker(&now)

	override := tracker.Evaluate("user1", model.CategoryScam, model.ActionTimeout)
	require.NotNil(t, override)
	assert.Equal(t, model.ActionBan, *override)
}

func TestNoOverrideWhenBaselineAlreadyStricter(t *testing.T) {
	now := time.Now()
	tracker := newTestTracker(&now)

	tracker.Evaluate("user1", model.CategorySpam, model.ActionWarn)

	// Second event would escalate to Delete, but the baseline is Ban.
	override := tracker.Evaluate("user1", model.CategorySpam, model.ActionBan)
	assert.Nil(t, override)
}

func TestWindowPrunesAfter24Hours(t *testing.T) {
	now := time.Now()
	tracker := newTestTracker(&now)

	tracker.Evaluate("user1", model.CategorySpam, model.ActionWarn)
	tracker.Evaluate("user1", model.CategorySpam, model.ActionWarn)
	assert.Equal(t, 2, tracker.WarningCount("user1"))

	now = now.Add(25 * time.Hour)
	assert.Equal(t, 0, tracker.WarningCount("user1"))

	// After the window lapses the ladder starts over.
	override := tracker.Evaluate("user1", model.CategorySpam, model.ActionWarn)
	assert.Nil(t, override)
}

func TestUsersTrackedIndependently(t *testing.T) {
	now := time.Now()
	tracker := newTestTracker(&now)

	for i := 0; i < 3; i++ {
		tracker.Evaluate("user1", model.CategorySpam, model.ActionWarn)
	}
	override := tracker.Evaluate("user2", model.CategorySpam, model.ActionWarn)
	assert.Nil(t, override)
}
