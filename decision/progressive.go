package decision

import (
	"sync"
	"time"

	"sentinel-bot/model"
)

// warningWindow is how long a warning counts toward escalation.
const warningWindow = 24 * time.Hour

// Tracker maintains each user's rolling 24-hour warning window and decides
// when repeat offenses escalate past the decision-matrix baseline. Warning
// state is process memory; history persisted in the audit log still feeds
// the risk score after a restart.
type Tracker struct {
	mu       sync.Mutex
	warnings map[string][]time.Time
	now      func() time.Time
}

// NewTracker creates an empty progressive-punishment tracker.
func NewTracker() *Tracker {
	return &Tracker{
		warnings: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Evaluate records the current event in the user's warning window and
// returns an override action when the escalation ladder demands something
// strictly stricter than baseline. A nil return means the baseline stands.
// This is the single point of mutation for warning state.
func (t *Tracker) Evaluate(userID string, category model.ViolationCategory, baseline model.EnforcementAction) *model.EnforcementAction {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	window := t.prune(userID, now)
	count := len(window)
	t.warnings[userID] = append(window, now)

	escalated := ladder(count, category)
	if escalated.StricterThan(baseline) {
		return &escalated
	}
	return nil
}

// WarningCount returns how many warnings the user accumulated in the last
// 24 hours.
func (t *Tracker) WarningCount(userID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.prune(userID, t.now()))
}

// prune drops warnings older than the window and returns what remains.
// Caller must hold the lock.
func (t *Tracker) prune(userID string, now time.Time) []time.Time {
	cutoff := now.Add(-warningWindow)
	var kept []time.Time
	for _, ts := range t.warnings[userID] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(t.warnings, userID)
	} else {
		t.warnings[userID] = kept
	}
	return kept
}

// ladder maps the warning count before the current event to an action.
// Zero-tolerance categories skip the ladder entirely.
func ladder(priorWarnings int, category model.ViolationCategory) model.EnforcementAction {
	if category.ZeroTolerance() {
		return model.ActionBan
	}
	switch {
	case priorWarnings >= 6:
		return model.ActionBan
	case priorWarnings >= 4:
		return model.ActionQuarantine
	case priorWarnings >= 2:
		return model.ActionTimeout
	case priorWarnings >= 1:
		return model.ActionDelete
	}
	return model.ActionWarn
}
