package scanner

import (
	"sync"
	"testing"
	"time"

	"sentinel-bot/model"
	"sentinel-bot/quarantine"
	"sentinel-bot/utils/database/audit"
	quarantine_db "sentinel-bot/utils/database/quarantine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noopPlatform satisfies the quarantine manager's platform interfaces
// without side effects.
type noopPlatform struct{}

func (noopPlatform) MemberRoles(guildID, userID string) ([]string, error)  { return nil, nil }
func (noopPlatform) AddRole(guildID, userID, roleID string) error          { return nil }
func (noopPlatform) RemoveRole(guildID, userID, roleID string) error       { return nil }
func (noopPlatform) GuildChannels(guildID string) ([]string, error)        { return nil, nil }
func (noopPlatform) DenyChannelPermissions(channelID, userID string) error { return nil }
func (noopPlatform) ClearChannelPermissions(channelID, userID string) error {
	return nil
}
func (noopPlatform) TimeoutUser(guildID, userID string, until time.Time) error { return nil }
func (noopPlatform) RemoveTimeout(guildID, userID string) error                { return nil }

// waitDone fails the test when the WaitGroup does not drain in time.
func waitDone(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(5 * time.Second):
		t.Fatal("background goroutine did not exit after done closed")
	}
}

func TestReleaseSweeperReleasesAndStops(t *testing.T) {
	db, err := quarantine_db.Init(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	expired := time.Now().Add(-time.Minute)
	_, err = quarantine_db.AddRecord(db, model.QuarantineRecord{
		UserID:         "user1",
		GuildID:        "guild1",
		OriginalRoles:  "[]",
		StartedAt:      expired.Add(-time.Hour).Unix(),
		ReleaseAt:      expired.Unix(),
		DurationHours:  1,
		Reason:         "testing",
		LockedChannels: "[]",
	})
	require.NoError(t, err)

	manager := quarantine.NewManager(db, noopPlatform{}, noopPlatform{}, noopPlatform{})
	done := make(chan struct{})
	var wg sync.WaitGroup
	StartReleaseSweeper(manager, 10*time.Millisecond, done, &wg)

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := quarantine_db.GetRecordByUserID(db, "user1"); err != nil {
			assert.ErrorIs(t, err, quarantine_db.ErrNoActiveRecord)
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("expired quarantine was never swept")
		}
		time.Sleep(10 * time.Millisecond)
	}

	close(done)
	waitDone(t, &wg)
}

func TestRetentionCleanerStopsOnDone(t *testing.T) {
	db, err := audit.Init(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	done := make(chan struct{})
	var wg sync.WaitGroup
	StartRetentionCleaner(db, 30, done, &wg)

	close(done)
	waitDone(t, &wg)
}

func TestRetentionCleanerDisabled(t *testing.T) {
	db, err := audit.Init(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	done := make(chan struct{})
	var wg sync.WaitGroup
	StartRetentionCleaner(db, 0, done, &wg)

	// No goroutine started; the WaitGroup is already drained.
	waitDone(t, &wg)
}
