package quarantine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"sentinel-bot/model"
	quarantine_db "sentinel-bot/utils/database/quarantine"

	"github.com/jmoiron/sqlx"
)

// maxTimeout is the platform cap on a single suspension.
const maxTimeout = 28 * 24 * time.Hour

var (
	// ErrAlreadyQuarantined is returned when a quarantine is requested
	// for a user who already has an active record.
	ErrAlreadyQuarantined = errors.New("user already quarantined")
	// ErrPermissionDenied is returned when the platform refuses the role
	// capture a quarantine cannot proceed without.
	ErrPermissionDenied = errors.New("permission denied by platform")
)

// RoleManager is the slice of the chat platform the manager needs for role
// stripping and restoration. MemberRoles must exclude the universal role.
type RoleManager interface {
	MemberRoles(guildID, userID string) ([]string, error)
	AddRole(guildID, userID, roleID string) error
	RemoveRole(guildID, userID, roleID string) error
}

// PermissionManager applies and clears per-channel permission overrides.
type PermissionManager interface {
	GuildChannels(guildID string) ([]string, error)
	DenyChannelPermissions(channelID, userID string) error
	ClearChannelPermissions(channelID, userID string) error
}

// SuspensionManager applies and lifts platform timeouts.
type SuspensionManager interface {
	TimeoutUser(guildID, userID string, until time.Time) error
	RemoveTimeout(guildID, userID string) error
}

// Manager owns the quarantine lifecycle: role stripping, channel lockout,
// timed suspension, durable record keeping and eventual release. Partial
// permission failures are logged and tolerated; a partial quarantine beats
// none at all.
type Manager struct {
	db    *sqlx.DB
	roles RoleManager
	perms PermissionManager
	susp  SuspensionManager
	now   func() time.Time
}

// NewManager creates a quarantine manager over the given store and platform
// capabilities.
func NewManager(db *sqlx.DB, roles RoleManager, perms PermissionManager, susp SuspensionManager) *Manager {
	return &Manager{
		db:    db,
		roles: roles,
		perms: perms,
		susp:  susp,
		now:   time.Now,
	}
}

// Quarantine strips the user's roles, locks them out of every reachable
// channel, applies a capped timeout and persists the record. The release
// time is stored so the periodic sweep can reverse everything even after a
// process restart.
func (m *Manager) Quarantine(guildID, userID, reason string, durationHours int, moderatorID string) (*model.QuarantineRecord, error) {
	if durationHours <= 0 {
		return nil, fmt.Errorf("quarantine duration must be positive, got %d", durationHours)
	}
	if _, err := quarantine_db.GetRecordByUserID(m.db, userID); err == nil {
		return nil, ErrAlreadyQuarantined
	} else if !errors.Is(err, quarantine_db.ErrNoActiveRecord) {
		return nil, err
	}

	roleIDs, err := m.roles.MemberRoles(guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to capture roles for user %s: %v", ErrPermissionDenied, userID, err)
	}
	for _, roleID := range roleIDs {
		if err := m.roles.RemoveRole(guildID, userID, roleID); err != nil {
			log.Printf("Failed to remove role %s from user %s during quarantine: %v", roleID, userID, err)
		}
	}

	lockedChannels := m.lockChannels(guildID, userID)

	duration := time.Duration(durationHours) * time.Hour
	timeoutDuration := duration
	if timeoutDuration > maxTimeout {
		timeoutDuration = maxTimeout
	}
	timeoutApplied := true
	if err := m.susp.TimeoutUser(guildID, userID, m.now().Add(timeoutDuration)); err != nil {
		log.Printf("Failed to apply timeout to user %s during quarantine: %v", userID, err)
		timeoutApplied = false
	}

	rolesJSON, err := json.Marshal(roleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize role set for user %s: %w", userID, err)
	}
	channelsJSON, err := json.Marshal(lockedChannels)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize locked channels for user %s: %w", userID, err)
	}

	record := model.QuarantineRecord{
		UserID:         userID,
		GuildID:        guildID,
		OriginalRoles:  string(rolesJSON),
		StartedAt:      m.now().Unix(),
		ReleaseAt:      m.now().Add(duration).Unix(),
		DurationHours:  durationHours,
		Reason:         reason,
		ModeratorID:    moderatorID,
		TimeoutApplied: timeoutApplied,
		LockedChannels: string(channelsJSON),
	}

	id, err := quarantine_db.AddRecord(m.db, record)
	if err != nil {
		return nil, fmt.Errorf("failed to persist quarantine record for user %s: %w", userID, err)
	}
	record.ID = id

	log.Printf("Quarantined user %s in guild %s for %dh (%d roles stripped, %d channels locked): %s",
		userID, guildID, durationHours, len(roleIDs), len(lockedChannels), reason)
	return &record, nil
}

// lockChannels applies a deny override on every reachable channel and
// returns the IDs that were actually locked.
func (m *Manager) lockChannels(guildID, userID string) []string {
	channelIDs, err := m.perms.GuildChannels(guildID)
	if err != nil {
		log.Printf("Failed to list channels for guild %s during quarantine: %v", guildID, err)
		return nil
	}

	locked := make([]string, 0, len(channelIDs))
	for _, channelID := range channelIDs {
		if err := m.perms.DenyChannelPermissions(channelID, userID); err != nil {
			log.Printf("Failed to lock channel %s for user %s: %v", channelID, userID, err)
			continue
		}
		locked = append(locked, channelID)
	}
	return locked
}

// Release restores the user's captured roles, clears channel overrides,
// lifts the timeout and deletes the record. Releasing a user with no active
// record is a no-op, so manual and automatic release can race safely.
func (m *Manager) Release(userID string) error {
	record, err := quarantine_db.GetRecordByUserID(m.db, userID)
	if errors.Is(err, quarantine_db.ErrNoActiveRecord) {
		return nil
	}
	if err != nil {
		return err
	}

	roleIDs, err := record.OriginalRoleIDs()
	if err != nil {
		log.Printf("Failed to decode captured roles for user %s, releasing without restore: %v", userID, err)
	}
	for _, roleID := range roleIDs {
		if err := m.roles.AddRole(record.GuildID, userID, roleID); err != nil {
			log.Printf("Failed to restore role %s to user %s during release: %v", roleID, userID, err)
		}
	}

	channelIDs, err := record.LockedChannelIDs()
	if err != nil {
		log.Printf("Failed to decode locked channels for user %s: %v", userID, err)
	}
	for _, channelID := range channelIDs {
		if err := m.perms.ClearChannelPermissions(channelID, userID); err != nil {
			log.Printf("Failed to unlock channel %s for user %s during release: %v", channelID, userID, err)
		}
	}

	if record.TimeoutApplied {
		if err := m.susp.RemoveTimeout(record.GuildID, userID); err != nil {
			log.Printf("Failed to lift timeout for user %s during release: %v", userID, err)
		}
	}

	if err := quarantine_db.DeleteRecordByUserID(m.db, userID); err != nil {
		return fmt.Errorf("failed to delete quarantine record for user %s: %w", userID, err)
	}

	log.Printf("Released user %s from quarantine in guild %s", userID, record.GuildID)
	return nil
}

// ReleaseExpired releases every record whose release time has passed and
// returns how many users were freed.
func (m *Manager) ReleaseExpired() (int, error) {
	records, err := quarantine_db.GetExpiredRecords(m.db, m.now())
	if err != nil {
		return 0, err
	}

	released := 0
	for _, record := range records {
		if err := m.Release(record.UserID); err != nil {
			log.Printf("Failed to auto-release user %s: %v", record.UserID, err)
			continue
		}
		released++
	}
	return released, nil
}

// IsQuarantined reports whether the user has an active quarantine record.
func (m *Manager) IsQuarantined(userID string) (bool, error) {
	_, err := quarantine_db.GetRecordByUserID(m.db, userID)
	if errors.Is(err, quarantine_db.ErrNoActiveRecord) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
