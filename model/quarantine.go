package model

import "encoding/json"

// QuarantineRecord tracks one user's active quarantine. The table is named
// 'quarantines'. A user has at most one active record; the row is deleted on
// release. ReleaseAt is persisted so a restart does not lose pending
// auto-releases.
type QuarantineRecord struct {
	ID             int64  `db:"quarantine_id"` // Primary Key, Auto-increment
	UserID         string `db:"user_id"`
	GuildID        string `db:"guild_id"`
	OriginalRoles  string `db:"original_roles"` // JSON array of role IDs
	StartedAt      int64  `db:"started_at"`
	ReleaseAt      int64  `db:"release_at"`
	DurationHours  int    `db:"duration_hours"`
	Reason         string `db:"reason"`
	ModeratorID    string `db:"moderator_id"`
	TimeoutApplied bool   `db:"timeout_applied"`
	LockedChannels string `db:"locked_channels"` // JSON array of channel IDs with deny overrides
}

// OriginalRoleIDs decodes the captured role set.
func (q *QuarantineRecord) OriginalRoleIDs() ([]string, error) {
	var ids []string
	if q.OriginalRoles == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(q.OriginalRoles), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// LockedChannelIDs decodes the channels that received deny overrides.
func (q *QuarantineRecord) LockedChannelIDs() ([]string, error) {
	var ids []string
	if q.LockedChannels == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(q.LockedChannels), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
