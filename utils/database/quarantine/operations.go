package quarantine_db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sentinel-bot/model"

	"github.com/jmoiron/sqlx"
)

// ErrNoActiveRecord is returned when a user has no active quarantine.
var ErrNoActiveRecord = errors.New("no active quarantine record")

// AddRecord inserts a new quarantine record and returns its ID. The UNIQUE
// constraint on user_id enforces at most one active quarantine per user.
func AddRecord(db *sqlx.DB, record model.QuarantineRecord) (int64, error) {
	query := `INSERT INTO quarantines (user_id, guild_id, original_roles, started_at, release_at, duration_hours, reason, moderator_id, timeout_applied, locked_channels)
			  VALUES (:user_id, :guild_id, :original_roles, :started_at, :release_at, :duration_hours, :reason, :moderator_id, :timeout_applied, :locked_channels)`

	result, err := db.NamedExec(query, record)
	if err != nil {
		return 0, fmt.Errorf("failed to insert quarantine record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// GetRecordByUserID retrieves a user's active quarantine record. Returns
// ErrNoActiveRecord when the user is not quarantined.
func GetRecordByUserID(db *sqlx.DB, userID string) (*model.QuarantineRecord, error) {
	var record model.QuarantineRecord
	err := db.Get(&record, "SELECT * FROM quarantines WHERE user_id = ?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveRecord
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quarantine record for user %s: %w", userID, err)
	}
	return &record, nil
}

// DeleteRecordByUserID removes a user's quarantine record. Deleting an
// absent record is not an error; release is idempotent.
func DeleteRecordByUserID(db *sqlx.DB, userID string) error {
	if _, err := db.Exec("DELETE FROM quarantines WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete quarantine record for user %s: %w", userID, err)
	}
	return nil
}

// GetExpiredRecords retrieves every record whose release time has passed.
func GetExpiredRecords(db *sqlx.DB, now time.Time) ([]model.QuarantineRecord, error) {
	var records []model.QuarantineRecord
	if err := db.Select(&records, "SELECT * FROM quarantines WHERE release_at <= ?", now.Unix()); err != nil {
		return nil, fmt.Errorf("failed to get expired quarantine records: %w", err)
	}
	return records, nil
}

// GetAllRecords retrieves every active quarantine record.
func GetAllRecords(db *sqlx.DB) ([]model.QuarantineRecord, error) {
	var records []model.QuarantineRecord
	if err := db.Select(&records, "SELECT * FROM quarantines ORDER BY release_at ASC"); err != nil {
		return nil, fmt.Errorf("failed to get quarantine records: %w", err)
	}
	return records, nil
}
