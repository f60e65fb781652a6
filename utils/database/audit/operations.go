package audit

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"sentinel-bot/model"

	"github.com/jmoiron/sqlx"
)

// ErrEventNotFound is returned when no event matches the requested hash.
var ErrEventNotFound = errors.New("violation event not found")

// HashContent returns the hex SHA-256 of the exact original content. The
// hash is deterministic and serves as the join key for similarity search.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// RecordEvent appends a new violation event and returns its ID. Writes are
// append-only; SetModeratorVerdict is the only permitted update.
func RecordEvent(db *sqlx.DB, event model.ViolationEvent) (int64, error) {
	query := `INSERT INTO violation_events (user_id, guild_id, channel_id, message_id, category, severity, action_taken, content_hash, original_content, risk_score, timestamp, context_snapshot, confidence, moderator_confirmed)
			  VALUES (:user_id, :guild_id, :channel_id, :message_id, :category, :severity, :action_taken, :content_hash, :original_content, :risk_score, :timestamp, :context_snapshot, :confidence, :moderator_confirmed)`

	result, err := db.NamedExec(query, event)
	if err != nil {
		return 0, fmt.Errorf("failed to insert violation event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// GetEventsByUserID retrieves a user's violation events, newest first,
// optionally filtered by a start time.
func GetEventsByUserID(db *sqlx.DB, userID string, since *time.Time) ([]model.ViolationEvent, error) {
	var events []model.ViolationEvent
	query := "SELECT * FROM violation_events WHERE user_id = ?"
	args := []interface{}{userID}

	if since != nil {
		query += " AND timestamp >= ?"
		args = append(args, since.Unix())
	}
	query += " ORDER BY timestamp DESC"

	if err := db.Select(&events, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get violation events for user %s: %w", userID, err)
	}
	return events, nil
}

// GetAllEvents retrieves every violation event recorded since the given
// time, newest first.
func GetAllEvents(db *sqlx.DB, since time.Time) ([]model.ViolationEvent, error) {
	var events []model.ViolationEvent
	query := "SELECT * FROM violation_events WHERE timestamp >= ? ORDER BY timestamp DESC"
	if err := db.Select(&events, query, since.Unix()); err != nil {
		return nil, fmt.Errorf("failed to get violation events: %w", err)
	}
	return events, nil
}

// GetEventByHash retrieves the first event recorded with the given content
// hash. Returns ErrEventNotFound when the hash is unknown.
func GetEventByHash(db *sqlx.DB, hash string) (*model.ViolationEvent, error) {
	var event model.ViolationEvent
	query := "SELECT * FROM violation_events WHERE content_hash = ? ORDER BY timestamp ASC LIMIT 1"
	err := db.Get(&event, query, hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get violation event by hash %s: %w", hash, err)
	}
	return &event, nil
}

// GetEventsByCategory retrieves events of one category since the given time.
func GetEventsByCategory(db *sqlx.DB, category model.ViolationCategory, since time.Time) ([]model.ViolationEvent, error) {
	var events []model.ViolationEvent
	query := "SELECT * FROM violation_events WHERE category = ? AND timestamp >= ? ORDER BY timestamp DESC"
	if err := db.Select(&events, query, string(category), since.Unix()); err != nil {
		return nil, fmt.Errorf("failed to get violation events for category %s: %w", category, err)
	}
	return events, nil
}

// SetModeratorVerdict updates moderator_confirmed on every event sharing the
// content hash. This is the only update the audit log permits.
func SetModeratorVerdict(db *sqlx.DB, hash string, confirmed bool) error {
	verdict := model.VerdictDenied
	if confirmed {
		verdict = model.VerdictConfirmed
	}

	result, err := db.Exec("UPDATE violation_events SET moderator_confirmed = ? WHERE content_hash = ?", verdict, hash)
	if err != nil {
		return fmt.Errorf("failed to set moderator verdict for hash %s: %w", hash, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for hash %s: %w", hash, err)
	}
	if rowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

// CountEventsByUserID returns total and last-24h violation counts for a
// user, the two numbers the risk scorer needs.
func CountEventsByUserID(db *sqlx.DB, userID string, now time.Time) (total int, recent24h int, err error) {
	if err = db.Get(&total, "SELECT COUNT(*) FROM violation_events WHERE user_id = ?", userID); err != nil {
		return 0, 0, fmt.Errorf("failed to count violation events for user %s: %w", userID, err)
	}
	cutoff := now.Add(-24 * time.Hour).Unix()
	if err = db.Get(&recent24h, "SELECT COUNT(*) FROM violation_events WHERE user_id = ? AND timestamp >= ?", userID, cutoff); err != nil {
		return 0, 0, fmt.Errorf("failed to count recent violation events for user %s: %w", userID, err)
	}
	return total, recent24h, nil
}

// GetCategoryStats returns per-category event counts for a guild since the
// given time.
func GetCategoryStats(db *sqlx.DB, guildID string, since time.Time) (map[string]int, error) {
	query := `SELECT category, COUNT(*) as count FROM violation_events WHERE guild_id = ? AND timestamp >= ? GROUP BY category ORDER BY count DESC`
	rows, err := db.Query(query, guildID, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to get category stats for guild %s: %w", guildID, err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan category stats row: %w", err)
		}
		stats[category] = count
	}
	return stats, nil
}

// DeleteEventsOlderThan removes events past the retention horizon and
// returns how many rows were deleted.
func DeleteEventsOlderThan(db *sqlx.DB, cutoff time.Time) (int64, error) {
	result, err := db.Exec("DELETE FROM violation_events WHERE timestamp < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired violation events: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected by retention sweep: %w", err)
	}
	return rowsAffected, nil
}
