package audit

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init initializes the audit database and ensures the violation_events table
// and its indexes exist.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS violation_events (
	          event_id INTEGER PRIMARY KEY AUTOINCREMENT,
	          user_id TEXT NOT NULL,
	          guild_id TEXT NOT NULL,
	          channel_id TEXT NOT NULL,
	          message_id TEXT DEFAULT '',
	          category TEXT NOT NULL,
	          severity INTEGER NOT NULL,
	          action_taken TEXT NOT NULL,
	          content_hash TEXT NOT NULL,
	          original_content TEXT NOT NULL,
	          risk_score REAL NOT NULL,
	          timestamp INTEGER NOT NULL,
	          context_snapshot TEXT DEFAULT '{}',
	          confidence REAL NOT NULL,
	          moderator_confirmed INTEGER DEFAULT 0
	      );`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create violation_events table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_events_user_time ON violation_events (user_id, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_events_guild_time ON violation_events (guild_id, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_events_hash ON violation_events (content_hash)`,
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create index: %w", err)
		}
	}

	return db, nil
}
