package quarantine_db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init initializes the quarantine database and ensures the quarantines table
// exists. The release_at column is what lets a restarted process resume
// pending auto-releases.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to quarantine database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS quarantines (
	          quarantine_id INTEGER PRIMARY KEY AUTOINCREMENT,
	          user_id TEXT NOT NULL UNIQUE,
	          guild_id TEXT NOT NULL,
	          original_roles TEXT DEFAULT '[]',
	          started_at INTEGER NOT NULL,
	          release_at INTEGER NOT NULL,
	          duration_hours INTEGER NOT NULL,
	          reason TEXT NOT NULL,
	          moderator_id TEXT DEFAULT '',
	          timeout_applied INTEGER DEFAULT 0,
	          locked_channels TEXT DEFAULT '[]'
	      );`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create quarantines table: %w", err)
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_quarantines_release ON quarantines (release_at)`); err != nil {
		return nil, fmt.Errorf("failed to create release index: %w", err)
	}

	return db, nil
}
