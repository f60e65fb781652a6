package scanner

import (
	"log"
	"sync"
	"time"

	"sentinel-bot/utils/database/audit"

	"github.com/jmoiron/sqlx"
)

// StartRetentionCleaner starts a background goroutine that deletes audit
// events older than maxAgeDays. Runs daily; retention is the only path that
// ever deletes from the audit log. The goroutine joins wg and exits when
// done closes.
func StartRetentionCleaner(db *sqlx.DB, maxAgeDays int, done <-chan struct{}, wg *sync.WaitGroup) {
	if maxAgeDays <= 0 {
		log.Println("Audit retention disabled, events are kept forever")
		return
	}

	ticker := time.NewTicker(24 * time.Hour)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
				deleted, err := audit.DeleteEventsOlderThan(db, cutoff)
				if err != nil {
					log.Printf("Error cleaning expired audit events: %v", err)
					continue
				}
				if deleted > 0 {
					log.Printf("Retention sweep deleted %d audit event(s) older than %d days", deleted, maxAgeDays)
				}
			case <-done:
				return
			}
		}
	}()
}
