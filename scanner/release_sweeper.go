package scanner

import (
	"log"
	"sync"
	"time"

	"sentinel-bot/quarantine"
)

// StartReleaseSweeper starts a background goroutine that releases every
// quarantine whose release time has passed. Because release times live in
// the quarantine table rather than in-memory timers, pending releases
// survive process restarts; the first tick after startup catches anything
// that expired while the process was down. The goroutine joins wg and exits
// when done closes.
func StartReleaseSweeper(manager *quarantine.Manager, interval time.Duration, done <-chan struct{}, wg *sync.WaitGroup) {
	ticker := time.NewTicker(interval)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				released, err := manager.ReleaseExpired()
				if err != nil {
					log.Printf("Error sweeping expired quarantines: %v", err)
					continue
				}
				if released > 0 {
					log.Printf("Auto-released %d expired quarantine(s)", released)
				}
			case <-done:
				return
			}
		}
	}()
}
