package utils

import "sync"

// UserLocker serializes work per user ID. Evaluations for different users
// proceed concurrently; a user's warning window and quarantine state are
// only touched under that user's lock.
type UserLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewUserLocker creates an empty per-user lock registry.
func NewUserLocker() *UserLocker {
	return &UserLocker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for userID, creating it on first use.
func (l *UserLocker) Lock(userID string) {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()
	m.Lock()
}

// Unlock releases the lock for userID.
func (l *UserLocker) Unlock(userID string) {
	l.mu.Lock()
	m, ok := l.locks[userID]
	l.mu.Unlock()
	if ok {
		m.Unlock()
	}
}
