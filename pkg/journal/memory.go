package journal

import (
	"context"
	"sync"
	"time"
)

// MemoryJournal keeps attempts in memory. Used in tests and as the fallback
// when the SQLite journal cannot be opened.
type MemoryJournal struct {
	mu       sync.RWMutex
	attempts []Attempt
}

// NewMemoryJournal creates an empty in-memory journal
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

// Record appends an attempt to the journal
func (j *MemoryJournal) Record(ctx context.Context, attempt Attempt) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}
	j.attempts = append(j.attempts, attempt)
	return nil
}

// Recent returns up to limit attempts, newest first
func (j *MemoryJournal) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if limit < 1 {
		limit = 50
	}

	var attempts []Attempt
	for i := len(j.attempts) - 1; i >= 0 && len(attempts) < limit; i-- {
		attempts = append(attempts, j.attempts[i])
	}
	return attempts, nil
}

// Close is a no-op for the in-memory journal
func (j *MemoryJournal) Close() error {
	return nil
}
