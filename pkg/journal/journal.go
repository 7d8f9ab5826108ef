package journal

import (
	"context"
	"time"
)

// AttemptKind distinguishes the two upload paths
type AttemptKind string

const (
	KindSingle AttemptKind = "single"
	KindBatch  AttemptKind = "batch"
)

// Outcome is the terminal state of one upload attempt
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped" // live uploading disabled, no network call
)

// Attempt is one entry in the upload audit trail. This is local bookkeeping of
// what this add-on tried to send; the stat records themselves stay upstream.
type Attempt struct {
	Kind       AttemptKind `json:"kind"`
	ArchiveID  string      `json:"archive_id,omitempty"` // single uploads only
	Endpoint   string      `json:"endpoint"`
	Outcome    Outcome     `json:"outcome"`
	StatusNote string      `json:"status_note,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Journal records upload attempts for the diagnostics surface. Implementations
// must never let a journaling failure change an upload outcome; callers log
// and move on.
type Journal interface {
	// Record appends an attempt to the journal
	Record(ctx context.Context, attempt Attempt) error

	// Recent returns up to limit attempts, newest first
	Recent(ctx context.Context, limit int) ([]Attempt, error)

	// Close releases the journal's resources
	Close() error
}
