package producer

import (
	"context"

	"github.com/RayaEspi/sbjstats/pkg/entities"
)

// RoundFinished is the no-payload notification fired by the stat producer when
// a round concludes
type RoundFinished struct{}

// StatProducer is the query capability supplied by the SimpleBlackjack
// producer plugin. Queries are read-only; records returned here are owned by
// the producer's store.
type StatProducer interface {
	// GetStats returns all stat records under the given session identifier.
	// The all-zero sentinel means "unarchived/current".
	GetStats(ctx context.Context, sessionID string) ([]*entities.StatsRecording, error)

	// GetArchives returns the archive-id to description mapping. Used only by
	// the diagnostics surface.
	GetArchives(ctx context.Context) (map[string]string, error)
}

// EventSource delivers round-finished notifications. The channel closes when
// the source shuts down.
type EventSource interface {
	Events() <-chan RoundFinished
}
