package producer

import (
	"context"
	"sync"

	"github.com/RayaEspi/sbjstats/pkg/entities"
)

// Memory is an in-process stat producer. It backs tests and the
// STAT_SOURCE=memory development mode where no producer plugin is running.
type Memory struct {
	mu       sync.RWMutex
	stats    []*entities.StatsRecording
	archives map[string]string
	events   chan RoundFinished
}

// NewMemory creates an empty in-memory producer
func NewMemory() *Memory {
	return &Memory{
		archives: make(map[string]string),
		events:   make(chan RoundFinished, 8),
	}
}

// Add appends a stat record to the store
func (m *Memory) Add(stat *entities.StatsRecording) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats = append(m.stats, stat)
}

// SetArchive records an archive description
func (m *Memory) SetArchive(id, description string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.archives[id] = description
}

// GetStats returns records whose archive id matches the session identifier
func (m *Memory) GetStats(ctx context.Context, sessionID string) ([]*entities.StatsRecording, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*entities.StatsRecording
	for _, stat := range m.stats {
		if stat.ArchiveID == sessionID {
			matched = append(matched, stat)
		}
	}
	return matched, nil
}

// GetArchives returns the archive-id to description mapping
func (m *Memory) GetArchives(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	archives := make(map[string]string, len(m.archives))
	for id, description := range m.archives {
		archives[id] = description
	}
	return archives, nil
}

// Events returns the round-finished notification channel
func (m *Memory) Events() <-chan RoundFinished {
	return m.events
}

// EmitRoundFinished delivers a round-finished notification
func (m *Memory) EmitRoundFinished() {
	m.events <- RoundFinished{}
}

// Close closes the event channel
func (m *Memory) Close() error {
	close(m.events)
	return nil
}
