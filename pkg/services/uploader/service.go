package uploader

import (
	"context"
	"sort"

	"github.com/RayaEspi/sbjstats/internal/logging"
	"github.com/RayaEspi/sbjstats/internal/types"
	"github.com/RayaEspi/sbjstats/pkg/entities"
	"github.com/RayaEspi/sbjstats/pkg/journal"
	"github.com/RayaEspi/sbjstats/pkg/payload"
	"github.com/RayaEspi/sbjstats/pkg/producer"
	"github.com/RayaEspi/sbjstats/pkg/upload"
)

// Settings is the configuration-read capability the uploaders depend on.
// Values must be re-read on every call; the user can edit them mid-session.
type Settings interface {
	// APIKey returns the trimmed upload credential, empty when unset
	APIKey() string
	// LiveUpload returns the live-uploading toggle
	LiveUpload() bool
}

// Service runs the two upload paths: the event-driven single-record upload
// reacting to finished rounds, and the user-triggered batch upload
type Service struct {
	producer  producer.StatProducer
	settings  Settings
	transport upload.Transport
	journal   journal.Journal
	logger    *logging.Logger
}

// NewService creates an uploader service with explicit collaborators
func NewService(statProducer producer.StatProducer, settings Settings, transport upload.Transport, jrnl journal.Journal, logger *logging.Logger) *Service {
	return &Service{
		producer:  statProducer,
		settings:  settings,
		transport: transport,
		journal:   jrnl,
		logger:    logger,
	}
}

// HandleRoundFinished reacts to a round-finished notification: it selects the
// most recent current-session record, tags it with a fresh archive id, and
// uploads it when live uploading is enabled. Failures never propagate; one
// round's trouble must not affect the next event.
func (s *Service) HandleRoundFinished(ctx context.Context) {
	stats, err := s.producer.GetStats(ctx, entities.SessionSentinel)
	if err != nil {
		s.logger.LogError(types.WrapError(types.ErrIPC, "failed to query stats for finished round", err))
		return
	}

	newest := newestRecord(stats)
	if newest == nil {
		s.logger.Info("No stats found for finished round.")
		return
	}

	// The archive tag is assigned before the upload decision and stays
	// assigned whatever happens next.
	newest.ArchiveID = entities.NewArchiveID()

	if !s.settings.LiveUpload() {
		s.logger.Info("Live uploading is disabled, skipping upload for archive %s.", newest.ArchiveID)
		s.record(ctx, journal.Attempt{
			Kind:      journal.KindSingle,
			ArchiveID: newest.ArchiveID,
			Endpoint:  payload.SinglePath,
			Outcome:   journal.OutcomeSkipped,
		})
		return
	}

	if err := s.sendSingle(ctx, newest); err != nil {
		s.logger.Warn("Error sending stat to server: %v", err)
	}
}

// UploadAll submits every current-session record as one batch. Triggered by
// explicit user action; the returned error is for the caller's status
// reporting only, the failure is already terminal.
func (s *Service) UploadAll(ctx context.Context) error {
	apiKey := s.settings.APIKey()
	if apiKey == "" {
		err := types.NewUploadError(types.ErrMissingCredential, "api key is not configured")
		s.logger.LogError(err)
		return err
	}

	stats, err := s.producer.GetStats(ctx, entities.SessionSentinel)
	if err != nil {
		wrapped := types.WrapError(types.ErrIPC, "failed to query stats for batch upload", err)
		s.logger.LogError(wrapped)
		return wrapped
	}

	if len(stats) == 0 {
		s.logger.Info("No stats to upload.")
		return nil
	}

	// Most recent first, matching the single path's recency bias.
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Time > stats[j].Time
	})

	batch, err := payload.BuildBatch(stats)
	if err != nil {
		wrapped := types.WrapError(types.ErrPayloadEncoding, "failed to build batch payload", err)
		s.logger.LogError(wrapped)
		return wrapped
	}

	if err := s.transport.Post(ctx, batch, apiKey); err != nil {
		s.record(ctx, journal.Attempt{
			Kind:       journal.KindBatch,
			Endpoint:   batch.Path(),
			Outcome:    journal.OutcomeFailed,
			StatusNote: statusNote(err),
		})
		return err
	}

	s.record(ctx, journal.Attempt{
		Kind:     journal.KindBatch,
		Endpoint: batch.Path(),
		Outcome:  journal.OutcomeSent,
	})
	return nil
}

func (s *Service) sendSingle(ctx context.Context, stat *entities.StatsRecording) error {
	apiKey := s.settings.APIKey()
	if apiKey == "" {
		err := types.NewUploadError(types.ErrMissingCredential, "api key is missing, cannot send stat to server")
		s.record(ctx, journal.Attempt{
			Kind:       journal.KindSingle,
			ArchiveID:  stat.ArchiveID,
			Endpoint:   payload.SinglePath,
			Outcome:    journal.OutcomeFailed,
			StatusNote: statusNote(err),
		})
		return err
	}

	p, err := payload.BuildSingle(stat)
	if err != nil {
		return types.WrapError(types.ErrPayloadEncoding, "failed to build stat payload", err)
	}

	if err := s.transport.Post(ctx, p, apiKey); err != nil {
		s.record(ctx, journal.Attempt{
			Kind:       journal.KindSingle,
			ArchiveID:  stat.ArchiveID,
			Endpoint:   p.Path(),
			Outcome:    journal.OutcomeFailed,
			StatusNote: statusNote(err),
		})
		return err
	}

	// Best-effort "was sent at least once" marker, never cleared on a later
	// failure.
	stat.Saved = true

	s.record(ctx, journal.Attempt{
		Kind:      journal.KindSingle,
		ArchiveID: stat.ArchiveID,
		Endpoint:  p.Path(),
		Outcome:   journal.OutcomeSent,
	})
	return nil
}

// record writes to the journal; journaling failures are logged and swallowed
// so auditing can never change an upload outcome
func (s *Service) record(ctx context.Context, attempt journal.Attempt) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(ctx, attempt); err != nil {
		s.logger.Warn("Failed to journal upload attempt: %v", err)
	}
}

// newestRecord picks the record with the maximum time, keeping the first
// encountered on ties
func newestRecord(stats []*entities.StatsRecording) *entities.StatsRecording {
	var newest *entities.StatsRecording
	for _, stat := range stats {
		if newest == nil || stat.Time > newest.Time {
			newest = stat
		}
	}
	return newest
}

func statusNote(err error) string {
	var uploadErr *types.UploadError
	if types.As(err, &uploadErr) {
		return uploadErr.Message
	}
	return err.Error()
}
