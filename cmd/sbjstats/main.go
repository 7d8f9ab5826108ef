package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RayaEspi/sbjstats/internal/config"
	"github.com/RayaEspi/sbjstats/internal/diag"
	"github.com/RayaEspi/sbjstats/internal/logging"
	"github.com/RayaEspi/sbjstats/pkg/journal"
	"github.com/RayaEspi/sbjstats/pkg/producer"
	"github.com/RayaEspi/sbjstats/pkg/services/uploader"
	"github.com/RayaEspi/sbjstats/pkg/settings"
	"github.com/RayaEspi/sbjstats/pkg/upload"
)

func main() {
	logger := logging.Default

	if err := run(logger); err != nil {
		logger.LogError(err)
		os.Exit(1)
	}
}

// run wires the pipeline and blocks until shutdown. Returning an error (rather
// than exiting inline) lets the deferred cleanups release the journal and the
// producer connection on a failed start.
func run(logger *logging.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store := settings.NewStore(cfg.SettingsPath)

	// Journal: SQLite with an in-memory fallback so a broken local database
	// never blocks uploads.
	var jrnl journal.Journal
	sqliteJournal, err := journal.NewSQLiteJournal(cfg.JournalPath)
	if err != nil {
		logger.Warn("Failed to open journal at %s: %v", cfg.JournalPath, err)
		logger.Warn("Falling back to in-memory journal (attempts will be lost on restart)")
		jrnl = journal.NewMemoryJournal()
	} else {
		jrnl = sqliteJournal
		logger.Info("Upload journal at %s", cfg.JournalPath)
	}
	defer jrnl.Close()

	// Stat source: the producer plugin over IPC, or an empty in-memory store
	// in development.
	var statProducer producer.StatProducer
	var events <-chan producer.RoundFinished
	var notifier upload.Notifier = upload.NewLogNotifier(logger)

	switch cfg.StatSource {
	case config.SourceWebSocket:
		dialCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := producer.Dial(dialCtx, cfg.ProducerURL, logger)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to stat producer: %w", err)
		}
		defer client.Close()
		statProducer = client
		events = client.Events()
		notifier = client
	case config.SourceMemory:
		memory := producer.NewMemory()
		defer memory.Close()
		statProducer = memory
		events = memory.Events()
		logger.Info("Using in-memory stat source (development mode)")
	}

	serverURL := cfg.ServerURL
	if override := store.ServerURL(); override != "" {
		serverURL = override
	}

	transport := upload.NewHTTPTransport(serverURL, cfg.UploadTimeout, logger, notifier)
	service := uploader.NewService(statProducer, store, transport, jrnl, logger)

	// Diagnostics surface
	handler := diag.NewHandler(statProducer, service, jrnl, store, logger)
	diagServer := &http.Server{
		Addr:    cfg.DiagAddr,
		Handler: handler.Router(),
	}
	go func() {
		logger.Info("Diagnostics surface listening on %s", cfg.DiagAddr)
		if err := diagServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Diagnostics server error: %v", err)
		}
	}()

	// Event loop: one upload per round-finished notification, each insulated
	// from the next.
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		for range events {
			handleRound(service, logger)
		}
	}()

	logger.Info("sbjstats is running. Press Ctrl+C to exit")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := diagServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Diagnostics server shutdown: %v", err)
	}
	return nil
}

// handleRound runs one event-driven upload, containing panics so a bad round
// cannot take down the event loop
func handleRound(service *uploader.Service, logger *logging.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered from panic while handling finished round: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	service.HandleRoundFinished(ctx)
}
