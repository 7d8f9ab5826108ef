package diag

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/RayaEspi/sbjstats/internal/logging"
	"github.com/RayaEspi/sbjstats/internal/types"
	"github.com/RayaEspi/sbjstats/pkg/entities"
	"github.com/RayaEspi/sbjstats/pkg/journal"
	"github.com/RayaEspi/sbjstats/pkg/producer"
	"github.com/RayaEspi/sbjstats/pkg/services/uploader"
	"github.com/RayaEspi/sbjstats/pkg/settings"
)

// Handler provides the localhost diagnostics surface: read-only views of the
// producer's records and archives, the upload audit trail, the settings
// editor, and the manual batch-upload trigger.
type Handler struct {
	producer producer.StatProducer
	uploader *uploader.Service
	journal  journal.Journal
	store    *settings.Store
	logger   *logging.Logger
}

// NewHandler creates a diagnostics handler
func NewHandler(statProducer producer.StatProducer, uploaderService *uploader.Service, jrnl journal.Journal, store *settings.Store, logger *logging.Logger) *Handler {
	return &Handler{
		producer: statProducer,
		uploader: uploaderService,
		journal:  jrnl,
		store:    store,
		logger:   logger,
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// settingsView is the editable slice of the settings document. The API key is
// never echoed back, only whether one is set.
type settingsView struct {
	ApiKeySet  bool `json:"api_key_set"`
	LiveUpload bool `json:"live_upload"`
}

type settingsUpdate struct {
	ApiKey     *string `json:"api_key,omitempty"`
	LiveUpload *bool   `json:"live_upload,omitempty"`
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.HealthCheck)
	r.Get("/stats", h.GetStats)
	r.Get("/archives", h.GetArchives)
	r.Get("/attempts", h.GetAttempts)
	r.Post("/upload", h.TriggerBatchUpload)
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)

	return r
}

// HealthCheck reports liveness
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, APIResponse{Success: true, Data: map[string]string{"status": "ok"}})
}

// GetStats returns the current-session records from the producer
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	stats, err := h.producer.GetStats(ctx, entities.SessionSentinel)
	if err != nil {
		h.logger.LogError(err)
		h.respond(w, http.StatusBadGateway, APIResponse{Error: "failed to query stats from producer"})
		return
	}

	h.respond(w, http.StatusOK, APIResponse{Success: true, Data: stats})
}

// GetArchives returns the producer's archive-id to description mapping
func (h *Handler) GetArchives(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	archives, err := h.producer.GetArchives(ctx)
	if err != nil {
		h.logger.LogError(err)
		h.respond(w, http.StatusBadGateway, APIResponse{Error: "failed to query archives from producer"})
		return
	}

	h.respond(w, http.StatusOK, APIResponse{Success: true, Data: archives})
}

// GetAttempts returns recent upload attempts from the journal
func (h *Handler) GetAttempts(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.respond(w, http.StatusBadRequest, APIResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	attempts, err := h.journal.Recent(r.Context(), limit)
	if err != nil {
		h.logger.LogError(err)
		h.respond(w, http.StatusInternalServerError, APIResponse{Error: "failed to read upload attempts"})
		return
	}

	h.respond(w, http.StatusOK, APIResponse{Success: true, Data: attempts})
}

// TriggerBatchUpload runs the batch uploader. This is the explicit user action
// that submits all current-session records in one request.
func (h *Handler) TriggerBatchUpload(w http.ResponseWriter, r *http.Request) {
	err := h.uploader.UploadAll(r.Context())
	if err == nil {
		h.respond(w, http.StatusAccepted, APIResponse{Success: true, Data: map[string]string{"status": "uploaded"}})
		return
	}

	switch {
	case types.IsUploadError(err, types.ErrMissingCredential):
		h.respond(w, http.StatusBadRequest, APIResponse{Error: "api key is not configured"})
	case types.IsUploadError(err, types.ErrTransportFailure):
		h.respond(w, http.StatusBadGateway, APIResponse{Error: "upload failed"})
	default:
		h.respond(w, http.StatusInternalServerError, APIResponse{Error: "upload failed"})
	}
}

// GetSettings returns the editable settings without echoing the credential
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	current, err := h.store.Load()
	if err != nil {
		h.logger.LogError(types.WrapError(types.ErrConfiguration, "failed to load settings", err))
		h.respond(w, http.StatusInternalServerError, APIResponse{Error: "failed to load settings"})
		return
	}

	h.respond(w, http.StatusOK, APIResponse{Success: true, Data: settingsView{
		ApiKeySet:  h.store.APIKey() != "",
		LiveUpload: current.LiveUpload,
	}})
}

// UpdateSettings applies a partial settings update and persists it
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var update settingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.respond(w, http.StatusBadRequest, APIResponse{Error: "invalid request body"})
		return
	}

	current, err := h.store.Load()
	if err != nil {
		h.logger.LogError(types.WrapError(types.ErrConfiguration, "failed to load settings", err))
		h.respond(w, http.StatusInternalServerError, APIResponse{Error: "failed to load settings"})
		return
	}

	if update.ApiKey != nil {
		current.ApiKey = *update.ApiKey
	}
	if update.LiveUpload != nil {
		current.LiveUpload = *update.LiveUpload
	}

	if err := h.store.Save(current); err != nil {
		h.logger.LogError(types.WrapError(types.ErrConfiguration, "failed to save settings", err))
		h.respond(w, http.StatusInternalServerError, APIResponse{Error: "failed to save settings"})
		return
	}

	h.logger.Info("Settings updated.")
	h.respond(w, http.StatusOK, APIResponse{Success: true, Data: settingsView{
		ApiKeySet:  h.store.APIKey() != "",
		LiveUpload: current.LiveUpload,
	}})
}

func (h *Handler) respond(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response: %v", err)
	}
}
