package upload

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RayaEspi/sbjstats/internal/logging"
	"github.com/RayaEspi/sbjstats/internal/types"
	"github.com/RayaEspi/sbjstats/pkg/entities"
	"github.com/RayaEspi/sbjstats/pkg/payload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingNotifier captures notifications for assertions
type recordingNotifier struct {
	successes []string
	failures  []string
}

func (n *recordingNotifier) Success(message string) {
	n.successes = append(n.successes, message)
}

func (n *recordingNotifier) Failure(message string) {
	n.failures = append(n.failures, message)
}

func buildTestPayload(t *testing.T) payload.SinglePayload {
	t.Helper()
	p, err := payload.BuildSingle(&entities.StatsRecording{
		Time:          1700000000000,
		BetsCollected: 1000,
		Payouts:       1500,
		Players:       []string{"Alice", "Bob"},
	})
	require.NoError(t, err)
	return p
}

func TestPostSuccess(t *testing.T) {
	notifier := &recordingNotifier{}

	var gotAuth, gotContentType, gotPath string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL, time.Second, logging.NewLogger(logging.ERROR), notifier)
	err := transport.Post(context.Background(), buildTestPayload(t), "abc123")
	require.NoError(t, err)

	assert.Equal(t, "Bearer abc123", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "/sbj/import", gotPath)

	var fields map[string]string
	require.NoError(t, json.Unmarshal(gotBody, &fields))
	assert.Equal(t, "Alice, Bob", fields["players"])
	assert.Equal(t, "-500", fields["profit"])

	assert.Len(t, notifier.successes, 1)
	assert.Empty(t, notifier.failures)
}

func TestPostBatchUsesBatchPath(t *testing.T) {
	notifier := &recordingNotifier{}

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	batch, err := payload.BuildBatch([]*entities.StatsRecording{{Time: 100}})
	require.NoError(t, err)

	transport := NewHTTPTransport(server.URL, time.Second, logging.NewLogger(logging.ERROR), notifier)
	require.NoError(t, transport.Post(context.Background(), batch, "abc123"))

	assert.Equal(t, "/sbj/import/mass", gotPath)
	assert.Len(t, notifier.successes, 1)
}

func TestPostServerError(t *testing.T) {
	notifier := &recordingNotifier{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL, time.Second, logging.NewLogger(logging.ERROR), notifier)
	err := transport.Post(context.Background(), buildTestPayload(t), "abc123")

	require.Error(t, err)
	assert.True(t, types.IsUploadError(err, types.ErrTransportFailure))
	// The server's own status line, code and reason phrase, is carried through.
	assert.Contains(t, err.Error(), "500 Internal Server Error")
	assert.Len(t, notifier.failures, 1)
	assert.Empty(t, notifier.successes)
}

func TestPostConnectionRefused(t *testing.T) {
	notifier := &recordingNotifier{}

	// Point at a server that has already been shut down.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	transport := NewHTTPTransport(url, time.Second, logging.NewLogger(logging.ERROR), notifier)
	err := transport.Post(context.Background(), buildTestPayload(t), "abc123")

	require.Error(t, err)
	assert.True(t, types.IsUploadError(err, types.ErrTransportFailure))
	assert.Len(t, notifier.failures, 1)
}

func TestNotificationTextIsPayloadAware(t *testing.T) {
	notifier := &recordingNotifier{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL, time.Second, logging.NewLogger(logging.ERROR), notifier)

	require.NoError(t, transport.Post(context.Background(), buildTestPayload(t), "k"))
	batch, err := payload.BuildBatch([]*entities.StatsRecording{{Time: 1}})
	require.NoError(t, err)
	require.NoError(t, transport.Post(context.Background(), batch, "k"))

	require.Len(t, notifier.successes, 2)
	assert.Equal(t, "Uploaded stat", notifier.successes[0])
	assert.Equal(t, "Uploaded mass stats", notifier.successes[1])
}
