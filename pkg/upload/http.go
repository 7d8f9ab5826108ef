package upload

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/RayaEspi/sbjstats/internal/logging"
	"github.com/RayaEspi/sbjstats/internal/types"
	"github.com/RayaEspi/sbjstats/pkg/payload"
)

// DefaultServerURL is the collection API reached when no override is configured
const DefaultServerURL = "https://api.espi-couple.com"

const defaultTimeout = 30 * time.Second

// HTTPTransport posts JSON payloads to the collection API with a bearer
// credential. Calls block until the response arrives or the client timeout
// expires; an expired timeout is reported as a transport failure.
type HTTPTransport struct {
	baseURL  string
	client   *http.Client
	logger   *logging.Logger
	notifier Notifier
}

// NewHTTPTransport creates a transport for the given server base URL. An empty
// baseURL falls back to the default collection API.
func NewHTTPTransport(baseURL string, timeout time.Duration, logger *logging.Logger, notifier Notifier) *HTTPTransport {
	if baseURL == "" {
		baseURL = DefaultServerURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &HTTPTransport{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
		notifier: notifier,
	}
}

// Post submits the payload to its endpoint. On a 2xx response it logs and
// notifies success; on any other status or a network-level failure it logs the
// cause, notifies failure, and returns a TRANSPORT_FAILURE error. No retry.
func (t *HTTPTransport) Post(ctx context.Context, p payload.Payload, apiKey string) error {
	body, err := p.Body()
	if err != nil {
		return types.WrapError(types.ErrPayloadEncoding, "failed to encode payload", err)
	}

	url := t.baseURL + p.Path()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return types.WrapError(types.ErrTransportFailure, "failed to create request", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	t.logger.Info("Sending %s to server...", p.Noun())

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Error("Failed to send %s: %v", p.Noun(), err)
		t.notifier.Failure(fmt.Sprintf("Failed to upload %s", p.Noun()))
		return types.WrapError(types.ErrTransportFailure, fmt.Sprintf("failed to send %s", p.Noun()), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		t.logger.Error("Failed to send %s. Status: %s", p.Noun(), resp.Status)
		t.notifier.Failure(fmt.Sprintf("Failed to upload %s", p.Noun()))
		return types.NewUploadError(types.ErrTransportFailure,
			fmt.Sprintf("server returned %s", resp.Status))
	}

	t.logger.Info("%s sent successfully.", p.Noun())
	t.notifier.Success(fmt.Sprintf("Uploaded %s", p.Noun()))
	return nil
}
