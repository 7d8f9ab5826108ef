package upload

import (
	"context"

	"github.com/RayaEspi/sbjstats/internal/logging"
	"github.com/RayaEspi/sbjstats/pkg/payload"
)

// Transport executes a single-shot upload of a payload. Implementations do not
// retry; a failure is terminal for that invocation and is reported both as an
// error and through the notifier.
type Transport interface {
	// Post submits the payload to its endpoint using the given credential
	Post(ctx context.Context, p payload.Payload, apiKey string) error
}

// Notifier surfaces short user-visible upload notifications. Messages carry no
// stack traces or raw error text.
type Notifier interface {
	Success(message string)
	Failure(message string)
}

// LogNotifier writes notifications to the log. It is the fallback when no
// host-facing notification channel is wired.
type LogNotifier struct {
	logger *logging.Logger
}

// NewLogNotifier creates a notifier backed by the given logger
func NewLogNotifier(logger *logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Success(message string) {
	n.logger.Info("[notify] %s", message)
}

func (n *LogNotifier) Failure(message string) {
	n.logger.Warn("[notify] %s", message)
}
