package ports

import (
	"time"

	"github.com/freshcart/storefront/internal/core/domain"
)

// MetricsRecorder is the port for recording session and remote-call metrics.
// Implementations are adapters (Prometheus for production, Noop for tests).
type MetricsRecorder interface {
	// RecordSessionEvent counts a lifecycle transition of a namespace.
	RecordSessionEvent(ns domain.Namespace, kind domain.SessionEventKind)

	// RecordAttach records whether the guard attached a credential.
	RecordAttach(ns domain.Namespace, attached bool)

	// RecordRemoteCall records one call to the remote API.
	RecordRemoteCall(method, endpoint string, status int, elapsed time.Duration)
}
