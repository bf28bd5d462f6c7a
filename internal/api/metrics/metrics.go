// Package metrics defines the custom Prometheus metrics of the storefront
// gateway. It is the single source of truth for metric names, labels, and
// help strings.
//
// Build a Recorder once at startup with the registry the /metrics endpoint
// serves.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/ports"
)

const namespace = "storefront"

// Recorder is the Prometheus implementation of ports.MetricsRecorder.
type Recorder struct {
	// sessionEvents counts session lifecycle transitions.
	// Labels:
	//   - namespace: "shopper" or "administrator"
	//   - kind: saved, rejected, cleared, expired, ended
	sessionEvents *prometheus.CounterVec

	// attaches counts remote requests prepared by the guard.
	// Labels:
	//   - namespace: the namespace selected for the request
	//   - credentialed: "true" when a bearer credential went out
	attaches *prometheus.CounterVec

	// remoteCalls counts calls to the remote API.
	// Labels:
	//   - method, endpoint: HTTP method and path template
	//   - status: response status, "0" on transport failure
	remoteCalls *prometheus.CounterVec

	// remoteDuration measures remote call latency.
	remoteDuration *prometheus.HistogramVec
}

// NewRecorder registers the storefront metrics with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		sessionEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_events_total",
				Help:      "Total number of session lifecycle transitions, by namespace and kind.",
			},
			[]string{"namespace", "kind"},
		),
		attaches: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "guard_attach_total",
				Help:      "Total number of remote requests prepared by the session guard.",
			},
			[]string{"namespace", "credentialed"},
		),
		remoteCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "remote_calls_total",
				Help:      "Total number of remote API calls, by endpoint and status.",
			},
			[]string{"method", "endpoint", "status"},
		),
		remoteDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "remote_call_duration_seconds",
				Help:      "Duration of remote API calls.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
	}
}

func (r *Recorder) RecordSessionEvent(ns domain.Namespace, kind domain.SessionEventKind) {
	r.sessionEvents.WithLabelValues(ns.String(), string(kind)).Inc()
}

func (r *Recorder) RecordAttach(ns domain.Namespace, attached bool) {
	r.attaches.WithLabelValues(ns.String(), strconv.FormatBool(attached)).Inc()
}

func (r *Recorder) RecordRemoteCall(method, endpoint string, status int, elapsed time.Duration) {
	r.remoteCalls.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	r.remoteDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}

// Noop discards every metric.
type Noop struct{}

func (Noop) RecordSessionEvent(domain.Namespace, domain.SessionEventKind) {}
func (Noop) RecordAttach(domain.Namespace, bool)                          {}
func (Noop) RecordRemoteCall(string, string, int, time.Duration)          {}

var (
	_ ports.MetricsRecorder = (*Recorder)(nil)
	_ ports.MetricsRecorder = Noop{}
)
