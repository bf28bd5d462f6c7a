package service

import (
	"context"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/ports"
)

// SelectNamespace picks the namespace whose credential a request carries:
// an explicit override first, then the admin area of the route, else shopper.
func SelectNamespace(override domain.Namespace, route, adminPrefix string) domain.Namespace {
	if override.Valid() {
		return override
	}
	return domain.RouteNamespace(route, adminPrefix)
}

// Guard attaches the right bearer credential to remote requests of one
// browser and ends the owning session when the remote API rejects it.
type Guard struct {
	sessions    *SessionStore
	adminPrefix string
	metrics     ports.MetricsRecorder
	log         zerolog.Logger

	mu        sync.Mutex
	listeners []ports.SessionListener
}

// NewGuard returns a Guard over sessions.
func NewGuard(sessions *SessionStore, adminPrefix string, metrics ports.MetricsRecorder, log zerolog.Logger) *Guard {
	if adminPrefix == "" {
		adminPrefix = domain.DefaultAdminPrefix
	}
	return &Guard{
		sessions:    sessions,
		adminPrefix: adminPrefix,
		metrics:     metrics,
		log:         log,
	}
}

// Subscribe registers l for session-ended signals.
func (g *Guard) Subscribe(l ports.SessionListener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, l)
}

// Attach loads the namespace selected for ctx and, when it holds a session,
// sets the Authorization header of req. Without a session req goes out
// unauthenticated.
func (g *Guard) Attach(ctx context.Context, req *http.Request) (ports.Attachment, error) {
	info := RequestFrom(ctx)
	ns := SelectNamespace(info.Override, info.Route, g.adminPrefix)
	att := ports.Attachment{Namespace: ns}

	sess, err := g.sessions.Load(ctx, ns)
	if err != nil {
		return att, err
	}
	if sess == nil {
		req.Header.Del(headerAuthorization)
		g.metrics.RecordAttach(ns, false)
		return att, nil
	}

	req.Header.Set(headerAuthorization, "Bearer "+sess.Credential)
	att.Credentialed = true
	g.metrics.RecordAttach(ns, true)
	return att, nil
}

// Observe interprets the status of a response to a request prepared by
// Attach. A 401 on a credentialed request clears exactly that namespace and
// tells every listener; a 403 leaves the session alone.
func (g *Guard) Observe(ctx context.Context, att ports.Attachment, status int) error {
	if status != http.StatusUnauthorized || !att.Credentialed {
		return StatusError(status)
	}

	if err := g.sessions.End(ctx, att.Namespace); err != nil {
		g.log.Error().Err(err).Str("namespace", att.Namespace.String()).Msg("failed to clear rejected session")
	}

	g.mu.Lock()
	listeners := append([]ports.SessionListener(nil), g.listeners...)
	g.mu.Unlock()
	for _, l := range listeners {
		l.SessionEnded(ctx, att.Namespace)
	}

	g.log.Info().Str("namespace", att.Namespace.String()).Msg("session ended by remote api")
	return &domain.SessionEndedError{Namespace: att.Namespace}
}

// StatusError maps a remote status to the error callers see, ignoring
// session bookkeeping.
func StatusError(status int) error {
	switch {
	case status < http.StatusBadRequest:
		return nil
	case status == http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case status == http.StatusForbidden:
		return domain.ErrForbidden
	default:
		return &domain.RemoteError{Status: status}
	}
}

const headerAuthorization = "Authorization"

// DeviceAuthorizer sends each remote request through the guard of the
// browser bound to its context. Requests without a browser go out
// unauthenticated.
type DeviceAuthorizer struct {
	AdminPrefix string
}

// Attach implements ports.RequestAuthorizer.
func (a DeviceAuthorizer) Attach(ctx context.Context, req *http.Request) (ports.Attachment, error) {
	if d, ok := DeviceFrom(ctx); ok {
		return d.Guard.Attach(ctx, req)
	}
	info := RequestFrom(ctx)
	return ports.Attachment{Namespace: SelectNamespace(info.Override, info.Route, a.AdminPrefix)}, nil
}

// Observe implements ports.RequestAuthorizer.
func (a DeviceAuthorizer) Observe(ctx context.Context, att ports.Attachment, status int) error {
	if d, ok := DeviceFrom(ctx); ok {
		return d.Guard.Observe(ctx, att, status)
	}
	return StatusError(status)
}
