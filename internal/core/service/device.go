package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/ports"
)

type ctxKey int

const (
	requestKey ctxKey = iota
	deviceKey
)

// RequestInfo describes the inbound request the guard selects a namespace
// for. Override is empty unless the caller pinned a namespace.
type RequestInfo struct {
	Route    string
	Override domain.Namespace
}

// WithRequest binds the current route and optional override to ctx.
func WithRequest(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestKey, info)
}

// RequestFrom returns the request info bound to ctx.
func RequestFrom(ctx context.Context) RequestInfo {
	info, _ := ctx.Value(requestKey).(RequestInfo)
	return info
}

// WithNamespace pins the namespace used for remote calls made with ctx,
// keeping the current route.
func WithNamespace(ctx context.Context, ns domain.Namespace) context.Context {
	info := RequestFrom(ctx)
	info.Override = ns
	return WithRequest(ctx, info)
}

// Device is the session core of one browser, assembled per inbound request.
type Device struct {
	ID          string
	Sessions    *SessionStore
	Guard       *Guard
	Scopes      *Scopes
	Preferences *Preferences
}

// WithDevice binds d to ctx.
func WithDevice(ctx context.Context, d *Device) context.Context {
	return context.WithValue(ctx, deviceKey, d)
}

// DeviceFrom returns the device bound to ctx.
func DeviceFrom(ctx context.Context) (*Device, bool) {
	d, ok := ctx.Value(deviceKey).(*Device)
	return d, ok && d != nil
}

func deviceOrErr(ctx context.Context) (*Device, error) {
	d, ok := DeviceFrom(ctx)
	if !ok {
		return nil, domain.ErrNoSession
	}
	return d, nil
}

// Devices opens the per-browser session core on top of a storage backend.
type Devices struct {
	provider    ports.StorageProvider
	auditor     ports.SessionAuditor
	metrics     ports.MetricsRecorder
	adminPrefix string
	log         zerolog.Logger
}

// NewDevices returns a Devices. An empty adminPrefix means "/admin".
func NewDevices(
	provider ports.StorageProvider,
	auditor ports.SessionAuditor,
	metrics ports.MetricsRecorder,
	adminPrefix string,
	log zerolog.Logger,
) *Devices {
	if adminPrefix == "" {
		adminPrefix = domain.DefaultAdminPrefix
	}
	return &Devices{
		provider:    provider,
		auditor:     auditor,
		metrics:     metrics,
		adminPrefix: adminPrefix,
		log:         log,
	}
}

// AdminPrefix is the route prefix of the administrator area.
func (d *Devices) AdminPrefix() string { return d.adminPrefix }

// Open wires the session store, guard and scopes of the browser id. nav
// receives the redirects its scopes ask for.
func (d *Devices) Open(id string, nav ports.Navigator) *Device {
	storage := d.provider.ForDevice(id)
	log := d.log.With().Str("device", id).Logger()

	sessions := NewSessionStore(id, storage, d.auditor, d.metrics, log)
	scopes := NewScopes(sessions, nav, d.adminPrefix)
	guard := NewGuard(sessions, d.adminPrefix, d.metrics, log)
	guard.Subscribe(scopes)

	return &Device{
		ID:          id,
		Sessions:    sessions,
		Guard:       guard,
		Scopes:      scopes,
		Preferences: NewPreferences(storage),
	}
}
