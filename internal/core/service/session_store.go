package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/ports"
	"github.com/freshcart/storefront/internal/core/token"
)

// Storage keys of the two namespaces. Nothing outside SessionStore may read or
// write them.
const (
	keyUserToken  = "userToken"
	keyUser       = "user"
	keyAdminToken = "adminToken"
	keyAdmin      = "admin"
)

func sessionKeys(ns domain.Namespace) (credentialKey, identityKey string) {
	if ns == domain.NamespaceAdministrator {
		return keyAdminToken, keyAdmin
	}
	return keyUserToken, keyUser
}

// SessionStore is the single reader and writer of session data in a browser's
// storage scope. Every operation touches the keys of one namespace only.
type SessionStore struct {
	deviceID string
	storage  ports.ClientStorage
	auditor  ports.SessionAuditor
	metrics  ports.MetricsRecorder
	log      zerolog.Logger
}

// NewSessionStore returns the session store of one browser.
func NewSessionStore(
	deviceID string,
	storage ports.ClientStorage,
	auditor ports.SessionAuditor,
	metrics ports.MetricsRecorder,
	log zerolog.Logger,
) *SessionStore {
	return &SessionStore{
		deviceID: deviceID,
		storage:  storage,
		auditor:  auditor,
		metrics:  metrics,
		log:      log,
	}
}

// Load returns the namespace's session, or nil when there is none. A session
// that is incomplete, expired, undecodable or carries the wrong role is
// cleared before returning nil. The error is reserved for storage failures.
func (s *SessionStore) Load(ctx context.Context, ns domain.Namespace) (*domain.Session, error) {
	credKey, identKey := sessionKeys(ns)

	credential, hasCred, err := s.storage.Get(ctx, credKey)
	if err != nil {
		return nil, fmt.Errorf("load %s session: %w", ns, err)
	}
	rawIdentity, hasIdent, err := s.storage.Get(ctx, identKey)
	if err != nil {
		return nil, fmt.Errorf("load %s session: %w", ns, err)
	}

	if !hasCred && !hasIdent {
		return nil, nil
	}

	var (
		kind     = domain.EventCleared
		reason   string
		identity domain.Identity
	)
	switch {
	case !hasCred || !hasIdent || credential == "":
		reason = "incomplete session"
	case token.IsExpired(credential):
		kind, reason = domain.EventExpired, "credential expired"
	case !token.HasRole(credential, ns.ExpectedRole()):
		reason = "role mismatch"
	case json.Unmarshal([]byte(rawIdentity), &identity) != nil:
		reason = "unreadable identity"
	default:
		return &domain.Session{Namespace: ns, Credential: credential, Identity: identity}, nil
	}

	s.log.Debug().
		Str("device", s.deviceID).
		Str("namespace", ns.String()).
		Str("reason", reason).
		Msg("discarding stored session")

	if err := s.storage.Remove(ctx, credKey, identKey); err != nil {
		return nil, fmt.Errorf("clear %s session: %w", ns, err)
	}
	s.record(ctx, ns, kind, reason)
	return nil, nil
}

// Save persists credential and identity for ns after checking the credential's
// role claim. A credential of the wrong role is refused with ErrRoleMismatch
// and nothing is written.
func (s *SessionStore) Save(ctx context.Context, ns domain.Namespace, credential string, identity domain.Identity) error {
	if !token.HasRole(credential, ns.ExpectedRole()) {
		s.record(ctx, ns, domain.EventRejected, "role mismatch")
		return fmt.Errorf("save %s session: %w", ns, domain.ErrRoleMismatch)
	}

	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("save %s session: %w", ns, err)
	}

	credKey, identKey := sessionKeys(ns)
	if err := s.storage.Set(ctx, credKey, credential); err != nil {
		return fmt.Errorf("save %s session: %w", ns, err)
	}
	if err := s.storage.Set(ctx, identKey, string(raw)); err != nil {
		return fmt.Errorf("save %s session: %w", ns, err)
	}

	s.record(ctx, ns, domain.EventSaved, "")
	return nil
}

// Clear removes both keys of ns. Clearing an empty namespace is a no-op.
func (s *SessionStore) Clear(ctx context.Context, ns domain.Namespace) error {
	return s.clear(ctx, ns, domain.EventCleared, "logout")
}

// End clears ns after the remote API rejected its credential.
func (s *SessionStore) End(ctx context.Context, ns domain.Namespace) error {
	return s.clear(ctx, ns, domain.EventEnded, "remote rejected credential")
}

func (s *SessionStore) clear(ctx context.Context, ns domain.Namespace, kind domain.SessionEventKind, reason string) error {
	credKey, identKey := sessionKeys(ns)
	if err := s.storage.Remove(ctx, credKey, identKey); err != nil {
		return fmt.Errorf("clear %s session: %w", ns, err)
	}
	s.record(ctx, ns, kind, reason)
	return nil
}

// UpdateIdentity replaces the cached identity of an active session. It never
// creates a session: without a valid credential it returns ErrNoSession.
func (s *SessionStore) UpdateIdentity(ctx context.Context, ns domain.Namespace, identity domain.Identity) error {
	sess, err := s.Load(ctx, ns)
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("update %s identity: %w", ns, domain.ErrNoSession)
	}

	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("update %s identity: %w", ns, err)
	}
	_, identKey := sessionKeys(ns)
	if err := s.storage.Set(ctx, identKey, string(raw)); err != nil {
		return fmt.Errorf("update %s identity: %w", ns, err)
	}
	return nil
}

func (s *SessionStore) record(ctx context.Context, ns domain.Namespace, kind domain.SessionEventKind, reason string) {
	s.metrics.RecordSessionEvent(ns, kind)
	s.auditor.Record(ctx, domain.SessionEvent{
		DeviceID:  s.deviceID,
		Namespace: ns,
		Kind:      kind,
		Reason:    reason,
		Timestamp: token.NowTimeFunc().UTC(),
	})
}
