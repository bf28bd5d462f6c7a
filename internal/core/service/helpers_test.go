package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/ports"
)

// storageOp is one call observed by spyStorage.
type storageOp struct {
	op  string
	key string
}

// spyStorage is an in-memory ClientStorage that records every key it is asked
// about.
type spyStorage struct {
	mu      sync.Mutex
	data    map[string]string
	ops     []storageOp
	failGet error
	failSet error
}

func newSpyStorage() *spyStorage {
	return &spyStorage{data: make(map[string]string)}
}

func (s *spyStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = append(s.ops, storageOp{"get", key})
	if s.failGet != nil {
		return "", false, s.failGet
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *spyStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = append(s.ops, storageOp{"set", key})
	if s.failSet != nil {
		return s.failSet
	}
	s.data[key] = value
	return nil
}

func (s *spyStorage) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		s.ops = append(s.ops, storageOp{"remove", k})
		delete(s.data, k)
	}
	return nil
}

func (s *spyStorage) seed(kv map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range kv {
		s.data[k] = v
	}
}

func (s *spyStorage) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

func (s *spyStorage) value(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key]
}

func (s *spyStorage) resetOps() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = nil
}

// touched reports whether any recorded op involved one of keys.
func (s *spyStorage) touched(keys ...string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range s.ops {
		for _, k := range keys {
			if op.key == k {
				return true
			}
		}
	}
	return false
}

// spyProvider hands out one spyStorage per device.
type spyProvider struct {
	mu       sync.Mutex
	storages map[string]*spyStorage
}

func newSpyProvider() *spyProvider {
	return &spyProvider{storages: make(map[string]*spyStorage)}
}

func (p *spyProvider) ForDevice(id string) ports.ClientStorage { return p.storage(id) }

func (p *spyProvider) Ping(context.Context) error { return nil }

func (p *spyProvider) storage(id string) *spyStorage {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.storages[id]
	if !ok {
		s = newSpyStorage()
		p.storages[id] = s
	}
	return s
}

type stubAuditor struct {
	mu     sync.Mutex
	events []domain.SessionEvent
}

func (a *stubAuditor) Record(_ context.Context, e domain.SessionEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *stubAuditor) kinds() []domain.SessionEventKind {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.SessionEventKind, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Kind)
	}
	return out
}

type nopMetrics struct{}

func (nopMetrics) RecordSessionEvent(domain.Namespace, domain.SessionEventKind) {}
func (nopMetrics) RecordAttach(domain.Namespace, bool)                         {}
func (nopMetrics) RecordRemoteCall(string, string, int, time.Duration)          {}

type stubNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *stubNavigator) Navigate(_ context.Context, path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *stubNavigator) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.paths) == 0 {
		return ""
	}
	return n.paths[len(n.paths)-1]
}

var errStorageDown = errors.New("storage down")

func credential(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"role": role, "sub": "someone@example.com"}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("remote-secret"))
	if err != nil {
		t.Fatalf("sign credential: %v", err)
	}
	return s
}

func validUser(t *testing.T) string  { return credential(t, domain.RoleUser, time.Now().Add(time.Hour)) }
func validAdmin(t *testing.T) string { return credential(t, domain.RoleAdmin, time.Now().Add(time.Hour)) }

func newTestStore(storage ports.ClientStorage, auditor *stubAuditor) *SessionStore {
	if auditor == nil {
		auditor = &stubAuditor{}
	}
	return NewSessionStore("dev-1", storage, auditor, nopMetrics{}, zerolog.Nop())
}

// newTestDevice wires a device on a fresh spy storage and binds it to a
// context whose current route is route.
func newTestDevice(route string) (context.Context, *Device, *spyStorage, *stubNavigator) {
	provider := newSpyProvider()
	nav := &stubNavigator{}
	devices := NewDevices(provider, &stubAuditor{}, nopMetrics{}, "", zerolog.Nop())
	dev := devices.Open("dev-1", nav)
	ctx := WithDevice(WithRequest(context.Background(), RequestInfo{Route: route}), dev)
	return ctx, dev, provider.storage("dev-1"), nav
}
