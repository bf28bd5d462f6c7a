package service

import (
	"context"
	"sync"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/ports"
)

// State is the observable state of one namespace's scope.
type State struct {
	Identity *domain.Identity
	Loading  bool
	Err      error
}

// Scope binds one namespace of the session store to observable state.
type Scope struct {
	ns          domain.Namespace
	sessions    *SessionStore
	nav         ports.Navigator
	adminPrefix string

	mu    sync.Mutex
	state State
	subs  map[int]func(State)
	next  int
}

func newScope(ns domain.Namespace, sessions *SessionStore, nav ports.Navigator, adminPrefix string) *Scope {
	return &Scope{
		ns:          ns,
		sessions:    sessions,
		nav:         nav,
		adminPrefix: adminPrefix,
		subs:        make(map[int]func(State)),
	}
}

// Namespace returns the namespace the scope manages.
func (s *Scope) Namespace() domain.Namespace { return s.ns }

// LoginPath is where the scope sends the browser when its session ends.
func (s *Scope) LoginPath() string { return s.ns.LoginPath(s.adminPrefix) }

// State returns a snapshot of the current state.
func (s *Scope) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe calls fn on every state change until the returned cancel runs.
func (s *Scope) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Scope) set(st State) {
	s.mu.Lock()
	s.state = st
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
}

// Init loads the scope's session for route. On a route of the other
// namespace's area it does nothing at all, storage included.
func (s *Scope) Init(ctx context.Context, route string) error {
	if domain.RouteNamespace(route, s.adminPrefix) != s.ns {
		s.set(State{})
		return nil
	}

	s.set(State{Loading: true})
	sess, err := s.sessions.Load(ctx, s.ns)
	if err != nil {
		s.set(State{Err: err})
		return err
	}
	if sess == nil {
		s.set(State{})
		return nil
	}
	identity := sess.Identity
	s.set(State{Identity: &identity})
	return nil
}

// Login stores credential and identity. A credential of the other role is
// refused and recorded as the scope's error.
func (s *Scope) Login(ctx context.Context, credential string, identity domain.Identity) error {
	if err := s.sessions.Save(ctx, s.ns, credential, identity); err != nil {
		s.set(State{Err: err})
		return err
	}
	s.set(State{Identity: &identity})
	return nil
}

// Logout clears the session and sends the browser to the login screen. The
// other scope is left as it is.
func (s *Scope) Logout(ctx context.Context) error {
	if err := s.sessions.Clear(ctx, s.ns); err != nil {
		s.set(State{Identity: s.State().Identity, Err: err})
		return err
	}
	s.set(State{})
	s.nav.Navigate(ctx, s.LoginPath())
	return nil
}

// UpdateIdentity refreshes the cached identity of the active session.
func (s *Scope) UpdateIdentity(ctx context.Context, identity domain.Identity) error {
	if err := s.sessions.UpdateIdentity(ctx, s.ns, identity); err != nil {
		s.set(State{Identity: s.State().Identity, Err: err})
		return err
	}
	s.set(State{Identity: &identity})
	return nil
}

// SessionEnded resets the scope when its namespace was ended by the remote
// API. The redirect is silent: no error is recorded.
func (s *Scope) SessionEnded(ctx context.Context, ns domain.Namespace) {
	if ns != s.ns {
		return
	}
	s.set(State{})
	s.nav.Navigate(ctx, s.LoginPath())
}

// IsAuthenticated reports whether the scope currently holds an identity.
func (s *Scope) IsAuthenticated() bool {
	return s.State().Identity != nil
}

// Scopes holds the shopper and administrator scopes of one browser.
type Scopes struct {
	Shopper       *Scope
	Administrator *Scope
}

// NewScopes returns both scopes over sessions.
func NewScopes(sessions *SessionStore, nav ports.Navigator, adminPrefix string) *Scopes {
	if adminPrefix == "" {
		adminPrefix = domain.DefaultAdminPrefix
	}
	return &Scopes{
		Shopper:       newScope(domain.NamespaceShopper, sessions, nav, adminPrefix),
		Administrator: newScope(domain.NamespaceAdministrator, sessions, nav, adminPrefix),
	}
}

// For returns the scope of ns.
func (s *Scopes) For(ns domain.Namespace) *Scope {
	if ns == domain.NamespaceAdministrator {
		return s.Administrator
	}
	return s.Shopper
}

// Init mounts both scopes for route; only the one owning route loads.
func (s *Scopes) Init(ctx context.Context, route string) error {
	if err := s.Shopper.Init(ctx, route); err != nil {
		return err
	}
	return s.Administrator.Init(ctx, route)
}

// SessionEnded implements ports.SessionListener.
func (s *Scopes) SessionEnded(ctx context.Context, ns domain.Namespace) {
	s.For(ns).SessionEnded(ctx, ns)
}
