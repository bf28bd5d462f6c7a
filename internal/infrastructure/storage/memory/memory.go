// Package memory keeps browser storage scopes in process memory. Scopes are
// lost on restart; use it for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/freshcart/storefront/internal/core/ports"
)

// Store holds every browser scope.
type Store struct {
	mu     sync.RWMutex
	scopes map[string]map[string]string
}

// New returns an empty Store.
func New() *Store {
	return &Store{scopes: make(map[string]map[string]string)}
}

// ForDevice implements ports.StorageProvider.
func (s *Store) ForDevice(deviceID string) ports.ClientStorage {
	return &scope{store: s, id: deviceID}
}

// Ping implements ports.StorageProvider.
func (s *Store) Ping(context.Context) error { return nil }

// Snapshot returns a copy of a device's scope.
func (s *Store) Snapshot(deviceID string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.scopes[deviceID]))
	for k, v := range s.scopes[deviceID] {
		out[k] = v
	}
	return out
}

type scope struct {
	store *Store
	id    string
}

func (c *scope) Get(_ context.Context, key string) (string, bool, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	v, ok := c.store.scopes[c.id][key]
	return v, ok, nil
}

func (c *scope) Set(_ context.Context, key, value string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	m, ok := c.store.scopes[c.id]
	if !ok {
		m = make(map[string]string)
		c.store.scopes[c.id] = m
	}
	m[key] = value
	return nil
}

func (c *scope) Remove(_ context.Context, keys ...string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	m, ok := c.store.scopes[c.id]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(m, k)
	}
	if len(m) == 0 {
		delete(c.store.scopes, c.id)
	}
	return nil
}
