package ports

import "context"

// ClientStorage is the durable key-value scope of a single browser. Values are
// plain strings; structured values are JSON-encoded by the caller.
type ClientStorage interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes keys. Removing an absent key is not an error.
	Remove(ctx context.Context, keys ...string) error
}

// StorageProvider hands out the storage scope of a browser, identified by the
// device id carried in its cookie.
type StorageProvider interface {
	ForDevice(deviceID string) ClientStorage
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
