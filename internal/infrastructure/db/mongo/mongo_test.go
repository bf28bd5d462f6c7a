package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/freshcart/storefront/internal/core/domain"
)

// newTestDB connects to TEST_MONGO_URI or skips. Each test gets its own
// database, dropped on cleanup.
func newTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	client, db, err := Connect(context.Background(), Config{URI: uri, Database: "storefront_test_" + uuid.NewString()[:8]})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestStorageProvider_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	p := NewStorageProvider(db, time.Hour)
	ctx := context.Background()
	require.NoError(t, p.EnsureIndexes(ctx))
	require.NoError(t, p.Ping(ctx))

	s := p.ForDevice("dev-1")
	_, ok, err := s.Get(ctx, "adminToken")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "adminToken", "tok"))
	require.NoError(t, s.Set(ctx, "admin", `{"name":"Root"}`))

	v, ok, err := s.Get(ctx, "admin")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"name":"Root"}`, v)

	require.NoError(t, s.Remove(ctx, "adminToken"))
	_, ok, err = s.Get(ctx, "adminToken")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = p.ForDevice("dev-2").Get(ctx, "admin")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStorageProvider_RejectsDottedKeys(t *testing.T) {
	s := (&StorageProvider{}).ForDevice("dev-1")
	require.Error(t, s.Set(context.Background(), "a.b", "x"))
	require.Error(t, s.Remove(context.Background(), "$where"))
	require.NoError(t, s.Remove(context.Background()))
}

func TestEventRepository_InsertEvent(t *testing.T) {
	db := newTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.EnsureIndexes(ctx))

	err := repo.InsertEvent(ctx, &domain.SessionEvent{
		DeviceID:  "dev-1",
		Namespace: domain.NamespaceAdministrator,
		Kind:      domain.EventEnded,
		Reason:    "remote 401",
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, db.Collection(collectionSessionEvents).FindOne(ctx, bson.M{"device_id": "dev-1"}).Decode(&doc))
	require.Equal(t, "administrator", doc["namespace"])
	require.Equal(t, "ended", doc["kind"])
	require.Equal(t, "remote 401", doc["reason"])
}

func TestOperationTimeout(t *testing.T) {
	require.Positive(t, defaultTimeout)
	require.LessOrEqual(t, defaultTimeout, connectTimeout)
}
