package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/freshcart/storefront/internal/core/ports"
)

const collectionClientStorage = "client_storage"

// StorageProvider keeps each browser scope in one document of
// client_storage, keyed by device id:
//
//	{_id: <device_id>, entries: {<key>: <value>}, updated_at: <time>}
type StorageProvider struct {
	col *mongo.Collection
	ttl time.Duration
}

func NewStorageProvider(db *mongo.Database, ttl time.Duration) *StorageProvider {
	return &StorageProvider{col: db.Collection(collectionClientStorage), ttl: ttl}
}

// ForDevice implements ports.StorageProvider.
func (p *StorageProvider) ForDevice(deviceID string) ports.ClientStorage {
	return &deviceStorage{col: p.col, id: deviceID}
}

// Ping implements ports.StorageProvider.
func (p *StorageProvider) Ping(ctx context.Context) error {
	return p.col.Database().Client().Ping(ctx, nil)
}

// EnsureIndexes creates the expiry index when a ttl is configured.
func (p *StorageProvider) EnsureIndexes(ctx context.Context) error {
	if p.ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := p.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "updated_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(p.ttl.Seconds())),
	})
	return err
}

type storageDoc struct {
	ID      string            `bson:"_id"`
	Entries map[string]string `bson:"entries"`
}

type deviceStorage struct {
	col *mongo.Collection
	id  string
}

// field returns the dotted path of key; storage keys are plain identifiers.
func field(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, ".$") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return "entries." + key, nil
}

func (s *deviceStorage) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc storageDoc
	err := s.col.FindOne(ctx, bson.M{"_id": s.id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("mongo find storage: %w", err)
	}
	v, ok := doc.Entries[key]
	return v, ok, nil
}

func (s *deviceStorage) Set(ctx context.Context, key, value string) error {
	f, err := field(key)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{f: value, "updated_at": time.Now().UTC()}}
	_, err = s.col.UpdateOne(ctx, bson.M{"_id": s.id}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo set storage: %w", err)
	}
	return nil
}

func (s *deviceStorage) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	unset := bson.M{}
	for _, k := range keys {
		f, err := field(k)
		if err != nil {
			return err
		}
		unset[f] = ""
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.col.UpdateOne(ctx, bson.M{"_id": s.id}, bson.M{"$unset": unset}); err != nil {
		return fmt.Errorf("mongo remove storage: %w", err)
	}
	return nil
}

var _ ports.StorageProvider = (*StorageProvider)(nil)
