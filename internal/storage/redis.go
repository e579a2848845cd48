package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"showcase_ingest/internal/logger"
	"showcase_ingest/internal/models"
)

// RedisStore keeps each collection as a single JSON document under
// "<prefix>:<collection>".
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(ctx context.Context, cfg models.StorageConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("storage.NewRedisStore: %w", err)
	}
	logger.WithField("addr", cfg.RedisAddr).Debug("connected to redis")

	prefix := cfg.RedisPrefix
	if prefix == "" {
		prefix = models.DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) Key(collection string) string {
	return s.prefix + ":" + collection
}

func (s *RedisStore) PersistCategories(ctx context.Context, categories []models.CanonicalCategory) error {
	if categories == nil {
		categories = []models.CanonicalCategory{}
	}
	return s.put(ctx, CollectionCategories, categories)
}

func (s *RedisStore) PersistSubmissions(ctx context.Context, submissions []models.CanonicalSubmission) error {
	if submissions == nil {
		submissions = []models.CanonicalSubmission{}
	}
	return s.put(ctx, CollectionSubmissions, submissions)
}

func (s *RedisStore) PersistAssociations(ctx context.Context, associations []models.Association) error {
	if associations == nil {
		associations = []models.Association{}
	}
	return s.put(ctx, CollectionAssociation, associations)
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) put(ctx context.Context, collection string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &PersistenceError{Collection: collection, Err: err}
	}
	key := s.Key(collection)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.Set(ctx, key+":updated_at", time.Now().UTC().Format(time.RFC3339), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return &PersistenceError{Collection: collection, Err: err}
	}
	return nil
}
