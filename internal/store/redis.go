package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ai_sdlc/internal/models"
)

const redisCredentialsHash = "gateway:credentials"

// RedisConfig holds Redis connection settings for the credential store.
type RedisConfig struct {
	Address      string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisStore keeps credentials in a Redis hash, one field per provider.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreWithClient wraps an existing client; used by tests.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, provider models.ProviderID, apiKey string) error {
	if err := s.client.HSet(ctx, redisCredentialsHash, credentialKey(provider), apiKey).Err(); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, provider models.ProviderID) (string, bool, error) {
	apiKey, err := s.client.HGet(ctx, redisCredentialsHash, credentialKey(provider)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read credential: %w", err)
	}
	return apiKey, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, provider models.ProviderID) error {
	if err := s.client.HDel(ctx, redisCredentialsHash, credentialKey(provider)).Err(); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
