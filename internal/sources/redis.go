package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/terra-clan/box-office/internal/models"
)

// DefaultRedisKey is the key holding the dataset when none is configured
const DefaultRedisKey = "catalog:movies"

// RedisOptions holds Redis connection settings
type RedisOptions struct {
	Address  string
	Password string
	DB       int
	Key      string
}

// RedisSource reads the dataset JSON stored under a single key
type RedisSource struct {
	BaseSource
	client *redis.Client
	key    string
}

// NewRedisSource creates a new Redis source and checks connectivity
func NewRedisSource(ctx context.Context, opts RedisOptions) (*RedisSource, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return newRedisSource(client, opts.Key), nil
}

func newRedisSource(client *redis.Client, key string) *RedisSource {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisSource{
		BaseSource: BaseSource{sourceType: "redis"},
		client:     client,
		key:        key,
	}
}

// Fetch reads the key and decodes the JSON array
func (s *RedisSource) Fetch(ctx context.Context) ([]models.MovieRecord, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: redis key %q", ErrNotFound, s.key)
		}
		return nil, fmt.Errorf("failed to read redis key: %w", err)
	}

	records, err := Decode(data, FormatJSON)
	if err != nil {
		return nil, err
	}

	slog.Debug("dataset read from redis", "key", s.key, "records", len(records))
	return records, nil
}

// HealthCheck verifies Redis connectivity
func (s *RedisSource) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisSource) Close() error {
	return s.client.Close()
}
