package deadletter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/erp/shipping/internal/domain/shipping"
)

// defaultMaxEntries caps the Redis list so a misbehaving carrier cannot grow
// it without bound
const defaultMaxEntries = 10000

// RedisDeadLetterStore implements DeadLetterStore on a capped Redis list.
// Suitable for distributed deployments where any instance may receive the
// webhook and any operator instance may inspect the queue.
type RedisDeadLetterStore struct {
	client     *redis.Client
	key        string
	maxEntries int64
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisDeadLetterStore creates a new Redis-backed dead letter store
func NewRedisDeadLetterStore(cfg RedisConfig) (*RedisDeadLetterStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisDeadLetterStore{
		client:     client,
		key:        "webhook:deadletter",
		maxEntries: defaultMaxEntries,
	}, nil
}

// NewRedisDeadLetterStoreWithClient creates a store with an existing Redis
// client. Useful for testing or when sharing a client across components.
func NewRedisDeadLetterStoreWithClient(client *redis.Client, key string) *RedisDeadLetterStore {
	if key == "" {
		key = "webhook:deadletter"
	}
	return &RedisDeadLetterStore{
		client:     client,
		key:        key,
		maxEntries: defaultMaxEntries,
	}
}

// Push records an unroutable delivery at the head of the list and trims the
// tail past the cap
func (s *RedisDeadLetterStore) Push(ctx context.Context, letter shipping.DeadLetter) error {
	data, err := json.Marshal(letter)
	if err != nil {
		return fmt.Errorf("failed to encode dead letter: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.key, data)
	pipe.LTrim(ctx, s.key, 0, s.maxEntries-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push dead letter: %w", err)
	}
	return nil
}

// Recent returns up to limit letters, newest first
func (s *RedisDeadLetterStore) Recent(ctx context.Context, limit int) ([]shipping.DeadLetter, error) {
	if limit <= 0 {
		limit = 100
	}

	values, err := s.client.LRange(ctx, s.key, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read dead letters: %w", err)
	}

	letters := make([]shipping.DeadLetter, 0, len(values))
	for _, value := range values {
		var letter shipping.DeadLetter
		if err := json.Unmarshal([]byte(value), &letter); err != nil {
			continue // skip corrupt entries rather than failing the listing
		}
		letters = append(letters, letter)
	}
	return letters, nil
}

// Close closes the Redis client
func (s *RedisDeadLetterStore) Close() error {
	return s.client.Close()
}

// Ensure RedisDeadLetterStore implements DeadLetterStore interface
var _ shipping.DeadLetterStore = (*RedisDeadLetterStore)(nil)
