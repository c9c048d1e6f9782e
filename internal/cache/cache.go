package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"real-estate-marketplace/internal/config"
	"real-estate-marketplace/internal/models"
	"real-estate-marketplace/internal/search"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "search:"

// ErrCircuitOpen is returned while the breaker keeps calls away from Redis.
var ErrCircuitOpen = errors.New("cache circuit open")

// ResultCache stores search results in Redis keyed by catalog version,
// criteria and sort. A new catalog version makes older entries unreachable.
type ResultCache struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *CircuitBreaker
}

// NewRedisClient creates a new Redis client
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

func New(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{
		client:  client,
		ttl:     ttl,
		breaker: NewCircuitBreaker(3, 30*time.Second),
	}
}

// Breaker exposes the circuit breaker guarding Redis calls
func (c *ResultCache) Breaker() *CircuitBreaker {
	return c.breaker
}

func (c *ResultCache) record(err error) {
	if err != nil {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

// Ping tests the Redis connection
func (c *ResultCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *ResultCache) Close() error {
	return c.client.Close()
}

// Key derives the cache key for one search. Criteria marshal in entry order,
// so the same filters given in a different order get different keys.
func Key(version uint64, c search.Criteria, sort search.SortSpec) (string, error) {
	payload, err := json.Marshal(struct {
		Version  uint64          `json:"v"`
		Criteria search.Criteria `json:"c"`
		Sort     search.SortSpec `json:"s"`
	}{version, c, sort})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return keyPrefix + hex.EncodeToString(sum[:]), nil
}

// Get returns the cached results for key. ok is false on a miss.
func (c *ResultCache) Get(ctx context.Context, key string) ([]models.Property, bool, error) {
	if !c.breaker.CanProceed() {
		return nil, false, ErrCircuitOpen
	}

	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.record(nil)
		return nil, false, nil
	}
	c.record(err)
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var props []models.Property
	if err := json.Unmarshal(val, &props); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return props, true, nil
}

func (c *ResultCache) Set(ctx context.Context, key string, props []models.Property) error {
	if !c.breaker.CanProceed() {
		return ErrCircuitOpen
	}

	data, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	err = c.client.Set(ctx, key, data, c.ttl).Err()
	c.record(err)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
