package classify

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"github.com/otherjamesbrown/conversa/pkg/logging"
)

// Store is the key-value backend of a Cached classifier. Get reports
// false when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// RedisStore implements Store on Redis string keys with a TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// Redis key prefix for cached classifications.
const keyPrefixClassify = "conversa:classify:"

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: keyPrefixClassify, ttl: ttl}
}

// NewRedisStoreFromURL connects to the Redis server at url and verifies
// the connection.
func NewRedisStoreFromURL(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisStore(client, ttl), nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, s.ttl).Err()
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Cached memoizes another Classifier's answers in a Store. Store errors
// are logged and bypassed; only the inner classifier's failures surface.
type Cached struct {
	inner  Classifier
	store  Store
	logger logging.Logger
}

// NewCached wraps inner with store.
func NewCached(inner Classifier, store Store, logger logging.Logger) *Cached {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Cached{
		inner:  inner,
		store:  store,
		logger: logger.With(logging.F("component", "classify_cache")),
	}
}

// Name implements Classifier.
func (c *Cached) Name() string {
	return c.inner.Name()
}

// Sentiment implements SentimentClassifier.
func (c *Cached) Sentiment(ctx context.Context, text string) (Label, error) {
	key := c.key("sentiment", text)
	if v, ok := c.lookup(ctx, key); ok {
		return Label(v), nil
	}
	label, err := c.inner.Sentiment(ctx, text)
	if err != nil {
		return "", err
	}
	c.save(ctx, key, string(label))
	return label, nil
}

// Misspellings implements SpellChecker.
func (c *Cached) Misspellings(ctx context.Context, text string) (int, error) {
	key := c.key("spelling", text)
	if v, ok := c.lookup(ctx, key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n, nil
		}
	}
	n, err := c.inner.Misspellings(ctx, text)
	if err != nil {
		return 0, err
	}
	c.save(ctx, key, strconv.Itoa(n))
	return n, nil
}

// key derives a fixed-size cache key from the backend, metric and text.
func (c *Cached) key(metric, text string) string {
	sum := blake2b.Sum256([]byte(c.inner.Name() + "\x00" + metric + "\x00" + text))
	return metric + ":" + hex.EncodeToString(sum[:16])
}

func (c *Cached) lookup(ctx context.Context, key string) (string, bool) {
	v, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Debug("Cache read failed", logging.F("key", key), logging.Err(err))
		return "", false
	}
	return v, ok
}

func (c *Cached) save(ctx context.Context, key, value string) {
	if err := c.store.Set(ctx, key, value); err != nil {
		c.logger.Debug("Cache write failed", logging.F("key", key), logging.Err(err))
	}
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}
