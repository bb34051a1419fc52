// Package cache holds the Redis-backed summary cache. Summaries are
// expensive to assemble and read often; everything here is best-effort
// and callers fall back to the repository on any miss or error.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Sohamiota/Target-JIT-org/internal/config"
	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

const (
	summaryKeyPrefix = "optimization:summary"
	scanBatchSize    = 100
	defaultTTL       = time.Minute
	dialTimeout      = 5 * time.Second
)

// SummaryCache caches assembled dashboard summaries. Entries are
// invalidated wholesale whenever a new run completes or the policy
// changes.
type SummaryCache interface {
	GetSummary(ctx context.Context, filter *domain.SummaryFilter) (*domain.OptimizationSummary, bool, error)
	SetSummary(ctx context.Context, filter *domain.SummaryFilter, summary *domain.OptimizationSummary) error
	InvalidateAll(ctx context.Context) error
}

type redisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopSummaryCache struct{}

// NewSummaryCache dials Redis when caching is enabled and verifies the
// connection with a ping before handing the cache out. Disabled config
// yields the noop cache.
func NewSummaryCache(cfg config.CacheConfig) (SummaryCache, error) {
	if !cfg.Enabled {
		return &noopSummaryCache{}, nil
	}

	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.SummaryTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &redisSummaryCache{client: client, ttl: ttl}, nil
}

// NewNoopSummaryCache returns the cache used when Redis is absent.
func NewNoopSummaryCache() SummaryCache {
	return &noopSummaryCache{}
}

// redisOptions prefers a full REDIS_URL and falls back to host/port
// parts with local defaults.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("cache: invalid redis url: %w", err)
		}
		return opts, nil
	}

	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func (c *redisSummaryCache) GetSummary(ctx context.Context, filter *domain.SummaryFilter) (*domain.OptimizationSummary, bool, error) {
	payload, err := c.client.Get(ctx, summaryKey(filter)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: redis get failed: %w", err)
	}

	var summary domain.OptimizationSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, false, fmt.Errorf("cache: decode summary: %w", err)
	}
	return &summary, true, nil
}

func (c *redisSummaryCache) SetSummary(ctx context.Context, filter *domain.SummaryFilter, summary *domain.OptimizationSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("cache: encode summary: %w", err)
	}

	if err := c.client.Set(ctx, summaryKey(filter), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set failed: %w", err)
	}
	return nil
}

// InvalidateAll walks the summary keyspace with SCAN and deletes in
// batches. SCAN keeps the server responsive on large keyspaces where
// KEYS would block.
func (c *redisSummaryCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, summaryKeyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("cache: redis scan failed: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache: redis delete failed: %w", err)
			}
		}
		if cursor = next; cursor == 0 {
			return nil
		}
	}
}

func (noopSummaryCache) GetSummary(context.Context, *domain.SummaryFilter) (*domain.OptimizationSummary, bool, error) {
	return nil, false, nil
}

func (noopSummaryCache) SetSummary(context.Context, *domain.SummaryFilter, *domain.OptimizationSummary) error {
	return nil
}

func (noopSummaryCache) InvalidateAll(context.Context) error {
	return nil
}

// summaryKey hashes the filter into a fixed-length key. The empty
// filter gets a readable key since it is the common case.
func summaryKey(filter *domain.SummaryFilter) string {
	if filter == nil {
		return summaryKeyPrefix + ":default"
	}

	var parts []string
	if filter.Category != "" {
		parts = append(parts, "category="+filter.Category)
	}
	if filter.RunID != "" {
		parts = append(parts, "run_id="+filter.RunID)
	}
	if len(parts) == 0 {
		return summaryKeyPrefix + ":default"
	}

	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return summaryKeyPrefix + ":" + hex.EncodeToString(sum[:])
}
