// Package cache stores computed dashboard and summary payloads so repeated
// reads skip the aggregation. Entries are grouped under a prefix and a whole
// group is dropped whenever the records behind it change.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tracker/internal/logger"
)

// Groups of cached payloads. Each maps to the records it is derived from.
const (
	GroupDashboard = "dashboard"
	GroupFinance   = "finance"
	GroupPortfolio = "portfolio"
)

// AllGroups lists every group, for wholesale invalidation after an import.
var AllGroups = []string{GroupDashboard, GroupFinance, GroupPortfolio}

// DefaultTTL bounds how long an entry may outlive a missed invalidation.
const DefaultTTL = 10 * time.Minute

const namespace = "tracker"

// Cache is a JSON payload cache.
type Cache interface {
	// Get decodes the entry for key into dest. It reports false on a miss.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	// Invalidate drops every entry in group.
	Invalidate(ctx context.Context, group string) error
	Close() error
}

// Key builds a cache key inside group.
func Key(group string, parts ...string) string {
	return group + ":" + strings.Join(parts, ":")
}

// redisCache keeps entries in Redis as JSON strings.
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.SugaredLogger
}

// NewRedis connects to the Redis server at url and checks it answers.
// A bare host:port is accepted as well as a redis:// URL.
func NewRedis(ctx context.Context, url string, ttl time.Duration) (Cache, error) {
	if !strings.Contains(url, "://") {
		url = "redis://" + url
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisCache{client: client, ttl: ttl, log: logger.Named("cache")}, nil
}

func (r *redisCache) fullKey(key string) string {
	return namespace + ":" + key
}

func (r *redisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := r.client.Get(ctx, r.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (r *redisCache) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.client.Set(ctx, r.fullKey(key), raw, r.ttl).Err()
}

func (r *redisCache) Invalidate(ctx context.Context, group string) error {
	iter := r.client.Scan(ctx, 0, r.fullKey(group)+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return err
	}
	r.log.Debugw("cache invalidated", "group", group, "keys", len(keys))
	return nil
}

func (r *redisCache) Close() error {
	return r.client.Close()
}

// noop is used when no Redis server is configured.
type noop struct{}

// NewNoop returns a Cache that never stores anything.
func NewNoop() Cache { return noop{} }

func (noop) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (noop) Set(context.Context, string, interface{}) error         { return nil }
func (noop) Invalidate(context.Context, string) error               { return nil }
func (noop) Close() error                                           { return nil }
