package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/railzwaylabs/pricestack/internal/channel/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultRuleCacheTTL = 5 * time.Minute

// ruleCache keeps resolved commission rules in Redis. Every Redis failure is
// logged and treated as a miss so lookups fall through to the database.
type ruleCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func newRuleCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *ruleCache {
	if ttl <= 0 {
		ttl = defaultRuleCacheTTL
	}
	return &ruleCache{client: client, ttl: ttl, log: log}
}

func ruleCacheKey(channel, country string, categoryID *string) string {
	category := "*"
	if categoryID != nil {
		category = *categoryID
	}
	return fmt.Sprintf("commission_rule:%s:%s:%s", channel, country, category)
}

func (c *ruleCache) get(ctx context.Context, key string) (domain.ResolvedRule, bool) {
	if c.client == nil {
		return domain.ResolvedRule{}, false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("commission rule cache read failed", zap.String("key", key), zap.Error(err))
		}
		return domain.ResolvedRule{}, false
	}

	var resolved domain.ResolvedRule
	if err := json.Unmarshal(raw, &resolved); err != nil {
		c.log.Warn("discarding malformed cached commission rule", zap.String("key", key), zap.Error(err))
		return domain.ResolvedRule{}, false
	}
	return resolved, true
}

func (c *ruleCache) set(ctx context.Context, key string, resolved domain.ResolvedRule) {
	if c.client == nil {
		return
	}

	raw, err := json.Marshal(resolved)
	if err != nil {
		c.log.Warn("failed to encode commission rule for cache", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("commission rule cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidate drops every cached lookup for channel.
func (c *ruleCache) invalidate(ctx context.Context, channel string) {
	if c.client == nil {
		return
	}

	pattern := fmt.Sprintf("commission_rule:%s:*", channel)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.log.Warn("commission rule cache delete failed", zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("commission rule cache scan failed", zap.String("channel", channel), zap.Error(err))
	}
}
