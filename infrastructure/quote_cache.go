package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sidebet/domain/entities"

	"github.com/redis/go-redis/v9"
)

// QuoteCache caches upstream market quotes in Redis so wager creation does
// not hit the odds feed on every request
type QuoteCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewQuoteCache creates a quote cache with the given TTL
func NewQuoteCache(rdb *redis.Client, ttl time.Duration) *QuoteCache {
	return &QuoteCache{rdb: rdb, ttl: ttl}
}

func quoteKey(marketID string) string { return "quotes:market:" + marketID }

// Get returns the cached quote for a market, or false if absent or expired
func (c *QuoteCache) Get(ctx context.Context, marketID string) (*entities.MarketQuote, bool, error) {
	b, err := c.rdb.Get(ctx, quoteKey(marketID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get quote for market %s: %w", marketID, err)
	}

	var quote entities.MarketQuote
	if err := json.Unmarshal(b, &quote); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal quote for market %s: %w", marketID, err)
	}
	return &quote, true, nil
}

// Set stores a quote for a market
func (c *QuoteCache) Set(ctx context.Context, marketID string, quote *entities.MarketQuote) error {
	b, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("failed to marshal quote for market %s: %w", marketID, err)
	}
	if err := c.rdb.Set(ctx, quoteKey(marketID), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache quote for market %s: %w", marketID, err)
	}
	return nil
}

// Ping verifies the Redis connection for health checks
func (c *QuoteCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
