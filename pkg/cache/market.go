package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ftxwidget/pkg/config"
	"ftxwidget/pkg/models"
	"ftxwidget/pkg/widget"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// FuturesKey is the Redis key holding the cached futures listing.
const FuturesKey = "ftxwidget:futures"

// KV is the subset of the Redis client the cache uses.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// MarketCache wraps an Exchange and serves futures listings from Redis
// while they are fresh. All other calls go straight to the exchange.
type MarketCache struct {
	widget.Exchange
	kv     KV
	ttl    time.Duration
	logger *logrus.Entry
}

// NewMarketCache creates a cache in front of exchange.
func NewMarketCache(exchange widget.Exchange, kv KV, ttl time.Duration, logger *logrus.Entry) *MarketCache {
	return &MarketCache{
		Exchange: exchange,
		kv:       kv,
		ttl:      ttl,
		logger:   logger,
	}
}

// GetFuturesData returns the cached listing or fetches and stores a new
// one. Redis failures fall back to the exchange.
func (mc *MarketCache) GetFuturesData(ctx context.Context) ([]models.FuturesTicker, error) {
	data, err := mc.kv.Get(ctx, FuturesKey).Bytes()
	switch {
	case err == nil:
		var tickers []models.FuturesTicker
		if err := json.Unmarshal(data, &tickers); err == nil {
			mc.logger.WithField("markets", len(tickers)).Debug("futures served from cache")
			return tickers, nil
		}
		mc.logger.Warn("discarding unreadable cached futures")
	case !errors.Is(err, redis.Nil):
		mc.logger.WithError(err).Warn("failed to read futures cache")
	}

	tickers, err := mc.Exchange.GetFuturesData(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(tickers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal futures: %w", err)
	}
	if err := mc.kv.Set(ctx, FuturesKey, payload, mc.ttl).Err(); err != nil {
		mc.logger.WithError(err).Warn("failed to write futures cache")
	}
	return tickers, nil
}

// Dial connects to Redis and checks the connection.
func Dial(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:       cfg.Addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		MaxRetries: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}
