package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"kc-mini-app-backend/internal/common/config"
	"kc-mini-app-backend/internal/common/logger"
)

// Client wraps a go-redis universal client. A single address yields a plain
// client, several addresses a cluster client.
type Client struct {
	redis.UniversalClient
}

// Options builds universal options from config. REDIS_ADDRS takes precedence
// over REDIS_HOST/REDIS_PORT.
func Options(cfg *config.Config) (*redis.UniversalOptions, error) {
	addrs := make([]string, 0, len(cfg.Redis.Addrs))
	for _, a := range cfg.Redis.Addrs {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	if len(addrs) == 0 {
		if cfg.Redis.Host == "" {
			return nil, fmt.Errorf("empty redis host")
		}
		addrs = []string{cfg.RedisAddr()}
	}

	opts := &redis.UniversalOptions{
		Addrs:    addrs,
		Password: cfg.Redis.Password,
		PoolSize: cfg.Redis.PoolSize,
	}
	// Cluster clients only speak DB 0.
	if len(addrs) == 1 {
		opts.DB = cfg.Redis.DB
	}
	return opts, nil
}

// Open creates a new Redis client and pings it to validate the connection.
func Open(ctx context.Context, cfg *config.Config) (*Client, error) {
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}

	c := redis.NewUniversalClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis %s: %w", strings.Join(opts.Addrs, ","), err)
	}

	logger.Info().Strs("addrs", opts.Addrs).Int("db", opts.DB).Msg("Redis client initialized")

	return &Client{UniversalClient: c}, nil
}

// HealthCheck проверяет доступность Redis
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
