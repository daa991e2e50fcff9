package common

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/mtc-analytics/patlens/pkg/types"
	"github.com/redis/go-redis/v9"
)

// RedisClient wraps a universal redis client so callers don't care whether
// they talk to a single node or a cluster.
type RedisClient struct {
	redis.UniversalClient
}

type redisClientOptions struct {
	clientName string
}

// RedisClientOption configures optional client settings.
type RedisClientOption func(*redisClientOptions)

// WithClientName sets the CLIENT SETNAME value for connection identification.
func WithClientName(name string) RedisClientOption {
	return func(o *redisClientOptions) { o.clientName = name }
}

// NewRedisClient creates a redis client from config and verifies connectivity.
func NewRedisClient(cfg types.RedisConfig, opts ...RedisClientOption) (*RedisClient, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("redis: no addresses configured")
	}

	options := redisClientOptions{clientName: cfg.ClientName}
	for _, opt := range opts {
		opt(&options)
	}

	universal := &redis.UniversalOptions{
		Addrs:           cfg.Addrs,
		Username:        cfg.Username,
		Password:        cfg.Password,
		ClientName:      options.clientName,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		MaxRetries:      cfg.MaxRetries,
	}
	if cfg.EnableTLS {
		universal.TLSConfig = &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}
	}

	var client redis.UniversalClient
	if cfg.Mode == types.RedisModeCluster {
		client = redis.NewClusterClient(universal.Cluster())
	} else {
		client = redis.NewClient(universal.Simple())
	}

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisClient{UniversalClient: client}, nil
}
