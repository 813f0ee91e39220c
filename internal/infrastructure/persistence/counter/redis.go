package counter

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/wmartinez/presupuestos/internal/application/port"
	"go.uber.org/zap"
)

// RedisConfig holds the connection settings of the redis backend
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisCounter stores the next number as a plain string value under one key
type RedisCounter struct {
	client       *redis.Client
	key          string
	defaultValue int
	logger       *zap.Logger
}

// NewRedisCounter connects to redis and verifies the connection with PING
func NewRedisCounter(ctx context.Context, cfg RedisConfig, key string, defaultValue int, logger *zap.Logger) (*RedisCounter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("Redis counter connected", zap.String("addr", cfg.Addr), zap.String("key", key))

	return &RedisCounter{
		client:       client,
		key:          key,
		defaultValue: defaultValue,
		logger:       logger,
	}, nil
}

// Load returns the stored next number, or the default when the key is absent
func (c *RedisCounter) Load(ctx context.Context) (int, error) {
	val, err := c.client.Get(ctx, c.key).Result()
	if errors.Is(err, redis.Nil) {
		return c.defaultValue, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read counter %s: %w", c.key, err)
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("counter %s holds a non-numeric value %q: %w", c.key, val, err)
	}
	return n, nil
}

// Save stores next without expiration
func (c *RedisCounter) Save(ctx context.Context, next int) error {
	if err := c.client.Set(ctx, c.key, strconv.Itoa(next), 0).Err(); err != nil {
		return fmt.Errorf("failed to write counter %s: %w", c.key, err)
	}
	return nil
}

// Ping checks the connection
func (c *RedisCounter) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the connection pool
func (c *RedisCounter) Close() error {
	return c.client.Close()
}

var _ port.CounterStore = (*RedisCounter)(nil)
