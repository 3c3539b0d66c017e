package redis

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Nil is returned by list reads when there is nothing to read.
const Nil = redis.Nil

type client struct {
	logger    *logger.Logger
	config    *Config
	universal redis.UniversalClient
}

// NewClient creates a new Redis client with the provided logger and configuration.
func NewClient(logger *logger.Logger, config *Config) Client {
	return &client{
		logger: logger,
		config: config,
	}
}

func (c *client) Connect(ctx context.Context) error {
	if err := c.config.Validate(); err != nil {
		return err
	}

	var universal redis.UniversalClient
	switch c.config.Mode {
	case Standalone:
		universal = redis.NewClient(&redis.Options{
			Addr:            c.config.Addrs[0],
			Protocol:        c.config.Protocol,
			Username:        c.config.Username,
			Password:        c.config.Password,
			DB:              c.config.DB,
			MaxRetries:      c.config.MaxRetries,
			MinRetryBackoff: c.config.MinRetryBackoff,
			MaxRetryBackoff: c.config.MaxRetryBackoff,
			DialTimeout:     c.config.ConnectTimeout,
			ReadTimeout:     c.config.ConnectTimeout,
			WriteTimeout:    c.config.ConnectTimeout,
			PoolSize:        c.config.PoolSize,
			MinIdleConns:    c.config.MinIdleConns,
			MaxIdleConns:    c.config.MaxIdleConns,
			ConnMaxLifetime: c.config.ConnMaxLifetime,
			ConnMaxIdleTime: c.config.ConnMaxIdleTime,
			PoolTimeout:     c.config.PoolTimeout,
		})
	case Cluster:
		universal = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:           c.config.Addrs,
			Protocol:        c.config.Protocol,
			Username:        c.config.Username,
			Password:        c.config.Password,
			MaxRetries:      c.config.MaxRetries,
			MinRetryBackoff: c.config.MinRetryBackoff,
			MaxRetryBackoff: c.config.MaxRetryBackoff,
			DialTimeout:     c.config.ConnectTimeout,
			ReadTimeout:     c.config.ConnectTimeout,
			WriteTimeout:    c.config.ConnectTimeout,
			PoolSize:        c.config.PoolSize,
			MinIdleConns:    c.config.MinIdleConns,
			MaxIdleConns:    c.config.MaxIdleConns,
			ConnMaxLifetime: c.config.ConnMaxLifetime,
			ConnMaxIdleTime: c.config.ConnMaxIdleTime,
			PoolTimeout:     c.config.PoolTimeout,
		})
	default:
		return errors.NewErrorDetails("Unsupported Redis mode", string(errors.RedisConnectionError), "connect")
	}

	c.universal = universal

	if err := c.universal.Ping(ctx).Err(); err != nil {
		return errors.WrapErrorDetails(err, "Failed to connect to Redis", errors.RedisConnectionError, "connect")
	}
	return nil
}

func (c *client) Reconnect(ctx context.Context) bool {
	baseDelay := c.config.MinRetryBackoff
	maxDelay := c.config.MaxRetryBackoff

	for i := range c.config.ReconnectMaxRetries {
		backoff := min(baseDelay*time.Duration(math.Pow(2, float64(i))), maxDelay)

		jitter := time.Duration(rand.IntN(1000)) * time.Millisecond
		totalDelay := backoff + jitter

		c.logger.Info("Reconnecting to Redis", logger.Field{
			Key:   "attempt",
			Value: i + 1,
		}, logger.Field{
			Key:   "delay",
			Value: totalDelay,
		})

		select {
		case <-ctx.Done():
			c.logger.Info("Reconnect cancelled", logger.Field{
				Key:   "reason",
				Value: ctx.Err(),
			})
			return false
		case <-time.After(totalDelay):
			if c.universal != nil {
				_ = c.universal.Close()
			}
			connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := c.Connect(connectCtx)
			cancel()
			if err == nil {
				c.logger.Info("Reconnected to Redis successfully", logger.Field{
					Key:   "attempt",
					Value: i + 1,
				})
				return true
			}
			c.logger.Error(errors.TracerFromError(err), logger.Field{
				Key:   "attempt",
				Value: i + 1,
			})
		}
	}

	return false
}

func (c *client) Disconnect(ctx context.Context) error {
	if c.universal == nil {
		return nil
	}
	if err := c.universal.Close(); err != nil {
		return errors.WrapErrorDetails(err, "Failed to close Redis client", errors.RedisDisconnectionError, "disconnect")
	}
	return nil
}

func (c *client) Ping(ctx context.Context) error {
	if err := c.universal.Ping(ctx).Err(); err != nil {
		return errors.WrapErrorDetails(err, "Failed to ping Redis", errors.RedisPingError, "ping")
	}
	return nil
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.universal.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.WrapErrorDetails(err, "Failed to get value from Redis", errors.RedisGetError, "get")
	}
	return val, nil
}

func (c *client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if err := c.universal.Set(ctx, key, value, expiration).Err(); err != nil {
		return errors.WrapErrorDetails(err, "Failed to set value in Redis", errors.RedisSetError, "set")
	}
	return nil
}

func (c *client) Del(ctx context.Context, keys ...string) (int64, error) {
	deleted, err := c.universal.Del(ctx, keys...).Result()
	if err != nil {
		return 0, errors.WrapErrorDetails(err, "Failed to delete keys from Redis", errors.RedisDelError, "del")
	}
	return deleted, nil
}

func (c *client) LPush(ctx context.Context, key string, values ...any) (int64, error) {
	length, err := c.universal.LPush(ctx, key, values...).Result()
	if err != nil {
		return 0, errors.WrapErrorDetails(err, "Failed to push onto list in Redis", errors.RedisLPushError, "lpush")
	}
	return length, nil
}

// BLMove blocks up to timeout for an element to move from source to destination.
// It returns Nil when the timeout expires with nothing to move.
func (c *client) BLMove(ctx context.Context, source, destination, srcPos, destPos string, timeout time.Duration) (string, error) {
	val, err := c.universal.BLMove(ctx, source, destination, srcPos, destPos, timeout).Result()
	if err == redis.Nil {
		return "", Nil
	}
	if err != nil {
		return "", errors.WrapErrorDetails(err, "Failed to move list element in Redis", errors.RedisLMoveError, "blmove")
	}
	return val, nil
}

// LMove moves one element without blocking. It returns Nil when source is empty.
func (c *client) LMove(ctx context.Context, source, destination, srcPos, destPos string) (string, error) {
	val, err := c.universal.LMove(ctx, source, destination, srcPos, destPos).Result()
	if err == redis.Nil {
		return "", Nil
	}
	if err != nil {
		return "", errors.WrapErrorDetails(err, "Failed to move list element in Redis", errors.RedisLMoveError, "lmove")
	}
	return val, nil
}

func (c *client) LRem(ctx context.Context, key string, count int64, value any) (int64, error) {
	removed, err := c.universal.LRem(ctx, key, count, value).Result()
	if err != nil {
		return 0, errors.WrapErrorDetails(err, "Failed to remove list element in Redis", errors.RedisLRemError, "lrem")
	}
	return removed, nil
}

func (c *client) LLen(ctx context.Context, key string) (int64, error) {
	length, err := c.universal.LLen(ctx, key).Result()
	if err != nil {
		return 0, errors.WrapErrorDetails(err, "Failed to get list length from Redis", errors.RedisLLenError, "llen")
	}
	return length, nil
}

// Subscribe returns a PubSub that is confirmed active on the server, so that
// messages published after it returns are not lost.
func (c *client) Subscribe(ctx context.Context, channels ...string) (*redis.PubSub, error) {
	pubSub := c.universal.Subscribe(ctx, channels...)

	if _, err := pubSub.Receive(ctx); err != nil {
		_ = pubSub.Close()
		return nil, errors.WrapErrorDetails(err, "Failed to subscribe to channels in Redis", errors.RedisSubscribeError, "subscribe")
	}
	return pubSub, nil
}

// Publish returns the number of subscribers that received message. Zero
// receivers is not an error.
func (c *client) Publish(ctx context.Context, channel string, message any) (int64, error) {
	published, err := c.universal.Publish(ctx, channel, message).Result()
	if err != nil {
		return 0, errors.WrapErrorDetails(err, "Failed to publish message in Redis", errors.RedisPublishError, "publish")
	}
	return published, nil
}
