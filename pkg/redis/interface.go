package redis

import (
	"context"
	"time"

	v9 "github.com/redis/go-redis/v9"
)

// Client defines the interface for a Redis client.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=redis_mock
type Client interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error
	Reconnect(ctx context.Context) bool

	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)

	LPush(ctx context.Context, key string, values ...any) (int64, error)
	BLMove(ctx context.Context, source, destination, srcPos, destPos string, timeout time.Duration) (string, error)
	LMove(ctx context.Context, source, destination, srcPos, destPos string) (string, error)
	LRem(ctx context.Context, key string, count int64, value any) (int64, error)
	LLen(ctx context.Context, key string) (int64, error)

	Subscribe(ctx context.Context, channels ...string) (*v9.PubSub, error)
	Publish(ctx context.Context, channel string, message any) (int64, error)
}
