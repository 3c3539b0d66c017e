package util

import (
	"context"

	"github.com/google/uuid"
)

type key string

const (
	requestIDKey = key("x-request-id")
	marketKey    = key("market")
	userIDKey    = key("user-id")
)

// WithRequestID returns a context with a request id.
// It will generate a new request id if the provided id is empty.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = NewRequestID()
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// NewRequestID returns a uuid-v4 string to use as request id.
func NewRequestID() string {
	return uuid.NewString()
}

// GetRequestID returns request id from context
// will return empty string if not present
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithMarket returns a context carrying the market symbol being processed.
func WithMarket(ctx context.Context, market string) context.Context {
	return context.WithValue(ctx, marketKey, market)
}

// GetMarket returns the market symbol from context
func GetMarket(ctx context.Context) string {
	market, _ := ctx.Value(marketKey).(string)
	return market
}

// WithUserID returns a context with the requesting user id
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// GetUserID returns the user id from context
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// Fields returns a map of the key-value pairs that this package has set into ctx.
// Empty values are omitted.
func Fields(ctx context.Context) map[string]string {
	fields := make(map[string]string, 3)
	if id := GetRequestID(ctx); id != "" {
		fields["request_id"] = id
	}
	if market := GetMarket(ctx); market != "" {
		fields["market"] = market
	}
	if userID := GetUserID(ctx); userID != "" {
		fields["user_id"] = userID
	}
	return fields
}
