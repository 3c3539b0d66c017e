package errors

import (
	stderrors "errors"
)

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal server error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"

	// ValidationError represents a structurally invalid command (bad price, quantity, side or market).
	ValidationError ErrorCode = "validation_error"
	// OrderNotFoundError represents a cancel target that is absent or already terminal.
	OrderNotFoundError ErrorCode = "order_not_found"
	// TimeoutError represents a bounded wait that expired before a reply arrived.
	TimeoutError ErrorCode = "timeout"
	// TransportError represents an unavailable or failing message channel.
	TransportError ErrorCode = "transport_error"

	// RedisConfigError represents an error when the Redis configuration is invalid or nil.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents an error when connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisDisconnectionError represents an error when disconnecting from Redis.
	RedisDisconnectionError ErrorCode = "redis_disconnection_error"
	// RedisPingError represents an error when pinging Redis.
	RedisPingError ErrorCode = "redis_pinging_error"

	// RedisGetError represents an error when getting a value from Redis.
	RedisGetError ErrorCode = "redis_get_error"
	// RedisSetError represents an error when setting a value in Redis.
	RedisSetError ErrorCode = "redis_set_error"
	// RedisDelError represents an error when deleting a value from Redis.
	RedisDelError ErrorCode = "redis_del_error"

	// RedisLPushError represents an error when pushing onto a list in Redis.
	RedisLPushError ErrorCode = "redis_lpush_error"
	// RedisLMoveError represents an error when moving an element between lists in Redis.
	RedisLMoveError ErrorCode = "redis_lmove_error"
	// RedisLRemError represents an error when removing an element from a list in Redis.
	RedisLRemError ErrorCode = "redis_lrem_error"
	// RedisLLenError represents an error when reading the length of a list in Redis.
	RedisLLenError ErrorCode = "redis_llen_error"

	// RedisSubscribeError represents an error when subscribing to channels in Redis.
	RedisSubscribeError ErrorCode = "redis_subscribe_error"
	// RedisPublishError represents an error when publishing messages to channels in Redis.
	RedisPublishError ErrorCode = "redis_publish_error"
)

// IsRedisCode reports whether code belongs to the redis client family.
func IsRedisCode(code ErrorCode) bool {
	switch code {
	case RedisConfigError, RedisConnectionError, RedisDisconnectionError, RedisPingError,
		RedisGetError, RedisSetError, RedisDelError,
		RedisLPushError, RedisLMoveError, RedisLRemError, RedisLLenError,
		RedisSubscribeError, RedisPublishError:
		return true
	}
	return false
}

// CodeOf returns the code of the first ErrorDetails found in err's chain.
// It returns an empty code when err carries no details.
func CodeOf(err error) ErrorCode {
	var details *ErrorDetails
	if stderrors.As(err, &details) {
		return ErrorCode(details.Code)
	}
	return ""
}

// HasCode reports whether err's chain carries ErrorDetails with the given code.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
