package marketdatapublisher

import (
	"context"
	"encoding/json"

	marketdatav1 "github.com/muhammadchandra19/exchange-engine/internal/domain/marketdata/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/muhammadchandra19/exchange-engine/pkg/redis"
	"go.uber.org/multierr"
)

// RedisPublisher publishes events on the relay topics (trade@M, depth@M,
// ticker@M, order@M) and pushes the persisted ones onto the persistence list.
type RedisPublisher struct {
	redis            redis.Client
	persistenceQueue string
	logger           *logger.Logger
}

// NewRedisPublisher creates a Redis backed market-data publisher.
func NewRedisPublisher(redisClient redis.Client, persistenceQueue string, log *logger.Logger) *RedisPublisher {
	if persistenceQueue == "" {
		persistenceQueue = "db_processor"
	}
	return &RedisPublisher{
		redis:            redisClient,
		persistenceQueue: persistenceQueue,
		logger:           log,
	}
}

var _ marketdatav1.Publisher = (*RedisPublisher)(nil)

// Publish delivers every event in order. A failed event does not stop the
// ones after it; all failures are returned together.
func (p *RedisPublisher) Publish(ctx context.Context, events []marketdatav1.Event) error {
	var errs error
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			errs = multierr.Append(errs, errors.NewTracer("event_marshal_error").Wrap(err))
			continue
		}

		if _, err := p.redis.Publish(ctx, event.Topic(), payload); err != nil {
			errs = multierr.Append(errs, errors.WrapErrorDetails(err, "failed to publish event", errors.TransportError, event.Topic()))
		}

		if !event.Persisted() {
			continue
		}
		if _, err := p.redis.LPush(ctx, p.persistenceQueue, payload); err != nil {
			errs = multierr.Append(errs, errors.WrapErrorDetails(err, "failed to queue event for persistence", errors.TransportError, p.persistenceQueue))
		}
	}
	return errs
}
