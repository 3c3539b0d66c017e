package replypublisher

import (
	"context"
	"encoding/json"

	commandv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command/v1"
	replypublisherv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/reply-publisher/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/muhammadchandra19/exchange-engine/pkg/redis"
)

// Publisher answers callers over Redis pub/sub on the channel named by the
// command's correlation id.
type Publisher struct {
	redis  redis.Client
	logger *logger.Logger
}

// NewPublisher creates a new reply publisher.
func NewPublisher(redisClient redis.Client, log *logger.Logger) *Publisher {
	return &Publisher{
		redis:  redisClient,
		logger: log,
	}
}

var _ replypublisherv1.ReplyPublisher = (*Publisher)(nil)

// PublishReply publishes reply once. A reply nobody listens to is logged, not
// retried: the caller has already given up.
func (p *Publisher) PublishReply(ctx context.Context, correlationID string, reply commandv1.Reply) error {
	if correlationID == "" {
		return errors.NewErrorDetails("correlation id is required to reply", string(errors.ValidationError), "correlationId")
	}

	payload, err := json.Marshal(reply)
	if err != nil {
		p.logger.ErrorContext(ctx, err, logger.Field{Key: "action", Value: "marshal_reply"})
		return errors.NewTracer("reply_marshal_error").Wrap(err)
	}

	receivers, err := p.redis.Publish(ctx, correlationID, payload)
	if err != nil {
		p.logger.ErrorContext(ctx, err, logger.Field{Key: "action", Value: "publish_reply"})
		return errors.WrapErrorDetails(err, "failed to publish reply", errors.TransportError, "reply")
	}
	if receivers == 0 {
		p.logger.WarnContext(ctx, "No caller waiting for reply",
			logger.Field{Key: "correlationId", Value: correlationID},
			logger.Field{Key: "type", Value: reply.Type},
		)
	}
	return nil
}
