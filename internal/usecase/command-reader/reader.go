package commandreader

import (
	"context"
	stderrors "errors"
	"time"

	commandv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command/v1"
	commandreaderv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command-reader/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/muhammadchandra19/exchange-engine/pkg/redis"
)

// Options configures the lists a Reader works on.
type Options struct {
	// Queue is the shared list callers LPUSH commands onto.
	Queue string
	// ProcessingQueue holds leased commands until they are acked. It must hash
	// to the slot of Queue when Redis runs as a cluster.
	ProcessingQueue string
	// DequeueTimeout bounds each blocking read.
	DequeueTimeout time.Duration
}

// Reader leases commands from a Redis list. A command moves atomically from
// Queue to ProcessingQueue on read and is removed from ProcessingQueue on Ack,
// so a crash between the two leaves it recoverable.
type Reader struct {
	redis   redis.Client
	logger  *logger.Logger
	options Options
}

// NewReader creates a Reader. It returns an implementation of the CommandReader interface.
func NewReader(redisClient redis.Client, options Options, log *logger.Logger) *Reader {
	if options.Queue == "" {
		options.Queue = "messages"
	}
	if options.ProcessingQueue == "" {
		options.ProcessingQueue = redis.CompanionKey(options.Queue, ":processing")
	}
	if options.DequeueTimeout <= 0 {
		options.DequeueTimeout = time.Second
	}

	return &Reader{
		redis:   redisClient,
		logger:  log,
		options: options,
	}
}

var _ commandreaderv1.CommandReader = (*Reader)(nil)

// logError is a helper method to log errors consistently
func (r *Reader) logError(ctx context.Context, err error, operation string) {
	r.logger.ErrorContext(ctx, err,
		logger.Field{Key: "operation", Value: operation},
		logger.Field{Key: "queue", Value: r.options.Queue},
	)
}

// ReadMessage waits up to DequeueTimeout for the oldest command. Commands are
// LPUSHed, so the oldest sits on the right.
func (r *Reader) ReadMessage(ctx context.Context) (commandreaderv1.Message, error) {
	raw, err := r.redis.BLMove(ctx, r.options.Queue, r.options.ProcessingQueue, "RIGHT", "LEFT", r.options.DequeueTimeout)
	if stderrors.Is(err, redis.Nil) {
		return commandreaderv1.Message{}, commandreaderv1.ErrNoMessage
	}
	if err != nil {
		if ctx.Err() != nil {
			return commandreaderv1.Message{}, ctx.Err()
		}
		r.logError(ctx, err, "ReadMessage")
		return commandreaderv1.Message{}, errors.WrapErrorDetails(err, "failed to read command", errors.TransportError, "queue")
	}

	msg := commandreaderv1.Message{Raw: raw}
	cmd, err := commandv1.Decode([]byte(raw))
	if err != nil {
		r.logError(ctx, err, "DecodeCommand")
		return msg, err
	}
	msg.Command = cmd

	r.logger.DebugContext(ctx, "ReadMessage",
		logger.Field{Key: "correlationId", Value: cmd.CorrelationID},
		logger.Field{Key: "op", Value: cmd.Op},
		logger.Field{Key: "market", Value: cmd.Market},
	)
	return msg, nil
}

// Ack removes a leased command from the processing list.
func (r *Reader) Ack(ctx context.Context, msg commandreaderv1.Message) error {
	removed, err := r.redis.LRem(ctx, r.options.ProcessingQueue, 1, msg.Raw)
	if err != nil {
		r.logError(ctx, err, "Ack")
		return errors.WrapErrorDetails(err, "failed to ack command", errors.TransportError, "processingQueue")
	}
	if removed == 0 {
		r.logger.WarnContext(ctx, "Acked command was not leased",
			logger.Field{Key: "correlationId", Value: msg.Command.CorrelationID},
		)
	}
	return nil
}

// Recover moves every leased command back to the head of the queue, oldest
// first in line, and returns how many were moved.
func (r *Reader) Recover(ctx context.Context) (int, error) {
	recovered := 0
	for {
		_, err := r.redis.LMove(ctx, r.options.ProcessingQueue, r.options.Queue, "LEFT", "RIGHT")
		if stderrors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			r.logError(ctx, err, "Recover")
			return recovered, errors.WrapErrorDetails(err, "failed to recover leased commands", errors.TransportError, "processingQueue")
		}
		recovered++
	}

	if recovered > 0 {
		r.logger.InfoContext(ctx, "Recovered unacked commands",
			logger.Field{Key: "count", Value: recovered},
			logger.Field{Key: "queue", Value: r.options.Queue},
		)
	}

	backlog, err := r.redis.LLen(ctx, r.options.Queue)
	if err != nil {
		// informational only
		r.logError(ctx, err, "Backlog")
		return recovered, nil
	}
	r.logger.InfoContext(ctx, "Command backlog",
		logger.Field{Key: "pending", Value: backlog},
		logger.Field{Key: "queue", Value: r.options.Queue},
	)
	return recovered, nil
}

// Close releases the reader. The redis client is owned by the caller.
func (r *Reader) Close() error {
	return nil
}
