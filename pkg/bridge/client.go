package bridge

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	commandv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/muhammadchandra19/exchange-engine/pkg/redis"
	"github.com/muhammadchandra19/exchange-engine/pkg/util"
)

// Options configures the bridge client.
type Options struct {
	// CommandQueue is the list the engine reads commands from.
	CommandQueue string
	// Timeout bounds the wait for a reply.
	Timeout time.Duration
}

// DefaultOptions returns the default bridge options.
func DefaultOptions() Options {
	return Options{
		CommandQueue: "messages",
		Timeout:      5 * time.Second,
	}
}

// Client turns the asynchronous command list and reply channels into a
// synchronous call. Replies are delivered at most once: a reply published
// before the caller subscribes, or after it gave up, is lost.
type Client struct {
	redis   redis.Client
	logger  *logger.Logger
	options Options
}

// NewClient creates a bridge client on top of an already connected redis client.
func NewClient(redisClient redis.Client, log *logger.Logger, options Options) *Client {
	defaults := DefaultOptions()
	if options.CommandQueue == "" {
		options.CommandQueue = defaults.CommandQueue
	}
	if options.Timeout <= 0 {
		options.Timeout = defaults.Timeout
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Client{
		redis:   redisClient,
		logger:  log,
		options: options,
	}
}

// Call sends cmd and waits for its reply. A missing correlation id is
// generated. Errors are ErrorDetails with the Timeout or TransportError code,
// or the context error when ctx ends first.
func (c *Client) Call(ctx context.Context, cmd commandv1.Command) (commandv1.Reply, error) {
	if cmd.CorrelationID == "" {
		cmd.CorrelationID = uuid.NewString()
	}
	ctx = util.WithRequestID(ctx, cmd.CorrelationID)
	ctx = util.WithMarket(ctx, cmd.Market)

	payload, err := cmd.Encode()
	if err != nil {
		return commandv1.Reply{}, errors.WrapErrorDetails(err, "failed to encode command", errors.ValidationError, "command")
	}

	// subscribe before pushing so the reply cannot be published ahead of us
	pubSub, err := c.redis.Subscribe(ctx, cmd.CorrelationID)
	if err != nil {
		c.logger.ErrorContext(ctx, err, logger.Field{Key: "action", Value: "subscribe_reply"})
		return commandv1.Reply{}, errors.WrapErrorDetails(err, "failed to listen for reply", errors.TransportError, "subscribe")
	}
	defer func() {
		if err := pubSub.Close(); err != nil {
			c.logger.WarnContext(ctx, "Failed to close reply subscription", logger.Field{Key: "error", Value: err.Error()})
		}
	}()

	if _, err := c.redis.LPush(ctx, c.options.CommandQueue, payload); err != nil {
		c.logger.ErrorContext(ctx, err, logger.Field{Key: "action", Value: "push_command"})
		return commandv1.Reply{}, errors.WrapErrorDetails(err, "failed to send command", errors.TransportError, "publish")
	}

	timer := time.NewTimer(c.options.Timeout)
	defer timer.Stop()

	select {
	case msg, ok := <-pubSub.Channel():
		if !ok {
			return commandv1.Reply{}, errors.NewErrorDetails("reply channel closed", string(errors.TransportError), "receive")
		}

		var reply commandv1.Reply
		if err := json.Unmarshal([]byte(msg.Payload), &reply); err != nil {
			c.logger.ErrorContext(ctx, err, logger.Field{Key: "action", Value: "decode_reply"})
			return commandv1.Reply{}, errors.WrapErrorDetails(err, "malformed reply", errors.GeneralInternalServerError, "reply")
		}
		return reply, nil
	case <-timer.C:
		c.logger.WarnContext(ctx, "Timed out waiting for reply",
			logger.Field{Key: "op", Value: cmd.Op},
			logger.Field{Key: "timeout", Value: c.options.Timeout.String()},
		)
		return commandv1.Reply{}, errors.NewErrorDetails(
			fmt.Sprintf("no reply for %s within %s", cmd.Op, c.options.Timeout),
			string(errors.TimeoutError),
			"reply",
		)
	case <-ctx.Done():
		code := errors.TransportError
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			code = errors.TimeoutError
		}
		return commandv1.Reply{}, errors.WrapErrorDetails(ctx.Err(), "call abandoned", code, "reply")
	}
}

// PlaceOrderParams holds the fields of a PLACE_ORDER command.
type PlaceOrderParams struct {
	UserID    string
	Market    string
	Side      orderbookv1.Side
	OrderType orderbookv1.OrderType
	Price     string
	Quantity  string
}

// PlaceOrder places an order and returns its fills.
func (c *Client) PlaceOrder(ctx context.Context, params PlaceOrderParams) (*commandv1.OrderPlaced, error) {
	reply, err := c.call(ctx, commandv1.Command{
		UserID:    params.UserID,
		Market:    params.Market,
		Op:        commandv1.OpPlaceOrder,
		Side:      params.Side,
		OrderType: params.OrderType,
		Price:     params.Price,
		Quantity:  params.Quantity,
	}, commandv1.ReplyOrderPlaced)
	if err != nil {
		return nil, err
	}
	return reply.OrderPlaced, nil
}

// CancelOrder cancels a resting order.
func (c *Client) CancelOrder(ctx context.Context, userID, market, orderID string) (*commandv1.OrderCancelled, error) {
	reply, err := c.call(ctx, commandv1.Command{
		UserID:  userID,
		Market:  market,
		Op:      commandv1.OpCancelOrder,
		OrderID: orderID,
	}, commandv1.ReplyOrderCancelled)
	if err != nil {
		return nil, err
	}
	return reply.OrderCancelled, nil
}

// Depth returns up to levels price levels per side, all levels when levels is 0.
func (c *Client) Depth(ctx context.Context, market string, levels int) (*commandv1.Depth, error) {
	reply, err := c.call(ctx, commandv1.Command{
		Market: market,
		Op:     commandv1.OpGetDepth,
		Levels: levels,
	}, commandv1.ReplyDepth)
	if err != nil {
		return nil, err
	}
	return reply.Depth, nil
}

// OpenOrders returns the resting orders of userID in market.
func (c *Client) OpenOrders(ctx context.Context, userID, market string) ([]orderbookv1.Order, error) {
	reply, err := c.call(ctx, commandv1.Command{
		UserID: userID,
		Market: market,
		Op:     commandv1.OpGetOpenOrders,
	}, commandv1.ReplyOpenOrders)
	if err != nil {
		return nil, err
	}
	return reply.OpenOrders.Orders, nil
}

func (c *Client) call(ctx context.Context, cmd commandv1.Command, want commandv1.ReplyType) (commandv1.Reply, error) {
	reply, err := c.Call(ctx, cmd)
	if err != nil {
		return commandv1.Reply{}, err
	}
	if err := reply.Err(); err != nil {
		return commandv1.Reply{}, err
	}
	if reply.Type != want {
		return commandv1.Reply{}, errors.NewErrorDetails(
			fmt.Sprintf("expected %s reply, got %s", want, reply.Type),
			string(errors.GeneralInternalServerError),
			"reply",
		)
	}
	return reply, nil
}
