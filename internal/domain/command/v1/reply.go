package commandv1

import (
	"encoding/json"
	"fmt"

	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/shopspring/decimal"
)

// ReplyType tags the reply variant.
type ReplyType string

const (
	ReplyOrderPlaced    ReplyType = "ORDER_PLACED"
	ReplyOrderCancelled ReplyType = "ORDER_CANCELLED"
	ReplyDepth          ReplyType = "DEPTH"
	ReplyOpenOrders     ReplyType = "OPEN_ORDERS"
	ReplyError          ReplyType = "ERROR"
)

// OrderPlaced is the reply to PLACE_ORDER.
type OrderPlaced struct {
	OrderID           string              `json:"orderId"`
	FilledQuantity    decimal.Decimal     `json:"filledQuantity"`
	RemainingQuantity decimal.Decimal     `json:"remainingQuantity"`
	Trades            []orderbookv1.Trade `json:"trades"`
}

// OrderCancelled is the reply to CANCEL_ORDER.
type OrderCancelled struct {
	OrderID           string          `json:"orderId"`
	FilledQuantity    decimal.Decimal `json:"filledQuantity"`
	RemainingQuantity decimal.Decimal `json:"remainingQuantity"`
}

// Depth is the reply to GET_DEPTH.
type Depth struct {
	Market string                   `json:"market"`
	Bids   []orderbookv1.PriceLevel `json:"bids"`
	Asks   []orderbookv1.PriceLevel `json:"asks"`
}

// OpenOrders is the reply to GET_OPEN_ORDERS.
type OpenOrders struct {
	Orders []orderbookv1.Order `json:"orders"`
}

// ErrorReply reports a failed command.
type ErrorReply struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Reply is the single message published for a command. Exactly one payload is
// set, matching Type.
type Reply struct {
	Type           ReplyType
	OrderPlaced    *OrderPlaced
	OrderCancelled *OrderCancelled
	Depth          *Depth
	OpenOrders     *OpenOrders
	Error          *ErrorReply
}

// NewOrderPlacedReply wraps an OrderPlaced payload.
func NewOrderPlacedReply(payload OrderPlaced) Reply {
	return Reply{Type: ReplyOrderPlaced, OrderPlaced: &payload}
}

// NewOrderCancelledReply wraps an OrderCancelled payload.
func NewOrderCancelledReply(payload OrderCancelled) Reply {
	return Reply{Type: ReplyOrderCancelled, OrderCancelled: &payload}
}

// NewDepthReply wraps a Depth payload.
func NewDepthReply(payload Depth) Reply {
	return Reply{Type: ReplyDepth, Depth: &payload}
}

// NewOpenOrdersReply wraps an OpenOrders payload.
func NewOpenOrdersReply(payload OpenOrders) Reply {
	return Reply{Type: ReplyOpenOrders, OpenOrders: &payload}
}

// NewErrorReply builds the ERROR reply for err.
func NewErrorReply(err error) Reply {
	return Reply{
		Type: ReplyError,
		Error: &ErrorReply{
			Kind:    KindOf(err),
			Message: messageOf(err),
		},
	}
}

// Err returns the error carried by an ERROR reply, nil otherwise.
func (r Reply) Err() error {
	if r.Type != ReplyError || r.Error == nil {
		return nil
	}
	return errors.NewErrorDetails(r.Error.Message, string(r.Error.Kind.Code()), string(r.Error.Kind))
}

// MarshalJSON flattens the payload next to the type tag.
func (r Reply) MarshalJSON() ([]byte, error) {
	switch r.Type {
	case ReplyOrderPlaced:
		if r.OrderPlaced == nil {
			break
		}
		payload := *r.OrderPlaced
		if payload.Trades == nil {
			payload.Trades = []orderbookv1.Trade{}
		}
		return json.Marshal(struct {
			Type ReplyType `json:"type"`
			*OrderPlaced
		}{r.Type, &payload})
	case ReplyOrderCancelled:
		if r.OrderCancelled == nil {
			break
		}
		return json.Marshal(struct {
			Type ReplyType `json:"type"`
			*OrderCancelled
		}{r.Type, r.OrderCancelled})
	case ReplyDepth:
		if r.Depth == nil {
			break
		}
		return json.Marshal(struct {
			Type ReplyType `json:"type"`
			*Depth
		}{r.Type, r.Depth})
	case ReplyOpenOrders:
		if r.OpenOrders == nil {
			break
		}
		return json.Marshal(struct {
			Type ReplyType `json:"type"`
			*OpenOrders
		}{r.Type, r.OpenOrders})
	case ReplyError:
		if r.Error == nil {
			break
		}
		return json.Marshal(struct {
			Type ReplyType `json:"type"`
			*ErrorReply
		}{r.Type, r.Error})
	default:
		return nil, fmt.Errorf("unknown reply type %q", r.Type)
	}
	return nil, fmt.Errorf("reply %s has no payload", r.Type)
}

// UnmarshalJSON reads the type tag and decodes the matching payload.
func (r *Reply) UnmarshalJSON(data []byte) error {
	var tag struct {
		Type ReplyType `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}

	reply := Reply{Type: tag.Type}
	var target any
	switch tag.Type {
	case ReplyOrderPlaced:
		reply.OrderPlaced = &OrderPlaced{}
		target = reply.OrderPlaced
	case ReplyOrderCancelled:
		reply.OrderCancelled = &OrderCancelled{}
		target = reply.OrderCancelled
	case ReplyDepth:
		reply.Depth = &Depth{}
		target = reply.Depth
	case ReplyOpenOrders:
		reply.OpenOrders = &OpenOrders{}
		target = reply.OpenOrders
	case ReplyError:
		reply.Error = &ErrorReply{}
		target = reply.Error
	default:
		return fmt.Errorf("unknown reply type %q", tag.Type)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return err
	}

	*r = reply
	return nil
}
