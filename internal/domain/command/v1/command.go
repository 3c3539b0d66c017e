package commandv1

import (
	"encoding/json"
	"fmt"
	"strings"

	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/shopspring/decimal"
)

// Op names the operation a command asks for.
type Op string

const (
	OpPlaceOrder    Op = "PLACE_ORDER"
	OpCancelOrder   Op = "CANCEL_ORDER"
	OpGetDepth      Op = "GET_DEPTH"
	OpGetOpenOrders Op = "GET_OPEN_ORDERS"
)

// Command is the envelope pushed onto the command list. The reply is published
// on the channel named by CorrelationID.
type Command struct {
	CorrelationID string                `json:"correlationId"`
	UserID        string                `json:"userId,omitempty"`
	Market        string                `json:"market"`
	Op            Op                    `json:"op"`
	Side          orderbookv1.Side      `json:"side,omitempty"`
	OrderType     orderbookv1.OrderType `json:"orderType,omitempty"`
	Price         string                `json:"price,omitempty"`
	Quantity      string                `json:"quantity,omitempty"`
	OrderID       string                `json:"orderId,omitempty"`
	Levels        int                   `json:"levels,omitempty"`
}

// Decode parses a raw command. Malformed JSON is a validation error.
func Decode(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, errors.WrapErrorDetails(err, "malformed command payload", errors.ValidationError, "payload")
	}
	return cmd, nil
}

// Encode returns the JSON form of the command.
func (c Command) Encode() ([]byte, error) {
	return json.Marshal(c)
}

// Request is the validated form of a command. It is one of PlaceOrder,
// CancelOrder, GetDepth or GetOpenOrders.
type Request interface {
	MarketSymbol() string
	isRequest()
}

// PlaceOrder asks to place a limit or market order.
type PlaceOrder struct {
	UserID   string
	Market   string
	Side     orderbookv1.Side
	Type     orderbookv1.OrderType
	Price    decimal.Decimal // zero for market orders
	Quantity decimal.Decimal
}

// CancelOrder asks to cancel a resting order.
type CancelOrder struct {
	UserID  string
	Market  string
	OrderID string
}

// GetDepth asks for aggregated depth. Levels <= 0 means every level.
type GetDepth struct {
	Market string
	Levels int
}

// GetOpenOrders asks for the resting orders of a user.
type GetOpenOrders struct {
	UserID string
	Market string
}

func (r PlaceOrder) MarketSymbol() string    { return r.Market }
func (r CancelOrder) MarketSymbol() string   { return r.Market }
func (r GetDepth) MarketSymbol() string      { return r.Market }
func (r GetOpenOrders) MarketSymbol() string { return r.Market }

func (PlaceOrder) isRequest()    {}
func (CancelOrder) isRequest()   {}
func (GetDepth) isRequest()      {}
func (GetOpenOrders) isRequest() {}

// Parse validates the command and returns its typed request. Whether the
// market is served is checked by the router, not here.
func (c Command) Parse() (Request, error) {
	market := strings.TrimSpace(c.Market)
	if market == "" {
		return nil, invalid("market is required", "market")
	}

	switch c.Op {
	case OpPlaceOrder:
		return c.parsePlaceOrder(market)
	case OpCancelOrder:
		if c.OrderID == "" {
			return nil, invalid("orderId is required", "orderId")
		}
		return CancelOrder{UserID: c.UserID, Market: market, OrderID: c.OrderID}, nil
	case OpGetDepth:
		if c.Levels < 0 {
			return nil, invalid("levels cannot be negative", "levels")
		}
		return GetDepth{Market: market, Levels: c.Levels}, nil
	case OpGetOpenOrders:
		if c.UserID == "" {
			return nil, invalid("userId is required", "userId")
		}
		return GetOpenOrders{UserID: c.UserID, Market: market}, nil
	default:
		return nil, invalid(fmt.Sprintf("unknown op %q", c.Op), "op")
	}
}

func (c Command) parsePlaceOrder(market string) (Request, error) {
	if c.UserID == "" {
		return nil, invalid("userId is required", "userId")
	}
	if !c.Side.Valid() {
		return nil, invalid(fmt.Sprintf("side must be buy or sell, got %q", c.Side), "side")
	}

	orderType := c.OrderType
	if orderType == "" {
		orderType = orderbookv1.OrderTypeLimit
		if c.Price == "" {
			orderType = orderbookv1.OrderTypeMarket
		}
	}
	if !orderType.Valid() {
		return nil, invalid(fmt.Sprintf("orderType must be limit or market, got %q", c.OrderType), "orderType")
	}

	quantity, err := parseAmount(c.Quantity, "quantity")
	if err != nil {
		return nil, err
	}

	req := PlaceOrder{
		UserID:   c.UserID,
		Market:   market,
		Side:     c.Side,
		Type:     orderType,
		Quantity: quantity,
	}
	if orderType == orderbookv1.OrderTypeMarket {
		return req, nil
	}

	price, err := parseAmount(c.Price, "price")
	if err != nil {
		return nil, err
	}
	req.Price = price

	return req, nil
}

const (
	// MaxScale is the most fractional digits a price or quantity may carry.
	MaxScale = 18
	// MaxIntegerDigits is the most digits a price or quantity may carry left of the point.
	MaxIntegerDigits = 18
)

// parseAmount reads a positive price or quantity. The bounds are checked on the
// coefficient and exponent before any arithmetic, so "1e50000000" is rejected
// without being expanded.
func parseAmount(raw, field string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, invalid(fmt.Sprintf("%s %q is not a decimal", field, raw), field)
	}

	exp := int64(amount.Exponent())
	digits := int64(amount.NumDigits())
	if -exp > MaxScale {
		return decimal.Zero, invalid(fmt.Sprintf("%s has more than %d decimal places", field, MaxScale), field)
	}
	if digits+exp > MaxIntegerDigits {
		return decimal.Zero, invalid(fmt.Sprintf("%s has more than %d integer digits", field, MaxIntegerDigits), field)
	}
	if !amount.IsPositive() {
		return decimal.Zero, invalid(field+" must be positive", field)
	}
	return amount, nil
}

func invalid(message, field string) error {
	return errors.NewErrorDetails(message, string(errors.ValidationError), field)
}
