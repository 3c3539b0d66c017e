package orderbookv1

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Side represents the side of the book an order belongs to.
type Side string

const (
	// SideBuy represents a bid.
	SideBuy Side = "buy"
	// SideSell represents an ask.
	SideSell Side = "sell"
)

// Valid reports whether s is a known side.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Opposite returns the side an order on s matches against.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrderType represents the type of order.
type OrderType string

const (
	// OrderTypeMarket represents a market order. Market orders never rest.
	OrderTypeMarket OrderType = "market"
	// OrderTypeLimit represents a limit order.
	OrderTypeLimit OrderType = "limit"
)

// Valid reports whether t is a known order type.
func (t OrderType) Valid() bool {
	return t == OrderTypeMarket || t == OrderTypeLimit
}

// Order represents a single order in the order book.
// Only Filled and Cancelled change after creation.
type Order struct {
	ID        string          `json:"orderId"`
	UserID    string          `json:"userId"`
	Market    string          `json:"market"`
	Side      Side            `json:"side"`
	Type      OrderType       `json:"orderType"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Filled    decimal.Decimal `json:"filledQuantity"`
	Sequence  uint64          `json:"sequence"`
	Timestamp int64           `json:"timestamp"`
	Cancelled bool            `json:"cancelled,omitempty"`
	Limit     *Limit          `json:"-"`
}

// NewOrder creates a new order with the given parameters.
func NewOrder(id, userID, market string, side Side, orderType OrderType, price, quantity decimal.Decimal) *Order {
	return &Order{
		ID:        id,
		UserID:    userID,
		Market:    market,
		Side:      side,
		Type:      orderType,
		Price:     price,
		Quantity:  quantity,
		Filled:    decimal.Zero,
		Timestamp: time.Now().UnixMilli(),
	}
}

// IsBid checks if the order is a bid (buy) order.
func (o *Order) IsBid() bool {
	return o.Side == SideBuy
}

// IsAsk checks if the order is an ask (sell) order.
func (o *Order) IsAsk() bool {
	return o.Side == SideSell
}

// IsMarket checks if the order is a market order.
func (o *Order) IsMarket() bool {
	return o.Type == OrderTypeMarket
}

// Remaining returns the unfilled quantity.
func (o *Order) Remaining() decimal.Decimal {
	return o.Quantity.Sub(o.Filled)
}

// IsFilled checks if the order has no unfilled quantity left.
func (o *Order) IsFilled() bool {
	return !o.Remaining().IsPositive()
}

// IsResting reports whether the order can still sit in a book.
func (o *Order) IsResting() bool {
	return !o.Cancelled && !o.IsFilled()
}

// Crosses reports whether the order's limit accepts a resting order at price.
// Market orders accept any price.
func (o *Order) Crosses(price decimal.Decimal) bool {
	if o.IsMarket() {
		return true
	}
	if o.IsBid() {
		return o.Price.GreaterThanOrEqual(price)
	}
	return o.Price.LessThanOrEqual(price)
}

// Fill increments the filled quantity by qty.
func (o *Order) Fill(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return fmt.Errorf("%w: fill of %s", ErrInvalidQuantity, qty)
	}
	if qty.GreaterThan(o.Remaining()) {
		return fmt.Errorf("%w: fill of %s exceeds remaining %s on order %s", ErrOverfill, qty, o.Remaining(), o.ID)
	}
	o.Filled = o.Filled.Add(qty)
	return nil
}

// Cancel marks the order as cancelled. It can only happen once.
func (o *Order) Cancel() error {
	if o.Cancelled {
		return fmt.Errorf("%w: order %s already cancelled", ErrOrderNotFound, o.ID)
	}
	o.Cancelled = true
	return nil
}
