package orderbookv1

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Limit represents a price level in the order book with its orders in arrival order.
type Limit struct {
	Price       decimal.Decimal `json:"price"`
	Side        Side            `json:"side"`
	Orders      []*Order        `json:"orders"`
	TotalVolume decimal.Decimal `json:"totalVolume"` // sum of remaining quantity
}

// NewLimit creates a new Limit with the specified price.
func NewLimit(side Side, price decimal.Decimal) *Limit {
	return &Limit{
		Price:       price,
		Side:        side,
		Orders:      make([]*Order, 0),
		TotalVolume: decimal.Zero,
	}
}

// AddOrder appends an order behind the ones already at this price and updates the total volume.
func (l *Limit) AddOrder(order *Order) error {
	if order == nil {
		return ErrNilOrder
	}
	if !order.Remaining().IsPositive() {
		return fmt.Errorf("%w: got %s", ErrInvalidQuantity, order.Remaining())
	}
	if !order.Price.Equal(l.Price) {
		return fmt.Errorf("%w: order price %s on level %s", ErrInvalidPrice, order.Price, l.Price)
	}

	order.Limit = l
	l.Orders = append(l.Orders, order)
	l.TotalVolume = l.TotalVolume.Add(order.Remaining())

	return nil
}

// RemoveOrder removes an order from the limit and updates the total volume.
func (l *Limit) RemoveOrder(order *Order) error {
	if order == nil {
		return ErrNilOrder
	}

	for i, o := range l.Orders {
		if o == order {
			l.Orders = append(l.Orders[:i], l.Orders[i+1:]...)
			l.TotalVolume = l.TotalVolume.Sub(order.Remaining())
			order.Limit = nil
			return nil
		}
	}

	return fmt.Errorf("%w: %s at level %s", ErrOrderNotFound, order.ID, l.Price)
}

// Fill fills qty of a resting order at this level. A fully filled order is
// dropped from the level.
func (l *Limit) Fill(order *Order, qty decimal.Decimal) error {
	if order == nil {
		return ErrNilOrder
	}
	if order.Limit != l {
		return fmt.Errorf("%w: %s at level %s", ErrOrderNotFound, order.ID, l.Price)
	}

	if err := order.Fill(qty); err != nil {
		return err
	}
	l.TotalVolume = l.TotalVolume.Sub(qty)

	if order.IsFilled() {
		for i, o := range l.Orders {
			if o == order {
				l.Orders = append(l.Orders[:i], l.Orders[i+1:]...)
				break
			}
		}
		order.Limit = nil
	}

	return nil
}

// Head returns the oldest order at this price, or nil.
func (l *Limit) Head() *Order {
	if len(l.Orders) == 0 {
		return nil
	}
	return l.Orders[0]
}

// IsEmpty checks if the limit has no orders
func (l *Limit) IsEmpty() bool {
	return len(l.Orders) == 0
}

// OrderCount returns the number of orders at this limit
func (l *Limit) OrderCount() int {
	return len(l.Orders)
}

// Validate performs basic validation of the limit's state
func (l *Limit) Validate() error {
	if !l.Price.IsPositive() {
		return fmt.Errorf("%w: limit price %s", ErrInvalidPrice, l.Price)
	}

	calculatedVolume := decimal.Zero
	var lastSequence uint64
	for _, order := range l.Orders {
		if order == nil {
			return fmt.Errorf("nil order found in limit")
		}
		if !order.Remaining().IsPositive() {
			return fmt.Errorf("%w: order %s has remaining %s", ErrInvalidQuantity, order.ID, order.Remaining())
		}
		if order.Sequence < lastSequence {
			return fmt.Errorf("order %s breaks time priority at level %s", order.ID, l.Price)
		}
		lastSequence = order.Sequence
		calculatedVolume = calculatedVolume.Add(order.Remaining())
	}

	if !calculatedVolume.Equal(l.TotalVolume) {
		return fmt.Errorf("volume mismatch: calculated %s, stored %s", calculatedVolume, l.TotalVolume)
	}

	return nil
}
