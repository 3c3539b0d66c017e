package orderbookv1

import (
	"errors"

	snapshotv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/snapshot/v1"
	"github.com/shopspring/decimal"
)

var (
	ErrNilOrder        = errors.New("order cannot be nil")
	ErrEmptyOrderID    = errors.New("order ID cannot be empty")
	ErrInvalidSide     = errors.New("side must be buy or sell")
	ErrInvalidPrice    = errors.New("price must be positive")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrOrderNotFound   = errors.New("order not found")
	ErrDuplicateOrder  = errors.New("order already exists")
	ErrOverfill        = errors.New("fill exceeds remaining quantity")
)

// Orderbook defines the interface for a single market's order book.
// Implementations are not safe for concurrent use; one goroutine owns a book.
type Orderbook interface {
	Insert(order *Order) error
	Remove(orderID string) (*Order, error)
	Fill(order *Order, qty decimal.Decimal) error
	Get(orderID string) (*Order, bool)
	BestOpposite(side Side) *Order
	BestBid() (decimal.Decimal, bool)
	BestAsk() (decimal.Decimal, bool)
	LevelQuantity(side Side, price decimal.Decimal) decimal.Decimal
	DepthSnapshot(maxLevels int) Depth
	OpenOrders(userID string) []*Order
	Len() int
	CreateSnapshot() *snapshotv1.Snapshot
	RestoreOrderbook(snapshot *snapshotv1.Snapshot) error
}
