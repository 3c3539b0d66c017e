package orderbook

import (
	"fmt"
	"sort"

	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	snapshotv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/snapshot/v1"
	"github.com/shopspring/decimal"
)

// Orderbook is the book of a single market. Price levels are kept sorted with
// the most aggressive price first. It must only be used by one goroutine.
type Orderbook struct {
	market string
	bids   []*orderbookv1.Limit          // price desc
	asks   []*orderbookv1.Limit          // price asc
	orders map[string]*orderbookv1.Order // orderID -> order
}

var _ orderbookv1.Orderbook = (*Orderbook)(nil)

// NewOrderbook creates a new orderbook for market
func NewOrderbook(market string) *Orderbook {
	return &Orderbook{
		market: market,
		bids:   make([]*orderbookv1.Limit, 0),
		asks:   make([]*orderbookv1.Limit, 0),
		orders: make(map[string]*orderbookv1.Order),
	}
}

// Market returns the market symbol of the book.
func (ob *Orderbook) Market() string {
	return ob.market
}

// Insert rests an order at its price level, behind the orders already there.
func (ob *Orderbook) Insert(order *orderbookv1.Order) error {
	if order == nil {
		return orderbookv1.ErrNilOrder
	}
	if order.ID == "" {
		return orderbookv1.ErrEmptyOrderID
	}
	if !order.Side.Valid() {
		return fmt.Errorf("%w: got %q", orderbookv1.ErrInvalidSide, order.Side)
	}
	if !order.Price.IsPositive() {
		return fmt.Errorf("%w: got %s", orderbookv1.ErrInvalidPrice, order.Price)
	}
	if !order.Quantity.IsPositive() || !order.Remaining().IsPositive() {
		return fmt.Errorf("%w: got %s", orderbookv1.ErrInvalidQuantity, order.Remaining())
	}
	if _, exists := ob.orders[order.ID]; exists {
		return fmt.Errorf("%w: %s", orderbookv1.ErrDuplicateOrder, order.ID)
	}

	limit := ob.findOrCreateLimit(order.Side, order.Price)
	if err := limit.AddOrder(order); err != nil {
		return err
	}

	ob.orders[order.ID] = order
	return nil
}

// Remove takes a resting order out of the book.
func (ob *Orderbook) Remove(orderID string) (*orderbookv1.Order, error) {
	if orderID == "" {
		return nil, orderbookv1.ErrEmptyOrderID
	}

	order, exists := ob.orders[orderID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", orderbookv1.ErrOrderNotFound, orderID)
	}

	// RemoveOrder clears order.Limit, keep the reference
	limit := order.Limit
	if limit != nil {
		if err := limit.RemoveOrder(order); err != nil {
			return nil, err
		}
		ob.dropIfEmpty(limit)
	}

	delete(ob.orders, orderID)
	return order, nil
}

// Fill fills qty of a resting order. A fully filled order leaves the book.
func (ob *Orderbook) Fill(order *orderbookv1.Order, qty decimal.Decimal) error {
	if order == nil {
		return orderbookv1.ErrNilOrder
	}
	if resting, exists := ob.orders[order.ID]; !exists || resting != order || order.Limit == nil {
		return fmt.Errorf("%w: %s", orderbookv1.ErrOrderNotFound, order.ID)
	}

	limit := order.Limit
	if err := limit.Fill(order, qty); err != nil {
		return err
	}

	if order.IsFilled() {
		delete(ob.orders, order.ID)
		ob.dropIfEmpty(limit)
	}
	return nil
}

// Get returns a resting order by id.
func (ob *Orderbook) Get(orderID string) (*orderbookv1.Order, bool) {
	order, exists := ob.orders[orderID]
	return order, exists
}

// BestOpposite returns the best resting order an incoming order on side would
// match first: lowest ask for a buy, highest bid for a sell.
func (ob *Orderbook) BestOpposite(side orderbookv1.Side) *orderbookv1.Order {
	limits := ob.limits(side.Opposite())
	if len(limits) == 0 {
		return nil
	}
	return limits[0].Head()
}

// BestBid returns the highest bid price.
func (ob *Orderbook) BestBid() (decimal.Decimal, bool) {
	if len(ob.bids) == 0 {
		return decimal.Zero, false
	}
	return ob.bids[0].Price, true
}

// BestAsk returns the lowest ask price.
func (ob *Orderbook) BestAsk() (decimal.Decimal, bool) {
	if len(ob.asks) == 0 {
		return decimal.Zero, false
	}
	return ob.asks[0].Price, true
}

// LevelQuantity returns the resting quantity at price on side, zero when the level is empty.
func (ob *Orderbook) LevelQuantity(side orderbookv1.Side, price decimal.Decimal) decimal.Decimal {
	limits := ob.limits(side)
	i := searchLimit(side, limits, price)
	if i < len(limits) && limits[i].Price.Equal(price) {
		return limits[i].TotalVolume
	}
	return decimal.Zero
}

// DepthSnapshot aggregates up to maxLevels levels per side, best price first.
// maxLevels <= 0 returns every level.
func (ob *Orderbook) DepthSnapshot(maxLevels int) orderbookv1.Depth {
	return orderbookv1.Depth{
		Bids: aggregate(ob.bids, maxLevels),
		Asks: aggregate(ob.asks, maxLevels),
	}
}

// OpenOrders returns the resting orders of userID in arrival order.
// An empty userID returns every resting order.
func (ob *Orderbook) OpenOrders(userID string) []*orderbookv1.Order {
	orders := make(orderbookv1.Orders, 0)
	for _, order := range ob.orders {
		if userID == "" || order.UserID == userID {
			orders = append(orders, order)
		}
	}
	sort.Sort(orders)
	return orders
}

// Len returns the number of resting orders.
func (ob *Orderbook) Len() int {
	return len(ob.orders)
}

// Bids returns bid limits sorted by price (descending)
func (ob *Orderbook) Bids() []*orderbookv1.Limit {
	return ob.bids
}

// Asks returns ask limits sorted by price (ascending)
func (ob *Orderbook) Asks() []*orderbookv1.Limit {
	return ob.asks
}

// CreateSnapshot creates a snapshot of the current orderbook state. Counters
// and ticker are filled in by the owner of the book.
func (ob *Orderbook) CreateSnapshot() *snapshotv1.Snapshot {
	bookOrders := make([]snapshotv1.BookOrder, 0, len(ob.orders))
	for _, order := range ob.OpenOrders("") {
		bookOrders = append(bookOrders, snapshotv1.BookOrder{
			OrderID:   order.ID,
			UserID:    order.UserID,
			Side:      string(order.Side),
			Price:     order.Price,
			Quantity:  order.Quantity,
			Filled:    order.Filled,
			Sequence:  order.Sequence,
			Timestamp: order.Timestamp,
		})
	}

	return &snapshotv1.Snapshot{
		Market: ob.market,
		OrderBookSnapshot: snapshotv1.OrderBookSnapshot{
			Orders: bookOrders,
		},
	}
}

// RestoreOrderbook replaces the book content with the orders in snapshot.
func (ob *Orderbook) RestoreOrderbook(snapshot *snapshotv1.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}
	if snapshot.Market != "" && snapshot.Market != ob.market {
		return fmt.Errorf("snapshot of market %s cannot restore book %s", snapshot.Market, ob.market)
	}

	bookOrders := make([]snapshotv1.BookOrder, len(snapshot.OrderBookSnapshot.Orders))
	copy(bookOrders, snapshot.OrderBookSnapshot.Orders)
	sort.SliceStable(bookOrders, func(i, j int) bool {
		return bookOrders[i].Sequence < bookOrders[j].Sequence
	})

	restored := NewOrderbook(ob.market)
	for _, bookOrder := range bookOrders {
		order := &orderbookv1.Order{
			ID:        bookOrder.OrderID,
			UserID:    bookOrder.UserID,
			Market:    ob.market,
			Side:      orderbookv1.Side(bookOrder.Side),
			Type:      orderbookv1.OrderTypeLimit,
			Price:     bookOrder.Price,
			Quantity:  bookOrder.Quantity,
			Filled:    bookOrder.Filled,
			Sequence:  bookOrder.Sequence,
			Timestamp: bookOrder.Timestamp,
		}
		if err := restored.Insert(order); err != nil {
			return fmt.Errorf("failed to restore order %s: %w", bookOrder.OrderID, err)
		}
	}

	*ob = *restored
	return nil
}

func (ob *Orderbook) limits(side orderbookv1.Side) []*orderbookv1.Limit {
	if side == orderbookv1.SideBuy {
		return ob.bids
	}
	return ob.asks
}

func (ob *Orderbook) setLimits(side orderbookv1.Side, limits []*orderbookv1.Limit) {
	if side == orderbookv1.SideBuy {
		ob.bids = limits
		return
	}
	ob.asks = limits
}

func (ob *Orderbook) findOrCreateLimit(side orderbookv1.Side, price decimal.Decimal) *orderbookv1.Limit {
	limits := ob.limits(side)
	i := searchLimit(side, limits, price)
	if i < len(limits) && limits[i].Price.Equal(price) {
		return limits[i]
	}

	limit := orderbookv1.NewLimit(side, price)
	limits = append(limits, nil)
	copy(limits[i+1:], limits[i:])
	limits[i] = limit
	ob.setLimits(side, limits)

	return limit
}

func (ob *Orderbook) dropIfEmpty(limit *orderbookv1.Limit) {
	if !limit.IsEmpty() {
		return
	}

	limits := ob.limits(limit.Side)
	i := searchLimit(limit.Side, limits, limit.Price)
	if i < len(limits) && limits[i] == limit {
		ob.setLimits(limit.Side, append(limits[:i], limits[i+1:]...))
	}
}

// searchLimit returns the index of price in limits, or where it would be inserted.
func searchLimit(side orderbookv1.Side, limits []*orderbookv1.Limit, price decimal.Decimal) int {
	if side == orderbookv1.SideBuy {
		return sort.Search(len(limits), func(i int) bool {
			return limits[i].Price.LessThanOrEqual(price)
		})
	}
	return sort.Search(len(limits), func(i int) bool {
		return limits[i].Price.GreaterThanOrEqual(price)
	})
}

func aggregate(limits []*orderbookv1.Limit, maxLevels int) []orderbookv1.PriceLevel {
	n := len(limits)
	if maxLevels > 0 && maxLevels < n {
		n = maxLevels
	}

	levels := make([]orderbookv1.PriceLevel, 0, n)
	for _, limit := range limits[:n] {
		levels = append(levels, orderbookv1.PriceLevel{
			Price:    limit.Price,
			Quantity: limit.TotalVolume,
		})
	}
	return levels
}
