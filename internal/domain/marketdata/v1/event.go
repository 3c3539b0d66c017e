package marketdatav1

import (
	"encoding/json"
	"fmt"

	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	tickerv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/ticker/v1"
	"github.com/shopspring/decimal"
)

// EventType tags the event variant.
type EventType string

const (
	EventTradeAdded     EventType = "TRADE_ADDED"
	EventOrderUpdate    EventType = "ORDER_UPDATE"
	EventOrderCancelled EventType = "ORDER_CANCELLED"
	EventDepthUpdated   EventType = "DEPTH_UPDATED"
	EventTickerUpdated  EventType = "TICKER_UPDATED"
)

// TradeAdded is emitted for every fill.
type TradeAdded struct {
	ID            string          `json:"id"`
	Market        string          `json:"market"`
	Price         decimal.Decimal `json:"price"`
	Quantity      decimal.Decimal `json:"quantity"`
	QuoteQuantity decimal.Decimal `json:"quoteQuantity"`
	Timestamp     int64           `json:"timestamp"`
	IsBuyerMaker  bool            `json:"isBuyerMaker"`
	Sequence      uint64          `json:"sequence"`
	BuyOrderID    string          `json:"buyOrderId"`
	SellOrderID   string          `json:"sellOrderId"`
}

// NewTradeAdded converts a trade into its event payload.
func NewTradeAdded(trade orderbookv1.Trade) *TradeAdded {
	return &TradeAdded{
		ID:            trade.ID,
		Market:        trade.Market,
		Price:         trade.Price,
		Quantity:      trade.Quantity,
		QuoteQuantity: trade.QuoteQuantity(),
		Timestamp:     trade.Timestamp,
		IsBuyerMaker:  trade.IsBuyerMaker(),
		Sequence:      trade.Sequence,
		BuyOrderID:    trade.BuyOrderID,
		SellOrderID:   trade.SellOrderID,
	}
}

// OrderUpdate reports the executed quantity of an order. The optional fields
// are set when the order is first seen by consumers.
type OrderUpdate struct {
	OrderID     string           `json:"orderId"`
	ExecutedQty decimal.Decimal  `json:"executedQty"`
	Market      string           `json:"market,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	Side        orderbookv1.Side `json:"side,omitempty"`
}

// NewOrderUpdate reports order's executed quantity. With full set the order's
// market, price, quantity and side are included.
func NewOrderUpdate(order *orderbookv1.Order, full bool) *OrderUpdate {
	update := &OrderUpdate{
		OrderID:     order.ID,
		ExecutedQty: order.Filled,
	}
	if full {
		price, quantity := order.Price, order.Quantity
		update.Market = order.Market
		update.Price = &price
		update.Quantity = &quantity
		update.Side = order.Side
	}
	return update
}

// OrderCancelled is emitted when a resting order leaves the book by cancellation.
type OrderCancelled struct {
	OrderID     string           `json:"orderId"`
	UserID      string           `json:"userId"`
	Market      string           `json:"market"`
	Side        orderbookv1.Side `json:"side"`
	Price       decimal.Decimal  `json:"price"`
	Quantity    decimal.Decimal  `json:"quantity"`
	ExecutedQty decimal.Decimal  `json:"executedQty"`
}

// DepthUpdated lists the levels whose aggregate changed. A zero quantity
// means the level is gone.
type DepthUpdated struct {
	Market string                   `json:"market"`
	Bids   []orderbookv1.PriceLevel `json:"bids"`
	Asks   []orderbookv1.PriceLevel `json:"asks"`
}

// Event is one market-data message. Exactly one payload is set, matching Type.
// Sequence increases by one per event within a market.
type Event struct {
	Type           EventType
	Market         string
	Sequence       uint64
	Trade          *TradeAdded
	Order          *OrderUpdate
	OrderCancelled *OrderCancelled
	Depth          *DepthUpdated
	Ticker         *tickerv1.Ticker
}

type wireEvent struct {
	Type     EventType       `json:"type"`
	Market   string          `json:"market"`
	Sequence uint64          `json:"sequence"`
	Data     json.RawMessage `json:"data"`
}

func (e Event) payload() (any, error) {
	var payload any
	switch e.Type {
	case EventTradeAdded:
		if e.Trade != nil {
			payload = e.Trade
		}
	case EventOrderUpdate:
		if e.Order != nil {
			payload = e.Order
		}
	case EventOrderCancelled:
		if e.OrderCancelled != nil {
			payload = e.OrderCancelled
		}
	case EventDepthUpdated:
		if e.Depth != nil {
			payload = e.Depth
		}
	case EventTickerUpdated:
		if e.Ticker != nil {
			payload = e.Ticker
		}
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}

	if payload == nil {
		return nil, fmt.Errorf("event %s has no payload", e.Type)
	}
	return payload, nil
}

// MarshalJSON encodes the event as {type, market, sequence, data}.
func (e Event) MarshalJSON() ([]byte, error) {
	payload, err := e.payload()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(wireEvent{
		Type:     e.Type,
		Market:   e.Market,
		Sequence: e.Sequence,
		Data:     data,
	})
}

// UnmarshalJSON decodes {type, market, sequence, data} into the matching payload.
func (e *Event) UnmarshalJSON(data []byte) error {
	var wire wireEvent
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	event := Event{Type: wire.Type, Market: wire.Market, Sequence: wire.Sequence}
	var target any
	switch wire.Type {
	case EventTradeAdded:
		event.Trade = &TradeAdded{}
		target = event.Trade
	case EventOrderUpdate:
		event.Order = &OrderUpdate{}
		target = event.Order
	case EventOrderCancelled:
		event.OrderCancelled = &OrderCancelled{}
		target = event.OrderCancelled
	case EventDepthUpdated:
		event.Depth = &DepthUpdated{}
		target = event.Depth
	case EventTickerUpdated:
		event.Ticker = &tickerv1.Ticker{}
		target = event.Ticker
	default:
		return fmt.Errorf("unknown event type %q", wire.Type)
	}

	if len(wire.Data) == 0 {
		return fmt.Errorf("event %s has no data", wire.Type)
	}
	if err := json.Unmarshal(wire.Data, target); err != nil {
		return fmt.Errorf("event %s data: %w", wire.Type, err)
	}

	*e = event
	return nil
}

// Topic returns the relay topic the event is published on, e.g. trade@SOL_USDC.
func (e Event) Topic() string {
	var prefix string
	switch e.Type {
	case EventTradeAdded:
		prefix = "trade"
	case EventDepthUpdated:
		prefix = "depth"
	case EventTickerUpdated:
		prefix = "ticker"
	default:
		prefix = "order"
	}
	return prefix + "@" + e.Market
}

// Persisted reports whether the persistence pipeline consumes the event.
func (e Event) Persisted() bool {
	switch e.Type {
	case EventTradeAdded, EventOrderUpdate, EventOrderCancelled, EventTickerUpdated:
		return true
	}
	return false
}
