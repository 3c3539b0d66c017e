package snapshotv1

import (
	tickerv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/ticker/v1"
	"github.com/shopspring/decimal"
)

// Snapshot represents the state of one market at a specific point in time.
type Snapshot struct {
	Market            string            `json:"market"`
	OrderBookSnapshot OrderBookSnapshot `json:"orderBookSnapshot"`
	Ticker            *tickerv1.Ticker  `json:"ticker,omitempty"`
	TakenAt           int64             `json:"takenAt"`
}

// OrderBookSnapshot represents the resting orders and counters of a market.
type OrderBookSnapshot struct {
	Orders        []BookOrder `json:"orders"`
	OrderSequence uint64      `json:"orderSequence"`
	TradeSequence uint64      `json:"tradeSequence"`
	EventSequence uint64      `json:"eventSequence"`
}

// BookOrder represents a resting order with its details. Orders are stored
// in arrival order so that restoring them preserves time priority.
type BookOrder struct {
	OrderID   string          `json:"orderId"`
	UserID    string          `json:"userId"`
	Side      string          `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Filled    decimal.Decimal `json:"filledQuantity"`
	Sequence  uint64          `json:"sequence"`
	Timestamp int64           `json:"timestamp"`
}

// Watermark is the highest event and trade sequence a market has handed out.
// It is saved before events leave the engine so that a restart from an older
// snapshot never reuses a sequence.
type Watermark struct {
	EventSequence uint64 `json:"eventSequence"`
	TradeSequence uint64 `json:"tradeSequence"`
}
