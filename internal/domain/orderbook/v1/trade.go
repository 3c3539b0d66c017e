package orderbookv1

import "github.com/shopspring/decimal"

// Trade represents one fill between a resting (maker) order and an incoming (taker) order.
// Price is always the maker's price.
type Trade struct {
	ID           string          `json:"tradeId"`
	Market       string          `json:"market"`
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
	BuyOrderID   string          `json:"buyOrderId"`
	SellOrderID  string          `json:"sellOrderId"`
	BuyerUserID  string          `json:"buyerUserId"`
	SellerUserID string          `json:"sellerUserId"`
	TakerSide    Side            `json:"takerSide"`
	Sequence     uint64          `json:"sequence"`
	Timestamp    int64           `json:"timestamp"`
}

// NewTrade builds the trade for a fill of qty between taker and maker.
func NewTrade(id string, taker, maker *Order, qty decimal.Decimal, sequence uint64, timestamp int64) Trade {
	trade := Trade{
		ID:        id,
		Market:    maker.Market,
		Price:     maker.Price,
		Quantity:  qty,
		TakerSide: taker.Side,
		Sequence:  sequence,
		Timestamp: timestamp,
	}

	bid, ask := taker, maker
	if taker.IsAsk() {
		bid, ask = maker, taker
	}
	trade.BuyOrderID, trade.BuyerUserID = bid.ID, bid.UserID
	trade.SellOrderID, trade.SellerUserID = ask.ID, ask.UserID

	return trade
}

// IsBuyerMaker reports whether the resting order was the bid.
func (t Trade) IsBuyerMaker() bool {
	return t.TakerSide == SideSell
}

// QuoteQuantity returns price * quantity.
func (t Trade) QuoteQuantity() decimal.Decimal {
	return t.Price.Mul(t.Quantity)
}
