package tickerv1

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Ticker holds the rolling statistics of a market. It is folded once per trade,
// in trade sequence order.
type Ticker struct {
	Symbol                   string          `json:"symbol"`
	LastPrice                decimal.Decimal `json:"lastPrice"`
	PriceChange24h           decimal.Decimal `json:"priceChange24h"`
	PriceChangePercentage24h decimal.Decimal `json:"priceChangePercentage24h"`
	HighPrice24h             decimal.Decimal `json:"highPrice24h"`
	LowPrice24h              decimal.Decimal `json:"lowPrice24h"`
	Volume24h                decimal.Decimal `json:"volume24h"`
	QuoteVolume24h           decimal.Decimal `json:"quoteVolume24h"`
	LastTradeSequence        uint64          `json:"lastTradeSequence"`
}

// New returns an empty ticker for symbol.
func New(symbol string) *Ticker {
	return &Ticker{Symbol: symbol}
}

// Empty reports whether no trade has been folded in yet.
func (t *Ticker) Empty() bool {
	return t.LastPrice.IsZero()
}

// Apply folds a trade into the ticker. Trades at or below LastTradeSequence
// are ignored so a replayed trade is never counted twice. It reports whether
// the ticker changed.
func (t *Ticker) Apply(price, quantity decimal.Decimal, sequence uint64) bool {
	if sequence != 0 && sequence <= t.LastTradeSequence {
		return false
	}
	t.LastTradeSequence = sequence

	if t.Empty() {
		t.LastPrice = price
		t.HighPrice24h = price
		t.LowPrice24h = price
		t.Volume24h = quantity
		t.QuoteVolume24h = price.Mul(quantity)
		t.PriceChange24h = decimal.Zero
		t.PriceChangePercentage24h = decimal.Zero
		return true
	}

	lastBefore := t.LastPrice
	t.HighPrice24h = decimal.Max(t.HighPrice24h, price)
	t.LowPrice24h = decimal.Min(t.LowPrice24h, price)
	t.Volume24h = t.Volume24h.Add(quantity)
	t.QuoteVolume24h = t.QuoteVolume24h.Add(price.Mul(quantity))
	t.PriceChange24h = price.Sub(lastBefore)
	t.PriceChangePercentage24h = t.PriceChange24h.Div(lastBefore).Mul(hundred)
	t.LastPrice = price

	return true
}
