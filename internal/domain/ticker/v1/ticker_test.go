package tickerv1

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTicker_Apply(t *testing.T) {
	testCases := []struct {
		name     string
		ticker   *Ticker
		price    string
		qty      string
		sequence uint64
		assertFn func(t *testing.T, ticker *Ticker, changed bool)
	}{
		{
			name: "trade against prior ticker",
			ticker: &Ticker{
				Symbol:       "SOL_USDC",
				LastPrice:    d("100"),
				HighPrice24h: d("100"),
				LowPrice24h:  d("100"),
				Volume24h:    d("0"),
			},
			price:    "101",
			qty:      "2",
			sequence: 1,
			assertFn: func(t *testing.T, ticker *Ticker, changed bool) {
				assert.True(t, changed)
				assert.True(t, ticker.LastPrice.Equal(d("101")))
				assert.True(t, ticker.HighPrice24h.Equal(d("101")))
				assert.True(t, ticker.LowPrice24h.Equal(d("100")))
				assert.True(t, ticker.Volume24h.Equal(d("2")))
				assert.True(t, ticker.QuoteVolume24h.Equal(d("202")))
				assert.True(t, ticker.PriceChange24h.Equal(d("1")))
				assert.True(t, ticker.PriceChangePercentage24h.Equal(d("1.0")))
			},
		},
		{
			name:     "first trade initialises",
			ticker:   New("SOL_USDC"),
			price:    "50.5",
			qty:      "4",
			sequence: 1,
			assertFn: func(t *testing.T, ticker *Ticker, changed bool) {
				assert.True(t, changed)
				assert.True(t, ticker.LastPrice.Equal(d("50.5")))
				assert.True(t, ticker.HighPrice24h.Equal(d("50.5")))
				assert.True(t, ticker.LowPrice24h.Equal(d("50.5")))
				assert.True(t, ticker.Volume24h.Equal(d("4")))
				assert.True(t, ticker.QuoteVolume24h.Equal(d("202")))
				assert.True(t, ticker.PriceChange24h.IsZero())
				assert.True(t, ticker.PriceChangePercentage24h.IsZero())
			},
		},
		{
			name: "lower price moves low and negative change",
			ticker: &Ticker{
				LastPrice:    d("200"),
				HighPrice24h: d("210"),
				LowPrice24h:  d("190"),
				Volume24h:    d("1"),
			},
			price:    "150",
			qty:      "1",
			sequence: 7,
			assertFn: func(t *testing.T, ticker *Ticker, changed bool) {
				assert.True(t, ticker.HighPrice24h.Equal(d("210")))
				assert.True(t, ticker.LowPrice24h.Equal(d("150")))
				assert.True(t, ticker.PriceChange24h.Equal(d("-50")))
				assert.True(t, ticker.PriceChangePercentage24h.Equal(d("-25")))
				assert.Equal(t, uint64(7), ticker.LastTradeSequence)
			},
		},
		{
			name: "replayed trade ignored",
			ticker: &Ticker{
				LastPrice:         d("100"),
				HighPrice24h:      d("100"),
				LowPrice24h:       d("100"),
				Volume24h:         d("3"),
				LastTradeSequence: 5,
			},
			price:    "120",
			qty:      "1",
			sequence: 5,
			assertFn: func(t *testing.T, ticker *Ticker, changed bool) {
				assert.False(t, changed)
				assert.True(t, ticker.LastPrice.Equal(d("100")))
				assert.True(t, ticker.Volume24h.Equal(d("3")))
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			changed := testCase.ticker.Apply(d(testCase.price), d(testCase.qty), testCase.sequence)
			testCase.assertFn(t, testCase.ticker, changed)
		})
	}
}
