package marketmaker

import (
	"context"
	"math/rand/v2"
	"time"

	commandv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/bridge"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/shopspring/decimal"
)

var _ Exchange = (*bridge.Client)(nil)

// Exchange is the part of the bridge client the maker trades through.
//
//go:generate mockgen -source marketmaker.go -destination=mock/marketmaker_mock.go -package=marketmaker_mock
type Exchange interface {
	OpenOrders(ctx context.Context, userID, market string) ([]orderbookv1.Order, error)
	CancelOrder(ctx context.Context, userID, market, orderID string) (*commandv1.OrderCancelled, error)
	PlaceOrder(ctx context.Context, params bridge.PlaceOrderParams) (*commandv1.OrderPlaced, error)
}

// Options configures the quoting loop.
type Options struct {
	// Levels is how many bids and how many asks are kept resting per market.
	Levels int
	// Interval is the pause between two cycles.
	Interval time.Duration
	// Rand drives prices, quantities and random cancels.
	Rand *rand.Rand
}

// DefaultOptions returns the default quoting options.
func DefaultOptions() Options {
	return Options{
		Levels:   15,
		Interval: 500 * time.Millisecond,
	}
}

// CycleResult summarises one quoting cycle of a market.
type CycleResult struct {
	Market         string
	ReferencePrice float64
	CancelledBids  int
	CancelledAsks  int
	PlacedBids     int
	PlacedAsks     int
	FailedRequests int
}

// MarketMaker keeps a ladder of bids and asks around a drifting reference
// price on each market, visiting one market per cycle.
type MarketMaker struct {
	exchange Exchange
	markets  []Market
	logger   *logger.Logger
	options  Options
	rand     *rand.Rand
	next     int
}

// New creates a MarketMaker.
func New(exchange Exchange, markets []Market, log *logger.Logger, options Options) *MarketMaker {
	defaults := DefaultOptions()
	if options.Levels <= 0 {
		options.Levels = defaults.Levels
	}
	if options.Interval <= 0 {
		options.Interval = defaults.Interval
	}
	if options.Rand == nil {
		options.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &MarketMaker{
		exchange: exchange,
		markets:  markets,
		logger:   log,
		options:  options,
		rand:     options.Rand,
	}
}

// Run cycles through the markets until ctx is done. A failed cycle is logged
// and the next market is tried.
func (mm *MarketMaker) Run(ctx context.Context) error {
	if len(mm.markets) == 0 {
		return nil
	}

	ticker := time.NewTicker(mm.options.Interval)
	defer ticker.Stop()

	for {
		market := mm.markets[mm.next]
		mm.next = (mm.next + 1) % len(mm.markets)

		result, err := mm.Cycle(ctx, market)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			mm.logger.ErrorContext(ctx, err,
				logger.Field{Key: "action", Value: "quote_cycle"},
				logger.Field{Key: "market", Value: market.Symbol},
			)
		} else {
			mm.logger.Info("Quote cycle completed",
				logger.Field{Key: "market", Value: result.Market},
				logger.Field{Key: "price", Value: formatPrice(result.ReferencePrice)},
				logger.Field{Key: "cancelledBids", Value: result.CancelledBids},
				logger.Field{Key: "cancelledAsks", Value: result.CancelledAsks},
				logger.Field{Key: "placedBids", Value: result.PlacedBids},
				logger.Field{Key: "placedAsks", Value: result.PlacedAsks},
			)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Cycle refreshes the quotes of one market: bids above the new reference
// price and asks below it are cancelled, together with a random share of the
// rest, and both sides are topped back up to Levels orders.
func (mm *MarketMaker) Cycle(ctx context.Context, market Market) (CycleResult, error) {
	price := mm.referencePrice(market)
	result := CycleResult{Market: market.Symbol, ReferencePrice: price}

	open, err := mm.exchange.OpenOrders(ctx, market.UserID, market.Symbol)
	if err != nil {
		return result, err
	}

	reference := decimal.NewFromFloat(price)
	bids, asks := 0, 0
	for _, order := range open {
		var stale bool
		switch order.Side {
		case orderbookv1.SideBuy:
			bids++
			stale = order.Price.GreaterThan(reference) || mm.rand.Float64() < 0.1
		case orderbookv1.SideSell:
			asks++
			stale = order.Price.LessThan(reference) || mm.rand.Float64() < 0.5
		}
		if !stale {
			continue
		}

		if _, err := mm.exchange.CancelOrder(ctx, market.UserID, market.Symbol, order.ID); err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.FailedRequests++
			mm.logger.WarnContext(ctx, "Cancel failed",
				logger.Field{Key: "orderId", Value: order.ID},
				logger.Field{Key: "reason", Value: err.Error()},
			)
			continue
		}
		if order.Side == orderbookv1.SideBuy {
			result.CancelledBids++
		} else {
			result.CancelledAsks++
		}
	}

	bidsToAdd := mm.options.Levels - (bids - result.CancelledBids)
	asksToAdd := mm.options.Levels - (asks - result.CancelledAsks)

	for bidsToAdd > 0 || asksToAdd > 0 {
		if bidsToAdd > 0 {
			bidsToAdd--
			if mm.quote(ctx, market, orderbookv1.SideBuy, price) {
				result.PlacedBids++
			} else {
				result.FailedRequests++
			}
		}
		if asksToAdd > 0 {
			asksToAdd--
			if mm.quote(ctx, market, orderbookv1.SideSell, price) {
				result.PlacedAsks++
			} else {
				result.FailedRequests++
			}
		}
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
	}

	return result, nil
}

// referencePrice moves the base price by up to Volatility either way.
func (mm *MarketMaker) referencePrice(market Market) float64 {
	change := (mm.rand.Float64() - 0.5) * 2 * market.Volatility
	return market.BasePrice * (1 + change)
}

// quote places one limit order between 0.1% and 1.1% away from price.
func (mm *MarketMaker) quote(ctx context.Context, market Market, side orderbookv1.Side, price float64) bool {
	spread := price * (0.001 + mm.rand.Float64()*0.01)
	quotePrice := price - spread
	if side == orderbookv1.SideSell {
		quotePrice = price + spread
	}
	quantity := mm.rand.Float64()*5 + 0.1

	params := bridge.PlaceOrderParams{
		UserID:    market.UserID,
		Market:    market.Symbol,
		Side:      side,
		OrderType: orderbookv1.OrderTypeLimit,
		Price:     formatPrice(quotePrice),
		Quantity:  formatQuantity(quantity),
	}
	if _, err := mm.exchange.PlaceOrder(ctx, params); err != nil {
		mm.logger.WarnContext(ctx, "Quote failed",
			logger.Field{Key: "side", Value: side},
			logger.Field{Key: "price", Value: params.Price},
			logger.Field{Key: "reason", Value: err.Error()},
		)
		return false
	}
	return true
}
