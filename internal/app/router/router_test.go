package router

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	commandv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-engine/internal/usecase/matching"
	"github.com/muhammadchandra19/exchange-engine/internal/usecase/orderbook"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMatcher(market string) *matching.Matcher {
	return matching.NewMatcher(market, orderbook.NewOrderbook(market), logger.NewNop())
}

func newTestRouter(t *testing.T, markets ...string) *Router {
	t.Helper()

	matchers := make([]*matching.Matcher, 0, len(markets))
	for _, market := range markets {
		matchers = append(matchers, newMatcher(market))
	}

	r := NewRouter(matchers, 8, logger.NewNop())
	r.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = r.Stop(ctx)
	})
	return r
}

func placeLimit(market string, side orderbookv1.Side, price, qty string) commandv1.PlaceOrder {
	return commandv1.PlaceOrder{
		UserID:   "u1",
		Market:   market,
		Side:     side,
		Type:     orderbookv1.OrderTypeLimit,
		Price:    decimal.RequireFromString(price),
		Quantity: decimal.RequireFromString(qty),
	}
}

func TestRouter_Markets(t *testing.T) {
	r := newTestRouter(t, "SOL_USDC", "BTC_USDC")
	assert.Equal(t, []string{"BTC_USDC", "SOL_USDC"}, r.Markets())
}

func TestRouter_Execute(t *testing.T) {
	testCases := []struct {
		name     string
		req      commandv1.Request
		assertFn func(t *testing.T, result matching.Result, err error)
	}{
		{
			name: "place order on served market",
			req:  placeLimit("SOL_USDC", orderbookv1.SideBuy, "100", "1"),
			assertFn: func(t *testing.T, result matching.Result, err error) {
				require.NoError(t, err)
				assert.Equal(t, commandv1.ReplyOrderPlaced, result.Reply.Type)
				assert.NotEmpty(t, result.Events)
			},
		},
		{
			name: "unknown market",
			req:  commandv1.GetDepth{Market: "DOGE_USDC"},
			assertFn: func(t *testing.T, result matching.Result, err error) {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ValidationError))
				assert.Contains(t, err.Error(), "DOGE_USDC")
			},
		},
		{
			name: "matcher error becomes error reply",
			req:  commandv1.CancelOrder{UserID: "u1", Market: "SOL_USDC", OrderID: "missing"},
			assertFn: func(t *testing.T, result matching.Result, err error) {
				require.NoError(t, err)
				assert.Equal(t, commandv1.ReplyError, result.Reply.Type)
				assert.Equal(t, commandv1.KindNotFound, result.Reply.Error.Kind)
				assert.Empty(t, result.Events)
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			r := newTestRouter(t, "SOL_USDC")
			result, err := r.Execute(context.Background(), testCase.req)
			testCase.assertFn(t, result, err)
		})
	}
}

func TestRouter_PreservesOrderPerMarket(t *testing.T) {
	r := newTestRouter(t, "SOL_USDC")

	const total = 50
	var (
		mu     sync.Mutex
		seen   []string
		wg     sync.WaitGroup
		prices = make([]string, 0, total)
	)
	wg.Add(total)
	for i := 0; i < total; i++ {
		price := fmt.Sprintf("%d", 100+i)
		prices = append(prices, price)
		err := r.Dispatch(context.Background(), placeLimit("SOL_USDC", orderbookv1.SideBuy, price, "1"), func(result matching.Result) {
			defer wg.Done()
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, result.Events[0].Order.Price.String())
		})
		require.NoError(t, err)
	}
	wg.Wait()

	assert.Equal(t, prices, seen)
}

func TestRouter_MarketsAreIndependent(t *testing.T) {
	r := newTestRouter(t, "SOL_USDC", "BTC_USDC")

	// Block the SOL worker; BTC must keep serving.
	release := make(chan struct{})
	blocked := make(chan struct{})
	go func() {
		_ = r.Do(context.Background(), "SOL_USDC", func(*matching.Matcher) {
			close(blocked)
			<-release
		})
	}()
	<-blocked

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	result, err := r.Execute(ctx, commandv1.GetDepth{Market: "BTC_USDC"})
	require.NoError(t, err)
	assert.Equal(t, commandv1.ReplyDepth, result.Reply.Type)

	close(release)
}

func TestRouter_Do(t *testing.T) {
	r := newTestRouter(t, "SOL_USDC")

	_, err := r.Execute(context.Background(), placeLimit("SOL_USDC", orderbookv1.SideSell, "101", "2"))
	require.NoError(t, err)

	var sequence uint64
	err = r.Do(context.Background(), "SOL_USDC", func(m *matching.Matcher) {
		sequence = m.EventSequence()
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), sequence)

	err = r.Do(context.Background(), "ETH_USDC", func(*matching.Matcher) {})
	assert.True(t, errors.HasCode(err, errors.ValidationError))
}

func TestRouter_DispatchHonoursContext(t *testing.T) {
	r := NewRouter([]*matching.Matcher{newMatcher("SOL_USDC")}, 1, logger.NewNop())
	// Not started, so the mailbox fills up.
	require.NoError(t, r.Dispatch(context.Background(), commandv1.GetDepth{Market: "SOL_USDC"}, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := r.Dispatch(ctx, commandv1.GetDepth{Market: "SOL_USDC"}, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.TransportError))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRouter_TryDispatchFailsFastWhenMailboxIsFull(t *testing.T) {
	r := NewRouter([]*matching.Matcher{newMatcher("SOL_USDC"), newMatcher("BTC_USDC")}, 1, logger.NewNop())
	// Not started, so the mailboxes fill up.
	require.NoError(t, r.TryDispatch(commandv1.GetDepth{Market: "SOL_USDC"}, nil))

	started := time.Now()
	err := r.TryDispatch(commandv1.GetDepth{Market: "SOL_USDC"}, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.TransportError))
	assert.Contains(t, err.Error(), "SOL_USDC is busy")
	assert.Less(t, time.Since(started), 100*time.Millisecond)

	// Another market still has room.
	require.NoError(t, r.TryDispatch(commandv1.GetDepth{Market: "BTC_USDC"}, nil))

	err = r.TryDispatch(commandv1.GetDepth{Market: "ETH_USDC"}, nil)
	assert.True(t, errors.HasCode(err, errors.ValidationError))
}

func TestRouter_StopDrainsMailboxes(t *testing.T) {
	r := NewRouter([]*matching.Matcher{newMatcher("SOL_USDC")}, 16, logger.NewNop())

	var applied int
	for i := 0; i < 5; i++ {
		err := r.Dispatch(context.Background(), commandv1.GetDepth{Market: "SOL_USDC"}, func(matching.Result) {
			applied++
		})
		require.NoError(t, err)
	}
	r.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Stop(ctx))
	assert.Equal(t, 5, applied)

	err := r.Dispatch(context.Background(), commandv1.GetDepth{Market: "SOL_USDC"}, nil)
	assert.True(t, errors.HasCode(err, errors.TransportError))

	// Stopping twice is a no-op.
	assert.NoError(t, r.Stop(ctx))
}

func TestRouter_RecoversFromPanic(t *testing.T) {
	// A matcher without a book panics on any read.
	broken := matching.NewMatcher("SOL_USDC", nil, logger.NewNop())
	r := NewRouter([]*matching.Matcher{broken}, 4, logger.NewNop())
	r.Start()
	defer func() { _ = r.Stop(context.Background()) }()

	result, err := r.Execute(context.Background(), commandv1.GetDepth{Market: "SOL_USDC"})
	require.NoError(t, err)
	assert.Equal(t, commandv1.ReplyError, result.Reply.Type)
	assert.Equal(t, commandv1.KindInternal, result.Reply.Error.Kind)

	// The worker is still alive.
	called := false
	require.NoError(t, r.Do(context.Background(), "SOL_USDC", func(*matching.Matcher) { called = true }))
	assert.True(t, called)
}
