package matching

import (
	"testing"

	commandv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-engine/internal/usecase/orderbook"
	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

func newBook() *orderbook.Orderbook {
	return orderbook.NewOrderbook(market)
}

func genPlace(t *rapid.T) commandv1.PlaceOrder {
	side := rapid.SampledFrom([]orderbookv1.Side{orderbookv1.SideBuy, orderbookv1.SideSell}).Draw(t, "side")
	orderType := rapid.SampledFrom([]orderbookv1.OrderType{
		orderbookv1.OrderTypeLimit, orderbookv1.OrderTypeLimit, orderbookv1.OrderTypeLimit, orderbookv1.OrderTypeMarket,
	}).Draw(t, "type")

	req := commandv1.PlaceOrder{
		UserID:   rapid.SampledFrom([]string{"alice", "bob", "carol"}).Draw(t, "user"),
		Market:   market,
		Side:     side,
		Type:     orderType,
		Quantity: decimal.New(rapid.Int64Range(1, 500).Draw(t, "qty"), -2),
	}
	if orderType == orderbookv1.OrderTypeLimit {
		req.Price = decimal.New(rapid.Int64Range(90, 110).Draw(t, "price"), 0)
	}
	return req
}

func TestMatcher_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := NewMatcherWithOptions(market, newBook(), nil, nil)

		var (
			lastTrade uint64
			lastEvent uint64
			placed    []string
		)

		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			var result Result
			if len(placed) > 0 && rapid.IntRange(0, 4).Draw(t, "cancel") == 0 {
				id := rapid.SampledFrom(placed).Draw(t, "orderId")
				result = m.Apply(commandv1.CancelOrder{Market: market, OrderID: id})
			} else {
				req := genPlace(t)
				resting := restingQuantities(m)
				result = m.Apply(req)
				if result.Reply.Type != commandv1.ReplyOrderPlaced {
					t.Fatalf("place failed: %+v", result.Reply.Error)
				}
				reply := result.Reply.OrderPlaced
				placed = append(placed, reply.OrderID)
				checkTrades(t, req, reply, resting)

				if req.Type == orderbookv1.OrderTypeMarket {
					if _, ok := m.book.Get(reply.OrderID); ok {
						t.Fatalf("market order %s rested", reply.OrderID)
					}
				}
				for _, trade := range reply.Trades {
					if trade.Sequence != lastTrade+1 {
						t.Fatalf("trade sequence %d after %d", trade.Sequence, lastTrade)
					}
					lastTrade = trade.Sequence
				}
			}

			for _, event := range result.Events {
				if event.Sequence != lastEvent+1 {
					t.Fatalf("event sequence %d after %d", event.Sequence, lastEvent)
				}
				lastEvent = event.Sequence
			}

			bid, hasBid := m.book.BestBid()
			ask, hasAsk := m.book.BestAsk()
			if hasBid && hasAsk && !bid.LessThan(ask) {
				t.Fatalf("crossed book: bid %s ask %s", bid, ask)
			}
			for _, user := range []string{"alice", "bob", "carol"} {
				for _, order := range m.book.OpenOrders(user) {
					checkOrder(t, order)
				}
			}
		}
	})
}

func TestMatcher_CancelIsIdempotentProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := NewMatcherWithOptions(market, newBook(), nil, nil)
		req := genPlace(t)
		req.Type = orderbookv1.OrderTypeLimit
		if req.Price.IsZero() {
			req.Price = decimal.NewFromInt(100)
		}

		placed := m.Apply(req).Reply.OrderPlaced
		cancel := commandv1.CancelOrder{Market: market, OrderID: placed.OrderID}

		first := m.Apply(cancel)
		second := m.Apply(cancel)
		if first.Reply.Type != commandv1.ReplyOrderCancelled {
			t.Fatalf("first cancel: %s", first.Reply.Type)
		}
		if second.Reply.Type != commandv1.ReplyError || second.Reply.Error.Kind != commandv1.KindNotFound {
			t.Fatalf("second cancel: %+v", second.Reply)
		}
	})
}

// restingQuantities copies every resting order so fills can be checked against
// the state before the command.
func restingQuantities(m *Matcher) map[string]orderbookv1.Order {
	resting := make(map[string]orderbookv1.Order)
	for _, user := range []string{"alice", "bob", "carol"} {
		for _, order := range m.book.OpenOrders(user) {
			resting[order.ID] = *order
		}
	}
	return resting
}

func checkTrades(t *rapid.T, req commandv1.PlaceOrder, reply *commandv1.OrderPlaced, resting map[string]orderbookv1.Order) {
	total := decimal.Zero
	for _, trade := range reply.Trades {
		maker := trade.SellOrderID
		if req.Side == orderbookv1.SideSell {
			maker = trade.BuyOrderID
		}

		order, ok := resting[maker]
		if !ok {
			t.Fatalf("trade %s against non-resting order %s", trade.ID, maker)
		}
		if !trade.Price.Equal(order.Price) {
			t.Fatalf("trade %s at %s, maker price %s", trade.ID, trade.Price, order.Price)
		}
		if trade.Quantity.GreaterThan(order.Remaining()) {
			t.Fatalf("trade %s fills %s of maker with %s remaining", trade.ID, trade.Quantity, order.Remaining())
		}
		order.Filled = order.Filled.Add(trade.Quantity)
		resting[maker] = order

		if req.Type == orderbookv1.OrderTypeLimit {
			if req.Side == orderbookv1.SideBuy && trade.Price.GreaterThan(req.Price) {
				t.Fatalf("buy limit %s traded at %s", req.Price, trade.Price)
			}
			if req.Side == orderbookv1.SideSell && trade.Price.LessThan(req.Price) {
				t.Fatalf("sell limit %s traded at %s", req.Price, trade.Price)
			}
		}
		total = total.Add(trade.Quantity)
	}

	if total.GreaterThan(req.Quantity) {
		t.Fatalf("filled %s of %s", total, req.Quantity)
	}
	if !total.Equal(reply.FilledQuantity) {
		t.Fatalf("reply filled %s, trades sum %s", reply.FilledQuantity, total)
	}
}

func checkOrder(t *rapid.T, order *orderbookv1.Order) {
	if order.Filled.IsNegative() || order.Filled.GreaterThanOrEqual(order.Quantity) {
		t.Fatalf("resting order %s has filled %s of %s", order.ID, order.Filled, order.Quantity)
	}
}
