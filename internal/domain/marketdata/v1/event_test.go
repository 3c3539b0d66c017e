package marketdatav1

import (
	"encoding/json"
	"testing"

	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	tickerv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/ticker/v1"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_JSON(t *testing.T) {
	maker := orderbookv1.NewOrder("m1", "u1", "SOL_USDC", orderbookv1.SideBuy, orderbookv1.OrderTypeLimit, decimal.NewFromInt(100), decimal.NewFromInt(2))
	taker := orderbookv1.NewOrder("t1", "u2", "SOL_USDC", orderbookv1.SideSell, orderbookv1.OrderTypeLimit, decimal.NewFromInt(99), decimal.NewFromInt(1))
	trade := orderbookv1.NewTrade("SOL_USDC-1", taker, maker, decimal.NewFromInt(1), 1, 1700000000000)

	event := Event{Type: EventTradeAdded, Market: "SOL_USDC", Sequence: 4, Trade: NewTradeAdded(trade)}

	data, err := json.Marshal(event)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"TRADE_ADDED","market":"SOL_USDC","sequence":4,"data":{
		"id":"SOL_USDC-1","market":"SOL_USDC","price":"100","quantity":"1","quoteQuantity":"100",
		"timestamp":1700000000000,"isBuyerMaker":true,"sequence":1,"buyOrderId":"m1","sellOrderId":"t1"}}`, string(data))

	var decoded Event
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, EventTradeAdded, decoded.Type)
	assert.Equal(t, uint64(4), decoded.Sequence)
	require.NotNil(t, decoded.Trade)
	assert.True(t, decoded.Trade.Price.Equal(decimal.NewFromInt(100)))
	assert.True(t, decoded.Trade.IsBuyerMaker)
}

func TestEvent_OrderUpdate(t *testing.T) {
	order := orderbookv1.NewOrder("o1", "u1", "SOL_USDC", orderbookv1.SideSell, orderbookv1.OrderTypeLimit, decimal.NewFromInt(101), decimal.NewFromInt(5))
	require.NoError(t, order.Fill(decimal.NewFromInt(3)))

	short, err := json.Marshal(Event{Type: EventOrderUpdate, Market: "SOL_USDC", Sequence: 1, Order: NewOrderUpdate(order, false)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"ORDER_UPDATE","market":"SOL_USDC","sequence":1,"data":{"orderId":"o1","executedQty":"3"}}`, string(short))

	full, err := json.Marshal(Event{Type: EventOrderUpdate, Market: "SOL_USDC", Sequence: 2, Order: NewOrderUpdate(order, true)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"ORDER_UPDATE","market":"SOL_USDC","sequence":2,"data":{
		"orderId":"o1","executedQty":"3","market":"SOL_USDC","price":"101","quantity":"5","side":"sell"}}`, string(full))
}

func TestEvent_Errors(t *testing.T) {
	_, err := json.Marshal(Event{Type: EventDepthUpdated, Market: "SOL_USDC"})
	assert.Error(t, err)

	_, err = json.Marshal(Event{Type: "NOPE"})
	assert.Error(t, err)

	var decoded Event
	assert.Error(t, json.Unmarshal([]byte(`{"type":"NOPE","data":{}}`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`{"type":"TICKER_UPDATED","market":"SOL_USDC"}`), &decoded))
}

func TestEvent_Routing(t *testing.T) {
	testCases := []struct {
		event     Event
		topic     string
		persisted bool
	}{
		{event: Event{Type: EventTradeAdded, Market: "SOL_USDC"}, topic: "trade@SOL_USDC", persisted: true},
		{event: Event{Type: EventDepthUpdated, Market: "SOL_USDC"}, topic: "depth@SOL_USDC", persisted: false},
		{event: Event{Type: EventTickerUpdated, Market: "SOL_USDC", Ticker: tickerv1.New("SOL_USDC")}, topic: "ticker@SOL_USDC", persisted: true},
		{event: Event{Type: EventOrderUpdate, Market: "SOL_USDC"}, topic: "order@SOL_USDC", persisted: true},
		{event: Event{Type: EventOrderCancelled, Market: "SOL_USDC"}, topic: "order@SOL_USDC", persisted: true},
	}

	for _, testCase := range testCases {
		t.Run(string(testCase.event.Type), func(t *testing.T) {
			assert.Equal(t, testCase.topic, testCase.event.Topic())
			assert.Equal(t, testCase.persisted, testCase.event.Persisted())
		})
	}
}
