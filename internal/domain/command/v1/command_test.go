package commandv1

import (
	"testing"

	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		cmd, err := Decode([]byte(`{"correlationId":"c1","userId":"u1","market":"SOL_USDC","op":"PLACE_ORDER","side":"buy","price":"100","quantity":"2"}`))
		require.NoError(t, err)
		assert.Equal(t, "c1", cmd.CorrelationID)
		assert.Equal(t, OpPlaceOrder, cmd.Op)
		assert.Equal(t, orderbookv1.SideBuy, cmd.Side)
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, err := Decode([]byte(`{"market":`))
		assert.True(t, errors.HasCode(err, errors.ValidationError))
		assert.Equal(t, KindValidation, KindOf(err))
	})
}

func TestCommand_Parse(t *testing.T) {
	testCases := []struct {
		name     string
		cmd      Command
		assertFn func(t *testing.T, req Request, err error)
	}{
		{
			name: "limit order",
			cmd:  Command{UserID: "u1", Market: "SOL_USDC", Op: OpPlaceOrder, Side: orderbookv1.SideBuy, Price: "100.25", Quantity: "2"},
			assertFn: func(t *testing.T, req Request, err error) {
				require.NoError(t, err)
				place, ok := req.(PlaceOrder)
				require.True(t, ok)
				assert.Equal(t, orderbookv1.OrderTypeLimit, place.Type)
				assert.True(t, place.Price.Equal(decimal.RequireFromString("100.25")))
				assert.True(t, place.Quantity.Equal(decimal.NewFromInt(2)))
				assert.Equal(t, "SOL_USDC", place.MarketSymbol())
			},
		},
		{
			name: "missing price defaults to market",
			cmd:  Command{UserID: "u1", Market: "SOL_USDC", Op: OpPlaceOrder, Side: orderbookv1.SideSell, Quantity: "3"},
			assertFn: func(t *testing.T, req Request, err error) {
				require.NoError(t, err)
				place := req.(PlaceOrder)
				assert.Equal(t, orderbookv1.OrderTypeMarket, place.Type)
				assert.True(t, place.Price.IsZero())
			},
		},
		{
			name: "market order ignores price",
			cmd:  Command{UserID: "u1", Market: "SOL_USDC", Op: OpPlaceOrder, Side: orderbookv1.SideBuy, OrderType: orderbookv1.OrderTypeMarket, Price: "-1", Quantity: "3"},
			assertFn: func(t *testing.T, req Request, err error) {
				require.NoError(t, err)
				assert.True(t, req.(PlaceOrder).Price.IsZero())
			},
		},
		{
			name: "explicit limit without price",
			cmd:  Command{UserID: "u1", Market: "SOL_USDC", Op: OpPlaceOrder, Side: orderbookv1.SideBuy, OrderType: orderbookv1.OrderTypeLimit, Quantity: "3"},
			assertFn: func(t *testing.T, req Request, err error) {
				assertValidation(t, err, "price")
			},
		},
		{
			name: "zero price",
			cmd:  Command{UserID: "u1", Market: "SOL_USDC", Op: OpPlaceOrder, Side: orderbookv1.SideBuy, Price: "0", Quantity: "1"},
			assertFn: func(t *testing.T, req Request, err error) {
				assertValidation(t, err, "price")
			},
		},
		{
			name: "negative quantity",
			cmd:  Command{UserID: "u1", Market: "SOL_USDC", Op: OpPlaceOrder, Side: orderbookv1.SideBuy, Price: "1", Quantity: "-2"},
			assertFn: func(t *testing.T, req Request, err error) {
				assertValidation(t, err, "quantity")
			},
		},
		{
			name: "quantity not a number",
			cmd:  Command{UserID: "u1", Market: "SOL_USDC", Op: OpPlaceOrder, Side: orderbookv1.SideBuy, Price: "1", Quantity: "lots"},
			assertFn: func(t *testing.T, req Request, err error) {
				assertValidation(t, err, "quantity")
			},
		},
		{
			name: "price exponent too large",
			cmd:  Command{UserID: "u1", Market: "SOL_USDC", Op: OpPlaceOrder, Side: orderbookv1.SideBuy, Price: "1e50000000", Quantity: "1"},
			assertFn: func(t *testing.T, req Request, err error) {
				assertValidation(t, err, "price")
			},
		},
		{
			name: "price scale too large",
			cmd:  Command{UserID: "u1", Market: "SOL_USDC", Op: OpPlaceOrder, Side: orderbookv1.SideBuy, Price: "1e-50000000", Quantity: "1"},
			assertFn: func(t *testing.T, req Request, err error) {
				assertValidation(t, err, "price")
			},
		},
		{
			name: "quantity exponent too large",
			cmd:  Command{UserID: "u1", Market: "SOL_USDC", Op: OpPlaceOrder, Side: orderbookv1.SideSell, Quantity: "1e50000000"},
			assertFn: func(t *testing.T, req Request, err error) {
				assertValidation(t, err, "quantity")
			},
		},
		{
			name: "quantity with too many decimals",
			cmd:  Command{UserID: "u1", Market: "SOL_USDC", Op: OpPlaceOrder, Side: orderbookv1.SideBuy, Price: "1", Quantity: "0.0000000000000000001"},
			assertFn: func(t *testing.T, req Request, err error) {
				assertValidation(t, err, "quantity")
			},
		},
		{
			name: "amounts at the bounds",
			cmd:  Command{UserID: "u1", Market: "SOL_USDC", Op: OpPlaceOrder, Side: orderbookv1.SideBuy, Price: "999999999999999999.999999999999999999", Quantity: "0.000000000000000001"},
			assertFn: func(t *testing.T, req Request, err error) {
				require.NoError(t, err)
				place := req.(PlaceOrder)
				assert.Equal(t, int32(-18), place.Price.Exponent())
				assert.True(t, place.Quantity.IsPositive())
			},
		},
		{
			name: "price with too many integer digits",
			cmd:  Command{UserID: "u1", Market: "SOL_USDC", Op: OpPlaceOrder, Side: orderbookv1.SideBuy, Price: "1000000000000000000", Quantity: "1"},
			assertFn: func(t *testing.T, req Request, err error) {
				assertValidation(t, err, "price")
			},
		},
		{
			name: "bad side",
			cmd:  Command{UserID: "u1", Market: "SOL_USDC", Op: OpPlaceOrder, Side: "long", Price: "1", Quantity: "1"},
			assertFn: func(t *testing.T, req Request, err error) {
				assertValidation(t, err, "side")
			},
		},
		{
			name: "bad order type",
			cmd:  Command{UserID: "u1", Market: "SOL_USDC", Op: OpPlaceOrder, Side: orderbookv1.SideBuy, OrderType: "stop", Price: "1", Quantity: "1"},
			assertFn: func(t *testing.T, req Request, err error) {
				assertValidation(t, err, "orderType")
			},
		},
		{
			name: "missing market",
			cmd:  Command{UserID: "u1", Op: OpGetDepth},
			assertFn: func(t *testing.T, req Request, err error) {
				assertValidation(t, err, "market")
			},
		},
		{
			name: "cancel",
			cmd:  Command{UserID: "u1", Market: "SOL_USDC", Op: OpCancelOrder, OrderID: "o1"},
			assertFn: func(t *testing.T, req Request, err error) {
				require.NoError(t, err)
				assert.Equal(t, CancelOrder{UserID: "u1", Market: "SOL_USDC", OrderID: "o1"}, req)
			},
		},
		{
			name: "cancel without order id",
			cmd:  Command{UserID: "u1", Market: "SOL_USDC", Op: OpCancelOrder},
			assertFn: func(t *testing.T, req Request, err error) {
				assertValidation(t, err, "orderId")
			},
		},
		{
			name: "depth",
			cmd:  Command{Market: "SOL_USDC", Op: OpGetDepth, Levels: 10},
			assertFn: func(t *testing.T, req Request, err error) {
				require.NoError(t, err)
				assert.Equal(t, GetDepth{Market: "SOL_USDC", Levels: 10}, req)
			},
		},
		{
			name: "open orders without user",
			cmd:  Command{Market: "SOL_USDC", Op: OpGetOpenOrders},
			assertFn: func(t *testing.T, req Request, err error) {
				assertValidation(t, err, "userId")
			},
		},
		{
			name: "unknown op",
			cmd:  Command{Market: "SOL_USDC", Op: "FLIP"},
			assertFn: func(t *testing.T, req Request, err error) {
				assertValidation(t, err, "op")
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			req, err := testCase.cmd.Parse()
			testCase.assertFn(t, req, err)
		})
	}
}

func assertValidation(t *testing.T, err error, field string) {
	t.Helper()

	require.Error(t, err)
	details, ok := err.(*errors.ErrorDetails)
	require.True(t, ok)
	assert.Equal(t, string(errors.ValidationError), details.Code)
	assert.Equal(t, field, details.Field)
}
