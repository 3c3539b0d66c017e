package matching

import (
	"fmt"

	commandv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command/v1"
	marketdatav1 "github.com/muhammadchandra19/exchange-engine/internal/domain/marketdata/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	snapshotv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/snapshot/v1"
	tickerv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/ticker/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	reasonFilled    = "filled"
	reasonCancelled = "cancelled"
	reasonExpired   = "expired"
)

// Result is the outcome of one applied command: the reply for the caller and
// the market-data events in the order they happened.
type Result struct {
	Reply  commandv1.Reply
	Events []marketdatav1.Event
	// Watermark holds the market sequences after the command was applied.
	Watermark snapshotv1.Watermark
}

// Matcher runs price-time priority matching for one market. It owns the
// market's book, sequences and ticker, and must only be used by one goroutine.
type Matcher struct {
	market string
	book   orderbookv1.Orderbook
	ticker *tickerv1.Ticker
	logger *logger.Logger

	orderSequence uint64
	tradeSequence uint64
	eventSequence uint64

	terminal *history
	options  *Options
}

// NewMatcher creates a matcher for market with the default options.
func NewMatcher(market string, book orderbookv1.Orderbook, logger *logger.Logger) *Matcher {
	return NewMatcherWithOptions(market, book, logger, DefaultMatcherOptions())
}

// NewMatcherWithOptions creates a matcher with custom options
func NewMatcherWithOptions(market string, book orderbookv1.Orderbook, log *logger.Logger, options *Options) *Matcher {
	defaults := DefaultMatcherOptions()
	if options == nil {
		options = defaults
	}
	if options.Clock == nil {
		options.Clock = defaults.Clock
	}
	if options.NewOrderID == nil {
		options.NewOrderID = defaults.NewOrderID
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Matcher{
		market:   market,
		book:     book,
		ticker:   tickerv1.New(market),
		logger:   log.WithFields(logger.NewField("market", market)),
		terminal: newHistory(options.HistorySize),
		options:  options,
	}
}

// Market returns the market symbol the matcher serves.
func (m *Matcher) Market() string {
	return m.market
}

// Ticker returns a copy of the current ticker.
func (m *Matcher) Ticker() tickerv1.Ticker {
	return *m.ticker
}

// TradeSequence returns the sequence of the last trade.
func (m *Matcher) TradeSequence() uint64 {
	return m.tradeSequence
}

// EventSequence returns the sequence of the last market-data event.
func (m *Matcher) EventSequence() uint64 {
	return m.eventSequence
}

// Watermark returns the current event and trade sequences.
func (m *Matcher) Watermark() snapshotv1.Watermark {
	return snapshotv1.Watermark{EventSequence: m.eventSequence, TradeSequence: m.tradeSequence}
}

// Resume moves the sequences up to watermark. Sequences handed out after the
// last snapshot are skipped instead of issued again.
func (m *Matcher) Resume(watermark snapshotv1.Watermark) {
	if watermark.EventSequence <= m.eventSequence && watermark.TradeSequence <= m.tradeSequence {
		return
	}

	m.logger.Warn("Resuming sequences past snapshot",
		logger.Field{Key: "eventSequence", Value: m.eventSequence},
		logger.Field{Key: "tradeSequence", Value: m.tradeSequence},
		logger.Field{Key: "watermarkEventSequence", Value: watermark.EventSequence},
		logger.Field{Key: "watermarkTradeSequence", Value: watermark.TradeSequence},
	)
	m.eventSequence = max(m.eventSequence, watermark.EventSequence)
	m.tradeSequence = max(m.tradeSequence, watermark.TradeSequence)
}

// Apply runs one request and always produces a reply. Failed requests yield an
// ERROR reply and no events.
func (m *Matcher) Apply(req commandv1.Request) Result {
	var (
		reply  commandv1.Reply
		events []marketdatav1.Event
		err    error
	)

	switch r := req.(type) {
	case commandv1.PlaceOrder:
		var placed commandv1.OrderPlaced
		placed, events, err = m.Place(r)
		reply = commandv1.NewOrderPlacedReply(placed)
	case commandv1.CancelOrder:
		var cancelled commandv1.OrderCancelled
		cancelled, events, err = m.Cancel(r)
		reply = commandv1.NewOrderCancelledReply(cancelled)
	case commandv1.GetDepth:
		if err = m.checkMarket(r.Market); err == nil {
			reply = commandv1.NewDepthReply(m.Depth(r.Levels))
		}
	case commandv1.GetOpenOrders:
		if err = m.checkMarket(r.Market); err == nil {
			reply = commandv1.NewOpenOrdersReply(commandv1.OpenOrders{Orders: m.OpenOrders(r.UserID)})
		}
	default:
		err = errors.NewErrorDetails(fmt.Sprintf("unsupported request %T", req), string(errors.ValidationError), "op")
	}

	if err != nil {
		return Result{Reply: commandv1.NewErrorReply(err)}
	}
	return Result{Reply: reply, Events: events, Watermark: m.Watermark()}
}

// Place matches an incoming order against the opposite side and rests any
// limit remainder. Market remainders are discarded.
func (m *Matcher) Place(req commandv1.PlaceOrder) (commandv1.OrderPlaced, []marketdatav1.Event, error) {
	if err := m.validatePlace(req); err != nil {
		return commandv1.OrderPlaced{}, nil, err
	}

	now := m.options.Clock().UnixMilli()
	price := req.Price
	if req.Type == orderbookv1.OrderTypeMarket {
		price = decimal.Zero
	}

	m.orderSequence++
	order := orderbookv1.NewOrder(m.options.NewOrderID(), req.UserID, m.market, req.Side, req.Type, price, req.Quantity)
	order.Sequence = m.orderSequence
	order.Timestamp = now

	var (
		trades  []orderbookv1.Trade
		events  []marketdatav1.Event
		makers  []*orderbookv1.Order
		touched = newLevelSet()
	)

	for order.Remaining().IsPositive() {
		resting := m.book.BestOpposite(order.Side)
		if resting == nil || !order.Crosses(resting.Price) {
			break
		}

		fill := decimal.Min(order.Remaining(), resting.Remaining())
		if err := order.Fill(fill); err != nil {
			return commandv1.OrderPlaced{}, nil, m.internal(err, "fill incoming order")
		}
		if err := m.book.Fill(resting, fill); err != nil {
			return commandv1.OrderPlaced{}, nil, m.internal(err, "fill resting order")
		}

		m.tradeSequence++
		trade := orderbookv1.NewTrade(m.tradeID(m.tradeSequence), order, resting, fill, m.tradeSequence, now)
		trades = append(trades, trade)
		makers = append(makers, resting)
		touched.add(resting.Side, resting.Price)

		if resting.IsFilled() {
			m.terminal.add(resting.ID, reasonFilled)
		}

		events = append(events, m.event(marketdatav1.Event{
			Type:  marketdatav1.EventTradeAdded,
			Trade: marketdatav1.NewTradeAdded(trade),
		}))
		if m.ticker.Apply(trade.Price, trade.Quantity, trade.Sequence) {
			ticker := *m.ticker
			events = append(events, m.event(marketdatav1.Event{
				Type:   marketdatav1.EventTickerUpdated,
				Ticker: &ticker,
			}))
		}

		m.logger.Debug("Trade executed",
			logger.Field{Key: "tradeId", Value: trade.ID},
			logger.Field{Key: "price", Value: trade.Price.String()},
			logger.Field{Key: "quantity", Value: trade.Quantity.String()},
			logger.Field{Key: "buyOrderId", Value: trade.BuyOrderID},
			logger.Field{Key: "sellOrderId", Value: trade.SellOrderID},
		)
	}

	switch {
	case order.IsFilled():
		m.terminal.add(order.ID, reasonFilled)
	case order.IsMarket():
		m.terminal.add(order.ID, reasonExpired)
	default:
		if err := m.book.Insert(order); err != nil {
			return commandv1.OrderPlaced{}, nil, m.internal(err, "rest order")
		}
		touched.add(order.Side, order.Price)
	}

	events = append(events, m.event(marketdatav1.Event{
		Type:  marketdatav1.EventOrderUpdate,
		Order: marketdatav1.NewOrderUpdate(order, true),
	}))
	for _, maker := range uniqueOrders(makers) {
		events = append(events, m.event(marketdatav1.Event{
			Type:  marketdatav1.EventOrderUpdate,
			Order: marketdatav1.NewOrderUpdate(maker, false),
		}))
	}
	if depth := m.depthDelta(touched); depth != nil {
		events = append(events, m.event(marketdatav1.Event{
			Type:  marketdatav1.EventDepthUpdated,
			Depth: depth,
		}))
	}

	return commandv1.OrderPlaced{
		OrderID:           order.ID,
		FilledQuantity:    order.Filled,
		RemainingQuantity: order.Remaining(),
		Trades:            trades,
	}, events, nil
}

// Cancel removes a resting order. Cancelling an order that is absent or no
// longer resting is an OrderNotFound error.
func (m *Matcher) Cancel(req commandv1.CancelOrder) (commandv1.OrderCancelled, []marketdatav1.Event, error) {
	if err := m.checkMarket(req.Market); err != nil {
		return commandv1.OrderCancelled{}, nil, err
	}

	if _, resting := m.book.Get(req.OrderID); !resting {
		message := fmt.Sprintf("order %s not found", req.OrderID)
		if reason, ok := m.terminal.get(req.OrderID); ok {
			message = fmt.Sprintf("order %s is already %s", req.OrderID, reason)
		}
		return commandv1.OrderCancelled{}, nil, errors.WrapErrorDetails(orderbookv1.ErrOrderNotFound, message, errors.OrderNotFoundError, "orderId")
	}

	order, err := m.book.Remove(req.OrderID)
	if err != nil {
		return commandv1.OrderCancelled{}, nil, m.internal(err, "remove order")
	}
	if err := order.Cancel(); err != nil {
		return commandv1.OrderCancelled{}, nil, m.internal(err, "cancel order")
	}
	m.terminal.add(order.ID, reasonCancelled)

	touched := newLevelSet()
	touched.add(order.Side, order.Price)

	events := []marketdatav1.Event{
		m.event(marketdatav1.Event{
			Type: marketdatav1.EventOrderCancelled,
			OrderCancelled: &marketdatav1.OrderCancelled{
				OrderID:     order.ID,
				UserID:      order.UserID,
				Market:      m.market,
				Side:        order.Side,
				Price:       order.Price,
				Quantity:    order.Quantity,
				ExecutedQty: order.Filled,
			},
		}),
		m.event(marketdatav1.Event{
			Type:  marketdatav1.EventDepthUpdated,
			Depth: m.depthDelta(touched),
		}),
	}

	return commandv1.OrderCancelled{
		OrderID:           order.ID,
		FilledQuantity:    order.Filled,
		RemainingQuantity: order.Remaining(),
	}, events, nil
}

// Depth returns aggregated depth, levels <= 0 meaning every level.
func (m *Matcher) Depth(levels int) commandv1.Depth {
	depth := m.book.DepthSnapshot(levels)
	return commandv1.Depth{
		Market: m.market,
		Bids:   depth.Bids,
		Asks:   depth.Asks,
	}
}

// OpenOrders returns copies of the resting orders of userID.
func (m *Matcher) OpenOrders(userID string) []orderbookv1.Order {
	resting := m.book.OpenOrders(userID)
	orders := make([]orderbookv1.Order, 0, len(resting))
	for _, order := range resting {
		copied := *order
		copied.Limit = nil
		orders = append(orders, copied)
	}
	return orders
}

// Snapshot captures the book, counters and ticker.
func (m *Matcher) Snapshot() *snapshotv1.Snapshot {
	snapshot := m.book.CreateSnapshot()
	snapshot.Market = m.market
	snapshot.OrderBookSnapshot.OrderSequence = m.orderSequence
	snapshot.OrderBookSnapshot.TradeSequence = m.tradeSequence
	snapshot.OrderBookSnapshot.EventSequence = m.eventSequence
	ticker := *m.ticker
	snapshot.Ticker = &ticker
	snapshot.TakenAt = m.options.Clock().UnixMilli()
	return snapshot
}

// Restore replaces the matcher state with snapshot.
func (m *Matcher) Restore(snapshot *snapshotv1.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}
	if snapshot.Market != m.market {
		return fmt.Errorf("snapshot of market %s cannot restore matcher %s", snapshot.Market, m.market)
	}
	if err := m.book.RestoreOrderbook(snapshot); err != nil {
		return err
	}

	m.orderSequence = snapshot.OrderBookSnapshot.OrderSequence
	m.tradeSequence = snapshot.OrderBookSnapshot.TradeSequence
	m.eventSequence = snapshot.OrderBookSnapshot.EventSequence
	for _, order := range snapshot.OrderBookSnapshot.Orders {
		m.orderSequence = max(m.orderSequence, order.Sequence)
	}

	m.ticker = tickerv1.New(m.market)
	if snapshot.Ticker != nil {
		ticker := *snapshot.Ticker
		ticker.Symbol = m.market
		m.ticker = &ticker
	}

	m.logger.Info("Matcher restored from snapshot",
		logger.Field{Key: "orders", Value: m.book.Len()},
		logger.Field{Key: "tradeSequence", Value: m.tradeSequence},
		logger.Field{Key: "eventSequence", Value: m.eventSequence},
	)
	return nil
}

func (m *Matcher) validatePlace(req commandv1.PlaceOrder) error {
	if err := m.checkMarket(req.Market); err != nil {
		return err
	}
	if !req.Side.Valid() {
		return errors.NewErrorDetails(fmt.Sprintf("side must be buy or sell, got %q", req.Side), string(errors.ValidationError), "side")
	}
	if !req.Type.Valid() {
		return errors.NewErrorDetails(fmt.Sprintf("orderType must be limit or market, got %q", req.Type), string(errors.ValidationError), "orderType")
	}
	if !req.Quantity.IsPositive() {
		return errors.NewErrorDetails("quantity must be positive", string(errors.ValidationError), "quantity")
	}
	if req.Type == orderbookv1.OrderTypeLimit && !req.Price.IsPositive() {
		return errors.NewErrorDetails("price must be positive", string(errors.ValidationError), "price")
	}
	return nil
}

func (m *Matcher) checkMarket(market string) error {
	if market != m.market {
		return errors.NewErrorDetails(fmt.Sprintf("market %s is not served by matcher %s", market, m.market), string(errors.ValidationError), "market")
	}
	return nil
}

func (m *Matcher) event(event marketdatav1.Event) marketdatav1.Event {
	m.eventSequence++
	event.Market = m.market
	event.Sequence = m.eventSequence
	return event
}

func (m *Matcher) tradeID(sequence uint64) string {
	return fmt.Sprintf("%s-%d", m.market, sequence)
}

func (m *Matcher) internal(err error, action string) error {
	m.logger.Error(errors.NewTracer(action).Wrap(err))
	return errors.WrapErrorDetails(err, "internal matching error", errors.GeneralInternalServerError, action)
}

func (m *Matcher) depthDelta(levels *levelSet) *marketdatav1.DepthUpdated {
	if levels.empty() {
		return nil
	}

	depth := &marketdatav1.DepthUpdated{
		Market: m.market,
		Bids:   make([]orderbookv1.PriceLevel, 0),
		Asks:   make([]orderbookv1.PriceLevel, 0),
	}
	for _, level := range levels.items {
		row := orderbookv1.PriceLevel{
			Price:    level.price,
			Quantity: m.book.LevelQuantity(level.side, level.price),
		}
		if level.side == orderbookv1.SideBuy {
			depth.Bids = append(depth.Bids, row)
		} else {
			depth.Asks = append(depth.Asks, row)
		}
	}
	return depth
}

type level struct {
	side  orderbookv1.Side
	price decimal.Decimal
}

// levelSet keeps the price levels touched by a command in first-touch order.
type levelSet struct {
	seen  map[string]struct{}
	items []level
}

func newLevelSet() *levelSet {
	return &levelSet{seen: make(map[string]struct{})}
}

func (s *levelSet) add(side orderbookv1.Side, price decimal.Decimal) {
	key := string(side) + "@" + price.String()
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.items = append(s.items, level{side: side, price: price})
}

func (s *levelSet) empty() bool {
	return len(s.items) == 0
}

func uniqueOrders(orders []*orderbookv1.Order) []*orderbookv1.Order {
	seen := make(map[string]struct{}, len(orders))
	unique := make([]*orderbookv1.Order, 0, len(orders))
	for _, order := range orders {
		if _, ok := seen[order.ID]; ok {
			continue
		}
		seen[order.ID] = struct{}{}
		unique = append(unique, order)
	}
	return unique
}
