package engine

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/muhammadchandra19/exchange-engine/internal/app/router"
	commandv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command/v1"
	commandreaderv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command-reader/v1"
	marketdatav1 "github.com/muhammadchandra19/exchange-engine/internal/domain/marketdata/v1"
	replypublisherv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/reply-publisher/v1"
	snapshotv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/snapshot/v1"
	"github.com/muhammadchandra19/exchange-engine/internal/usecase/matching"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/muhammadchandra19/exchange-engine/pkg/util"
)

// Engine reads commands from the shared command list, routes them to the
// owning market and answers every command once. Events of an applied command
// are handed to the market-data publisher before its reply is sent and the
// command is acked.
type Engine struct {
	// Core components
	router        *router.Router
	reader        commandreaderv1.CommandReader
	replies       replypublisherv1.ReplyPublisher
	publisher     marketdatav1.Publisher
	snapshotStore snapshotv1.Store
	sequenceStore snapshotv1.SequenceStore
	logger        *logger.Logger

	// Snapshot bookkeeping, keyed by market
	mu                   sync.RWMutex
	lastSnapshotSequence map[string]uint64

	// Shutdown coordination
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	options *Options

	// Command statistics
	statsMutex     sync.RWMutex
	totalProcessed int64
	totalRejected  int64
}

// NewEngine creates a new instance of Engine with the provided dependencies.
func NewEngine(
	router *router.Router,
	reader commandreaderv1.CommandReader,
	replies replypublisherv1.ReplyPublisher,
	publisher marketdatav1.Publisher,
	snapshotStore snapshotv1.Store,
	logger *logger.Logger,
) *Engine {
	return NewEngineWithOptions(router, reader, replies, publisher, snapshotStore, logger, DefaultEngineOptions())
}

// NewEngineWithOptions creates a new engine with custom options
func NewEngineWithOptions(
	router *router.Router,
	reader commandreaderv1.CommandReader,
	replies replypublisherv1.ReplyPublisher,
	publisher marketdatav1.Publisher,
	snapshotStore snapshotv1.Store,
	log *logger.Logger,
	options *Options,
) *Engine {
	defaults := DefaultEngineOptions()
	if options == nil {
		options = defaults
	}
	if options.SnapshotInterval <= 0 {
		options.SnapshotInterval = defaults.SnapshotInterval
	}
	if options.ReadErrorBackoff <= 0 {
		options.ReadErrorBackoff = defaults.ReadErrorBackoff
	}
	if snapshotStore == nil {
		options.SnapshotsEnabled = false
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Engine{
		router:               router,
		reader:               reader,
		replies:              replies,
		publisher:            publisher,
		snapshotStore:        snapshotStore,
		logger:               log,
		lastSnapshotSequence: make(map[string]uint64),
		options:              options,
	}
}

// WithSequenceStore makes the engine save each market's sequence watermark
// before its events are published, and resume from it on start. Call it
// before Start.
func (e *Engine) WithSequenceStore(store snapshotv1.SequenceStore) *Engine {
	e.sequenceStore = store
	return e
}

// Start restores snapshots, requeues commands leased by a previous run and
// starts processing routines.
func (e *Engine) Start(ctx context.Context) error {
	// Create cancellable context
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.router.Start()

	if e.options.SnapshotsEnabled {
		if err := e.loadSnapshots(e.ctx); err != nil {
			e.cancel()
			return err
		}
	}

	if e.sequenceStore != nil {
		if err := e.resumeSequences(e.ctx); err != nil {
			e.cancel()
			return err
		}
	}

	if _, err := e.reader.Recover(e.ctx); err != nil {
		e.cancel()
		return err
	}

	e.wg.Add(2)
	go e.runCommandProcessor()
	go e.runSnapshotManager()

	e.logger.Info("Engine started", logger.Field{
		Key:   "markets",
		Value: e.router.Markets(),
	})

	return nil
}

// Stop gracefully shuts down the engine. Commands already routed are drained
// and a final snapshot is taken.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}

	// Wait for goroutines to finish with timeout
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		e.logger.Warn("Engine stop timeout exceeded")
		return ctx.Err()
	}

	// Queued commands run before the snapshot tasks, so the final snapshot
	// covers everything that was routed.
	if e.options.SnapshotsEnabled {
		e.snapshotMarkets(ctx, true)
	}

	if err := e.router.Stop(ctx); err != nil {
		return err
	}

	if err := e.reader.Close(); err != nil {
		e.logger.Error(err, logger.Field{Key: "action", Value: "close_command_reader"})
	}

	e.logger.Info("Engine stopped gracefully")
	return nil
}

// runCommandProcessor leases commands one at a time and hands them to the router.
func (e *Engine) runCommandProcessor() {
	defer e.wg.Done()

	e.logger.Info("Starting command processor")

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Command processor shutting down")
			return
		default:
		}

		msg, err := e.reader.ReadMessage(e.ctx)
		switch {
		case err == nil:
			e.processMessage(msg)
		case stderrors.Is(err, commandreaderv1.ErrNoMessage):
		case e.ctx.Err() != nil:
		case msg.Raw != "":
			// Undecodable payload. It has no reply channel we can trust, so drop it.
			e.logger.ErrorContext(e.ctx, err, logger.Field{Key: "action", Value: "decode_command"})
			e.incRejected()
			e.ack(e.ctx, msg)
		default:
			e.logger.ErrorContext(e.ctx, err, logger.Field{Key: "action", Value: "read_command"})
			select {
			case <-e.ctx.Done():
			case <-time.After(e.options.ReadErrorBackoff):
			}
		}
	}
}

// processMessage validates a leased command and routes it. Rejected commands,
// including ones for a market whose mailbox is full, are answered and acked
// right away.
func (e *Engine) processMessage(msg commandreaderv1.Message) {
	cmd := msg.Command
	ctx := util.WithUserID(
		util.WithMarket(util.WithRequestID(context.WithoutCancel(e.ctx), cmd.CorrelationID), cmd.Market),
		cmd.UserID,
	)

	if cmd.CorrelationID == "" {
		e.logger.WarnContext(ctx, "Dropping command without correlation id", logger.Field{Key: "op", Value: cmd.Op})
		e.incRejected()
		e.ack(ctx, msg)
		return
	}

	req, err := cmd.Parse()
	if err != nil {
		e.reject(ctx, msg, err)
		return
	}

	err = e.router.TryDispatch(req, func(result matching.Result) {
		e.complete(ctx, msg, result)
	})
	if err != nil {
		e.reject(ctx, msg, err)
	}
}

// complete runs on the market worker once a command has been applied.
func (e *Engine) complete(ctx context.Context, msg commandreaderv1.Message, result matching.Result) {
	if len(result.Events) > 0 {
		if e.sequenceStore != nil {
			if err := e.sequenceStore.SaveWatermark(ctx, result.Events[0].Market, result.Watermark); err != nil {
				e.logger.ErrorContext(ctx, err, logger.Field{Key: "action", Value: "save_watermark"})
			}
		}
		if err := e.publisher.Publish(ctx, result.Events); err != nil {
			e.logger.ErrorContext(ctx, err, logger.Field{Key: "action", Value: "publish_events"})
		}
	}

	e.reply(ctx, msg.Command.CorrelationID, result.Reply)
	e.ack(ctx, msg)

	if result.Reply.Type == commandv1.ReplyError {
		e.incRejected()
		return
	}
	e.incProcessed()
}

func (e *Engine) reject(ctx context.Context, msg commandreaderv1.Message, err error) {
	e.logger.WarnContext(ctx, "Command rejected",
		logger.Field{Key: "op", Value: msg.Command.Op},
		logger.Field{Key: "reason", Value: err.Error()},
	)
	e.reply(ctx, msg.Command.CorrelationID, commandv1.NewErrorReply(err))
	e.ack(ctx, msg)
	e.incRejected()
}

func (e *Engine) reply(ctx context.Context, correlationID string, reply commandv1.Reply) {
	if err := e.replies.PublishReply(ctx, correlationID, reply); err != nil {
		e.logger.ErrorContext(ctx, err, logger.Field{Key: "action", Value: "publish_reply"})
	}
}

func (e *Engine) ack(ctx context.Context, msg commandreaderv1.Message) {
	if err := e.reader.Ack(ctx, msg); err != nil {
		e.logger.ErrorContext(ctx, err, logger.Field{Key: "action", Value: "ack_command"})
	}
}

// runSnapshotManager handles periodic snapshots
func (e *Engine) runSnapshotManager() {
	defer e.wg.Done()

	if !e.options.SnapshotsEnabled {
		return
	}

	ticker := time.NewTicker(e.options.SnapshotInterval)
	defer ticker.Stop()

	e.logger.Info("Starting snapshot manager")

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Snapshot manager shutting down")
			return
		case <-ticker.C:
			e.snapshotMarkets(e.ctx, false)
		}
	}
}

// snapshotMarkets stores a snapshot of every market that moved at least
// SnapshotEventDelta events since its last one. With force set any market
// that moved at all is stored.
func (e *Engine) snapshotMarkets(ctx context.Context, force bool) {
	for _, market := range e.router.Markets() {
		var snapshot *snapshotv1.Snapshot
		last := e.getLastSnapshotSequence(market)

		err := e.router.Do(ctx, market, func(m *matching.Matcher) {
			if !e.shouldCreateSnapshot(m.EventSequence(), last, force) {
				return
			}
			snapshot = m.Snapshot()
		})
		if err != nil {
			e.logger.ErrorContext(ctx, err,
				logger.Field{Key: "action", Value: "take_snapshot"},
				logger.Field{Key: "market", Value: market},
			)
			continue
		}
		if snapshot == nil {
			continue
		}

		e.storeSnapshot(ctx, snapshot)
	}
}

// shouldCreateSnapshot checks if a snapshot should be created
func (e *Engine) shouldCreateSnapshot(current, last uint64, force bool) bool {
	if current <= last {
		return false
	}
	if force {
		return true
	}
	return current-last >= e.options.SnapshotEventDelta
}

func (e *Engine) storeSnapshot(ctx context.Context, snapshot *snapshotv1.Snapshot) {
	sequence := snapshot.OrderBookSnapshot.EventSequence

	if err := e.snapshotStore.Store(ctx, snapshot); err != nil {
		e.logger.ErrorContext(ctx, err,
			logger.Field{Key: "action", Value: "store_snapshot"},
			logger.Field{Key: "market", Value: snapshot.Market},
		)
		return
	}

	e.setLastSnapshotSequence(snapshot.Market, sequence)
	e.logger.Info("Snapshot stored successfully",
		logger.Field{Key: "market", Value: snapshot.Market},
		logger.Field{Key: "eventSequence", Value: sequence},
		logger.Field{Key: "orders", Value: len(snapshot.OrderBookSnapshot.Orders)},
	)
}

// loadSnapshots restores every market that has a stored snapshot.
func (e *Engine) loadSnapshots(ctx context.Context) error {
	for _, market := range e.router.Markets() {
		snapshot, err := e.snapshotStore.Load(ctx, market)
		if err != nil {
			return errors.NewTracer("load_snapshot").Wrap(err)
		}
		if snapshot == nil {
			continue
		}

		var restoreErr error
		if err := e.router.Do(ctx, market, func(m *matching.Matcher) {
			restoreErr = m.Restore(snapshot)
		}); err != nil {
			return errors.NewTracer("restore_snapshot").Wrap(err)
		}
		if restoreErr != nil {
			return errors.NewTracer("restore_snapshot").Wrap(restoreErr)
		}

		e.setLastSnapshotSequence(market, snapshot.OrderBookSnapshot.EventSequence)
		e.logger.Info("Market restored from snapshot",
			logger.Field{Key: "market", Value: market},
			logger.Field{Key: "eventSequence", Value: snapshot.OrderBookSnapshot.EventSequence},
			logger.Field{Key: "orders", Value: len(snapshot.OrderBookSnapshot.Orders)},
		)
	}
	return nil
}

// resumeSequences moves every market past the sequences it handed out before
// the restart, which may be ahead of the restored snapshot.
func (e *Engine) resumeSequences(ctx context.Context) error {
	for _, market := range e.router.Markets() {
		watermark, err := e.sequenceStore.LoadWatermark(ctx, market)
		if err != nil {
			return errors.NewTracer("load_watermark").Wrap(err)
		}

		if err := e.router.Do(ctx, market, func(m *matching.Matcher) {
			m.Resume(watermark)
		}); err != nil {
			return errors.NewTracer("resume_sequences").Wrap(err)
		}
	}
	return nil
}

// Thread-safe getters and setters
func (e *Engine) getLastSnapshotSequence(market string) uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastSnapshotSequence[market]
}

func (e *Engine) setLastSnapshotSequence(market string, sequence uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSnapshotSequence[market] = sequence
}

func (e *Engine) incProcessed() {
	e.statsMutex.Lock()
	defer e.statsMutex.Unlock()
	e.totalProcessed++
}

func (e *Engine) incRejected() {
	e.statsMutex.Lock()
	defer e.statsMutex.Unlock()
	e.totalRejected++
}

// GetLastSnapshotSequence returns the event sequence of the last stored snapshot of market
func (e *Engine) GetLastSnapshotSequence(market string) uint64 {
	return e.getLastSnapshotSequence(market)
}

// GetTotalProcessed returns the number of commands applied successfully
func (e *Engine) GetTotalProcessed() int64 {
	e.statsMutex.RLock()
	defer e.statsMutex.RUnlock()
	return e.totalProcessed
}

// GetTotalRejected returns the number of commands answered with an error or dropped
func (e *Engine) GetTotalRejected() int64 {
	e.statsMutex.RLock()
	defer e.statsMutex.RUnlock()
	return e.totalRejected
}
