package marketdatapublisher

import (
	"context"
	"sync"

	marketdatav1 "github.com/muhammadchandra19/exchange-engine/internal/domain/marketdata/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"go.uber.org/multierr"
)

type batch struct {
	ctx    context.Context
	events []marketdatav1.Event
}

// AsyncPublisher hands events to a background goroutine so the engine does
// not wait on delivery. Batches keep their submission order. Delivery
// failures are logged and dropped.
type AsyncPublisher struct {
	next   marketdatav1.Publisher
	logger *logger.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan batch
	done   chan struct{}
}

// NewAsyncPublisher starts the delivery goroutine. bufferSize bounds how many
// batches can wait; Publish blocks when the buffer is full.
func NewAsyncPublisher(next marketdatav1.Publisher, bufferSize int, log *logger.Logger) *AsyncPublisher {
	if bufferSize <= 0 {
		bufferSize = 1
	}

	p := &AsyncPublisher{
		next:   next,
		logger: log,
		queue:  make(chan batch, bufferSize),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

var _ marketdatav1.Publisher = (*AsyncPublisher)(nil)

// Publish enqueues events. It only fails when the publisher is closed or ctx
// ends while the buffer is full.
func (p *AsyncPublisher) Publish(ctx context.Context, events []marketdatav1.Event) error {
	if len(events) == 0 {
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return errors.NewErrorDetails("market-data publisher is closed", string(errors.TransportError), "publisher")
	}

	select {
	case p.queue <- batch{ctx: context.WithoutCancel(ctx), events: events}:
		return nil
	case <-ctx.Done():
		return errors.WrapErrorDetails(ctx.Err(), "market-data buffer is full", errors.TransportError, "publisher")
	}
}

func (p *AsyncPublisher) run() {
	defer close(p.done)

	for b := range p.queue {
		if err := p.next.Publish(b.ctx, b.events); err != nil {
			for _, err := range multierr.Errors(err) {
				p.logger.ErrorContext(b.ctx, err,
					logger.Field{Key: "action", Value: "publish_market_data"},
					logger.Field{Key: "firstSequence", Value: b.events[0].Sequence},
				)
			}
		}
	}
}

// Close stops accepting events and waits until the queued ones are delivered
// or ctx ends.
func (p *AsyncPublisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		p.logger.Warn("Market-data publisher closed before draining", logger.Field{
			Key:   "pending",
			Value: len(p.queue),
		})
		return ctx.Err()
	}
}
