package router

import (
	"context"
	"fmt"
	"sort"
	"sync"

	commandv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command/v1"
	"github.com/muhammadchandra19/exchange-engine/internal/usecase/matching"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
)

// task is one unit of work for a market worker. Exactly one of req and fn is set.
type task struct {
	req  commandv1.Request
	done func(matching.Result)
	fn   func(m *matching.Matcher)
}

type worker struct {
	matcher *matching.Matcher
	mailbox chan task
}

// Router owns one worker goroutine per market. Every task for a market runs
// on that market's worker in submission order, so a matcher is only ever
// touched by one goroutine. Different markets run concurrently.
type Router struct {
	logger  *logger.Logger
	workers map[string]*worker

	mu      sync.RWMutex
	started bool
	stopped bool
	wg      sync.WaitGroup
}

// NewRouter creates a router over matchers. mailboxSize bounds the tasks
// waiting per market.
func NewRouter(matchers []*matching.Matcher, mailboxSize int, log *logger.Logger) *Router {
	if mailboxSize <= 0 {
		mailboxSize = 1
	}
	if log == nil {
		log = logger.NewNop()
	}

	workers := make(map[string]*worker, len(matchers))
	for _, m := range matchers {
		workers[m.Market()] = &worker{
			matcher: m,
			mailbox: make(chan task, mailboxSize),
		}
	}

	return &Router{
		logger:  log,
		workers: workers,
	}
}

// Markets returns the served markets in lexical order.
func (r *Router) Markets() []string {
	markets := make([]string, 0, len(r.workers))
	for market := range r.workers {
		markets = append(markets, market)
	}
	sort.Strings(markets)
	return markets
}

// Start launches the market workers. Tasks submitted before Start wait in the mailboxes.
func (r *Router) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.stopped {
		return
	}
	r.started = true

	for market, w := range r.workers {
		r.wg.Add(1)
		go r.run(market, w)
	}

	r.logger.Info("Router started", logger.Field{Key: "markets", Value: r.Markets()})
}

// Dispatch submits req to its market and returns without waiting for it to
// run. done is called on the market's worker with the result. An unknown
// market is a validation error and nothing is submitted.
func (r *Router) Dispatch(ctx context.Context, req commandv1.Request, done func(matching.Result)) error {
	return r.submit(ctx, req.MarketSymbol(), task{req: req, done: done}, true)
}

// TryDispatch is Dispatch without waiting for mailbox space. A full mailbox
// fails right away with a transport error, so one slow market cannot hold up
// a caller that feeds every market.
func (r *Router) TryDispatch(req commandv1.Request, done func(matching.Result)) error {
	return r.submit(context.Background(), req.MarketSymbol(), task{req: req, done: done}, false)
}

// Execute submits req and waits for its result.
func (r *Router) Execute(ctx context.Context, req commandv1.Request) (matching.Result, error) {
	results := make(chan matching.Result, 1)
	if err := r.Dispatch(ctx, req, func(result matching.Result) { results <- result }); err != nil {
		return matching.Result{}, err
	}

	select {
	case result := <-results:
		return result, nil
	case <-ctx.Done():
		return matching.Result{}, ctx.Err()
	}
}

// Do runs fn on the worker that owns market and waits for it, e.g. to take a
// consistent snapshot between two commands.
func (r *Router) Do(ctx context.Context, market string, fn func(m *matching.Matcher)) error {
	finished := make(chan struct{})
	err := r.submit(ctx, market, task{fn: func(m *matching.Matcher) {
		defer close(finished)
		fn(m)
	}}, true)
	if err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop stops accepting tasks and waits for the queued ones to finish or ctx to end.
func (r *Router) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.stopped {
		r.stopped = true
		for _, w := range r.workers {
			close(w.mailbox)
		}
	}
	started := r.started
	r.mu.Unlock()

	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("Router stopped gracefully")
		return nil
	case <-ctx.Done():
		r.logger.Warn("Router stop timeout exceeded")
		return ctx.Err()
	}
}

func (r *Router) submit(ctx context.Context, market string, t task, wait bool) error {
	w, ok := r.workers[market]
	if !ok {
		return errors.NewErrorDetails(fmt.Sprintf("market %s is not served", market), string(errors.ValidationError), "market")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.stopped {
		return errors.NewErrorDetails("router is stopped", string(errors.TransportError), "router")
	}

	if !wait {
		select {
		case w.mailbox <- t:
			return nil
		default:
			return errors.NewErrorDetails(fmt.Sprintf("market %s is busy", market), string(errors.TransportError), "router")
		}
	}

	select {
	case w.mailbox <- t:
		return nil
	case <-ctx.Done():
		return errors.WrapErrorDetails(ctx.Err(), fmt.Sprintf("market %s is busy", market), errors.TransportError, "router")
	}
}

func (r *Router) run(market string, w *worker) {
	defer r.wg.Done()

	log := r.logger.WithFields(logger.NewField("market", market))
	log.Info("Market worker started")

	for t := range w.mailbox {
		r.execute(log, w.matcher, t)
	}

	log.Info("Market worker stopped")
}

// execute runs one task. A panic fails that task only, the worker keeps
// serving the market.
func (r *Router) execute(log *logger.Logger, m *matching.Matcher, t task) {
	delivered := false
	defer func() {
		if recovered := recover(); recovered != nil {
			err := errors.NewTracer("market_worker_panic").Wrap(fmt.Errorf("%v", recovered))
			log.Error(err)
			if t.req != nil && t.done != nil && !delivered {
				t.done(matching.Result{Reply: commandv1.NewErrorReply(
					errors.WrapErrorDetails(err, "internal matching error", errors.GeneralInternalServerError, "router"),
				)})
			}
		}
	}()

	if t.fn != nil {
		t.fn(m)
		return
	}

	result := m.Apply(t.req)
	if t.done != nil {
		delivered = true
		t.done(result)
	}
}
