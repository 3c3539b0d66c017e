package marketdatapublisher

import (
	"context"

	marketdatav1 "github.com/muhammadchandra19/exchange-engine/internal/domain/marketdata/v1"
	"go.uber.org/multierr"
)

// Fanout delivers the same events to every sink. One failing sink does not
// keep the others from receiving the events.
type Fanout struct {
	sinks []marketdatav1.Publisher
}

// NewFanout creates a publisher that forwards to sinks in order.
func NewFanout(sinks ...marketdatav1.Publisher) *Fanout {
	return &Fanout{sinks: sinks}
}

var _ marketdatav1.Publisher = (*Fanout)(nil)

func (f *Fanout) Publish(ctx context.Context, events []marketdatav1.Event) error {
	var errs error
	for _, sink := range f.sinks {
		errs = multierr.Append(errs, sink.Publish(ctx, events))
	}
	return errs
}
