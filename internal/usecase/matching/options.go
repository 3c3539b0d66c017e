package matching

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Options represents configuration options for a Matcher.
type Options struct {
	// HistorySize bounds how many filled or cancelled order ids are remembered
	// to explain a cancel of an order that is no longer resting.
	HistorySize int
	// Clock stamps orders and trades.
	Clock func() time.Time
	// NewOrderID generates order ids.
	NewOrderID func() string
}

// DefaultMatcherOptions returns the default matcher options.
func DefaultMatcherOptions() *Options {
	return &Options{
		HistorySize: 10_000,
		Clock:       time.Now,
		NewOrderID:  func() string { return ulid.Make().String() },
	}
}
