package engine

import "time"

// Options holds engine configuration options
type Options struct {
	// SnapshotsEnabled turns the snapshot manager and startup restore on.
	SnapshotsEnabled bool
	// SnapshotInterval is how often markets are checked for a snapshot.
	SnapshotInterval time.Duration
	// SnapshotEventDelta is how many events a market must have emitted since
	// its last snapshot before a new one is taken.
	SnapshotEventDelta uint64
	// ReadErrorBackoff is the pause after a failed read from the command list.
	ReadErrorBackoff time.Duration
}

// DefaultEngineOptions returns sensible defaults
func DefaultEngineOptions() *Options {
	return &Options{
		SnapshotsEnabled:   true,
		SnapshotInterval:   30 * time.Second,
		SnapshotEventDelta: 1000,
		ReadErrorBackoff:   100 * time.Millisecond,
	}
}
