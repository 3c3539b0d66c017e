package snapshotv1

import "context"

// Store defines the interface for storing and loading snapshots of a market.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=snapshotv1_mock
type Store interface {
	Store(ctx context.Context, snapshot *Snapshot) error
	// Load returns nil and no error when the market has no snapshot.
	Load(ctx context.Context, market string) (*Snapshot, error)
}

// SequenceStore keeps the sequence watermark of each market.
type SequenceStore interface {
	SaveWatermark(ctx context.Context, market string, watermark Watermark) error
	// LoadWatermark returns a zero Watermark when the market has none.
	LoadWatermark(ctx context.Context, market string) (Watermark, error)
}
