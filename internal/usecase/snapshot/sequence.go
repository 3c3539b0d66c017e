package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	snapshotv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/snapshot/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	logger "github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/muhammadchandra19/exchange-engine/pkg/redis"
)

// SequenceStore keeps the sequence watermark of each market under
// keyPrefix+market. Watermarks never expire.
type SequenceStore struct {
	keyPrefix   string
	logger      *logger.Logger
	redisclient redis.Client
}

// NewSequenceStore creates a new SequenceStore with the given Redis client.
func NewSequenceStore(redisclient redis.Client, keyPrefix string, logger *logger.Logger) *SequenceStore {
	return &SequenceStore{
		keyPrefix:   keyPrefix,
		redisclient: redisclient,
		logger:      logger,
	}
}

var _ snapshotv1.SequenceStore = (*SequenceStore)(nil)

// SaveWatermark overwrites the watermark of market. Only the market's worker
// writes it, so the stored value never goes backwards.
func (s *SequenceStore) SaveWatermark(ctx context.Context, market string, watermark snapshotv1.Watermark) error {
	buf, err := json.Marshal(watermark)
	if err != nil {
		return errors.NewTracer("watermark_marshal_error").Wrap(err)
	}

	if err := s.redisclient.Set(ctx, s.keyPrefix+market, buf, 0); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "market",
			Value: market,
		}, logger.Field{
			Key:   "action",
			Value: "save watermark",
		})
		return errors.NewTracer("watermark_store_error").Wrap(err)
	}
	return nil
}

// LoadWatermark returns the stored watermark of market, or a zero one.
func (s *SequenceStore) LoadWatermark(ctx context.Context, market string) (snapshotv1.Watermark, error) {
	data, err := s.redisclient.Get(ctx, s.keyPrefix+market)
	if err != nil {
		return snapshotv1.Watermark{}, errors.NewTracer("watermark_load_error").Wrap(err)
	}
	if data == "" {
		return snapshotv1.Watermark{}, nil
	}

	var watermark snapshotv1.Watermark
	if err := json.Unmarshal([]byte(data), &watermark); err != nil {
		return snapshotv1.Watermark{}, errors.NewTracer("watermark_unmarshal_error").Wrap(
			fmt.Errorf("key %s: %w", s.keyPrefix+market, err),
		)
	}
	return watermark, nil
}
