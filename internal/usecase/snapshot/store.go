package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	snapshotv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/snapshot/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	logger "github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/muhammadchandra19/exchange-engine/pkg/redis"
)

// Store keeps one snapshot per market in Redis under keyPrefix+market.
type Store struct {
	keyPrefix   string
	ttl         time.Duration
	logger      *logger.Logger
	redisclient redis.Client
}

// NewSnapshotStore creates a new Store with the given Redis client. A zero ttl
// keeps snapshots until they are overwritten.
func NewSnapshotStore(redisclient redis.Client, keyPrefix string, ttl time.Duration, logger *logger.Logger) *Store {
	return &Store{
		keyPrefix:   keyPrefix,
		ttl:         ttl,
		redisclient: redisclient,
		logger:      logger,
	}
}

var _ snapshotv1.Store = (*Store)(nil)

func (s *Store) key(market string) string {
	return s.keyPrefix + market
}

// Store stores the snapshot in Redis.
func (s *Store) Store(ctx context.Context, snapshot *snapshotv1.Snapshot) error {
	if snapshot == nil || snapshot.Market == "" {
		return errors.NewErrorDetails("snapshot must name its market", string(errors.ValidationError), "market")
	}

	s.logger.InfoContext(ctx, fmt.Sprintf("Storing snapshot for market %s", snapshot.Market), logger.Field{
		Key:   "orders",
		Value: len(snapshot.OrderBookSnapshot.Orders),
	}, logger.Field{
		Key:   "tradeSequence",
		Value: snapshot.OrderBookSnapshot.TradeSequence,
	})

	buf, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "market",
			Value: snapshot.Market,
		})
		return errors.NewTracer("snapshot_marshal_error").Wrap(err)
	}

	err = s.redisclient.Set(ctx, s.key(snapshot.Market), buf, s.ttl)
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "market",
			Value: snapshot.Market,
		}, logger.Field{
			Key:   "action",
			Value: "store snapshot",
		})

		return errors.NewTracer("snapshot_store_error").Wrap(err)
	}
	return nil
}

// Load loads the snapshot of market from Redis. It returns nil when there is none.
func (s *Store) Load(ctx context.Context, market string) (*snapshotv1.Snapshot, error) {
	s.logger.InfoContext(ctx, fmt.Sprintf("Loading snapshot for market %s", market), logger.Field{
		Key:   "action",
		Value: "load snapshot",
	})

	data, err := s.redisclient.Get(ctx, s.key(market))
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "market",
			Value: market,
		}, logger.Field{
			Key:   "action",
			Value: "load snapshot",
		})
		return nil, errors.NewTracer("snapshot_load_error").Wrap(err)
	}

	if data == "" {
		s.logger.WarnContext(ctx, fmt.Sprintf("No snapshot found for market %s", market), logger.Field{
			Key:   "action",
			Value: "load snapshot",
		})
		return nil, nil
	}

	var snapshot snapshotv1.Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "market",
			Value: market,
		}, logger.Field{
			Key:   "action",
			Value: "unmarshal snapshot",
		})
		return nil, errors.NewTracer("snapshot_unmarshal_error").Wrap(err)
	}
	if snapshot.Market != market {
		return nil, errors.NewTracer("snapshot_market_mismatch").Wrap(
			fmt.Errorf("key %s holds a snapshot of %s", s.key(market), snapshot.Market),
		)
	}

	return &snapshot, nil
}
