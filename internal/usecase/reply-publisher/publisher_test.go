package replypublisher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	commandv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	redismock "github.com/muhammadchandra19/exchange-engine/pkg/redis/mock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPublisher_PublishReply(t *testing.T) {
	reply := commandv1.NewOrderCancelledReply(commandv1.OrderCancelled{
		OrderID:           "order-1",
		FilledQuantity:    decimal.Zero,
		RemainingQuantity: decimal.NewFromInt(2),
	})

	testCases := []struct {
		name          string
		correlationID string
		mockFn        func(m *redismock.MockClient)
		assertFn      func(t *testing.T, err error, logs *observer.ObservedLogs)
	}{
		{
			name:          "delivered to the waiting caller",
			correlationID: "c1",
			mockFn: func(m *redismock.MockClient) {
				m.EXPECT().
					Publish(gomock.Any(), "c1", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, message any) (int64, error) {
						var decoded commandv1.Reply
						require.NoError(t, json.Unmarshal(message.([]byte), &decoded))
						assert.Equal(t, commandv1.ReplyOrderCancelled, decoded.Type)
						assert.Equal(t, "order-1", decoded.OrderCancelled.OrderID)
						return 1, nil
					})
			},
			assertFn: func(t *testing.T, err error, logs *observer.ObservedLogs) {
				assert.NoError(t, err)
				assert.Zero(t, logs.Len())
			},
		},
		{
			name:          "caller already gone",
			correlationID: "c2",
			mockFn: func(m *redismock.MockClient) {
				m.EXPECT().Publish(gomock.Any(), "c2", gomock.Any()).Return(int64(0), nil)
			},
			assertFn: func(t *testing.T, err error, logs *observer.ObservedLogs) {
				assert.NoError(t, err)
				assert.Equal(t, 1, logs.FilterMessage("No caller waiting for reply").Len())
			},
		},
		{
			name:          "transport failure",
			correlationID: "c3",
			mockFn: func(m *redismock.MockClient) {
				m.EXPECT().
					Publish(gomock.Any(), "c3", gomock.Any()).
					Return(int64(0), errors.NewErrorDetails("Failed to publish message in Redis", string(errors.RedisPublishError), "publish"))
			},
			assertFn: func(t *testing.T, err error, logs *observer.ObservedLogs) {
				require.Error(t, err)
				assert.Equal(t, commandv1.KindTransport, commandv1.KindOf(err))
			},
		},
		{
			name:          "missing correlation id",
			correlationID: "",
			mockFn:        func(m *redismock.MockClient) {},
			assertFn: func(t *testing.T, err error, logs *observer.ObservedLogs) {
				require.Error(t, err)
				assert.Equal(t, commandv1.KindValidation, commandv1.KindOf(err))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := redismock.NewMockClient(ctrl)
			tc.mockFn(client)

			core, logs := observer.New(zap.WarnLevel)
			publisher := NewPublisher(client, logger.NewFromZap(zap.New(core)))

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			err := publisher.PublishReply(ctx, tc.correlationID, reply)
			tc.assertFn(t, err, logs.FilterLevelExact(zap.WarnLevel))
		})
	}
}
