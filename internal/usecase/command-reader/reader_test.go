package commandreader

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	commandv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command/v1"
	commandreaderv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command-reader/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/muhammadchandra19/exchange-engine/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupReader(t *testing.T) (*Reader, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	config := redis.DefaultConfig()
	config.Addrs = []string{server.Addr()}

	client := redis.NewClient(logger.NewNop(), config)
	require.NoError(t, client.Connect(context.Background()))
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	reader := NewReader(client, Options{
		Queue:           "messages",
		ProcessingQueue: "messages:processing",
		DequeueTimeout:  100 * time.Millisecond,
	}, logger.NewNop())
	return reader, server
}

func push(t *testing.T, server *miniredis.Miniredis, cmd commandv1.Command) string {
	t.Helper()
	payload, err := cmd.Encode()
	require.NoError(t, err)
	_, err = server.Lpush("messages", string(payload))
	require.NoError(t, err)
	return string(payload)
}

func TestReader_ReadAndAck(t *testing.T) {
	reader, server := setupReader(t)
	ctx := context.Background()

	push(t, server, commandv1.Command{CorrelationID: "c1", Market: "SOL_USDC", Op: commandv1.OpGetDepth})
	push(t, server, commandv1.Command{CorrelationID: "c2", Market: "SOL_USDC", Op: commandv1.OpGetDepth})

	first, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c1", first.Command.CorrelationID)

	leased, err := server.List("messages:processing")
	require.NoError(t, err)
	assert.Equal(t, []string{first.Raw}, leased)

	require.NoError(t, reader.Ack(ctx, first))
	assert.False(t, server.Exists("messages:processing"))

	second, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c2", second.Command.CorrelationID)
}

func TestReader_ReadTimeout(t *testing.T) {
	reader, _ := setupReader(t)

	start := time.Now()
	_, err := reader.ReadMessage(context.Background())
	assert.ErrorIs(t, err, commandreaderv1.ErrNoMessage)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestReader_MalformedCommandCanBeAcked(t *testing.T) {
	reader, server := setupReader(t)
	ctx := context.Background()

	_, err := server.Lpush("messages", "{not json")
	require.NoError(t, err)

	msg, err := reader.ReadMessage(ctx)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ValidationError))
	assert.Equal(t, "{not json", msg.Raw)

	require.NoError(t, reader.Ack(ctx, msg))
	assert.False(t, server.Exists("messages:processing"))
}

func TestReader_Recover(t *testing.T) {
	reader, server := setupReader(t)
	ctx := context.Background()

	for _, id := range []string{"c1", "c2", "c3"} {
		push(t, server, commandv1.Command{CorrelationID: id, Market: "SOL_USDC", Op: commandv1.OpGetDepth})
	}

	// lease two commands and crash before acking
	_, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	_, err = reader.ReadMessage(ctx)
	require.NoError(t, err)

	recovered, err := reader.Recover(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, recovered)
	assert.False(t, server.Exists("messages:processing"))

	var order []string
	for range 3 {
		msg, err := reader.ReadMessage(ctx)
		require.NoError(t, err)
		order = append(order, msg.Command.CorrelationID)
	}
	assert.Equal(t, []string{"c1", "c2", "c3"}, order)

	recovered, err = reader.Recover(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, recovered)
}

func TestReader_TransportError(t *testing.T) {
	reader, server := setupReader(t)
	server.Close()

	_, err := reader.ReadMessage(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.TransportError))
	assert.Equal(t, commandv1.KindTransport, commandv1.KindOf(err))
	assert.NoError(t, reader.Close())
}

func TestNewReader_DefaultProcessingQueueSharesSlot(t *testing.T) {
	reader := NewReader(nil, Options{}, logger.NewNop())

	assert.Equal(t, "messages", reader.options.Queue)
	assert.Equal(t, "{messages}:processing", reader.options.ProcessingQueue)
	assert.True(t, redis.SameSlot(reader.options.Queue, reader.options.ProcessingQueue))
}

func TestReader_LeasesIntoHashTaggedProcessingQueue(t *testing.T) {
	reader, server := setupReader(t)
	reader.options.ProcessingQueue = "{messages}:processing"

	raw := push(t, server, commandv1.Command{CorrelationID: "c1", Market: "SOL_USDC", Op: commandv1.OpGetDepth})

	msg, err := reader.ReadMessage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, raw, msg.Raw)

	leased, err := server.List("{messages}:processing")
	require.NoError(t, err)
	assert.Equal(t, []string{raw}, leased)

	require.NoError(t, reader.Ack(context.Background(), msg))
	assert.False(t, server.Exists("{messages}:processing"))
}
