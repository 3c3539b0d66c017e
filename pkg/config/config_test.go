package config

import (
	"testing"
	"time"

	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange-engine/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, Load(cfg))

	assert.Equal(t, []string{"SOL_USDC"}, cfg.Markets)
	assert.Equal(t, "messages", cfg.Engine.CommandQueue)
	assert.Equal(t, "{messages}:processing", cfg.Engine.ProcessingQueue)
	assert.Equal(t, "sequence:", cfg.Snapshot.SequenceKeyPrefix)
	assert.Equal(t, []string{"stdout"}, cfg.App.LogOutputs)
	assert.Equal(t, "timestamp", cfg.App.LogTimeKey)
	assert.NoError(t, cfg.Engine.Validate(redis.Cluster))
	assert.Equal(t, time.Second, cfg.Engine.DequeueTimeout)
	assert.Equal(t, "db_processor", cfg.MarketData.PersistenceQueue)
	assert.Equal(t, []string{"localhost:6379"}, cfg.Redis.Addrs)
	assert.Equal(t, 2, cfg.Redis.Protocol)
	assert.False(t, cfg.Kafka.Enabled)
	assert.NoError(t, cfg.Redis.Validate())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("MARKETS", "BTC_USDT,ETH_USDT")
	t.Setenv("APP_LOG_LEVEL", "debug")
	t.Setenv("REDIS_ADDRS", "redis:6380")
	t.Setenv("SNAPSHOT_INTERVAL", "5s")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg := &Config{}
	require.NoError(t, Load(cfg))

	assert.Equal(t, []string{"BTC_USDT", "ETH_USDT"}, cfg.Markets)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, []string{"redis:6380"}, cfg.Redis.Addrs)
	assert.Equal(t, 5*time.Second, cfg.Snapshot.Interval)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_MarketMaker(t *testing.T) {
	t.Setenv("MM_MARKETS", "BTC_USDT:45000,SOL_USDT:180")
	t.Setenv("BRIDGE_TIMEOUT", "2s")

	cfg := &MarketMakerConfig{}
	require.NoError(t, Load(cfg))

	assert.Equal(t, []string{"BTC_USDT:45000", "SOL_USDT:180"}, cfg.Markets)
	assert.Equal(t, 2*time.Second, cfg.Bridge.Timeout)
	assert.Equal(t, "messages", cfg.Bridge.CommandQueue)
	assert.Equal(t, 15, cfg.Levels)
}

func TestEngineConfig_Validate(t *testing.T) {
	testCases := []struct {
		name     string
		mode     redis.Mode
		config   EngineConfig
		assertFn func(t *testing.T, err error)
	}{
		{
			name:   "cluster with hash tagged processing queue",
			mode:   redis.Cluster,
			config: EngineConfig{CommandQueue: "messages", ProcessingQueue: "{messages}:processing"},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:   "cluster with queues in different slots",
			mode:   redis.Cluster,
			config: EngineConfig{CommandQueue: "messages", ProcessingQueue: "messages:processing"},
			assertFn: func(t *testing.T, err error) {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.RedisConfigError))
				assert.Contains(t, err.Error(), "{messages}:processing")
			},
		},
		{
			name:   "standalone does not care about slots",
			mode:   redis.Standalone,
			config: EngineConfig{CommandQueue: "messages", ProcessingQueue: "messages:processing"},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.assertFn(t, testCase.config.Validate(testCase.mode))
		})
	}
}
