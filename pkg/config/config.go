package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange-engine/pkg/redis"
)

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load() // Load environment variables from .env file

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and an optional .env file.
func Load[T any](cfg T) error {
	// a missing .env file is fine, the environment may already be populated
	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		return err
	}

	return nil
}

// Config holds the configuration for the matching engine process.
type Config struct {
	App        AppConfig        `envPrefix:"APP_"`
	Markets    []string         `env:"MARKETS" envSeparator:"," envDefault:"SOL_USDC"`
	Redis      redis.Config     `envPrefix:"REDIS_"`
	Engine     EngineConfig     `envPrefix:"ENGINE_"`
	Snapshot   SnapshotConfig   `envPrefix:"SNAPSHOT_"`
	MarketData MarketDataConfig `envPrefix:"MARKET_DATA_"`
	Kafka      KafkaConfig      `envPrefix:"KAFKA_"`
}

// AppConfig holds process wide settings.
type AppConfig struct {
	Name       string   `env:"NAME" envDefault:"matching-engine"`
	LogLevel   string   `env:"LOG_LEVEL" envDefault:"info"`
	LogOutputs []string `env:"LOG_OUTPUTS" envSeparator:"," envDefault:"stdout"`
	LogTimeKey string   `env:"LOG_TIME_KEY" envDefault:"timestamp"`
	HealthAddr string   `env:"HEALTH_ADDR" envDefault:":50051"`
}

// EngineConfig holds the command loop settings.
type EngineConfig struct {
	CommandQueue    string        `env:"COMMAND_QUEUE" envDefault:"messages"`
	ProcessingQueue string        `env:"PROCESSING_QUEUE" envDefault:"{messages}:processing"`
	DequeueTimeout  time.Duration `env:"DEQUEUE_TIMEOUT" envDefault:"1s"`
	MailboxSize     int           `env:"MAILBOX_SIZE" envDefault:"1024"`
	HistorySize     int           `env:"HISTORY_SIZE" envDefault:"10000"`
}

// Validate checks that the command lists can be used together on the given
// Redis deployment.
func (c EngineConfig) Validate(mode redis.Mode) error {
	if mode == redis.Cluster && !redis.SameSlot(c.CommandQueue, c.ProcessingQueue) {
		return errors.NewErrorDetails(
			fmt.Sprintf("processing queue %s must share the hash slot of %s, e.g. {%s}:processing", c.ProcessingQueue, c.CommandQueue, redis.HashTag(c.CommandQueue)),
			string(errors.RedisConfigError),
			"processingQueue",
		)
	}
	return nil
}

// SnapshotConfig holds the periodic snapshot settings.
type SnapshotConfig struct {
	Enabled    bool          `env:"ENABLED" envDefault:"true"`
	Interval   time.Duration `env:"INTERVAL" envDefault:"30s"`
	EventDelta uint64        `env:"EVENT_DELTA" envDefault:"1000"`
	TTL        time.Duration `env:"TTL" envDefault:"0s"`
	KeyPrefix  string        `env:"KEY_PREFIX" envDefault:"snapshot:"`
	// SequenceKeyPrefix names the per-market sequence watermark keys.
	SequenceKeyPrefix string `env:"SEQUENCE_KEY_PREFIX" envDefault:"sequence:"`
}

// MarketDataConfig holds the market-data fan-out settings.
type MarketDataConfig struct {
	PersistenceQueue string `env:"PERSISTENCE_QUEUE" envDefault:"db_processor"`
	BufferSize       int    `env:"BUFFER_SIZE" envDefault:"4096"`
}

// KafkaConfig holds the optional Kafka market-data sink settings.
type KafkaConfig struct {
	Enabled bool     `env:"ENABLED" envDefault:"false"`
	Brokers []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"market-data"`
}

// BridgeConfig holds the caller side request/response settings.
type BridgeConfig struct {
	CommandQueue string        `env:"COMMAND_QUEUE" envDefault:"messages"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

// MarketMakerConfig holds the settings of the quoting loop.
type MarketMakerConfig struct {
	Redis      redis.Config  `envPrefix:"REDIS_"`
	Bridge     BridgeConfig  `envPrefix:"BRIDGE_"`
	LogLevel   string        `env:"APP_LOG_LEVEL" envDefault:"info"`
	UserID     string        `env:"MM_USER_ID" envDefault:"market-maker"`
	Markets    []string      `env:"MM_MARKETS" envSeparator:"," envDefault:"SOL_USDC:180"`
	Levels     int           `env:"MM_LEVELS" envDefault:"15"`
	Volatility float64       `env:"MM_VOLATILITY" envDefault:"0.05"`
	Interval   time.Duration `env:"MM_INTERVAL" envDefault:"500ms"`
}
