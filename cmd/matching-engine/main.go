package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/muhammadchandra19/exchange-engine/internal/app/engine"
	"github.com/muhammadchandra19/exchange-engine/internal/app/router"
	marketdatav1 "github.com/muhammadchandra19/exchange-engine/internal/domain/marketdata/v1"
	snapshotv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/snapshot/v1"
	commandreader "github.com/muhammadchandra19/exchange-engine/internal/usecase/command-reader"
	marketdatapublisher "github.com/muhammadchandra19/exchange-engine/internal/usecase/market-data-publisher"
	"github.com/muhammadchandra19/exchange-engine/internal/usecase/matching"
	"github.com/muhammadchandra19/exchange-engine/internal/usecase/orderbook"
	replypublisher "github.com/muhammadchandra19/exchange-engine/internal/usecase/reply-publisher"
	"github.com/muhammadchandra19/exchange-engine/internal/usecase/snapshot"
	"github.com/muhammadchandra19/exchange-engine/pkg/config"
	"github.com/muhammadchandra19/exchange-engine/pkg/grpclib/health"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/muhammadchandra19/exchange-engine/pkg/redis"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	var err error
	cfg = &config.Config{}
	err = config.Load(cfg)
	if err != nil {
		panic(err)
	}

	zapLogger, err := logger.NewLogger(
		logger.WithLoggingLevel(logger.ParseLevel(cfg.App.LogLevel)),
		logger.WithOutputPaths(cfg.App.LogOutputs),
		logger.WithTimeKey(cfg.App.LogTimeKey),
	)
	if err != nil {
		panic(err)
	}

	log = zapLogger.WithFields(logger.NewField("app", cfg.App.Name))
}

func main() {
	defer func() { _ = log.Sync() }()

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Initialize Redis client, shared by every Redis backed component
	rclient := redis.NewClient(log, &cfg.Redis)
	if err := rclient.Connect(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "connect_redis",
		})
		return
	}

	// Market-data sinks
	sinks := []marketdatav1.Publisher{
		marketdatapublisher.NewRedisPublisher(rclient, cfg.MarketData.PersistenceQueue, log),
	}
	var kafkaPublisher *marketdatapublisher.KafkaPublisher
	if cfg.Kafka.Enabled {
		kafkaPublisher = marketdatapublisher.NewKafkaPublisher(marketdatapublisher.KafkaOptions{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}, log)
		sinks = append(sinks, kafkaPublisher)
	}
	publisher := marketdatapublisher.NewAsyncPublisher(marketdatapublisher.NewFanout(sinks...), cfg.MarketData.BufferSize, log)

	// One matcher per configured market
	matchers := make([]*matching.Matcher, 0, len(cfg.Markets))
	for _, market := range cfg.Markets {
		options := matching.DefaultMatcherOptions()
		options.HistorySize = cfg.Engine.HistorySize
		matchers = append(matchers, matching.NewMatcherWithOptions(market, orderbook.NewOrderbook(market), log, options))
	}
	commandRouter := router.NewRouter(matchers, cfg.Engine.MailboxSize, log)

	if err := cfg.Engine.Validate(cfg.Redis.Mode); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "validate_engine_config",
		})
		return
	}
	reader := commandreader.NewReader(rclient, commandreader.Options{
		Queue:           cfg.Engine.CommandQueue,
		ProcessingQueue: cfg.Engine.ProcessingQueue,
		DequeueTimeout:  cfg.Engine.DequeueTimeout,
	}, log)

	var snapshotStore snapshotv1.Store
	if cfg.Snapshot.Enabled {
		snapshotStore = snapshot.NewSnapshotStore(rclient, cfg.Snapshot.KeyPrefix, cfg.Snapshot.TTL, log)
	}

	engine := app.NewEngineWithOptions(
		commandRouter,
		reader,
		replypublisher.NewPublisher(rclient, log),
		publisher,
		snapshotStore,
		log,
		&app.Options{
			SnapshotsEnabled:   cfg.Snapshot.Enabled,
			SnapshotInterval:   cfg.Snapshot.Interval,
			SnapshotEventDelta: cfg.Snapshot.EventDelta,
		},
	).WithSequenceStore(snapshot.NewSequenceStore(rclient, cfg.Snapshot.SequenceKeyPrefix, log))

	// Start the engine
	if err := engine.Start(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "start_engine",
		})
		return
	}

	// Health server
	healthServer := health.NewServer(log)
	healthServer.InitMarkets(commandRouter.Markets())
	lis, err := net.Listen("tcp", cfg.App.HealthAddr)
	if err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "listen_health",
		})
		return
	}
	go func() {
		if err := healthServer.Serve(ctx, lis); err != nil {
			log.Error(err, logger.Field{
				Key:   "action",
				Value: "serve_health",
			})
		}
	}()

	go healthServer.Watch(ctx, 5*time.Second, func(ctx context.Context) error {
		if err := rclient.Ping(ctx); err != nil {
			if !rclient.Reconnect(ctx) {
				return err
			}
		}
		return nil
	})

	log.Info("Matching engine started successfully", logger.Field{
		Key:   "markets",
		Value: cfg.Markets,
	})

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info("Received shutdown signal", logger.Field{
		Key:   "signal",
		Value: sig.String(),
	})

	// Cancel the main context to signal shutdown
	cancel()

	// Create a timeout context for graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop the engine gracefully
	if err := engine.Stop(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "stop_engine",
		})
	}

	// Flush pending market data before the sinks go away
	if err := publisher.Close(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "close_market_data_publisher",
		})
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			log.Error(err, logger.Field{
				Key:   "action",
				Value: "close_kafka_publisher",
			})
		}
	}

	if err := rclient.Disconnect(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "disconnect_redis",
		})
	}

	log.Info("Matching engine shutdown complete")
}
