package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/muhammadchandra19/exchange-engine/internal/app/marketmaker"
	"github.com/muhammadchandra19/exchange-engine/pkg/bridge"
	"github.com/muhammadchandra19/exchange-engine/pkg/config"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/muhammadchandra19/exchange-engine/pkg/redis"
)

func main() {
	cfg := &config.MarketMakerConfig{}
	config.MustLoad(cfg)

	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ParseLevel(cfg.LogLevel)))
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	markets, err := marketmaker.ParseMarkets(cfg.Markets, cfg.Volatility, cfg.UserID)
	if err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "parse_markets"})
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rclient := redis.NewClient(log, &cfg.Redis)
	if err := rclient.Connect(ctx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "connect_redis"})
		return
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rclient.Disconnect(disconnectCtx); err != nil {
			log.Error(err, logger.Field{Key: "action", Value: "disconnect_redis"})
		}
	}()

	client := bridge.NewClient(rclient, log, bridge.Options{
		CommandQueue: cfg.Bridge.CommandQueue,
		Timeout:      cfg.Bridge.Timeout,
	})

	mm := marketmaker.New(client, markets, log, marketmaker.Options{
		Levels:   cfg.Levels,
		Interval: cfg.Interval,
	})

	log.Info("Market maker started", logger.Field{Key: "markets", Value: cfg.Markets})
	if err := mm.Run(ctx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "run_market_maker"})
	}
	log.Info("Market maker stopped")
}
