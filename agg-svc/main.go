package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"foodbox/agg-svc/internal/service"
	"foodbox/agg-svc/internal/storage"
	"foodbox/config"

	"go.uber.org/zap"
)

const (
	serviceName   = "agg-svc"
	consumerGroup = "agg-svc-consumer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := config.NewLogger(serviceName, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("aggregation service stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := config.MustInitPostgres(cfg, logger)
	defer db.Close()

	rdb := config.MustInitRedis(cfg, logger)
	defer rdb.Close()

	reader := config.NewKafkaReader(cfg, cfg.OrderTopic, consumerGroup)
	defer reader.Close()

	consumer := service.NewConsumer(reader, storage.NewPopularityStore(rdb), storage.NewCartStore(db), logger)
	return consumer.Start(ctx)
}
