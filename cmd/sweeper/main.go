package main

import (
	"context"
	"log"
	"time"

	orderapp "github.com/ChunPingWang/ec-microservice-sub000/internal/application/order"
	stockapp "github.com/ChunPingWang/ec-microservice-sub000/internal/application/stock"
	"github.com/ChunPingWang/ec-microservice-sub000/internal/config"
	"github.com/ChunPingWang/ec-microservice-sub000/internal/infrastructure/adapter"
	"github.com/ChunPingWang/ec-microservice-sub000/internal/infrastructure/encoding/avro"
	"github.com/ChunPingWang/ec-microservice-sub000/internal/infrastructure/http/catalog"
	kafkainfra "github.com/ChunPingWang/ec-microservice-sub000/internal/infrastructure/messaging/kafka"
	"github.com/ChunPingWang/ec-microservice-sub000/internal/infrastructure/persistence/postgres"
	"github.com/ChunPingWang/ec-microservice-sub000/pkg/logger"
)

// One-shot batch: cancel PENDING orders whose payment timed out, release
// their reservations and publish the cancellation events. An external
// scheduler (cron) runs this binary; re-running it is a no-op for orders
// already swept.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	appLog, err := logger.NewZapLogger(cfg.App.Env)
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer appLog.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(cfg.DB)
	if err != nil {
		appLog.Fatal("postgres connection failed", logger.Error(err))
	}
	defer pool.Close()

	encoder, err := avro.NewOrderEventEncoder()
	if err != nil {
		appLog.Fatal("init avro encoder failed", logger.Error(err))
	}

	producer, err := kafkainfra.NewEventProducer(cfg.Kafka, encoder, appLog)
	if err != nil {
		appLog.Fatal("kafka producer failed", logger.Error(err))
	}
	defer producer.Close(ctx)

	orderRepo := postgres.NewOrderRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	cartRepo := postgres.NewCartRepository(pool)

	stockService := stockapp.NewService(stockRepo, appLog)
	productStock := adapter.NewProductStock(catalog.NewClient(cfg.Catalog), stockService)
	orderRules := orderapp.NewDomainService(orderRepo, appLog)
	orderService := orderapp.NewService(orderRepo, cartRepo, productStock, orderRules, producer, appLog)

	cancelled, err := orderService.CancelExpiredOrders(ctx, cfg.Sweep.TimeoutHours)
	if err != nil {
		appLog.Fatal("expired-order sweep failed",
			logger.Int("cancelled_before_failure", cancelled),
			logger.Error(err))
	}

	appLog.Info("expired-order sweep finished",
		logger.Int("timeout_hours", cfg.Sweep.TimeoutHours),
		logger.Int("cancelled", cancelled))
}
