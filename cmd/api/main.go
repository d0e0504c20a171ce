package main

import (
	"context"
	"log"

	orderapp "github.com/ChunPingWang/ec-microservice-sub000/internal/application/order"
	stockapp "github.com/ChunPingWang/ec-microservice-sub000/internal/application/stock"
	"github.com/ChunPingWang/ec-microservice-sub000/internal/config"
	"github.com/ChunPingWang/ec-microservice-sub000/internal/infrastructure/adapter"
	"github.com/ChunPingWang/ec-microservice-sub000/internal/infrastructure/encoding/avro"
	"github.com/ChunPingWang/ec-microservice-sub000/internal/infrastructure/http/catalog"
	ginserver "github.com/ChunPingWang/ec-microservice-sub000/internal/infrastructure/http/gin"
	kafkainfra "github.com/ChunPingWang/ec-microservice-sub000/internal/infrastructure/messaging/kafka"
	"github.com/ChunPingWang/ec-microservice-sub000/internal/infrastructure/persistence/postgres"
	"github.com/ChunPingWang/ec-microservice-sub000/internal/interfaces/http/handler"
	"github.com/ChunPingWang/ec-microservice-sub000/internal/interfaces/http/router"
	"github.com/ChunPingWang/ec-microservice-sub000/pkg/logger"
)

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(cfg.DB)
	if err != nil {
		appLog.Fatal("postgres connection failed", logger.Error(err))
	}
	defer pool.Close()

	orderRepo := postgres.NewOrderRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	cartRepo := postgres.NewCartRepository(pool)

	encoder, err := avro.NewOrderEventEncoder()
	if err != nil {
		appLog.Fatal("init avro encoder failed", logger.Error(err))
	}

	producer, err := kafkainfra.NewEventProducer(cfg.Kafka, encoder, appLog)
	if err != nil {
		appLog.Fatal("kafka producer failed", logger.Error(err))
	}
	defer producer.Close(ctx)

	stockService := stockapp.NewService(stockRepo, appLog)
	catalogClient := catalog.NewClient(cfg.Catalog)
	productStock := adapter.NewProductStock(catalogClient, stockService)

	orderRules := orderapp.NewDomainService(orderRepo, appLog)
	orderService := orderapp.NewService(orderRepo, cartRepo, productStock, orderRules, producer, appLog)

	consumer := kafkainfra.NewRestockConsumer(cfg.Kafka, stockService, appLog)
	go func() {
		if err := consumer.Start(ctx); err != nil {
			appLog.Warn("restock consumer stopped", logger.Error(err))
		}
	}()
	defer consumer.Close()

	orderHandler := handler.NewOrderHandler(orderService, orderRules)
	stockHandler := handler.NewStockHandler(stockService)
	engine := ginserver.NewEngine()
	router.RegisterRoutes(engine, orderHandler, stockHandler)

	server := ginserver.NewServer(cfg.Server, engine)
	if err := server.Run(); err != nil {
		appLog.Fatal("server run failed", logger.Error(err))
	}
}
