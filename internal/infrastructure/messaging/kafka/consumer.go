package kafka

import (
	"context"
	"encoding/json"
	"errors"

	kafkago "github.com/segmentio/kafka-go"

	stockapp "github.com/ChunPingWang/ec-microservice-sub000/internal/application/stock"
	"github.com/ChunPingWang/ec-microservice-sub000/internal/config"
	stockdomain "github.com/ChunPingWang/ec-microservice-sub000/internal/domain/stock"
	"github.com/ChunPingWang/ec-microservice-sub000/pkg/logger"
)

// RestockConsumer applies warehouse replenishment commands from the restock
// topic to the stock service.
type RestockConsumer struct {
	reader *kafkago.Reader
	stocks *stockapp.Service
	log    logger.Logger
}

type restockMessage struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Warehouse string `json:"warehouse"`
}

func NewRestockConsumer(cfg config.KafkaConfig, stocks *stockapp.Service, log logger.Logger) *RestockConsumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.ConsumerGroup,
		Topic:    cfg.RestockTopic,
		MinBytes: 1e3,
		MaxBytes: 1e6,
	})

	return &RestockConsumer{
		reader: reader,
		stocks: stocks,
		log:    log,
	}
}

// Start blocks until the context is cancelled or the reader fails. Bad or
// unknown-product messages are logged and skipped; they must not stall the
// replenishment stream.
func (c *RestockConsumer) Start(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		var cmd restockMessage
		if err := json.Unmarshal(msg.Value, &cmd); err != nil {
			c.log.Warn("skipping malformed restock message", logger.Error(err))
			continue
		}

		if err := c.stocks.RestockProduct(ctx, cmd.ProductID, cmd.Quantity); err != nil {
			if errors.Is(err, stockdomain.ErrStockNotFound) {
				c.log.Warn("restock for unknown product",
					logger.String("product_id", cmd.ProductID))
				continue
			}
			c.log.Error("failed to apply restock",
				logger.String("product_id", cmd.ProductID),
				logger.Int("quantity", cmd.Quantity),
				logger.Error(err))
			continue
		}

		c.log.Info("stock replenished",
			logger.String("product_id", cmd.ProductID),
			logger.Int("quantity", cmd.Quantity),
			logger.String("warehouse", cmd.Warehouse))
	}
}

func (c *RestockConsumer) Close() {
	_ = c.reader.Close()
}
