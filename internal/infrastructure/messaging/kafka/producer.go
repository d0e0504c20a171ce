package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/ChunPingWang/ec-microservice-sub000/internal/config"
	domain "github.com/ChunPingWang/ec-microservice-sub000/internal/domain/order"
	"github.com/ChunPingWang/ec-microservice-sub000/internal/infrastructure/encoding/avro"
	"github.com/ChunPingWang/ec-microservice-sub000/pkg/logger"
)

// EventProducer publishes one Avro-encoded record per order lifecycle event.
// Records are keyed by order id so all events of an order land on the same
// partition, in order.
type EventProducer struct {
	client  *kgo.Client
	topic   string
	encoder *avro.Encoder
	log     logger.Logger
}

func NewEventProducer(cfg config.KafkaConfig, encoder *avro.Encoder, log logger.Logger) (*EventProducer, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.OrderEventsTopic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	log.Info("kafka event producer ready",
		logger.Any("brokers", cfg.Brokers),
		logger.String("topic", cfg.OrderEventsTopic))

	return &EventProducer{
		client:  client,
		topic:   cfg.OrderEventsTopic,
		encoder: encoder,
		log:     log,
	}, nil
}

func (p *EventProducer) PublishOrderCreated(ctx context.Context, o *domain.Order) error {
	return p.publish(ctx, avro.EventOrderCreated, o, "")
}

func (p *EventProducer) PublishOrderConfirmed(ctx context.Context, o *domain.Order) error {
	return p.publish(ctx, avro.EventOrderConfirmed, o, "")
}

func (p *EventProducer) PublishOrderPaid(ctx context.Context, o *domain.Order) error {
	return p.publish(ctx, avro.EventOrderPaid, o, "")
}

func (p *EventProducer) PublishOrderShipped(ctx context.Context, o *domain.Order) error {
	return p.publish(ctx, avro.EventOrderShipped, o, "")
}

func (p *EventProducer) PublishOrderDelivered(ctx context.Context, o *domain.Order) error {
	return p.publish(ctx, avro.EventOrderDelivered, o, "")
}

func (p *EventProducer) PublishOrderCancelled(ctx context.Context, o *domain.Order, reason string) error {
	return p.publish(ctx, avro.EventOrderCancelled, o, reason)
}

func (p *EventProducer) PublishOrderRefunded(ctx context.Context, o *domain.Order) error {
	return p.publish(ctx, avro.EventOrderRefunded, o, "")
}

func (p *EventProducer) publish(ctx context.Context, eventType string, o *domain.Order, reason string) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}

	payload, err := p.encoder.Encode(avro.OrderEvent{
		EventType:   eventType,
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount.String(),
		FinalAmount: o.FinalAmount.String(),
		Reason:      reason,
		OccurredAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}

	rec := &kgo.Record{
		Topic:     p.topic,
		Key:       []byte(o.ID),
		Value:     payload,
		Timestamp: time.Now().UTC(),
	}

	results := p.client.ProduceSync(ctx, rec)
	if err := results.FirstErr(); err != nil {
		p.log.Error("failed to publish order event",
			logger.String("event_type", eventType),
			logger.String("order_id", o.ID),
			logger.Error(err))
		return fmt.Errorf("publish %s to topic %s: %w", eventType, p.topic, err)
	}

	p.log.Debug("order event published",
		logger.String("event_type", eventType),
		logger.String("order_id", o.ID))
	return nil
}

func (p *EventProducer) Close(ctx context.Context) error {
	p.log.Info("closing kafka event producer", logger.String("topic", p.topic))
	p.client.Close()
	return nil
}
