package order

import (
	"context"

	domain "github.com/ChunPingWang/ec-microservice-sub000/internal/domain/order"
)

// ProductStockPort is the external product/stock collaborator the
// orchestrator talks to. Availability comes from the product catalog;
// reservations go to the inventory owner.
type ProductStockPort interface {
	IsProductAvailable(ctx context.Context, productID string) (bool, error)
	HasAvailableStock(ctx context.Context, productID string, quantity int) (bool, error)
	ReserveStock(ctx context.Context, productID string, quantity int) error
	ConfirmStockReservation(ctx context.Context, productID string, quantity int) error
	ReleaseStockReservation(ctx context.Context, productID string, quantity int) error
}

// EventPublisher emits one domain event per completed use case.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, o *domain.Order) error
	PublishOrderConfirmed(ctx context.Context, o *domain.Order) error
	PublishOrderPaid(ctx context.Context, o *domain.Order) error
	PublishOrderShipped(ctx context.Context, o *domain.Order) error
	PublishOrderDelivered(ctx context.Context, o *domain.Order) error
	PublishOrderCancelled(ctx context.Context, o *domain.Order, reason string) error
	PublishOrderRefunded(ctx context.Context, o *domain.Order) error
}
