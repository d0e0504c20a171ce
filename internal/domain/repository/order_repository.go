package repository

import (
	"context"
	"time"

	"github.com/ChunPingWang/ec-microservice-sub000/internal/domain/order"
)

type OrderRepository interface {
	Save(ctx context.Context, o *order.Order) error
	FindByID(ctx context.Context, id string) (*order.Order, error)
	FindByCustomerID(ctx context.Context, customerID string) ([]*order.Order, error)
	FindByCustomerIDAndStatus(ctx context.Context, customerID string, status order.Status) ([]*order.Order, error)
	FindByCustomerIDAndOrderDateBetween(ctx context.Context, customerID string, from, to time.Time) ([]*order.Order, error)
	FindLatestByCustomerID(ctx context.Context, customerID string) (*order.Order, error)
	FindPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*order.Order, error)
}
