package repository

import (
	"context"

	"github.com/ChunPingWang/ec-microservice-sub000/internal/domain/cart"
)

type CartRepository interface {
	FindByCustomerID(ctx context.Context, customerID string) (*cart.Cart, error)
	Save(ctx context.Context, c *cart.Cart) error
}
