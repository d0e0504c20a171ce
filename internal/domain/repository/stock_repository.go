package repository

import (
	"context"
	"errors"

	"github.com/ChunPingWang/ec-microservice-sub000/internal/domain/stock"
)

// ErrVersionConflict signals that a conditional stock update lost the race:
// the row's version moved between read and write. Callers reload and retry.
var ErrVersionConflict = errors.New("stock was modified concurrently")

type StockRepository interface {
	Create(ctx context.Context, s *stock.Stock) error
	FindByProductID(ctx context.Context, productID string) (*stock.Stock, error)
	// Update persists the record only if the stored version still matches
	// s.Version; on success the stored version is bumped. Returns
	// ErrVersionConflict otherwise.
	Update(ctx context.Context, s *stock.Stock) error
	FindLowStockItems(ctx context.Context) ([]*stock.Stock, error)
	FindOutOfStockItems(ctx context.Context) ([]*stock.Stock, error)
}
