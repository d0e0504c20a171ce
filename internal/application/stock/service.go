package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/ChunPingWang/ec-microservice-sub000/internal/domain/repository"
	domain "github.com/ChunPingWang/ec-microservice-sub000/internal/domain/stock"
	"github.com/ChunPingWang/ec-microservice-sub000/pkg/logger"
)

// maxUpdateRetries bounds how often a mutation is replayed after losing the
// optimistic-concurrency race on the stock row.
const maxUpdateRetries = 3

// Service wraps Stock aggregate operations with existence lookup, typed
// domain errors and conditional persistence: every mutation is re-applied on
// a fresh copy of the row until the version-guarded update succeeds.
type Service struct {
	stocks repository.StockRepository
	log    logger.Logger
}

type ReservationRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func NewService(stocks repository.StockRepository, log logger.Logger) *Service {
	return &Service{stocks: stocks, log: log}
}

// CreateStock registers the single stock record for a product.
func (s *Service) CreateStock(ctx context.Context, st *domain.Stock) error {
	if st == nil {
		return fmt.Errorf("stock is nil")
	}
	if err := s.stocks.Create(ctx, st); err != nil {
		return fmt.Errorf("create stock: %w", err)
	}
	return nil
}

func (s *Service) ReserveStock(ctx context.Context, productID string, quantity int) error {
	_, err := s.mutate(ctx, productID, func(st *domain.Stock) error {
		return st.Reserve(quantity)
	})
	return err
}

func (s *Service) ConfirmReservation(ctx context.Context, productID string, quantity int) error {
	_, err := s.mutate(ctx, productID, func(st *domain.Stock) error {
		return st.ConfirmReservation(quantity)
	})
	return err
}

func (s *Service) ReleaseReservation(ctx context.Context, productID string, quantity int) error {
	_, err := s.mutate(ctx, productID, func(st *domain.Stock) error {
		return st.ReleaseReservation(quantity)
	})
	return err
}

func (s *Service) RestockProduct(ctx context.Context, productID string, quantity int) error {
	_, err := s.mutate(ctx, productID, func(st *domain.Stock) error {
		return st.Add(quantity)
	})
	return err
}

func (s *Service) ReduceStock(ctx context.Context, productID string, quantity int) error {
	_, err := s.mutate(ctx, productID, func(st *domain.Stock) error {
		return st.Reduce(quantity)
	})
	return err
}

// BulkReserveStock reserves several products as one logical operation. All
// requests are validated for availability before anything mutates; if a
// reservation still fails afterwards (a concurrent caller won the row),
// reservations already committed in this batch are released again before the
// error propagates.
func (s *Service) BulkReserveStock(ctx context.Context, requests []ReservationRequest) error {
	if len(requests) == 0 {
		return nil
	}

	// Advisory pre-check: reject the whole batch before any mutation.
	for _, req := range requests {
		st, err := s.load(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if !st.HasAvailable(req.Quantity) {
			return &domain.InsufficientStockError{
				ProductID: req.ProductID,
				Requested: req.Quantity,
				Available: st.AvailableQuantity(),
			}
		}
	}

	reserved := make([]ReservationRequest, 0, len(requests))
	for _, req := range requests {
		if err := s.ReserveStock(ctx, req.ProductID, req.Quantity); err != nil {
			s.rollbackReservations(ctx, reserved)
			return err
		}
		reserved = append(reserved, req)
	}
	return nil
}

// rollbackReservations compensates the already-committed part of a failed
// batch, newest first.
func (s *Service) rollbackReservations(ctx context.Context, reserved []ReservationRequest) {
	for i := len(reserved) - 1; i >= 0; i-- {
		req := reserved[i]
		if err := s.ReleaseReservation(ctx, req.ProductID, req.Quantity); err != nil {
			s.log.Error("failed to release reservation during bulk rollback",
				logger.String("product_id", req.ProductID),
				logger.Int("quantity", req.Quantity),
				logger.Error(err))
		}
	}
}

func (s *Service) HasAvailableStock(ctx context.Context, productID string, quantity int) (bool, error) {
	st, err := s.load(ctx, productID)
	if err != nil {
		return false, err
	}
	return st.HasAvailable(quantity), nil
}

func (s *Service) GetAvailableQuantity(ctx context.Context, productID string) (int, error) {
	st, err := s.load(ctx, productID)
	if err != nil {
		return 0, err
	}
	return st.AvailableQuantity(), nil
}

func (s *Service) IsOutOfStock(ctx context.Context, productID string) (bool, error) {
	st, err := s.load(ctx, productID)
	if err != nil {
		return false, err
	}
	return st.IsOutOfStock(), nil
}

func (s *Service) IsLowStock(ctx context.Context, productID string) (bool, error) {
	st, err := s.load(ctx, productID)
	if err != nil {
		return false, err
	}
	return st.IsLowStock(), nil
}

func (s *Service) LowStockItems(ctx context.Context) ([]*domain.Stock, error) {
	return s.stocks.FindLowStockItems(ctx)
}

func (s *Service) OutOfStockItems(ctx context.Context) ([]*domain.Stock, error) {
	return s.stocks.FindOutOfStockItems(ctx)
}

func (s *Service) load(ctx context.Context, productID string) (*domain.Stock, error) {
	st, err := s.stocks.FindByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("find stock: %w", err)
	}
	if st == nil {
		return nil, fmt.Errorf("%w: product %s", domain.ErrStockNotFound, productID)
	}
	return st, nil
}

func (s *Service) mutate(ctx context.Context, productID string, op func(*domain.Stock) error) (*domain.Stock, error) {
	for attempt := 1; attempt <= maxUpdateRetries; attempt++ {
		st, err := s.load(ctx, productID)
		if err != nil {
			return nil, err
		}
		if err := op(st); err != nil {
			return nil, err
		}

		err = s.stocks.Update(ctx, st)
		if err == nil {
			return st, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, fmt.Errorf("update stock: %w", err)
		}
		s.log.Warn("stock row changed concurrently, retrying",
			logger.String("product_id", productID),
			logger.Int("attempt", attempt))
	}
	return nil, fmt.Errorf("update stock for product %s: %w", productID, repository.ErrVersionConflict)
}
