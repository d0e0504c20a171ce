package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/ChunPingWang/ec-microservice-sub000/internal/domain/order"
	"github.com/ChunPingWang/ec-microservice-sub000/internal/domain/repository"
	"github.com/ChunPingWang/ec-microservice-sub000/pkg/logger"
)

// taipeiCityMarker is the literal the shipping address must contain for the
// reduced intra-city fee.
const taipeiCityMarker = "台北市"

const expiredCancelReason = "Auto-cancel: payment timeout"

var (
	freeShippingThreshold = decimal.NewFromInt(1000)
	taipeiShippingFee     = decimal.NewFromInt(60)
	standardShippingFee   = decimal.NewFromInt(100)
	taxRate               = decimal.RequireFromString("0.05")
)

// DomainService holds the cross-cutting order business rules: fee and tax
// computation, transition and amount validation, the expired-order sweep and
// per-customer statistics.
type DomainService struct {
	orders repository.OrderRepository
	log    logger.Logger
}

type CustomerOrderStats struct {
	TotalOrders      int             `json:"total_orders"`
	CompletedOrders  int             `json:"completed_orders"`
	CancelledOrders  int             `json:"cancelled_orders"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
	CompletionRate   float64         `json:"completion_rate"`
	CancellationRate float64         `json:"cancellation_rate"`
}

func NewDomainService(orders repository.OrderRepository, log logger.Logger) *DomainService {
	return &DomainService{orders: orders, log: log}
}

// CalculateShippingFee: free above the threshold, reduced for Taipei City
// addresses, standard otherwise.
func (s *DomainService) CalculateShippingFee(o *domain.Order) decimal.Decimal {
	if o.TotalAmount.GreaterThanOrEqual(freeShippingThreshold) {
		return decimal.Zero
	}
	if strings.Contains(o.ShippingAddress, taipeiCityMarker) {
		return taipeiShippingFee
	}
	return standardShippingFee
}

// CalculateTaxAmount is 5% of goods plus shipping, rounded half-up to two
// decimal places.
func (s *DomainService) CalculateTaxAmount(o *domain.Order) decimal.Decimal {
	return o.TotalAmount.Add(o.ShippingFee).Mul(taxRate).Round(2)
}

func (s *DomainService) ValidateStatusTransition(ctx context.Context, orderID string, target domain.Status) error {
	o, err := loadOrder(ctx, s.orders, orderID)
	if err != nil {
		return err
	}
	if !o.Status.CanTransitionTo(target) {
		return &domain.InvalidStateError{Current: o.Status, Target: target}
	}
	return nil
}

func (s *DomainService) CanCancelOrder(ctx context.Context, orderID string) (bool, error) {
	o, err := loadOrder(ctx, s.orders, orderID)
	if err != nil {
		return false, err
	}
	return o.Status.IsCancellable(), nil
}

// CancelExpiredOrders cancels PENDING orders whose order date is older than
// the timeout and returns the ones that actually changed. Orders that moved
// on in the meantime (typically already PAID) are skipped and not re-saved,
// so re-running the sweep is a no-op.
func (s *DomainService) CancelExpiredOrders(ctx context.Context, timeoutHours int) ([]*domain.Order, error) {
	if timeoutHours <= 0 {
		return nil, domain.NewValidationError("timeoutHours", "timeout must be greater than zero")
	}

	cutoff := time.Now().UTC().Add(-time.Duration(timeoutHours) * time.Hour)
	expired, err := s.orders.FindPendingOlderThan(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("find expired orders: %w", err)
	}

	cancelled := make([]*domain.Order, 0, len(expired))
	for _, o := range expired {
		if err := o.Cancel(expiredCancelReason); err != nil {
			// Raced with a payment or another sweep; leave the order alone.
			s.log.Info("skipping expired order no longer pending",
				logger.String("order_id", o.ID),
				logger.String("status", string(o.Status)))
			continue
		}
		if err := s.orders.Save(ctx, o); err != nil {
			return cancelled, fmt.Errorf("save cancelled order %s: %w", o.ID, err)
		}
		cancelled = append(cancelled, o)
	}
	return cancelled, nil
}

// ValidateOrderAmount enforces the confirmable-amount bounds and the
// final-amount identity.
func (s *DomainService) ValidateOrderAmount(o *domain.Order) error {
	if !o.TotalAmount.IsPositive() {
		return &domain.InvalidStateError{Current: o.Status, Message: "order total must be greater than zero"}
	}
	if o.TotalAmount.GreaterThan(domain.MaxOrderAmount) {
		return &domain.InvalidStateError{Current: o.Status, Message: "order total exceeds the allowed maximum"}
	}
	expected := o.TotalAmount.Add(o.ShippingFee).Add(o.TaxAmount)
	if !o.FinalAmount.Equal(expected) {
		return &domain.InvalidStateError{Current: o.Status, Message: "final amount does not match total + shipping + tax"}
	}
	return nil
}

func (s *DomainService) ValidateCustomerAccess(ctx context.Context, orderID, customerID string) error {
	o, err := loadOrder(ctx, s.orders, orderID)
	if err != nil {
		return err
	}
	if o.CustomerID != customerID {
		return &domain.InvalidStateError{Current: o.Status, Message: "order belongs to a different customer"}
	}
	return nil
}

func (s *DomainService) GetCustomerOrderStats(ctx context.Context, customerID string) (*CustomerOrderStats, error) {
	all, err := s.orders.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("find customer orders: %w", err)
	}

	stats := &CustomerOrderStats{TotalOrders: len(all), TotalSpent: decimal.Zero}
	for _, o := range all {
		switch o.Status {
		case domain.StatusDelivered:
			stats.CompletedOrders++
			stats.TotalSpent = stats.TotalSpent.Add(o.FinalAmount)
		case domain.StatusCancelled:
			stats.CancelledOrders++
		}
	}
	if stats.TotalOrders > 0 {
		stats.CompletionRate = float64(stats.CompletedOrders) / float64(stats.TotalOrders)
		stats.CancellationRate = float64(stats.CancelledOrders) / float64(stats.TotalOrders)
	}
	return stats, nil
}

func (s *DomainService) OrderContainsProduct(ctx context.Context, orderID, productID string) (bool, error) {
	o, err := loadOrder(ctx, s.orders, orderID)
	if err != nil {
		return false, err
	}
	return o.ContainsProduct(productID), nil
}

func loadOrder(ctx context.Context, orders repository.OrderRepository, id string) (*domain.Order, error) {
	o, err := orders.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	if o == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	return o, nil
}
