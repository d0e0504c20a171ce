package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	domain "github.com/ChunPingWang/ec-microservice-sub000/internal/domain/order"
	"github.com/ChunPingWang/ec-microservice-sub000/internal/domain/repository"
	stockdomain "github.com/ChunPingWang/ec-microservice-sub000/internal/domain/stock"
	"github.com/ChunPingWang/ec-microservice-sub000/pkg/logger"
)

// Service composes cart, stock and order operations into the order
// management use cases. Reservations made on behalf of an order are tracked
// per use case and released again whenever a later step fails.
type Service struct {
	orders   repository.OrderRepository
	carts    repository.CartRepository
	products ProductStockPort
	rules    *DomainService
	events   EventPublisher
	log      logger.Logger
}

type CreateOrderRequest struct {
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	ShippingAddress string `json:"shipping_address"`
	BillingAddress  string `json:"billing_address"`
}

func NewService(
	orders repository.OrderRepository,
	carts repository.CartRepository,
	products ProductStockPort,
	rules *DomainService,
	events EventPublisher,
	log logger.Logger,
) *Service {
	return &Service{
		orders:   orders,
		carts:    carts,
		products: products,
		rules:    rules,
		events:   events,
		log:      log,
	}
}

// CreateOrderFromCart turns the customer's cart into a PENDING order:
// availability check, stock reservation per line, fee and tax computation,
// persistence, cart clearing and the order-created event. Any failure after
// the first successful reservation releases every reservation made for this
// order before the error propagates.
func (s *Service) CreateOrderFromCart(ctx context.Context, customerID string, req CreateOrderRequest) (*domain.Order, error) {
	c, err := s.carts.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("find cart: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: customer %s", domain.ErrCartNotFound, customerID)
	}
	if c.IsEmpty() {
		return nil, domain.NewValidationError("cart", "cart is empty")
	}

	for _, line := range c.Items {
		available, err := s.products.IsProductAvailable(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("check product availability: %w", err)
		}
		if !available {
			return nil, &domain.InvalidStateError{Message: fmt.Sprintf("product %s is not available", line.ProductID)}
		}
		ok, err := s.products.HasAvailableStock(ctx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("check stock availability: %w", err)
		}
		if !ok {
			return nil, &domain.InvalidStateError{Message: fmt.Sprintf("insufficient stock for product %s", line.ProductID)}
		}
	}

	o, err := domain.NewOrder(uuid.NewString(), customerID, req.CustomerName, req.CustomerEmail,
		req.ShippingAddress, req.BillingAddress)
	if err != nil {
		return nil, err
	}
	for _, line := range c.Items {
		item, err := domain.NewItem(uuid.NewString(), line.ProductID, line.ProductName,
			line.UnitPrice, line.Quantity, line.Specification)
		if err != nil {
			return nil, err
		}
		if err := o.AddItem(item); err != nil {
			return nil, err
		}
	}

	if err := o.SetShippingFee(s.rules.CalculateShippingFee(o)); err != nil {
		return nil, err
	}
	if err := o.SetTaxAmount(s.rules.CalculateTaxAmount(o)); err != nil {
		return nil, err
	}
	if err := s.rules.ValidateOrderAmount(o); err != nil {
		return nil, err
	}

	reserved := make([]*domain.Item, 0, len(o.Items))
	for _, item := range o.Items {
		if err := s.products.ReserveStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.releaseReservations(ctx, reserved)
			return nil, fmt.Errorf("reserve stock for product %s: %w", item.ProductID, err)
		}
		reserved = append(reserved, item)
	}

	if err := s.orders.Save(ctx, o); err != nil {
		s.releaseReservations(ctx, reserved)
		return nil, fmt.Errorf("save order: %w", err)
	}

	c.Clear()
	if err := s.carts.Save(ctx, c); err != nil {
		s.releaseReservations(ctx, reserved)
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	if err := s.events.PublishOrderCreated(ctx, o); err != nil {
		s.releaseReservations(ctx, reserved)
		return nil, fmt.Errorf("publish order created: %w", err)
	}

	s.log.Info("order created from cart",
		logger.String("order_id", o.ID),
		logger.String("customer_id", customerID),
		logger.Int("items", len(o.Items)))
	return o, nil
}

// releaseReservations compensates reservations of the current use case,
// newest first.
func (s *Service) releaseReservations(ctx context.Context, reserved []*domain.Item) {
	for i := len(reserved) - 1; i >= 0; i-- {
		item := reserved[i]
		if err := s.products.ReleaseStockReservation(ctx, item.ProductID, item.Quantity); err != nil {
			s.log.Error("failed to release reservation during compensation",
				logger.String("product_id", item.ProductID),
				logger.Int("quantity", item.Quantity),
				logger.Error(err))
		}
	}
}

// ConfirmOrder is customer-facing and verifies ownership first.
func (s *Service) ConfirmOrder(ctx context.Context, orderID, customerID string) (*domain.Order, error) {
	if err := s.rules.ValidateCustomerAccess(ctx, orderID, customerID); err != nil {
		return nil, err
	}
	o, err := loadOrder(ctx, s.orders, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.Confirm(); err != nil {
		return nil, err
	}
	if err := s.rules.ValidateOrderAmount(o); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	if err := s.events.PublishOrderConfirmed(ctx, o); err != nil {
		return nil, fmt.Errorf("publish order confirmed: %w", err)
	}
	return o, nil
}

// MarkOrderAsPaid converts every reservation of the order into a permanent
// deduction.
func (s *Service) MarkOrderAsPaid(ctx context.Context, orderID, paymentMethod string) (*domain.Order, error) {
	o, err := loadOrder(ctx, s.orders, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.MarkAsPaid(paymentMethod); err != nil {
		return nil, err
	}
	for _, item := range o.Items {
		if err := s.products.ConfirmStockReservation(ctx, item.ProductID, item.Quantity); err != nil {
			return nil, fmt.Errorf("confirm reservation for product %s: %w", item.ProductID, err)
		}
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	if err := s.events.PublishOrderPaid(ctx, o); err != nil {
		return nil, fmt.Errorf("publish order paid: %w", err)
	}
	return o, nil
}

func (s *Service) ShipOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	o, err := loadOrder(ctx, s.orders, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.Ship(); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	if err := s.events.PublishOrderShipped(ctx, o); err != nil {
		return nil, fmt.Errorf("publish order shipped: %w", err)
	}
	return o, nil
}

func (s *Service) DeliverOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	o, err := loadOrder(ctx, s.orders, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.Deliver(); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	if err := s.events.PublishOrderDelivered(ctx, o); err != nil {
		return nil, fmt.Errorf("publish order delivered: %w", err)
	}
	return o, nil
}

// CancelOrder is customer-facing: it verifies ownership, cancels the order
// and gives every reservation back to the available pool.
func (s *Service) CancelOrder(ctx context.Context, orderID, customerID, reason string) (*domain.Order, error) {
	if err := s.rules.ValidateCustomerAccess(ctx, orderID, customerID); err != nil {
		return nil, err
	}
	o, err := loadOrder(ctx, s.orders, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.Cancel(reason); err != nil {
		return nil, err
	}
	s.releaseOrderStock(ctx, o)
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	if err := s.events.PublishOrderCancelled(ctx, o, reason); err != nil {
		return nil, fmt.Errorf("publish order cancelled: %w", err)
	}
	return o, nil
}

func (s *Service) RefundOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	o, err := loadOrder(ctx, s.orders, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.Refund(); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	if err := s.events.PublishOrderRefunded(ctx, o); err != nil {
		return nil, fmt.Errorf("publish order refunded: %w", err)
	}
	return o, nil
}

// CancelExpiredOrders runs the payment-timeout sweep and, for every order the
// sweep actually cancelled, releases its stock and publishes the cancellation
// event. The sweep is idempotent: re-running it over already-cancelled orders
// changes nothing.
func (s *Service) CancelExpiredOrders(ctx context.Context, timeoutHours int) (int, error) {
	cancelled, err := s.rules.CancelExpiredOrders(ctx, timeoutHours)
	if err != nil {
		return len(cancelled), err
	}
	for _, o := range cancelled {
		s.releaseOrderStock(ctx, o)
		if err := s.events.PublishOrderCancelled(ctx, o, expiredCancelReason); err != nil {
			s.log.Error("failed to publish cancellation event",
				logger.String("order_id", o.ID),
				logger.Error(err))
		}
	}
	return len(cancelled), nil
}

// releaseOrderStock releases every line's reservation. A release that finds
// nothing reserved anymore is treated as already compensated, not as a
// failure of the cancellation.
func (s *Service) releaseOrderStock(ctx context.Context, o *domain.Order) {
	for _, item := range o.Items {
		err := s.products.ReleaseStockReservation(ctx, item.ProductID, item.Quantity)
		if err == nil {
			continue
		}
		var insufficient *stockdomain.InsufficientStockError
		if errors.As(err, &insufficient) || errors.Is(err, stockdomain.ErrStockNotFound) {
			s.log.Warn("reservation already released",
				logger.String("order_id", o.ID),
				logger.String("product_id", item.ProductID))
			continue
		}
		s.log.Error("failed to release reservation",
			logger.String("order_id", o.ID),
			logger.String("product_id", item.ProductID),
			logger.Error(err))
	}
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return loadOrder(ctx, s.orders, orderID)
}

func (s *Service) GetCustomerOrders(ctx context.Context, customerID string) ([]*domain.Order, error) {
	return s.orders.FindByCustomerID(ctx, customerID)
}

func (s *Service) GetCustomerOrdersByStatus(ctx context.Context, customerID string, status domain.Status) ([]*domain.Order, error) {
	return s.orders.FindByCustomerIDAndStatus(ctx, customerID, status)
}

func (s *Service) GetCustomerOrdersByDateRange(ctx context.Context, customerID string, from, to time.Time) ([]*domain.Order, error) {
	if to.Before(from) {
		return nil, domain.NewValidationError("dateRange", "end of range precedes its start")
	}
	return s.orders.FindByCustomerIDAndOrderDateBetween(ctx, customerID, from, to)
}

func (s *Service) GetLatestCustomerOrder(ctx context.Context, customerID string) (*domain.Order, error) {
	o, err := s.orders.FindLatestByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("find latest order: %w", err)
	}
	if o == nil {
		return nil, fmt.Errorf("%w: customer %s has no orders", domain.ErrOrderNotFound, customerID)
	}
	return o, nil
}

func (s *Service) CanCancelOrder(ctx context.Context, orderID string) (bool, error) {
	return s.rules.CanCancelOrder(ctx, orderID)
}
