package order

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxOrderAmount is the largest total a confirmable order may carry.
var MaxOrderAmount = decimal.NewFromInt(1_000_000)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Order is the aggregate root for a customer order. Items are mutable only
// while the order is PENDING; every mutation keeps
// FinalAmount = TotalAmount + ShippingFee + TaxAmount.
type Order struct {
	ID              string
	CustomerID      string
	CustomerName    string
	CustomerEmail   string
	ShippingAddress string
	BillingAddress  string
	Status          Status
	Items           []*Item
	TotalAmount     decimal.Decimal
	ShippingFee     decimal.Decimal
	TaxAmount       decimal.Decimal
	FinalAmount     decimal.Decimal
	OrderDate       time.Time
	ConfirmedDate   *time.Time
	PaidDate        *time.Time
	ShippedDate     *time.Time
	DeliveredDate   *time.Time
	CancelledDate   *time.Time
	PaymentMethod   string
	CancelReason    string
}

// NewOrder creates a PENDING order with zero totals and no items.
func NewOrder(id, customerID, customerName, customerEmail, shippingAddress, billingAddress string) (*Order, error) {
	if id == "" {
		return nil, NewValidationError("id", "order id is required")
	}
	if strings.TrimSpace(customerID) == "" {
		return nil, NewValidationError("customerId", "customer id is required")
	}
	if strings.TrimSpace(customerName) == "" {
		return nil, NewValidationError("customerName", "customer name is required")
	}
	if !emailPattern.MatchString(customerEmail) {
		return nil, NewValidationError("customerEmail", "customer email is malformed")
	}
	if strings.TrimSpace(shippingAddress) == "" {
		return nil, NewValidationError("shippingAddress", "shipping address is required")
	}
	if strings.TrimSpace(billingAddress) == "" {
		return nil, NewValidationError("billingAddress", "billing address is required")
	}

	return &Order{
		ID:              id,
		CustomerID:      customerID,
		CustomerName:    customerName,
		CustomerEmail:   customerEmail,
		ShippingAddress: shippingAddress,
		BillingAddress:  billingAddress,
		Status:          StatusPending,
		Items:           []*Item{},
		TotalAmount:     decimal.Zero,
		ShippingFee:     decimal.Zero,
		TaxAmount:       decimal.Zero,
		FinalAmount:     decimal.Zero,
		OrderDate:       time.Now().UTC(),
	}, nil
}

// Restore rebuilds an order from persisted state. It is total: every stored
// field comes in through here, so no mutation path exists outside the public
// API.
func Restore(
	id, customerID, customerName, customerEmail, shippingAddress, billingAddress string,
	status Status,
	items []*Item,
	totalAmount, shippingFee, taxAmount, finalAmount decimal.Decimal,
	orderDate time.Time,
	confirmedDate, paidDate, shippedDate, deliveredDate, cancelledDate *time.Time,
	paymentMethod, cancelReason string,
) *Order {
	if items == nil {
		items = []*Item{}
	}
	return &Order{
		ID:              id,
		CustomerID:      customerID,
		CustomerName:    customerName,
		CustomerEmail:   customerEmail,
		ShippingAddress: shippingAddress,
		BillingAddress:  billingAddress,
		Status:          status,
		Items:           items,
		TotalAmount:     totalAmount,
		ShippingFee:     shippingFee,
		TaxAmount:       taxAmount,
		FinalAmount:     finalAmount,
		OrderDate:       orderDate,
		ConfirmedDate:   confirmedDate,
		PaidDate:        paidDate,
		ShippedDate:     shippedDate,
		DeliveredDate:   deliveredDate,
		CancelledDate:   cancelledDate,
		PaymentMethod:   paymentMethod,
		CancelReason:    cancelReason,
	}
}

// CanModifyItems reports whether line items may still change.
func (o *Order) CanModifyItems() bool {
	return o.Status == StatusPending
}

func (o *Order) AddItem(item *Item) error {
	if item == nil {
		return NewValidationError("item", "item is required")
	}
	if !o.CanModifyItems() {
		return newStateError(o.Status, "items can only change while the order is pending")
	}
	item.OrderID = o.ID
	o.Items = append(o.Items, item)
	o.recalcTotals()
	return nil
}

func (o *Order) RemoveItem(itemID string) error {
	if !o.CanModifyItems() {
		return newStateError(o.Status, "items can only change while the order is pending")
	}
	for i, it := range o.Items {
		if it.ID == itemID {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			o.recalcTotals()
			return nil
		}
	}
	return ErrItemNotFound
}

func (o *Order) UpdateItemQuantity(itemID string, quantity int) error {
	if !o.CanModifyItems() {
		return newStateError(o.Status, "items can only change while the order is pending")
	}
	it, err := o.FindItem(itemID)
	if err != nil {
		return err
	}
	if err := it.changeQuantity(quantity); err != nil {
		return err
	}
	o.recalcTotals()
	return nil
}

func (o *Order) FindItem(itemID string) (*Item, error) {
	for _, it := range o.Items {
		if it.ID == itemID {
			return it, nil
		}
	}
	return nil, ErrItemNotFound
}

func (o *Order) ContainsProduct(productID string) bool {
	for _, it := range o.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

// Confirm moves PENDING -> CONFIRMED. An order without items cannot be
// confirmed.
func (o *Order) Confirm() error {
	if !o.Status.CanTransitionTo(StatusConfirmed) {
		return newTransitionError(o.Status, StatusConfirmed)
	}
	if len(o.Items) == 0 {
		return newStateError(o.Status, "cannot confirm an order without items")
	}
	now := time.Now().UTC()
	o.Status = StatusConfirmed
	o.ConfirmedDate = &now
	return nil
}

// MarkAsPaid moves CONFIRMED -> PAID and records the payment method.
func (o *Order) MarkAsPaid(paymentMethod string) error {
	if strings.TrimSpace(paymentMethod) == "" {
		return NewValidationError("paymentMethod", "payment method is required")
	}
	if !o.Status.CanTransitionTo(StatusPaid) {
		return newTransitionError(o.Status, StatusPaid)
	}
	now := time.Now().UTC()
	o.Status = StatusPaid
	o.PaidDate = &now
	o.PaymentMethod = paymentMethod
	return nil
}

// Ship moves PAID -> SHIPPED.
func (o *Order) Ship() error {
	if !o.Status.CanTransitionTo(StatusShipped) {
		return newTransitionError(o.Status, StatusShipped)
	}
	now := time.Now().UTC()
	o.Status = StatusShipped
	o.ShippedDate = &now
	return nil
}

// Deliver moves SHIPPED -> DELIVERED; the order is then completed.
func (o *Order) Deliver() error {
	if !o.Status.CanTransitionTo(StatusDelivered) {
		return newTransitionError(o.Status, StatusDelivered)
	}
	now := time.Now().UTC()
	o.Status = StatusDelivered
	o.DeliveredDate = &now
	return nil
}

// Cancel moves a cancellable order (PENDING or CONFIRMED) to CANCELLED.
func (o *Order) Cancel(reason string) error {
	if !o.Status.IsCancellable() || !o.Status.CanTransitionTo(StatusCancelled) {
		return newTransitionError(o.Status, StatusCancelled)
	}
	now := time.Now().UTC()
	o.Status = StatusCancelled
	o.CancelledDate = &now
	o.CancelReason = reason
	return nil
}

// Refund moves PAID or DELIVERED to REFUNDED.
func (o *Order) Refund() error {
	if !o.Status.CanTransitionTo(StatusRefunded) {
		return newTransitionError(o.Status, StatusRefunded)
	}
	o.Status = StatusRefunded
	return nil
}

func (o *Order) SetShippingFee(fee decimal.Decimal) error {
	if fee.IsNegative() {
		return NewValidationError("shippingFee", "shipping fee cannot be negative")
	}
	o.ShippingFee = fee
	o.recalcFinal()
	return nil
}

func (o *Order) SetTaxAmount(tax decimal.Decimal) error {
	if tax.IsNegative() {
		return NewValidationError("taxAmount", "tax amount cannot be negative")
	}
	o.TaxAmount = tax
	o.recalcFinal()
	return nil
}

func (o *Order) IsCompleted() bool {
	return o.Status == StatusDelivered
}

func (o *Order) recalcTotals() {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.TotalPrice)
	}
	o.TotalAmount = total
	o.recalcFinal()
}

func (o *Order) recalcFinal() {
	o.FinalAmount = o.TotalAmount.Add(o.ShippingFee).Add(o.TaxAmount)
}
