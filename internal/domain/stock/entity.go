package stock

import "time"

// Stock tracks on-hand and reserved quantities for a single product.
// Invariant: 0 <= ReservedQuantity <= Quantity, so AvailableQuantity never
// goes negative. Version backs the optimistic conditional update in the
// repository; it only changes when a mutation is persisted.
type Stock struct {
	ID                string
	ProductID         string
	Quantity          int
	ReservedQuantity  int
	MinimumThreshold  int
	MaximumCapacity   int
	WarehouseLocation string
	LastRestockDate   *time.Time
	LastSaleDate      *time.Time
	Version           int64
}

// NewStock creates the single stock record for a product.
func NewStock(id, productID string, quantity, minimumThreshold, maximumCapacity int, warehouseLocation string) (*Stock, error) {
	if id == "" {
		return nil, newValidationError("id", "stock id is required")
	}
	if productID == "" {
		return nil, newValidationError("productId", "product id is required")
	}
	if quantity < 0 {
		return nil, newValidationError("quantity", "quantity cannot be negative")
	}
	if minimumThreshold < 0 {
		return nil, newValidationError("minimumThreshold", "minimum threshold cannot be negative")
	}
	if maximumCapacity < 0 {
		return nil, newValidationError("maximumCapacity", "maximum capacity cannot be negative")
	}
	return &Stock{
		ID:                id,
		ProductID:         productID,
		Quantity:          quantity,
		MinimumThreshold:  minimumThreshold,
		MaximumCapacity:   maximumCapacity,
		WarehouseLocation: warehouseLocation,
	}, nil
}

// Restore rebuilds a stock record from persisted state.
func Restore(id, productID string, quantity, reserved, minimumThreshold, maximumCapacity int,
	warehouseLocation string, lastRestock, lastSale *time.Time, version int64) *Stock {
	return &Stock{
		ID:                id,
		ProductID:         productID,
		Quantity:          quantity,
		ReservedQuantity:  reserved,
		MinimumThreshold:  minimumThreshold,
		MaximumCapacity:   maximumCapacity,
		WarehouseLocation: warehouseLocation,
		LastRestockDate:   lastRestock,
		LastSaleDate:      lastSale,
		Version:           version,
	}
}

// AvailableQuantity is what can still be sold or reserved right now.
func (s *Stock) AvailableQuantity() int {
	return s.Quantity - s.ReservedQuantity
}

func (s *Stock) HasAvailable(quantity int) bool {
	return quantity > 0 && s.AvailableQuantity() >= quantity
}

func (s *Stock) IsOutOfStock() bool {
	return s.Quantity <= 0
}

func (s *Stock) IsLowStock() bool {
	return s.Quantity <= s.MinimumThreshold
}

// Reserve places a temporary hold on quantity units.
func (s *Stock) Reserve(quantity int) error {
	if quantity <= 0 {
		return newValidationError("quantity", "quantity must be greater than zero")
	}
	if s.AvailableQuantity() < quantity {
		return &InsufficientStockError{ProductID: s.ProductID, Requested: quantity, Available: s.AvailableQuantity()}
	}
	s.ReservedQuantity += quantity
	return nil
}

// ConfirmReservation turns a hold into a completed sale: both on-hand and
// reserved drop by quantity.
func (s *Stock) ConfirmReservation(quantity int) error {
	if quantity <= 0 {
		return newValidationError("quantity", "quantity must be greater than zero")
	}
	if s.ReservedQuantity < quantity {
		return &InsufficientStockError{ProductID: s.ProductID, Requested: quantity, Available: s.ReservedQuantity}
	}
	s.Quantity -= quantity
	s.ReservedQuantity -= quantity
	now := time.Now().UTC()
	s.LastSaleDate = &now
	return nil
}

// ReleaseReservation gives a hold back to the available pool. Releasing more
// than is currently reserved is rejected rather than clamped; a silent floor
// would hide double-release bugs in compensation paths.
func (s *Stock) ReleaseReservation(quantity int) error {
	if quantity <= 0 {
		return newValidationError("quantity", "quantity must be greater than zero")
	}
	if s.ReservedQuantity < quantity {
		return &InsufficientStockError{ProductID: s.ProductID, Requested: quantity, Available: s.ReservedQuantity}
	}
	s.ReservedQuantity -= quantity
	return nil
}

// Add restocks on-hand quantity. MaximumCapacity is informational and does
// not gate restocks.
func (s *Stock) Add(quantity int) error {
	if quantity <= 0 {
		return newValidationError("quantity", "quantity must be greater than zero")
	}
	s.Quantity += quantity
	now := time.Now().UTC()
	s.LastRestockDate = &now
	return nil
}

// Reduce performs a direct, non-reserved sale.
func (s *Stock) Reduce(quantity int) error {
	if quantity <= 0 {
		return newValidationError("quantity", "quantity must be greater than zero")
	}
	if s.AvailableQuantity() < quantity {
		return &InsufficientStockError{ProductID: s.ProductID, Requested: quantity, Available: s.AvailableQuantity()}
	}
	s.Quantity -= quantity
	now := time.Now().UTC()
	s.LastSaleDate = &now
	return nil
}
