package order

import "github.com/shopspring/decimal"

const (
	maxProductNameLen   = 200
	maxSpecificationLen = 1000
	minItemQuantity     = 1
	maxItemQuantity     = 999
)

// Item is a single ordered line. TotalPrice is always derived from
// UnitPrice and Quantity, never set independently.
type Item struct {
	ID                    string
	OrderID               string
	ProductID             string
	ProductName           string
	UnitPrice             decimal.Decimal
	Quantity              int
	ProductSpecifications string
	TotalPrice            decimal.Decimal
}

func NewItem(id, productID, productName string, unitPrice decimal.Decimal, quantity int, specifications string) (*Item, error) {
	if id == "" {
		return nil, NewValidationError("id", "item id is required")
	}
	if productID == "" {
		return nil, NewValidationError("productId", "product id is required")
	}
	if productName == "" {
		return nil, NewValidationError("productName", "product name is required")
	}
	if len([]rune(productName)) > maxProductNameLen {
		return nil, NewValidationError("productName", "product name exceeds 200 characters")
	}
	if !unitPrice.IsPositive() {
		return nil, NewValidationError("unitPrice", "unit price must be greater than zero")
	}
	if unitPrice.Exponent() < -2 {
		return nil, NewValidationError("unitPrice", "unit price allows at most 2 decimal places")
	}
	if quantity < minItemQuantity || quantity > maxItemQuantity {
		return nil, NewValidationError("quantity", "quantity must be between 1 and 999")
	}
	if len([]rune(specifications)) > maxSpecificationLen {
		return nil, NewValidationError("productSpecifications", "specifications exceed 1000 characters")
	}

	it := &Item{
		ID:                    id,
		ProductID:             productID,
		ProductName:           productName,
		UnitPrice:             unitPrice,
		Quantity:              quantity,
		ProductSpecifications: specifications,
	}
	it.recalcTotal()
	return it, nil
}

func (it *Item) changeQuantity(quantity int) error {
	if quantity < minItemQuantity || quantity > maxItemQuantity {
		return NewValidationError("quantity", "quantity must be between 1 and 999")
	}
	it.Quantity = quantity
	it.recalcTotal()
	return nil
}

func (it *Item) recalcTotal() {
	it.TotalPrice = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}
