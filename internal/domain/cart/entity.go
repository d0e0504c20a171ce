package cart

import "github.com/shopspring/decimal"

// Cart is the external shopping cart read at order creation. This core does
// not own it; it only reads the lines once and clears them afterwards.
type Cart struct {
	CustomerID string
	Items      []Item
}

type Item struct {
	ProductID     string
	ProductName   string
	UnitPrice     decimal.Decimal
	Quantity      int
	Specification string
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clear empties the cart after its contents became an order.
func (c *Cart) Clear() {
	c.Items = []Item{}
}
