package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder("order-1", "cust-1", "王小明", "ming@example.com",
		"台北市信義區市府路45號", "台北市信義區市府路45號")
	require.NoError(t, err)
	return o
}

func newTestItem(t *testing.T, id, productID string, price string, qty int) *Item {
	t.Helper()
	it, err := NewItem(id, productID, "商品 "+productID, decimal.RequireFromString(price), qty, "")
	require.NoError(t, err)
	return it
}

func TestNewOrder(t *testing.T) {
	o := newTestOrder(t)

	assert.Equal(t, StatusPending, o.Status)
	assert.Empty(t, o.Items)
	assert.True(t, o.TotalAmount.IsZero())
	assert.True(t, o.FinalAmount.IsZero())
	assert.False(t, o.OrderDate.IsZero())
}

func TestNewOrder_Validation(t *testing.T) {
	cases := []struct {
		name                                  string
		customerID, customerName, email       string
		shippingAddress, billingAddress       string
	}{
		{"blank customer id", " ", "王小明", "ming@example.com", "addr", "addr"},
		{"blank customer name", "cust-1", "", "ming@example.com", "addr", "addr"},
		{"malformed email", "cust-1", "王小明", "not-an-email", "addr", "addr"},
		{"email without domain", "cust-1", "王小明", "ming@", "addr", "addr"},
		{"blank shipping address", "cust-1", "王小明", "ming@example.com", "  ", "addr"},
		{"blank billing address", "cust-1", "王小明", "ming@example.com", "addr", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewOrder("order-1", tc.customerID, tc.customerName, tc.email,
				tc.shippingAddress, tc.billingAddress)

			var validation *ValidationError
			assert.ErrorAs(t, err, &validation)
		})
	}
}

func TestOrder_AddItem_RecalculatesTotals(t *testing.T) {
	o := newTestOrder(t)

	require.NoError(t, o.AddItem(newTestItem(t, "item-1", "prod-1", "250.50", 2)))
	require.NoError(t, o.AddItem(newTestItem(t, "item-2", "prod-2", "99.99", 1)))

	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("600.99")), "total = %s", o.TotalAmount)
	assert.True(t, o.FinalAmount.Equal(o.TotalAmount.Add(o.ShippingFee).Add(o.TaxAmount)))
	assert.Equal(t, "order-1", o.Items[0].OrderID)
}

func TestOrder_RemoveItem(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AddItem(newTestItem(t, "item-1", "prod-1", "100", 1)))
	require.NoError(t, o.AddItem(newTestItem(t, "item-2", "prod-2", "200", 1)))

	require.NoError(t, o.RemoveItem("item-1"))

	assert.Len(t, o.Items, 1)
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(200)))

	assert.ErrorIs(t, o.RemoveItem("missing"), ErrItemNotFound)
}

func TestOrder_UpdateItemQuantity(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AddItem(newTestItem(t, "item-1", "prod-1", "100", 1)))

	require.NoError(t, o.UpdateItemQuantity("item-1", 3))
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(300)))

	var validation *ValidationError
	assert.ErrorAs(t, o.UpdateItemQuantity("item-1", 1000), &validation)
}

func TestOrder_ItemsImmutableAfterConfirm(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AddItem(newTestItem(t, "item-1", "prod-1", "100", 1)))
	require.NoError(t, o.Confirm())

	var invalid *InvalidStateError
	assert.ErrorAs(t, o.AddItem(newTestItem(t, "item-2", "prod-2", "50", 1)), &invalid)
	assert.ErrorAs(t, o.RemoveItem("item-1"), &invalid)
	assert.ErrorAs(t, o.UpdateItemQuantity("item-1", 2), &invalid)
}

func TestOrder_Confirm_WithoutItems(t *testing.T) {
	o := newTestOrder(t)

	var invalid *InvalidStateError
	assert.ErrorAs(t, o.Confirm(), &invalid)
	assert.Equal(t, StatusPending, o.Status)
}

func TestOrder_FullLifecycle(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AddItem(newTestItem(t, "item-1", "prod-1", "500", 2)))

	require.NoError(t, o.Confirm())
	assert.Equal(t, StatusConfirmed, o.Status)
	assert.NotNil(t, o.ConfirmedDate)

	require.NoError(t, o.MarkAsPaid("credit_card"))
	assert.Equal(t, StatusPaid, o.Status)
	assert.NotNil(t, o.PaidDate)
	assert.Equal(t, "credit_card", o.PaymentMethod)

	require.NoError(t, o.Ship())
	assert.NotNil(t, o.ShippedDate)

	require.NoError(t, o.Deliver())
	assert.NotNil(t, o.DeliveredDate)
	assert.True(t, o.IsCompleted())

	require.NoError(t, o.Refund())
	assert.Equal(t, StatusRefunded, o.Status)
}

func TestOrder_IllegalTransitions(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AddItem(newTestItem(t, "item-1", "prod-1", "500", 1)))

	// PENDING order cannot be paid, shipped, delivered or refunded.
	var invalid *InvalidStateError
	assert.ErrorAs(t, o.MarkAsPaid("credit_card"), &invalid)
	assert.ErrorAs(t, o.Ship(), &invalid)
	assert.ErrorAs(t, o.Deliver(), &invalid)
	assert.ErrorAs(t, o.Refund(), &invalid)
	assert.Equal(t, StatusPending, o.Status)
}

func TestOrder_Cancel(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AddItem(newTestItem(t, "item-1", "prod-1", "500", 1)))

	require.NoError(t, o.Cancel("changed my mind"))

	assert.Equal(t, StatusCancelled, o.Status)
	assert.NotNil(t, o.CancelledDate)
	assert.Equal(t, "changed my mind", o.CancelReason)
}

func TestOrder_CancelPaidOrder_Fails(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AddItem(newTestItem(t, "item-1", "prod-1", "500", 1)))
	require.NoError(t, o.Confirm())
	require.NoError(t, o.MarkAsPaid("credit_card"))

	var invalid *InvalidStateError
	assert.ErrorAs(t, o.Cancel("too late"), &invalid)
	assert.Equal(t, StatusPaid, o.Status)
}

func TestOrder_SetFees_KeepFinalAmountConsistent(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AddItem(newTestItem(t, "item-1", "prod-1", "500", 1)))

	require.NoError(t, o.SetShippingFee(decimal.NewFromInt(60)))
	require.NoError(t, o.SetTaxAmount(decimal.NewFromInt(28)))

	assert.True(t, o.FinalAmount.Equal(decimal.NewFromInt(588)))

	var validation *ValidationError
	assert.ErrorAs(t, o.SetShippingFee(decimal.NewFromInt(-1)), &validation)
	assert.ErrorAs(t, o.SetTaxAmount(decimal.NewFromInt(-1)), &validation)
}

func TestNewItem_Validation(t *testing.T) {
	price := decimal.NewFromInt(100)

	_, err := NewItem("item-1", "", "name", price, 1, "")
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)

	_, err = NewItem("item-1", "prod-1", "name", decimal.Zero, 1, "")
	assert.ErrorAs(t, err, &validation)

	_, err = NewItem("item-1", "prod-1", "name", decimal.RequireFromString("9.999"), 1, "")
	assert.ErrorAs(t, err, &validation)

	_, err = NewItem("item-1", "prod-1", "name", price, 0, "")
	assert.ErrorAs(t, err, &validation)

	_, err = NewItem("item-1", "prod-1", "name", price, 1000, "")
	assert.ErrorAs(t, err, &validation)
}

func TestRestore_RebuildsAggregate(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AddItem(newTestItem(t, "item-1", "prod-1", "500", 2)))
	require.NoError(t, o.Confirm())

	restored := Restore(
		o.ID, o.CustomerID, o.CustomerName, o.CustomerEmail, o.ShippingAddress, o.BillingAddress,
		o.Status, o.Items,
		o.TotalAmount, o.ShippingFee, o.TaxAmount, o.FinalAmount,
		o.OrderDate, o.ConfirmedDate, nil, nil, nil, nil,
		"", "",
	)

	assert.Equal(t, StatusConfirmed, restored.Status)
	assert.True(t, restored.TotalAmount.Equal(decimal.NewFromInt(1000)))
	// The restored aggregate obeys the same state machine.
	assert.NoError(t, restored.MarkAsPaid("bank_transfer"))
}
