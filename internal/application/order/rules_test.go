package order

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domain "github.com/ChunPingWang/ec-microservice-sub000/internal/domain/order"
)

func restoredOrder(id string, status domain.Status, total decimal.Decimal, shippingAddress string) *domain.Order {
	fee := decimal.Zero
	tax := total.Mul(decimal.RequireFromString("0.05")).Round(2)
	return domain.Restore(id, "cust-1", "王小明", "ming@example.com",
		shippingAddress, shippingAddress,
		status, nil,
		total, fee, tax, total.Add(fee).Add(tax),
		time.Now().UTC().Add(-48*time.Hour),
		nil, nil, nil, nil, nil, "", "")
}

func TestDomainService_CalculateShippingFee(t *testing.T) {
	rules := NewDomainService(nil, nopLogger{})

	tests := []struct {
		name    string
		total   int64
		address string
		want    int64
	}{
		{"free above threshold", 1000, "高雄市苓雅區四維三路2號", 0},
		{"reduced for Taipei City", 500, "台北市信義區市府路45號", 60},
		{"standard elsewhere", 500, "高雄市苓雅區四維三路2號", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := restoredOrder("order-1", domain.StatusPending, decimal.NewFromInt(tt.total), tt.address)

			fee := rules.CalculateShippingFee(o)

			assert.True(t, fee.Equal(decimal.NewFromInt(tt.want)), "fee = %s, want %d", fee, tt.want)
		})
	}
}

func TestDomainService_CalculateTaxAmount(t *testing.T) {
	rules := NewDomainService(nil, nopLogger{})

	o := restoredOrder("order-1", domain.StatusPending, decimal.NewFromInt(1000), "台北市信義區市府路45號")
	require.NoError(t, o.SetShippingFee(decimal.NewFromInt(60)))

	tax := rules.CalculateTaxAmount(o)

	// (1000 + 60) * 0.05 = 53
	assert.True(t, tax.Equal(decimal.NewFromInt(53)), "tax = %s", tax)
}

func TestDomainService_CalculateTaxAmount_RoundsToTwoPlaces(t *testing.T) {
	rules := NewDomainService(nil, nopLogger{})

	o := restoredOrder("order-1", domain.StatusPending, decimal.RequireFromString("99.99"), "高雄市苓雅區四維三路2號")
	require.NoError(t, o.SetShippingFee(decimal.Zero))

	tax := rules.CalculateTaxAmount(o)

	// 99.99 * 0.05 = 4.9995, rounds to 5.00
	assert.True(t, tax.Equal(decimal.RequireFromString("5.00")), "tax = %s", tax)
}

func TestDomainService_ValidateOrderAmount(t *testing.T) {
	rules := NewDomainService(nil, nopLogger{})

	t.Run("valid order passes", func(t *testing.T) {
		o := restoredOrder("order-1", domain.StatusPending, decimal.NewFromInt(500), "高雄市苓雅區四維三路2號")

		assert.NoError(t, rules.ValidateOrderAmount(o))
	})

	t.Run("zero total rejected", func(t *testing.T) {
		o := restoredOrder("order-1", domain.StatusPending, decimal.Zero, "高雄市苓雅區四維三路2號")

		err := rules.ValidateOrderAmount(o)

		var invalid *domain.InvalidStateError
		assert.ErrorAs(t, err, &invalid)
	})

	t.Run("total above maximum rejected", func(t *testing.T) {
		o := restoredOrder("order-1", domain.StatusPending, decimal.NewFromInt(1_000_001), "高雄市苓雅區四維三路2號")

		err := rules.ValidateOrderAmount(o)

		var invalid *domain.InvalidStateError
		assert.ErrorAs(t, err, &invalid)
	})

	t.Run("final amount mismatch rejected", func(t *testing.T) {
		o := restoredOrder("order-1", domain.StatusPending, decimal.NewFromInt(500), "高雄市苓雅區四維三路2號")
		o.FinalAmount = decimal.NewFromInt(1)

		err := rules.ValidateOrderAmount(o)

		var invalid *domain.InvalidStateError
		assert.ErrorAs(t, err, &invalid)
	})
}

func TestDomainService_ValidateStatusTransition(t *testing.T) {
	orders := new(MockOrderRepository)
	rules := NewDomainService(orders, nopLogger{})
	ctx := context.Background()
	o := restoredOrder("order-1", domain.StatusPending, decimal.NewFromInt(500), "高雄市苓雅區四維三路2號")
	orders.On("FindByID", ctx, "order-1").Return(o, nil)

	assert.NoError(t, rules.ValidateStatusTransition(ctx, "order-1", domain.StatusConfirmed))

	err := rules.ValidateStatusTransition(ctx, "order-1", domain.StatusShipped)
	var invalid *domain.InvalidStateError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, domain.StatusPending, invalid.Current)
	assert.Equal(t, domain.StatusShipped, invalid.Target)
}

func TestDomainService_CanCancelOrder(t *testing.T) {
	orders := new(MockOrderRepository)
	rules := NewDomainService(orders, nopLogger{})
	ctx := context.Background()

	pending := restoredOrder("order-1", domain.StatusPending, decimal.NewFromInt(500), "高雄市苓雅區四維三路2號")
	shipped := restoredOrder("order-2", domain.StatusShipped, decimal.NewFromInt(500), "高雄市苓雅區四維三路2號")
	orders.On("FindByID", ctx, "order-1").Return(pending, nil)
	orders.On("FindByID", ctx, "order-2").Return(shipped, nil)

	ok, err := rules.CanCancelOrder(ctx, "order-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rules.CanCancelOrder(ctx, "order-2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDomainService_ValidateCustomerAccess(t *testing.T) {
	orders := new(MockOrderRepository)
	rules := NewDomainService(orders, nopLogger{})
	ctx := context.Background()
	o := restoredOrder("order-1", domain.StatusPending, decimal.NewFromInt(500), "高雄市苓雅區四維三路2號")
	orders.On("FindByID", ctx, "order-1").Return(o, nil)

	assert.NoError(t, rules.ValidateCustomerAccess(ctx, "order-1", "cust-1"))

	err := rules.ValidateCustomerAccess(ctx, "order-1", "cust-2")
	var invalid *domain.InvalidStateError
	assert.ErrorAs(t, err, &invalid)
}

func TestDomainService_CancelExpiredOrders(t *testing.T) {
	// Arrange: the repo returns two orders that matched the PENDING cutoff
	// query, but the second one got paid between query and sweep. Only the
	// first is cancelled and saved.
	orders := new(MockOrderRepository)
	rules := NewDomainService(orders, nopLogger{})
	ctx := context.Background()

	stale := restoredOrder("order-1", domain.StatusPending, decimal.NewFromInt(500), "高雄市苓雅區四維三路2號")
	raced := restoredOrder("order-2", domain.StatusPaid, decimal.NewFromInt(500), "高雄市苓雅區四維三路2號")
	orders.On("FindPendingOlderThan", ctx, mock.AnythingOfType("time.Time")).Return([]*domain.Order{stale, raced}, nil)
	orders.On("Save", ctx, stale).Return(nil).Once()

	// Act
	cancelled, err := rules.CancelExpiredOrders(ctx, 24)

	// Assert
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, "order-1", cancelled[0].ID)
	assert.Equal(t, domain.StatusCancelled, stale.Status)
	assert.Equal(t, "Auto-cancel: payment timeout", stale.CancelReason)
	assert.Equal(t, domain.StatusPaid, raced.Status)
	orders.AssertNotCalled(t, "Save", ctx, raced)
	orders.AssertExpectations(t)
}

func TestDomainService_CancelExpiredOrders_InvalidTimeout(t *testing.T) {
	rules := NewDomainService(new(MockOrderRepository), nopLogger{})

	_, err := rules.CancelExpiredOrders(context.Background(), 0)

	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestDomainService_GetCustomerOrderStats(t *testing.T) {
	// Arrange: four orders, two delivered (1000 and 2000 final), one
	// cancelled, one still pending.
	orders := new(MockOrderRepository)
	rules := NewDomainService(orders, nopLogger{})
	ctx := context.Background()

	addr := "高雄市苓雅區四維三路2號"
	deliveredA := restoredOrder("order-1", domain.StatusDelivered, decimal.NewFromInt(1000), addr)
	deliveredA.FinalAmount = decimal.NewFromInt(1000)
	deliveredB := restoredOrder("order-2", domain.StatusDelivered, decimal.NewFromInt(2000), addr)
	deliveredB.FinalAmount = decimal.NewFromInt(2000)
	cancelled := restoredOrder("order-3", domain.StatusCancelled, decimal.NewFromInt(500), addr)
	pending := restoredOrder("order-4", domain.StatusPending, decimal.NewFromInt(800), addr)
	orders.On("FindByCustomerID", ctx, "cust-1").
		Return([]*domain.Order{deliveredA, deliveredB, cancelled, pending}, nil)

	// Act
	stats, err := rules.GetCustomerOrderStats(ctx, "cust-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalOrders)
	assert.Equal(t, 2, stats.CompletedOrders)
	assert.Equal(t, 1, stats.CancelledOrders)
	assert.True(t, stats.TotalSpent.Equal(decimal.NewFromInt(3000)), "spent = %s", stats.TotalSpent)
	assert.InDelta(t, 0.5, stats.CompletionRate, 1e-9)
	assert.InDelta(t, 0.25, stats.CancellationRate, 1e-9)
}

func TestDomainService_GetCustomerOrderStats_NoOrders(t *testing.T) {
	orders := new(MockOrderRepository)
	rules := NewDomainService(orders, nopLogger{})
	ctx := context.Background()
	orders.On("FindByCustomerID", ctx, "cust-1").Return([]*domain.Order{}, nil)

	stats, err := rules.GetCustomerOrderStats(ctx, "cust-1")

	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalOrders)
	assert.Zero(t, stats.CompletionRate)
	assert.Zero(t, stats.CancellationRate)
}

func TestDomainService_OrderContainsProduct(t *testing.T) {
	orders := new(MockOrderRepository)
	rules := NewDomainService(orders, nopLogger{})
	ctx := context.Background()

	item, err := domain.NewItem("item-1", "prod-1", "鍵盤", decimal.NewFromInt(600), 1, "")
	require.NoError(t, err)
	o := domain.Restore("order-1", "cust-1", "王小明", "ming@example.com",
		"高雄市苓雅區四維三路2號", "高雄市苓雅區四維三路2號",
		domain.StatusPending, []*domain.Item{item},
		decimal.NewFromInt(600), decimal.NewFromInt(100), decimal.NewFromInt(35), decimal.NewFromInt(735),
		time.Now().UTC(), nil, nil, nil, nil, nil, "", "")
	orders.On("FindByID", ctx, "order-1").Return(o, nil)

	ok, err := rules.OrderContainsProduct(ctx, "order-1", "prod-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rules.OrderContainsProduct(ctx, "order-1", "prod-9")
	require.NoError(t, err)
	assert.False(t, ok)
}
