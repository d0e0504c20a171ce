package adapter

import (
	"context"

	stockapp "github.com/ChunPingWang/ec-microservice-sub000/internal/application/stock"
	"github.com/ChunPingWang/ec-microservice-sub000/internal/infrastructure/http/catalog"
)

// ProductStock satisfies the orchestrator's ProductStockPort by composing the
// external catalog (product availability) with the locally-owned stock
// service (reservations and deductions).
type ProductStock struct {
	catalog *catalog.Client
	stocks  *stockapp.Service
}

func NewProductStock(catalogClient *catalog.Client, stocks *stockapp.Service) *ProductStock {
	return &ProductStock{catalog: catalogClient, stocks: stocks}
}

func (a *ProductStock) IsProductAvailable(ctx context.Context, productID string) (bool, error) {
	return a.catalog.IsProductAvailable(ctx, productID)
}

func (a *ProductStock) HasAvailableStock(ctx context.Context, productID string, quantity int) (bool, error) {
	return a.stocks.HasAvailableStock(ctx, productID, quantity)
}

func (a *ProductStock) ReserveStock(ctx context.Context, productID string, quantity int) error {
	return a.stocks.ReserveStock(ctx, productID, quantity)
}

func (a *ProductStock) ConfirmStockReservation(ctx context.Context, productID string, quantity int) error {
	return a.stocks.ConfirmReservation(ctx, productID, quantity)
}

func (a *ProductStock) ReleaseStockReservation(ctx context.Context, productID string, quantity int) error {
	return a.stocks.ReleaseReservation(ctx, productID, quantity)
}
