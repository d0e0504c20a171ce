package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ChunPingWang/ec-microservice-sub000/internal/interfaces/http/handler"
)

func RegisterRoutes(r *gin.Engine, orderHandler *handler.OrderHandler, stockHandler *handler.StockHandler) {
	api := r.Group("/api")
	{
		api.POST("/customers/:customerId/orders", orderHandler.CreateOrder)
		api.GET("/customers/:customerId/orders", orderHandler.ListCustomerOrders)
		api.GET("/customers/:customerId/orders/latest", orderHandler.GetLatestCustomerOrder)
		api.GET("/customers/:customerId/orders/stats", orderHandler.GetCustomerOrderStats)

		api.GET("/orders/:id", orderHandler.GetOrder)
		api.GET("/orders/:id/can-cancel", orderHandler.CanCancelOrder)
		api.POST("/orders/:id/confirm", orderHandler.ConfirmOrder)
		api.POST("/orders/:id/pay", orderHandler.MarkOrderAsPaid)
		api.POST("/orders/:id/ship", orderHandler.ShipOrder)
		api.POST("/orders/:id/deliver", orderHandler.DeliverOrder)
		api.POST("/orders/:id/cancel", orderHandler.CancelOrder)
		api.POST("/orders/:id/refund", orderHandler.RefundOrder)

		api.POST("/admin/orders/sweep", orderHandler.SweepExpiredOrders)

		api.POST("/stocks", stockHandler.CreateStock)
		api.POST("/stocks/bulk-reserve", stockHandler.BulkReserveStock)
		api.GET("/stocks/low-stock", stockHandler.ListLowStock)
		api.GET("/stocks/out-of-stock", stockHandler.ListOutOfStock)
		api.GET("/stocks/:productId/availability", stockHandler.GetAvailability)
		api.POST("/stocks/:productId/reserve", stockHandler.ReserveStock)
		api.POST("/stocks/:productId/confirm", stockHandler.ConfirmReservation)
		api.POST("/stocks/:productId/release", stockHandler.ReleaseReservation)
		api.POST("/stocks/:productId/restock", stockHandler.RestockProduct)
		api.POST("/stocks/:productId/reduce", stockHandler.ReduceStock)
	}
}
