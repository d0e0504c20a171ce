package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	app "github.com/ChunPingWang/ec-microservice-sub000/internal/application/stock"
	domain "github.com/ChunPingWang/ec-microservice-sub000/internal/domain/stock"
)

type StockHandler struct {
	svc *app.Service
}

func NewStockHandler(svc *app.Service) *StockHandler {
	return &StockHandler{svc: svc}
}

type createStockRequest struct {
	ProductID         string `json:"product_id" binding:"required"`
	Quantity          int    `json:"quantity"`
	MinimumThreshold  int    `json:"minimum_threshold"`
	MaximumCapacity   int    `json:"maximum_capacity"`
	WarehouseLocation string `json:"warehouse_location"`
}

func (h *StockHandler) CreateStock(c *gin.Context) {
	var req createStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, err := domain.NewStock(uuid.NewString(), req.ProductID, req.Quantity,
		req.MinimumThreshold, req.MaximumCapacity, req.WarehouseLocation)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.svc.CreateStock(c.Request.Context(), st); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

type quantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

func (h *StockHandler) ReserveStock(c *gin.Context) {
	h.mutateQuantity(c, h.svc.ReserveStock)
}

func (h *StockHandler) ConfirmReservation(c *gin.Context) {
	h.mutateQuantity(c, h.svc.ConfirmReservation)
}

func (h *StockHandler) ReleaseReservation(c *gin.Context) {
	h.mutateQuantity(c, h.svc.ReleaseReservation)
}

func (h *StockHandler) RestockProduct(c *gin.Context) {
	h.mutateQuantity(c, h.svc.RestockProduct)
}

func (h *StockHandler) ReduceStock(c *gin.Context) {
	h.mutateQuantity(c, h.svc.ReduceStock)
}

func (h *StockHandler) mutateQuantity(c *gin.Context, op func(ctx context.Context, productID string, quantity int) error) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := op(c.Request.Context(), c.Param("productId"), req.Quantity); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": c.Param("productId"), "quantity": req.Quantity})
}

type bulkReserveRequest struct {
	Requests []app.ReservationRequest `json:"requests" binding:"required"`
}

func (h *StockHandler) BulkReserveStock(c *gin.Context) {
	var req bulkReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.BulkReserveStock(c.Request.Context(), req.Requests); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reserved": len(req.Requests)})
}

func (h *StockHandler) GetAvailability(c *gin.Context) {
	ctx := c.Request.Context()
	productID := c.Param("productId")

	available, err := h.svc.GetAvailableQuantity(ctx, productID)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := gin.H{"product_id": productID, "available_quantity": available}
	if raw := c.Query("quantity"); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be an integer"})
			return
		}
		ok, err := h.svc.HasAvailableStock(ctx, productID, qty)
		if err != nil {
			writeError(c, err)
			return
		}
		resp["has_available"] = ok
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StockHandler) ListLowStock(c *gin.Context) {
	items, err := h.svc.LowStockItems(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *StockHandler) ListOutOfStock(c *gin.Context) {
	items, err := h.svc.OutOfStockItems(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
