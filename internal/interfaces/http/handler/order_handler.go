package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	app "github.com/ChunPingWang/ec-microservice-sub000/internal/application/order"
	domain "github.com/ChunPingWang/ec-microservice-sub000/internal/domain/order"
)

type OrderHandler struct {
	svc   *app.Service
	rules *app.DomainService
}

func NewOrderHandler(svc *app.Service, rules *app.DomainService) *OrderHandler {
	return &OrderHandler{svc: svc, rules: rules}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req app.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.svc.CreateOrderFromCart(c.Request.Context(), c.Param("customerId"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	o, err := h.svc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type confirmRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
}

func (h *OrderHandler) ConfirmOrder(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.svc.ConfirmOrder(c.Request.Context(), c.Param("id"), req.CustomerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type payRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

func (h *OrderHandler) MarkOrderAsPaid(c *gin.Context) {
	var req payRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.svc.MarkOrderAsPaid(c.Request.Context(), c.Param("id"), req.PaymentMethod)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) ShipOrder(c *gin.Context) {
	o, err := h.svc.ShipOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) DeliverOrder(c *gin.Context) {
	o, err := h.svc.DeliverOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type cancelRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
	Reason     string `json:"reason"`
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.svc.CancelOrder(c.Request.Context(), c.Param("id"), req.CustomerID, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) RefundOrder(c *gin.Context) {
	o, err := h.svc.RefundOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) CanCancelOrder(c *gin.Context) {
	ok, err := h.svc.CanCancelOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"can_cancel": ok})
}

// ListCustomerOrders handles the plain, by-status and by-date-range listings
// through optional query parameters.
func (h *OrderHandler) ListCustomerOrders(c *gin.Context) {
	ctx := c.Request.Context()
	customerID := c.Param("customerId")

	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		orders, err := h.svc.GetCustomerOrdersByStatus(ctx, customerID, status)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
		return
	}

	if fromRaw, toRaw := c.Query("from"), c.Query("to"); fromRaw != "" || toRaw != "" {
		from, err := time.Parse(time.RFC3339, fromRaw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return
		}
		to, err := time.Parse(time.RFC3339, toRaw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
			return
		}
		orders, err := h.svc.GetCustomerOrdersByDateRange(ctx, customerID, from, to)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
		return
	}

	orders, err := h.svc.GetCustomerOrders(ctx, customerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetLatestCustomerOrder(c *gin.Context) {
	o, err := h.svc.GetLatestCustomerOrder(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) GetCustomerOrderStats(c *gin.Context) {
	stats, err := h.rules.GetCustomerOrderStats(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// SweepExpiredOrders is the trigger the external scheduler calls.
func (h *OrderHandler) SweepExpiredOrders(c *gin.Context) {
	hours, err := strconv.Atoi(c.DefaultQuery("timeout_hours", "24"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "timeout_hours must be an integer"})
		return
	}

	cancelled, err := h.svc.CancelExpiredOrders(c.Request.Context(), hours)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": cancelled})
}
