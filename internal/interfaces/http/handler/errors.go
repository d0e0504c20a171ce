package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	orderdomain "github.com/ChunPingWang/ec-microservice-sub000/internal/domain/order"
	"github.com/ChunPingWang/ec-microservice-sub000/internal/domain/repository"
	stockdomain "github.com/ChunPingWang/ec-microservice-sub000/internal/domain/stock"
)

// writeError maps domain errors onto HTTP statuses: not-found to 404,
// rejected operations to 409, malformed input to 400.
func writeError(c *gin.Context, err error) {
	var (
		validation        *orderdomain.ValidationError
		stockValidation   *stockdomain.ValidationError
		invalidState      *orderdomain.InvalidStateError
		insufficientStock *stockdomain.InsufficientStockError
	)

	switch {
	case errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, orderdomain.ErrCartNotFound),
		errors.Is(err, orderdomain.ErrItemNotFound),
		errors.Is(err, stockdomain.ErrStockNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &validation), errors.As(err, &stockValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &invalidState), errors.As(err, &insufficientStock),
		errors.Is(err, repository.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
