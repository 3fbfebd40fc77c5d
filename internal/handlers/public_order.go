package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/checkout"
	"storefront/internal/models"
)

// OrderService is the order-creation boundary plus the admin operations on
// placed orders.
type OrderService interface {
	Create(ctx context.Context, req checkout.OrderRequest) (models.Order, error)
	List(ctx context.Context, status string, page, limit int64) ([]models.Order, int64, error)
	Delete(ctx context.Context, id string) error
}

/*
POST /api/orders
- payload is validated again here, independently of checkout
- 201 {"id"} on success, 400 {"error"} on rejection
*/
func CreateOrder(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		var req checkout.OrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		order, err := svc.Create(ctx, req)
		if err != nil {
			var vErr *checkout.ValidationError
			if errors.As(err, &vErr) {
				respondWithError(c, http.StatusBadRequest, route, vErr.Message)
				return
			}
			log.Println("[ORDER] [ERROR] create failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, checkout.FallbackMessage)
			return
		}

		log.Println("[ORDER] [INFO] order created:", order.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{"id": order.ID.Hex()})
	}
}
