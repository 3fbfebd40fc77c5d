package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/orders"
)

func GetOrders(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		list, total, err := svc.List(ctx, c.Query("status"), page, limit)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Orders could not be fetched")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": list,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": totalPages(total, limit),
			},
		})
	}
}

func DeleteOrder(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/orders/:id"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		err := svc.Delete(ctx, c.Param("id"))
		switch {
		case errors.Is(err, orders.ErrInvalidID):
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		case errors.Is(err, orders.ErrNotFound):
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		case err != nil:
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}
