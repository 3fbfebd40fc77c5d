package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/middleware"
	"storefront/internal/pricing"
	"storefront/internal/session"
)

func cartSession(c *gin.Context, route string) (*session.Session, bool) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		respondWithError(c, http.StatusInternalServerError, route, "cart session missing")
		return nil, false
	}
	return sess, true
}

func GetCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, route)

		sess, ok := cartSession(c, route)
		if !ok {
			return
		}

		var view cartView
		sess.View(func(ct *cart.Cart, submitting bool) {
			view = newCartView(ct, submitting)
		})
		c.JSON(http.StatusOK, view)
	}
}

// AddCartItem resolves a customization against the catalog and merges it
// into the session cart.
func AddCartItem(lookup catalog.Lookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/items"
		defer handlePanic(c, route)

		var req addCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		sess, ok := cartSession(c, route)
		if !ok {
			return
		}

		sel, err := req.toSelection()
		if err != nil {
			respondPricingError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		item, err := lookup.FindBySlug(ctx, strings.TrimSpace(req.Slug))
		if errors.Is(err, catalog.ErrNotFound) {
			respondWithError(c, http.StatusNotFound, route, catalog.ErrNotFound.Error())
			return
		}
		if err != nil {
			log.Printf("[%s] find failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		priced, ok := pricingItem(c, item, route)
		if !ok {
			return
		}

		line, err := pricing.Resolve(priced, sel)
		if err != nil {
			respondPricingError(c, route, err)
			return
		}

		var (
			stored pricing.LineItem
			view   cartView
			addErr error
		)
		sess.View(func(ct *cart.Cart, submitting bool) {
			stored, addErr = ct.Add(line)
			view = newCartView(ct, submitting)
		})
		if addErr != nil {
			respondPricingError(c, route, addErr)
			return
		}

		log.Printf("[CART] [INFO] session=%s added %s qty=%d", sess.ID, stored.Key.String(), stored.Quantity)
		c.JSON(http.StatusOK, gin.H{
			"item": newLineItemView(stored),
			"cart": view,
		})
	}
}

func RemoveCartItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/items/*key"
		defer handlePanic(c, route)

		sess, ok := cartSession(c, route)
		if !ok {
			return
		}

		// catch-all param, so notes containing "/" still route here
		key := strings.TrimPrefix(c.Param("key"), "/")
		var (
			removed bool
			view    cartView
		)
		sess.View(func(ct *cart.Cart, submitting bool) {
			removed = ct.RemoveKey(key)
			view = newCartView(ct, submitting)
		})

		if removed {
			log.Printf("[CART] [INFO] session=%s removed %s", sess.ID, key)
		}
		c.JSON(http.StatusOK, gin.H{
			"removed": removed,
			"cart":    view,
		})
	}
}

// Checkout submits the session cart. The cart is cleared only when the order
// boundary accepts the order.
func Checkout(submitter *checkout.Submitter, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/checkout"
		defer handlePanic(c, route)

		var contact checkout.Contact
		if err := c.ShouldBindJSON(&contact); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		sess, ok := cartSession(c, route)
		if !ok {
			return
		}

		// a client disconnect must not abandon an order already on its way
		ctx := context.WithoutCancel(c.Request.Context())
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		orderID, err := sess.Submit(ctx, submitter, contact)
		if err != nil {
			respondCheckoutError(c, route, err)
			return
		}

		log.Printf("[CART] [INFO] session=%s checked out order=%s", sess.ID, orderID)
		c.JSON(http.StatusCreated, gin.H{
			"orderId": orderID,
			"message": "order created",
		})
	}
}

func respondCheckoutError(c *gin.Context, route string, err error) {
	var vErr *checkout.ValidationError
	var subErr *checkout.SubmissionError

	switch {
	case errors.Is(err, session.ErrSubmissionInFlight):
		respondWithError(c, http.StatusConflict, route, err.Error())
	case errors.As(err, &vErr):
		respondWithError(c, http.StatusBadRequest, route, vErr.Message)
	case errors.As(err, &subErr):
		log.Printf("[%s] submission failed: %v", route, subErr)
		respondWithError(c, http.StatusBadGateway, route, subErr.UserMessage())
	default:
		log.Printf("[%s] unexpected checkout error: %v", route, err)
		respondWithError(c, http.StatusBadGateway, route, checkout.FallbackMessage)
	}
}
