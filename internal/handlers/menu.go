package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/models"
	"storefront/internal/pricing"
)

/*
GET /menu
- pagination optional
- without page + limit every active item is returned
*/
func GetMenu(lookup catalog.Lookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /menu"
		defer handlePanic(c, route)

		log.Printf(
			"[%s] hit page=%s limit=%s category=%s search=%s",
			route,
			c.Query("page"),
			c.Query("limit"),
			c.Query("category"),
			c.Query("search"),
		)

		filter := catalog.ListFilter{
			Category: strings.TrimSpace(c.Query("category")),
			Search:   strings.TrimSpace(c.Query("search")),
		}

		pageStr := c.Query("page")
		limitStr := c.Query("limit")
		if pageStr != "" && limitStr != "" {
			page, limit, err := parsePaginationParams(pageStr, limitStr)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			filter.Page = page
			filter.Limit = limit
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		items, total, err := lookup.List(ctx, filter)
		if err != nil {
			log.Printf("[%s] list failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] returning %d items", route, len(items))
		if !filter.Paginated() {
			c.JSON(http.StatusOK, items)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": items,
			"pagination": gin.H{
				"page":       filter.Page,
				"limit":      filter.Limit,
				"total":      total,
				"totalPages": totalPages(total, filter.Limit),
			},
		})
	}
}

func GetMenuCategories(lookup catalog.Lookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /menu/categories"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		categories, err := lookup.Categories(ctx)
		if err != nil {
			log.Printf("[%s] distinct failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] returning %d categories", route, len(categories))
		c.JSON(http.StatusOK, categories)
	}
}

func GetMenuItem(lookup catalog.Lookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /menu/:slug"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		item, ok := findMenuItem(ctx, c, lookup, route)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// QuoteMenuItem prices a customization without touching the cart, for the
// running total shown next to the customizer.
func QuoteMenuItem(lookup catalog.Lookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /menu/:slug/quote"
		defer handlePanic(c, route)

		var req selectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		item, ok := findMenuItem(ctx, c, lookup, route)
		if !ok {
			return
		}

		priced, ok := pricingItem(c, item, route)
		if !ok {
			return
		}

		sel, err := req.toSelection()
		if err != nil {
			respondPricingError(c, route, err)
			return
		}

		quote, err := pricing.QuoteFor(priced, sel)
		if err != nil {
			respondPricingError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"itemId":    priced.ID,
			"basePrice": money(priced.BasePrice),
			"surcharge": money(quote.Surcharge),
			"unitPrice": money(quote.UnitPrice),
			"linePrice": money(quote.LinePrice),
			"quantity":  sel.Quantity,
		})
	}
}

func findMenuItem(ctx context.Context, c *gin.Context, lookup catalog.Lookup, route string) (models.MenuItem, bool) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respondWithError(c, http.StatusBadRequest, route, "slug required")
		return models.MenuItem{}, false
	}

	item, err := lookup.FindBySlug(ctx, slug)
	if errors.Is(err, catalog.ErrNotFound) {
		respondWithError(c, http.StatusNotFound, route, catalog.ErrNotFound.Error())
		return models.MenuItem{}, false
	}
	if err != nil {
		log.Printf("[%s] find failed: %v", route, err)
		respondWithError(c, http.StatusInternalServerError, route, "db error")
		return models.MenuItem{}, false
	}
	return item, true
}

func pricingItem(c *gin.Context, item models.MenuItem, route string) (pricing.MenuItem, bool) {
	priced, err := catalog.PricingItem(item)
	if errors.Is(err, catalog.ErrNoBasePrice) {
		respondWithError(c, http.StatusUnprocessableEntity, route, "this item is priced per variant and cannot be customized")
		return pricing.MenuItem{}, false
	}
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, route, "pricing error")
		return pricing.MenuItem{}, false
	}
	return priced, true
}

func respondPricingError(c *gin.Context, route string, err error) {
	switch {
	case errors.Is(err, pricing.ErrInvalidQuantity):
		respondWithError(c, http.StatusBadRequest, route, pricing.ErrInvalidQuantity.Error())
	case errors.Is(err, cart.ErrQuantityLimit):
		respondWithError(c, http.StatusBadRequest, route, cart.ErrQuantityLimit.Error())
	case errors.Is(err, pricing.ErrInvalidSize):
		respondWithError(c, http.StatusBadRequest, route, pricing.ErrInvalidSize.Error())
	case errors.Is(err, pricing.ErrNegativePrice):
		respondWithError(c, http.StatusBadRequest, route, pricing.ErrNegativePrice.Error())
	case errors.Is(err, pricing.ErrMissingItemID):
		respondWithError(c, http.StatusBadRequest, route, pricing.ErrMissingItemID.Error())
	default:
		respondWithError(c, http.StatusInternalServerError, route, "pricing error")
	}
}
