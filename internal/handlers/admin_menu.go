package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/catalog"
	"storefront/internal/models"
)

/* =======================
   REQUEST MODELS
======================= */

type MenuItemCreateRequest struct {
	Name         string   `json:"name" binding:"required"`
	Slug         string   `json:"slug"`
	Description  string   `json:"description"`
	BasePrice    *float64 `json:"basePrice"`
	IsMultiPrice bool     `json:"isMultiPrice"`
	MultiPrice   string   `json:"multiPrice"`
	SaleEnabled  bool     `json:"saleEnabled"`
	SalePrice    *float64 `json:"salePrice"`
	Category     []string `json:"category"`
	ImageURL     string   `json:"imageUrl" binding:"omitempty,url"`
	IsActive     *bool    `json:"isActive"`
}

type MenuItemUpdateRequest struct {
	Name         *string   `json:"name"`
	Slug         *string   `json:"slug"`
	Description  *string   `json:"description"`
	BasePrice    *float64  `json:"basePrice"`
	IsMultiPrice *bool     `json:"isMultiPrice"`
	MultiPrice   *string   `json:"multiPrice"`
	SaleEnabled  *bool     `json:"saleEnabled"`
	SalePrice    *float64  `json:"salePrice"`
	Category     *[]string `json:"category"`
	ImageURL     *string   `json:"imageUrl"`
	IsActive     *bool     `json:"isActive"`
}

type menuValidationError string

func (e menuValidationError) Error() string { return string(e) }

/* =======================
   HELPERS
======================= */

func buildMenuItem(req MenuItemCreateRequest, now time.Time) (models.MenuItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.MenuItem{}, menuValidationError("name required")
	}

	slug := catalog.Slugify(req.Slug)
	if slug == "" {
		slug = catalog.Slugify(name)
	}
	if slug == "" {
		return models.MenuItem{}, menuValidationError("slug required")
	}

	item := models.MenuItem{
		Slug:         slug,
		Name:         name,
		Description:  strings.TrimSpace(req.Description),
		IsMultiPrice: req.IsMultiPrice,
		Category:     models.CategoryList(catalog.NormalizeCategories(req.Category)),
		ImageURL:     strings.TrimSpace(req.ImageURL),
		IsActive:     true,
		CreatedAt:    now,
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if req.IsMultiPrice {
		multi := strings.TrimSpace(req.MultiPrice)
		if multi == "" {
			return models.MenuItem{}, menuValidationError("multiPrice required for multi-price items")
		}
		if req.SaleEnabled {
			return models.MenuItem{}, menuValidationError("multi-price items cannot be on sale")
		}
		item.MultiPrice = multi
		return item, nil
	}

	if req.BasePrice == nil || *req.BasePrice < 0 {
		return models.MenuItem{}, menuValidationError("invalid basePrice")
	}
	price := *req.BasePrice
	item.BasePrice = &price

	salePrice := 0.0
	if req.SalePrice != nil {
		salePrice = *req.SalePrice
	}
	if err := catalog.ValidateSaleFields(price, req.SaleEnabled, salePrice, req.SalePrice != nil); err != nil {
		return models.MenuItem{}, menuValidationError(err.Error())
	}
	item.SaleEnabled = req.SaleEnabled
	if req.SaleEnabled {
		item.SalePrice = salePrice
	}
	item.IsOnSale = catalog.IsOnSale(price, item.SaleEnabled, item.SalePrice)
	return item, nil
}

// buildMenuUpdate turns a partial update into $set and $unset documents,
// validated against the stored item.
func buildMenuUpdate(existing models.MenuItem, req MenuItemUpdateRequest) (map[string]any, map[string]any, error) {
	updateSet := map[string]any{}
	updateUnset := map[string]any{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, nil, menuValidationError("name required")
		}
		updateSet["name"] = name
	}
	if req.Slug != nil {
		slug := catalog.Slugify(*req.Slug)
		if slug == "" {
			return nil, nil, menuValidationError("slug required")
		}
		updateSet["slug"] = slug
	}
	if req.Description != nil {
		updateSet["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		updateSet["category"] = models.CategoryList(catalog.NormalizeCategories(*req.Category))
	}
	if req.ImageURL != nil {
		if url := strings.TrimSpace(*req.ImageURL); url == "" {
			updateUnset["imageUrl"] = ""
		} else {
			updateSet["imageUrl"] = url
		}
	}
	if req.IsActive != nil {
		updateSet["isActive"] = *req.IsActive
	}

	multi := existing.IsMultiPrice
	if req.IsMultiPrice != nil {
		multi = *req.IsMultiPrice
		updateSet["isMultiPrice"] = multi
	}

	if multi {
		text := existing.MultiPrice
		if req.MultiPrice != nil {
			text = strings.TrimSpace(*req.MultiPrice)
		}
		if text == "" {
			return nil, nil, menuValidationError("multiPrice required for multi-price items")
		}
		if req.SaleEnabled != nil && *req.SaleEnabled {
			return nil, nil, menuValidationError("multi-price items cannot be on sale")
		}
		updateSet["multiPrice"] = text
		updateSet["basePrice"] = nil
		updateSet["saleEnabled"] = false
		updateSet["salePrice"] = 0.0
		return updateSet, updateUnset, nil
	}

	existingPrice := 0.0
	if existing.BasePrice != nil {
		existingPrice = *existing.BasePrice
	}
	if req.BasePrice != nil {
		if *req.BasePrice < 0 {
			return nil, nil, menuValidationError("invalid basePrice")
		}
		updateSet["basePrice"] = *req.BasePrice
	} else if existing.BasePrice == nil {
		return nil, nil, menuValidationError("basePrice required for single-price items")
	}
	if req.IsMultiPrice != nil {
		updateUnset["multiPrice"] = ""
	}

	saleUpdate, err := catalog.ResolveSaleUpdate(existingPrice, existing.SaleEnabled, existing.SalePrice, catalog.SaleUpdateInput{
		Price:       req.BasePrice,
		SaleEnabled: req.SaleEnabled,
		SalePrice:   req.SalePrice,
	})
	if err != nil {
		return nil, nil, menuValidationError(err.Error())
	}
	if saleUpdate.SetSaleEnabled {
		updateSet["saleEnabled"] = saleUpdate.SaleEnabled
	}
	if saleUpdate.SetSalePrice {
		updateSet["salePrice"] = saleUpdate.SalePrice
	}

	return updateSet, updateUnset, nil
}

func mapKeys(input map[string]any) []string {
	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

/* =======================
   GET (ADMIN) – LIST
======================= */

func GetAllMenuItems(editor catalog.Editor) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/menu"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		items, total, err := editor.List(ctx, catalog.ListFilter{
			Category:        c.Query("category"),
			Search:          c.Query("search"),
			Page:            page,
			Limit:           limit,
			IncludeInactive: true,
		})
		if err != nil {
			log.Printf("[%s] list failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": items,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": totalPages(total, limit),
			},
		})
	}
}

/* =======================
   CREATE
======================= */

func CreateMenuItem(editor catalog.Editor) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/menu"
		defer handlePanic(c, route)

		var req MenuItemCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		item, err := buildMenuItem(req, time.Now())
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if err := editor.Create(ctx, &item); err != nil {
			if errors.Is(err, catalog.ErrDuplicate) {
				respondWithError(c, http.StatusConflict, route, err.Error())
				return
			}
			log.Printf("[%s] insert failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] created %s (%s)", route, item.Slug, item.ID.Hex())
		c.JSON(http.StatusCreated, item)
	}
}

/* =======================
   UPDATE
======================= */

func UpdateMenuItem(editor catalog.Editor) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/menu/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req MenuItemUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		existing, err := editor.FindByID(ctx, id)
		if errors.Is(err, catalog.ErrNotFound) {
			respondWithError(c, http.StatusNotFound, route, err.Error())
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		updateSet, updateUnset, err := buildMenuUpdate(existing, req)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		if len(updateSet) == 0 && len(updateUnset) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		log.Printf("[%s] update fields: set=%v unset=%v", route, mapKeys(updateSet), mapKeys(updateUnset))

		updated, err := editor.Update(ctx, id, updateSet, updateUnset)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			respondWithError(c, http.StatusNotFound, route, err.Error())
			return
		case errors.Is(err, catalog.ErrDuplicate):
			respondWithError(c, http.StatusConflict, route, err.Error())
			return
		case err != nil:
			log.Printf("[%s] update failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

/* =======================
   DELETE (SOFT)
======================= */

func DeleteMenuItem(editor catalog.Editor) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/menu/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		err = editor.Delete(ctx, id)
		if errors.Is(err, catalog.ErrNotFound) {
			respondWithError(c, http.StatusNotFound, route, err.Error())
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "menu item deleted"})
	}
}
