package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const requestTimeout = 5 * time.Second

// Pinger reports whether the backing database is reachable.
type Pinger func(ctx context.Context) error

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] returning error %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func respondValidationError(c *gin.Context, route string, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		log.Printf("[%s] returning error %d: validation failed %v", route, http.StatusBadRequest, details)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": details,
		})
		return
	}

	respondWithError(c, http.StatusBadRequest, route, "invalid body")
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// Health reports liveness and database reachability.
func Health(ping Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /health"
		defer handlePanic(c, route)

		if ping != nil {
			if err := ping(c.Request.Context()); err != nil {
				log.Printf("[%s] database ping failed: %v", route, err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
