package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/accounts"
)

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AdminAuthenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

func AdminLogin(auth AdminAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/login"
		defer handlePanic(c, route)

		var req AdminLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		if strings.TrimSpace(req.Password) == "" {
			respondWithError(c, http.StatusBadRequest, route, "email and password are required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		token, err := auth.Login(ctx, req.Email, req.Password)
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}
		if err != nil {
			log.Printf("[%s] login failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token": token,
		})
	}
}
