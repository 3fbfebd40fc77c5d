package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"storefront/internal/cart"
	"storefront/internal/session"
)

func signed(t *testing.T, secret, role string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "admin-1",
		"role": role,
		"exp":  exp.Unix(),
	})
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func adminRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/api/me", AdminAuth("secret"), func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sub": claims["sub"]})
	})
	return r
}

func TestAdminAuth(t *testing.T) {
	r := adminRouter()
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Token abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signed(t, "other", "admin", future), http.StatusUnauthorized},
		{"expired", "Bearer " + signed(t, "secret", "admin", time.Now().Add(-time.Minute)), http.StatusUnauthorized},
		{"wrong role", "Bearer " + signed(t, "secret", "customer", future), http.StatusForbidden},
		{"admin", "Bearer " + signed(t, "secret", "admin", future), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestCartSessionIssuesAndReusesCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := session.NewStore(cart.MergeReplace, time.Hour)

	r := gin.New()
	r.GET("/cart", CartSession(store, true, 600), func(c *gin.Context) {
		sess, ok := SessionFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, sess.ID)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookie {
		t.Fatalf("expected session cookie, got %v", cookies)
	}
	if !cookies[0].HttpOnly || !cookies[0].Secure {
		t.Fatalf("expected secure http-only cookie, got %+v", cookies[0])
	}
	first := w.Body.String()

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Body.String() != first {
		t.Fatalf("expected same session %s, got %s", first, w.Body.String())
	}
	if store.Len() != 1 {
		t.Fatalf("expected one session, got %d", store.Len())
	}
}
