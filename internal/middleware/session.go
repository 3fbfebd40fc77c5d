package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/session"
)

const (
	SessionCookie = "cart_session"
	sessionKey    = "cartSession"
)

// CartSession attaches the caller's session to the request, issuing a new
// cookie when the presented one is missing or unknown.
func CartSession(store *session.Store, secure bool, maxAgeSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(SessionCookie)

		sess, created := store.Get(id)
		if created {
			log.Printf("[SESSION] [INFO] new cart session %s", sess.ID)
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, sess.ID, maxAgeSeconds, "/", "", secure, true)

		c.Set(sessionKey, sess)
		c.Next()
	}
}

func SessionFrom(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok
}
