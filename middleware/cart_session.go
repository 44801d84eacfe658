package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CartCookie        = "cart_session"
	CartSessionHeader = "X-Cart-Session"
	cartSessionKey    = "cart_session"
)

// CartSession identifies the caller's cart by cookie or header, issuing a new id on first use.
func CartSession(maxAge int) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CartSessionHeader)
		if id == "" {
			id, _ = c.Cookie(CartCookie)
		}
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CartCookie, id, maxAge, "/", "", false, true)
		c.Header(CartSessionHeader, id)
		c.Set(cartSessionKey, id)
		c.Next()
	}
}

func CartSessionID(c *gin.Context) string {
	return c.GetString(cartSessionKey)
}
