package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-event-finder/pkg/response"
)

// Authenticator resolves an access token to a user id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// Auth validates the access token (and its session when Redis is on)
// and sets userID in the Gin context on success.
func Auth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "Not authorized, no token", nil)
			return
		}
		uid, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Not authorized, token failed", nil)
			return
		}
		c.Set(CtxUserIDKey, uid)
		c.Next()
	}
}
