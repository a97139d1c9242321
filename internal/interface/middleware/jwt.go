package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-event-finder/pkg/helpers"
)

const CtxUserIDKey = "userID"

// accessToken reads the bearer token from the Authorization header and
// falls back to the access_token cookie.
func accessToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if token, err := c.Cookie(helpers.AccessCookie); err == nil {
		return token
	}
	return ""
}
