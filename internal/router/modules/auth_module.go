package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-event-finder/internal/container"
	handlers "github.com/oksasatya/go-event-finder/internal/interface/http"
	"github.com/oksasatya/go-event-finder/internal/interface/middleware"
)

// AuthModule serves
// Public: POST /api/auth/signup, POST /api/auth/login
// Protected: GET /api/auth/me, POST /api/auth/logout
type AuthModule struct {
	Handler *handlers.AuthHandler
	Auth    middleware.Authenticator
}

func NewAuthModule(h *handlers.AuthHandler, auth middleware.Authenticator) *AuthModule {
	return &AuthModule{Handler: h, Auth: auth}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	// Public with rate limiting
	signupLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())

	g := rg.Group("/auth")
	g.POST("/signup", signupLimiter, m.Handler.Signup)
	g.POST("/login", loginLimiter, m.Handler.Login)

	// Protected
	auth := g.Group("/")
	auth.Use(middleware.Auth(m.Auth))
	{
		auth.GET("/me", m.Handler.Me)
		auth.POST("/logout", m.Handler.Logout)
	}
}
