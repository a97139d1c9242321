package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-event-finder/internal/container"
	handlers "github.com/oksasatya/go-event-finder/internal/interface/http"
	"github.com/oksasatya/go-event-finder/internal/interface/middleware"
)

// EventModule wires the event handlers under /api/events.
// Reads are public; writes require a signed-in caller.
type EventModule struct {
	Handler *handlers.EventHandler
	Auth    middleware.Authenticator
}

func NewEventModule(h *handlers.EventHandler, auth middleware.Authenticator) *EventModule {
	return &EventModule{Handler: h, Auth: auth}
}

func (m *EventModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	g := rg.Group("/events")

	searchLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIPAndPath(), nil)
	g.GET("", m.Handler.List)
	g.GET("/search", searchLimiter, m.Handler.Search)
	g.GET("/:id", m.Handler.Get)

	auth := g.Group("")
	auth.Use(
		middleware.Auth(m.Auth),
		middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("", m.Handler.Create)
		auth.PUT("/:id", m.Handler.Update)
		auth.DELETE("/:id", m.Handler.Delete)
		auth.POST("/:id/join", m.Handler.Join)
		auth.POST("/:id/cover", m.Handler.UploadCover)
	}
}
