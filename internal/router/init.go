package router

import (
	"github.com/oksasatya/go-event-finder/internal/application"
	"github.com/oksasatya/go-event-finder/internal/container"
	"github.com/oksasatya/go-event-finder/internal/infrastructure/cache"
	"github.com/oksasatya/go-event-finder/internal/infrastructure/elastic"
	"github.com/oksasatya/go-event-finder/internal/infrastructure/gcs"
	handlers "github.com/oksasatya/go-event-finder/internal/interface/http"
	"github.com/oksasatya/go-event-finder/internal/router/modules"
)

type EventModuleDeps struct {
	Events  *application.EventService
	Members *application.MembershipService
	Handler *handlers.EventHandler
}

type AuthModuleDeps struct {
	Service *application.AuthService
	Handler *handlers.AuthHandler
}

func buildAuthDeps() AuthModuleDeps {
	cfg := container.GetConfig()
	service := application.NewAuthService(
		container.GetUserRepository(),
		container.GetJWT(),
		container.GetRedis(),
		container.GetLogger(),
	)
	handler := handlers.NewAuthHandler(service, container.GetLogger(), cfg.CookieDomain, cfg.CookieSecure)
	return AuthModuleDeps{Service: service, Handler: handler}
}

// buildProjections wires whichever of Redis and Elasticsearch are configured.
func buildProjections() *application.Projections {
	cfg := container.GetConfig()
	p := &application.Projections{Logger: container.GetLogger()}
	if rdb := container.GetRedis(); rdb != nil {
		p.Cache = cache.NewEventCache(rdb, cfg.EventCacheTTL, container.GetLogger())
	}
	if es := container.GetES(); es != nil {
		p.Index = elastic.NewEventIndex(es, cfg.ESEventsIndex)
	}
	return p
}

func buildNotifier() *application.Notifier {
	pub := container.GetRabbitPub()
	if pub == nil {
		return nil
	}
	cfg := container.GetConfig()
	return &application.Notifier{
		Pub:      pub,
		Users:    container.GetUserRepository(),
		AppName:  cfg.AppName,
		EventURL: cfg.EventURLTemplate,
		Logger:   container.GetLogger(),
	}
}

func buildEventDeps() EventModuleDeps {
	cfg := container.GetConfig()
	projections := buildProjections()
	notifier := buildNotifier()

	events := application.NewEventService(container.GetEventRepository(), container.GetUserRepository(), container.GetLogger())
	events.Projections = projections
	events.Notifier = notifier
	if client := container.GetGCS(); client != nil && cfg.GCSBucket != "" {
		events.Covers = gcs.NewCoverStore(client, cfg.GCSBucket)
	}

	members := application.NewMembershipService(container.GetEventRepository(), container.GetLogger())
	members.Projections = projections
	members.Notifier = notifier

	return EventModuleDeps{
		Events:  events,
		Members: members,
		Handler: handlers.NewEventHandler(events, members, container.GetLogger(), cfg.CoverMaxBytes),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	authDeps := buildAuthDeps()
	eventDeps := buildEventDeps()

	r.Add(modules.NewAuthModule(authDeps.Handler, authDeps.Service))
	r.Add(modules.NewEventModule(eventDeps.Handler, authDeps.Service))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
