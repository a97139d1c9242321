package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-event-finder/config"
	"github.com/oksasatya/go-event-finder/internal/application"
	pginfra "github.com/oksasatya/go-event-finder/internal/infrastructure/postgres"
	"github.com/oksasatya/go-event-finder/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	users := pginfra.NewUserRepository(pool)
	auth := application.NewAuthService(users, helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.AccessTTL), nil, logger)
	events := application.NewEventService(pginfra.NewEventRepository(pool), users, logger)

	email := "demo@eventfinder.local"
	password := "password123"
	sess, err := auth.Signup(ctx, application.SignupInput{Name: "Demo User", Email: email, Password: password, Location: "Jakarta"})
	if errors.Is(err, application.ErrEmailTaken) {
		sess, err = auth.Login(ctx, email, password)
	}
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", sess.User.ID, email, password)

	week := 7 * 24 * time.Hour
	demo := []application.CreateEventInput{
		{
			Title:           "Go Meetup",
			Description:     "Talks and pizza for gophers of every level.",
			Location:        "Jakarta",
			Date:            time.Now().UTC().Add(week).Truncate(time.Hour),
			MaxParticipants: 30,
		},
		{
			Title:           "Sunrise Hike",
			Description:     "Easy trail, bring water and a jacket.",
			Location:        "Bandung",
			Date:            time.Now().UTC().Add(2 * week).Truncate(time.Hour),
			MaxParticipants: 2,
		},
	}
	for _, in := range demo {
		e, err := events.Create(ctx, sess.User.ID, in)
		if err != nil {
			log.Fatalf("failed to seed event %q: %v", in.Title, err)
		}
		fmt.Printf("seeded event: id=%s title=%q max=%d\n", e.ID, e.Title, e.MaxParticipants)
	}
}
