package repository

import (
	"context"

	"github.com/oksasatya/go-event-finder/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetProfiles resolves ids to public profiles; unknown ids are absent from the map.
	GetProfiles(ctx context.Context, ids []string) (map[string]entity.PublicProfile, error)
}
