package repository

import (
	"context"

	"github.com/oksasatya/go-event-finder/internal/domain/entity"
)

// EventRepository persists events and their participant sets.
type EventRepository interface {
	Create(ctx context.Context, e *entity.Event) error
	// List returns events matching f ordered by ascending date.
	List(ctx context.Context, f entity.EventFilter) ([]entity.Event, error)
	GetByID(ctx context.Context, id string) (*entity.Event, error)
	// Update writes the mutable fields of e. It fails with ErrCapacityBelowParticipants
	// when e.MaxParticipants is lower than the stored participant count.
	Update(ctx context.Context, e *entity.Event) (*entity.Event, error)
	SetCoverURL(ctx context.Context, id, url string) error
	Delete(ctx context.Context, id string) error
	// AddParticipant atomically checks capacity and membership, then appends userID.
	AddParticipant(ctx context.Context, eventID, userID string) (*entity.Event, error)
}
