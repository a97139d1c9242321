package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-finder/internal/domain/entity"
	repo "github.com/oksasatya/go-event-finder/internal/domain/repository"
	"github.com/oksasatya/go-event-finder/pkg/helpers"
)

// MembershipService admits users into events up to their capacity.
type MembershipService struct {
	Events      repo.EventRepository
	Projections *Projections
	Notifier    *Notifier
	Logger      *logrus.Logger
}

func NewMembershipService(events repo.EventRepository, logger *logrus.Logger) *MembershipService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &MembershipService{Events: events, Logger: logger}
}

// Join adds callerID to the event. A full event is reported before a repeat
// join. The capacity check and the append happen atomically in the repository.
func (s *MembershipService) Join(ctx context.Context, eventID, callerID string) (*entity.Event, error) {
	e, err := s.Events.AddParticipant(ctx, eventID, callerID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, ErrEventNotFound
	case errors.Is(err, repo.ErrCapacityReached):
		return nil, ErrEventFull
	case errors.Is(err, repo.ErrDuplicateParticipant):
		return nil, ErrAlreadyJoined
	case err != nil:
		helpers.LogError(s.Logger, "join event failed", err, logrus.Fields{"event_id": eventID, "user_id": callerID})
		return nil, fmt.Errorf("join event -> %w", err)
	}

	eventsJoined.Add(1)
	s.Projections.Changed(ctx, e)
	s.Notifier.EventJoined(ctx, e, callerID)
	return e, nil
}
