package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-finder/internal/domain/entity"
	repo "github.com/oksasatya/go-event-finder/internal/domain/repository"
	"github.com/oksasatya/go-event-finder/pkg/helpers"
	"github.com/oksasatya/go-event-finder/pkg/validation"
)

// Fields that only the system may change.
var immutableEventFields = map[string]bool{
	"id":                  true,
	"creator":             true,
	"creatorId":           true,
	"participants":        true,
	"currentParticipants": true,
	"createdAt":           true,
	"updatedAt":           true,
}

// IsImmutableEventField reports whether a request may not set the JSON field name.
func IsImmutableEventField(name string) bool {
	return immutableEventFields[name]
}

type CreateEventInput struct {
	Title           string
	Description     string
	Location        string
	Date            time.Time
	MaxParticipants int
}

// UpdateEventInput is a partial update; nil fields are left as they are.
type UpdateEventInput struct {
	Title           *string
	Description     *string
	Location        *string
	Date            *time.Time
	MaxParticipants *int
	// Immutable names protected fields the request tried to set.
	Immutable []string
	// Invalid holds per-field format errors found while decoding the request.
	Invalid map[string]string
}

// eventFields carries the validation rules shared by create and update.
type eventFields struct {
	Title           string    `json:"title" validate:"required,max=100"`
	Description     string    `json:"description" validate:"required,max=500"`
	Location        string    `json:"location" validate:"required"`
	Date            time.Time `json:"date" validate:"required"`
	MaxParticipants int       `json:"maxParticipants" validate:"required,min=1"`
}

func (f *eventFields) normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Location = strings.TrimSpace(f.Location)
}

func (f *eventFields) validate() error {
	details := validation.Struct(f)
	if strings.TrimSpace(f.Description) == "" {
		if details == nil {
			details = map[string]string{}
		}
		details["description"] = "is required"
	}
	return invalidFields(details)
}

type EventService struct {
	Events      repo.EventRepository
	Users       repo.UserRepository
	Projections *Projections
	Covers      CoverStore
	Notifier    *Notifier
	Logger      *logrus.Logger
}

func NewEventService(events repo.EventRepository, users repo.UserRepository, logger *logrus.Logger) *EventService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &EventService{Events: events, Users: users, Logger: logger}
}

// Create stores a new event owned by callerID with no participants.
func (s *EventService) Create(ctx context.Context, callerID string, in CreateEventInput) (*entity.Event, error) {
	f := eventFields{
		Title:           in.Title,
		Description:     in.Description,
		Location:        in.Location,
		Date:            in.Date,
		MaxParticipants: in.MaxParticipants,
	}
	f.normalize()
	if err := f.validate(); err != nil {
		return nil, err
	}

	e := &entity.Event{
		Title:           f.Title,
		Description:     f.Description,
		Location:        f.Location,
		Date:            f.Date.UTC(),
		MaxParticipants: f.MaxParticipants,
		CreatorID:       callerID,
		Participants:    []string{},
	}
	if err := s.Events.Create(ctx, e); err != nil {
		helpers.LogError(s.Logger, "create event failed", err, logrus.Fields{"creator_id": callerID})
		return nil, fmt.Errorf("create event -> %w", err)
	}
	eventsCreated.Add(1)
	s.Projections.Changed(ctx, e)
	return e, nil
}

// List returns matching events by ascending date, each with its creator's profile.
func (s *EventService) List(ctx context.Context, f entity.EventFilter) ([]entity.EventSummary, error) {
	f.Location = strings.TrimSpace(f.Location)
	f.Search = strings.TrimSpace(f.Search)
	events, err := s.Events.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list events -> %w", err)
	}
	return s.summaries(ctx, events)
}

func (s *EventService) summaries(ctx context.Context, events []entity.Event) ([]entity.EventSummary, error) {
	ids := make([]string, 0, len(events))
	seen := make(map[string]bool, len(events))
	for _, e := range events {
		if !seen[e.CreatorID] {
			seen[e.CreatorID] = true
			ids = append(ids, e.CreatorID)
		}
	}
	profiles, err := s.Users.GetProfiles(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load creators -> %w", err)
	}

	out := make([]entity.EventSummary, 0, len(events))
	for _, e := range events {
		out = append(out, entity.EventSummary{Event: e, Creator: profileOrID(profiles, e.CreatorID)})
	}
	return out, nil
}

func profileOrID(profiles map[string]entity.PublicProfile, id string) entity.PublicProfile {
	if p, ok := profiles[id]; ok {
		return p
	}
	return entity.PublicProfile{ID: id}
}

// Get returns the event with creator and participants expanded.
func (s *EventService) Get(ctx context.Context, id string) (*entity.EventDetail, error) {
	d, version, ok := s.Projections.cachedDetail(ctx, id)
	if ok {
		return d, nil
	}
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := append([]string{e.CreatorID}, e.Participants...)
	profiles, err := s.Users.GetProfiles(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load profiles -> %w", err)
	}
	d = &entity.EventDetail{
		Event:        *e,
		Creator:      profileOrID(profiles, e.CreatorID),
		Participants: make([]entity.PublicProfile, 0, len(e.Participants)),
	}
	for _, pid := range e.Participants {
		p := profileOrID(profiles, pid)
		p.Location = ""
		d.Participants = append(d.Participants, p)
	}
	s.Projections.storeDetail(ctx, d, version)
	return d, nil
}

// Update applies a partial update. Only the creator may update; protected
// fields are refused and the merged result must pass the create rules.
func (s *EventService) Update(ctx context.Context, id, callerID string, in UpdateEventInput) (*entity.Event, error) {
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.CreatorID != callerID {
		return nil, ErrForbidden
	}
	if len(in.Immutable) > 0 || len(in.Invalid) > 0 {
		fields := make(map[string]string, len(in.Immutable)+len(in.Invalid))
		for name, msg := range in.Invalid {
			fields[name] = msg
		}
		for _, name := range in.Immutable {
			fields[name] = "cannot be modified"
		}
		return nil, invalidFields(fields)
	}

	f := eventFields{
		Title:           e.Title,
		Description:     e.Description,
		Location:        e.Location,
		Date:            e.Date,
		MaxParticipants: e.MaxParticipants,
	}
	if in.Title != nil {
		f.Title = *in.Title
	}
	if in.Description != nil {
		f.Description = *in.Description
	}
	if in.Location != nil {
		f.Location = *in.Location
	}
	if in.Date != nil {
		f.Date = in.Date.UTC()
	}
	if in.MaxParticipants != nil {
		f.MaxParticipants = *in.MaxParticipants
	}
	f.normalize()
	if err := f.validate(); err != nil {
		return nil, err
	}

	e.Title, e.Description, e.Location = f.Title, f.Description, f.Location
	e.Date, e.MaxParticipants = f.Date, f.MaxParticipants
	updated, err := s.Events.Update(ctx, e)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, ErrEventNotFound
	case errors.Is(err, repo.ErrCapacityBelowParticipants):
		return nil, invalid("maxParticipants", "cannot be lower than the current number of participants")
	case err != nil:
		helpers.LogError(s.Logger, "update event failed", err, logrus.Fields{"event_id": id})
		return nil, fmt.Errorf("update event -> %w", err)
	}
	s.Projections.Changed(ctx, updated)
	return updated, nil
}

// Delete removes the event for good. Only the creator may delete.
func (s *EventService) Delete(ctx context.Context, id, callerID string) error {
	e, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if e.CreatorID != callerID {
		return ErrForbidden
	}
	if err := s.Events.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrEventNotFound
		}
		helpers.LogError(s.Logger, "delete event failed", err, logrus.Fields{"event_id": id})
		return fmt.Errorf("delete event -> %w", err)
	}
	eventsDeleted.Add(1)
	s.Projections.Removed(ctx, id)
	s.Notifier.EventCancelled(ctx, e)
	return nil
}

// UploadCover stores an image for the event and records its URL. Creator only.
func (s *EventService) UploadCover(ctx context.Context, id, callerID string, r io.Reader, filename, contentType string) (*entity.Event, error) {
	if s.Covers == nil {
		return nil, fmt.Errorf("cover upload: %w", ErrFeatureDisabled)
	}
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.CreatorID != callerID {
		return nil, ErrForbidden
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, invalid("cover", "must be an image")
	}

	url, err := s.Covers.PutCover(ctx, id, filename, contentType, r)
	if err != nil {
		helpers.LogError(s.Logger, "upload cover failed", err, logrus.Fields{"event_id": id})
		return nil, fmt.Errorf("upload cover -> %w", err)
	}
	if err := s.Events.SetCoverURL(ctx, id, url); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("save cover -> %w", err)
	}
	e, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Projections.Changed(ctx, e)
	return e, nil
}

const (
	defaultSearchSize = 10
	maxSearchSize     = 50
)

// Search runs q against the full-text index and returns hits in rank order.
func (s *EventService) Search(ctx context.Context, q string, size int) ([]entity.EventSummary, error) {
	if s.Projections == nil || s.Projections.Index == nil {
		return nil, fmt.Errorf("search: %w", ErrFeatureDisabled)
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, invalid("q", "is required")
	}
	switch {
	case size <= 0:
		size = defaultSearchSize
	case size > maxSearchSize:
		size = maxSearchSize
	}
	ids, err := s.Projections.Index.Search(ctx, q, size)
	if err != nil {
		return nil, fmt.Errorf("search events -> %w", err)
	}

	events := make([]entity.Event, 0, len(ids))
	for _, id := range ids {
		e, err := s.Events.GetByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			continue // index lags behind a delete
		}
		if err != nil {
			return nil, fmt.Errorf("load hit -> %w", err)
		}
		events = append(events, *e)
	}
	return s.summaries(ctx, events)
}

func (s *EventService) load(ctx context.Context, id string) (*entity.Event, error) {
	e, err := s.Events.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event -> %w", err)
	}
	return e, nil
}
