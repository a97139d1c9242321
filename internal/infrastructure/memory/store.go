package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-event-finder/internal/domain/entity"
	"github.com/oksasatya/go-event-finder/internal/domain/repository"
)

// Store keeps users and events in process memory. Every read hands out copies
// and every mutation happens under mu, so Join is a single critical section.
type Store struct {
	mu      sync.RWMutex
	users   map[string]*entity.User
	byEmail map[string]string
	events  map[string]*entity.Event
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:   make(map[string]*entity.User),
		byEmail: make(map[string]string),
		events:  make(map[string]*entity.Event),
		now:     time.Now,
	}
}

// Users exposes the store as a UserRepository.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Events exposes the store as an EventRepository.
func (s *Store) Events() repository.EventRepository { return eventRepo{s} }

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[u.Email]; ok {
		return repository.ErrEmailTaken
	}
	now := s.now()
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = now, now
	c := *u
	s.users[u.ID] = &c
	s.byEmail[u.Email] = u.ID
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	id, ok := r.s.byEmail[email]
	r.s.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r userRepo) GetProfiles(_ context.Context, ids []string) (map[string]entity.PublicProfile, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]entity.PublicProfile, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u.Profile()
		}
	}
	return out, nil
}

type eventRepo struct{ s *Store }

func (r eventRepo) Create(_ context.Context, e *entity.Event) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	e.ID = uuid.NewString()
	e.CreatedAt, e.UpdatedAt = now, now
	if e.Participants == nil {
		e.Participants = []string{}
	}
	e.CurrentParticipants = len(e.Participants)
	s.events[e.ID] = e.Clone()
	return nil
}

func (r eventRepo) List(_ context.Context, f entity.EventFilter) ([]entity.Event, error) {
	s := r.s
	s.mu.RLock()
	out := make([]entity.Event, 0, len(s.events))
	for _, e := range s.events {
		if f.Matches(e) {
			out = append(out, *e.Clone())
		}
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (r eventRepo) GetByID(_ context.Context, id string) (*entity.Event, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return e.Clone(), nil
}

func (r eventRepo) Update(_ context.Context, e *entity.Event) (*entity.Event, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.events[e.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if e.MaxParticipants < cur.CurrentParticipants {
		return nil, repository.ErrCapacityBelowParticipants
	}
	cur.Title = e.Title
	cur.Description = e.Description
	cur.Location = e.Location
	cur.Date = e.Date
	cur.MaxParticipants = e.MaxParticipants
	cur.UpdatedAt = s.now()
	return cur.Clone(), nil
}

func (r eventRepo) SetCoverURL(_ context.Context, id, url string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.events[id]
	if !ok {
		return repository.ErrNotFound
	}
	cur.CoverURL = url
	cur.UpdatedAt = s.now()
	return nil
}

func (r eventRepo) Delete(_ context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (r eventRepo) AddParticipant(_ context.Context, eventID, userID string) (*entity.Event, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.events[eventID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if cur.IsFull() {
		return nil, repository.ErrCapacityReached
	}
	if cur.HasParticipant(userID) {
		return nil, repository.ErrDuplicateParticipant
	}
	cur.Participants = append(cur.Participants, userID)
	cur.CurrentParticipants = len(cur.Participants)
	cur.UpdatedAt = s.now()
	return cur.Clone(), nil
}
