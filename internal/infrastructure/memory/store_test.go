package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-event-finder/internal/domain/entity"
	"github.com/oksasatya/go-event-finder/internal/domain/repository"
)

func newEvent(title, location string, date time.Time, max int) *entity.Event {
	return &entity.Event{
		Title:           title,
		Description:     "about " + title,
		Location:        location,
		Date:            date,
		MaxParticipants: max,
		CreatorID:       "creator",
	}
}

func TestEvents_CreateAssignsIdentity(t *testing.T) {
	events := NewStore().Events()
	ctx := context.Background()

	e := newEvent("Go meetup", "Berlin", time.Now(), 3)
	require.NoError(t, events.Create(ctx, e))
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.CreatedAt.IsZero())
	assert.Equal(t, 0, e.CurrentParticipants)
	assert.Empty(t, e.Participants)

	got, err := events.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go meetup", got.Title)
}

func TestEvents_ListFiltersAndOrders(t *testing.T) {
	events := NewStore().Events()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)

	require.NoError(t, events.Create(ctx, newEvent("Late Jazz", "NEW YORK", base.Add(48*time.Hour), 5)))
	require.NoError(t, events.Create(ctx, newEvent("Early Jazz", "New York", base, 5)))
	require.NoError(t, events.Create(ctx, newEvent("Rust Night", "Boston", base.Add(24*time.Hour), 5)))

	all, err := events.List(ctx, entity.EventFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Early Jazz", all[0].Title)
	assert.Equal(t, "Rust Night", all[1].Title)
	assert.Equal(t, "Late Jazz", all[2].Title)

	ny, err := events.List(ctx, entity.EventFilter{Location: "new york", Search: "JAZZ"})
	require.NoError(t, err)
	assert.Len(t, ny, 2)

	none, err := events.List(ctx, entity.EventFilter{Location: "new york", Search: "rust"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEvents_ReadsDoNotAliasStoredParticipants(t *testing.T) {
	events := NewStore().Events()
	ctx := context.Background()

	e := newEvent("Go meetup", "Berlin", time.Now(), 3)
	require.NoError(t, events.Create(ctx, e))
	_, err := events.AddParticipant(ctx, e.ID, "u1")
	require.NoError(t, err)

	got, err := events.GetByID(ctx, e.ID)
	require.NoError(t, err)
	got.Participants[0] = "mutated"

	again, err := events.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, again.Participants)
}

func TestEvents_AddParticipant(t *testing.T) {
	events := NewStore().Events()
	ctx := context.Background()

	e := newEvent("Small", "Oslo", time.Now(), 1)
	require.NoError(t, events.Create(ctx, e))

	_, err := events.AddParticipant(ctx, "missing", "u1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err := events.AddParticipant(ctx, e.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentParticipants)
	assert.Equal(t, []string{"u1"}, got.Participants)

	// full is reported before duplicate
	_, err = events.AddParticipant(ctx, e.ID, "u1")
	assert.ErrorIs(t, err, repository.ErrCapacityReached)
	_, err = events.AddParticipant(ctx, e.ID, "u2")
	assert.ErrorIs(t, err, repository.ErrCapacityReached)
}

func TestEvents_AddParticipantDuplicate(t *testing.T) {
	events := NewStore().Events()
	ctx := context.Background()

	e := newEvent("Roomy", "Oslo", time.Now(), 5)
	require.NoError(t, events.Create(ctx, e))
	_, err := events.AddParticipant(ctx, e.ID, "u1")
	require.NoError(t, err)

	_, err = events.AddParticipant(ctx, e.ID, "u1")
	assert.ErrorIs(t, err, repository.ErrDuplicateParticipant)

	got, err := events.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentParticipants)
}

func TestEvents_AddParticipantConcurrent(t *testing.T) {
	events := NewStore().Events()
	ctx := context.Background()

	const capacity, callers = 5, 40
	e := newEvent("Race", "Lima", time.Now(), capacity)
	require.NoError(t, events.Create(ctx, e))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := events.AddParticipant(ctx, e.ID, string(rune('A'+i))); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, capacity, ok)
	got, err := events.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, got.CurrentParticipants)
	assert.Len(t, got.Participants, capacity)
}

func TestEvents_UpdateRefusesCapacityBelowParticipants(t *testing.T) {
	events := NewStore().Events()
	ctx := context.Background()

	e := newEvent("Shrink", "Rome", time.Now(), 3)
	require.NoError(t, events.Create(ctx, e))
	for _, u := range []string{"a", "b"} {
		_, err := events.AddParticipant(ctx, e.ID, u)
		require.NoError(t, err)
	}

	patch := *e
	patch.MaxParticipants = 1
	_, err := events.Update(ctx, &patch)
	assert.ErrorIs(t, err, repository.ErrCapacityBelowParticipants)

	patch.MaxParticipants = 2
	patch.Title = "Shrunk"
	got, err := events.Update(ctx, &patch)
	require.NoError(t, err)
	assert.Equal(t, "Shrunk", got.Title)
	assert.Equal(t, []string{"a", "b"}, got.Participants)
	assert.Equal(t, "creator", got.CreatorID)
}

func TestEvents_Delete(t *testing.T) {
	events := NewStore().Events()
	ctx := context.Background()

	e := newEvent("Gone", "Paris", time.Now(), 3)
	require.NoError(t, events.Create(ctx, e))
	require.NoError(t, events.Delete(ctx, e.ID))

	_, err := events.GetByID(ctx, e.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, events.Delete(ctx, e.ID), repository.ErrNotFound)
}

func TestUsers_CreateAndProfiles(t *testing.T) {
	users := NewStore().Users()
	ctx := context.Background()

	u := &entity.User{Name: "Ada", Email: "ada@example.com", Password: "hash"}
	require.NoError(t, users.Create(ctx, u))
	assert.NotEmpty(t, u.ID)

	err := users.Create(ctx, &entity.User{Name: "Other", Email: "ada@example.com"})
	assert.ErrorIs(t, err, repository.ErrEmailTaken)

	byEmail, err := users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	profiles, err := users.GetProfiles(ctx, []string{u.ID, "ghost"})
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
	assert.Equal(t, "Ada", profiles[u.ID].Name)
}
