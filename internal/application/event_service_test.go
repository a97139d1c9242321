package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-event-finder/internal/domain/entity"
	repo "github.com/oksasatya/go-event-finder/internal/domain/repository"
	"github.com/oksasatya/go-event-finder/pkg/mailer/templates"
)

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	return ve.Fields
}

func TestCreate_Valid(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "ada")

	in := validInput(10)
	in.Title = "  Go Meetup  "
	e, err := f.events.Create(context.Background(), creator.ID, in)
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "Go Meetup", e.Title)
	assert.Equal(t, 0, e.CurrentParticipants)
	assert.Empty(t, e.Participants)
	assert.Equal(t, creator.ID, e.CreatorID)
	assert.Contains(t, f.index.docs, e.ID)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "ada")
	ctx := context.Background()

	_, err := f.events.Create(ctx, creator.ID, CreateEventInput{})
	require.ErrorIs(t, err, ErrValidation)
	fields := fieldsOf(t, err)
	for _, k := range []string{"title", "description", "location", "date", "maxParticipants"} {
		assert.Contains(t, fields, k)
	}

	in := validInput(0)
	_, err = f.events.Create(ctx, creator.ID, in)
	assert.Contains(t, fieldsOf(t, err), "maxParticipants")

	in = validInput(-3)
	_, err = f.events.Create(ctx, creator.ID, in)
	assert.Equal(t, "must be at least 1", fieldsOf(t, err)["maxParticipants"])

	in = validInput(5)
	in.Title = strings.Repeat("x", 101)
	_, err = f.events.Create(ctx, creator.ID, in)
	assert.Contains(t, fieldsOf(t, err), "title")

	in = validInput(5)
	in.Title = strings.Repeat("é", 100)
	_, err = f.events.Create(ctx, creator.ID, in)
	assert.NoError(t, err)

	in = validInput(5)
	in.Description = strings.Repeat("x", 501)
	_, err = f.events.Create(ctx, creator.ID, in)
	assert.Contains(t, fieldsOf(t, err), "description")

	in = validInput(5)
	in.Location = strings.Repeat("Long Street ", 100)
	_, err = f.events.Create(ctx, creator.ID, in)
	assert.NoError(t, err, "location has no length limit")

	in = validInput(5)
	in.Location = "   "
	in.Description = " \t"
	_, err = f.events.Create(ctx, creator.ID, in)
	fields = fieldsOf(t, err)
	assert.Contains(t, fields, "location")
	assert.Contains(t, fields, "description")
}

func TestList_FilterOrderAndCreator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.user(t, "ada")
	base := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	mk := func(title, desc, loc string, offset time.Duration) {
		in := validInput(5)
		in.Title, in.Description, in.Location, in.Date = title, desc, loc, base.Add(offset)
		_, err := f.events.Create(ctx, ada.ID, in)
		require.NoError(t, err)
	}
	mk("Jazz Night", "Live music", "New York", 48*time.Hour)
	mk("Go Meetup", "Talks about JAZZ-fast code", "new york city", 0)
	mk("Rust Night", "Systems", "Boston", 24*time.Hour)

	all, err := f.events.List(ctx, entity.EventFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Go Meetup", "Rust Night", "Jazz Night"}, []string{all[0].Title, all[1].Title, all[2].Title})
	assert.Equal(t, "ada", all[0].Creator.Name)
	assert.Equal(t, "ada@example.com", all[0].Creator.Email)
	assert.Equal(t, "Jakarta", all[0].Creator.Location)

	got, err := f.events.List(ctx, entity.EventFilter{Location: "NEW YORK", Search: "jazz"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = f.events.List(ctx, entity.EventFilter{Search: "nothing like this"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGet_ExpandsAndCaches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada, bob := f.user(t, "ada"), f.user(t, "bob")
	e := f.event(t, ada.ID, 5)

	_, err := f.members.Join(ctx, e.ID, bob.ID)
	require.NoError(t, err)

	d, err := f.events.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", d.Creator.Name)
	require.Len(t, d.Participants, 1)
	assert.Equal(t, entity.PublicProfile{ID: bob.ID, Name: "bob", Email: "bob@example.com"}, d.Participants[0])
	assert.Contains(t, f.cache.details, e.ID)

	_, err = f.events.Get(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

// joinDuringGet runs onGet right after the event row has been read.
type joinDuringGet struct {
	repo.EventRepository
	onGet func()
}

func (r *joinDuringGet) GetByID(ctx context.Context, id string) (*entity.Event, error) {
	e, err := r.EventRepository.GetByID(ctx, id)
	if r.onGet != nil {
		hook := r.onGet
		r.onGet = nil
		hook()
	}
	return e, err
}

func TestGet_DoesNotCacheDetailOutdatedByConcurrentJoin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada, bob := f.user(t, "ada"), f.user(t, "bob")
	e := f.event(t, ada.ID, 5)

	hooked := &joinDuringGet{EventRepository: f.events.Events}
	hooked.onGet = func() {
		_, err := f.members.Join(ctx, e.ID, bob.ID)
		require.NoError(t, err)
	}
	f.events.Events = hooked

	stale, err := f.events.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Empty(t, stale.Participants)
	assert.NotContains(t, f.cache.details, e.ID)

	fresh, err := f.events.Get(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, fresh.Participants, 1)
	assert.Equal(t, bob.ID, fresh.Participants[0].ID)
	assert.Contains(t, f.cache.details, e.ID)
}

func TestUpdate_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada, bob, cy := f.user(t, "ada"), f.user(t, "bob"), f.user(t, "cy")
	e := f.event(t, ada.ID, 5)
	title := "Renamed"

	_, err := f.events.Update(ctx, "missing", ada.ID, UpdateEventInput{Title: &title})
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, err = f.events.Update(ctx, e.ID, bob.ID, UpdateEventInput{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.events.Update(ctx, e.ID, ada.ID, UpdateEventInput{Immutable: []string{"participants", "creatorId"}})
	fields := fieldsOf(t, err)
	assert.Equal(t, "cannot be modified", fields["participants"])
	assert.Equal(t, "cannot be modified", fields["creatorId"])

	empty := "   "
	_, err = f.events.Update(ctx, e.ID, ada.ID, UpdateEventInput{Title: &empty})
	assert.Contains(t, fieldsOf(t, err), "title")

	for _, u := range []string{bob.ID, cy.ID} {
		_, err := f.members.Join(ctx, e.ID, u)
		require.NoError(t, err)
	}
	one := 1
	_, err = f.events.Update(ctx, e.ID, ada.ID, UpdateEventInput{MaxParticipants: &one})
	assert.Contains(t, fieldsOf(t, err), "maxParticipants")

	f.cache.details[e.ID] = &entity.EventDetail{Event: *e}
	two := 2
	updated, err := f.events.Update(ctx, e.ID, ada.ID, UpdateEventInput{Title: &title, MaxParticipants: &two})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, 2, updated.MaxParticipants)
	assert.Equal(t, 2, updated.CurrentParticipants)
	assert.Equal(t, ada.ID, updated.CreatorID)
	assert.Equal(t, "Talks and pizza", updated.Description)
	assert.NotContains(t, f.cache.details, e.ID)
	assert.Equal(t, "Renamed", f.index.docs[e.ID].Title)
}

func TestUpdate_FormatErrorsReportedAfterOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada, bob := f.user(t, "ada"), f.user(t, "bob")
	e := f.event(t, ada.ID, 5)
	bad := UpdateEventInput{Invalid: map[string]string{"maxParticipants": "must be a whole number"}}

	_, err := f.events.Update(ctx, "missing", ada.ID, bad)
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, err = f.events.Update(ctx, e.ID, bob.ID, bad)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.events.Update(ctx, e.ID, ada.ID, bad)
	assert.Equal(t, "must be a whole number", fieldsOf(t, err)["maxParticipants"])
}

func TestDelete_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada, bob := f.user(t, "ada"), f.user(t, "bob")
	e := f.event(t, ada.ID, 5)
	_, err := f.members.Join(ctx, e.ID, bob.ID)
	require.NoError(t, err)
	before := len(f.pub.sent())

	assert.ErrorIs(t, f.events.Delete(ctx, "missing", ada.ID), ErrEventNotFound)
	assert.ErrorIs(t, f.events.Delete(ctx, e.ID, bob.ID), ErrForbidden)

	deletedBefore := eventsDeleted.Value()
	require.NoError(t, f.events.Delete(ctx, e.ID, ada.ID))
	assert.Equal(t, deletedBefore+1, eventsDeleted.Value())

	_, err = f.events.Get(ctx, e.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.NotContains(t, f.index.docs, e.ID)

	jobs := f.pub.sent()[before:]
	require.Len(t, jobs, 1)
	assert.Equal(t, "bob@example.com", jobs[0].To)
	assert.Equal(t, templates.EventCancelled, jobs[0].Template)
}

func TestUploadCover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada, bob := f.user(t, "ada"), f.user(t, "bob")
	e := f.event(t, ada.ID, 5)

	_, err := f.events.UploadCover(ctx, e.ID, ada.ID, strings.NewReader("png"), "c.png", "image/png")
	assert.ErrorIs(t, err, ErrFeatureDisabled)

	covers := &fakeCovers{}
	f.events.Covers = covers

	_, err = f.events.UploadCover(ctx, e.ID, bob.ID, strings.NewReader("png"), "c.png", "image/png")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.events.UploadCover(ctx, e.ID, ada.ID, strings.NewReader("%PDF"), "c.pdf", "application/pdf")
	assert.ErrorIs(t, err, ErrValidation)

	got, err := f.events.UploadCover(ctx, e.ID, ada.ID, strings.NewReader("png"), "c.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "png", string(covers.got))
	assert.True(t, strings.HasSuffix(got.CoverURL, "/events/"+e.ID+"/c.png"))

	covers.err = errBoom
	_, err = f.events.UploadCover(ctx, e.ID, ada.ID, strings.NewReader("png"), "c.png", "image/png")
	assert.ErrorIs(t, err, errBoom)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.user(t, "ada")
	first := f.event(t, ada.ID, 5)
	second := f.event(t, ada.ID, 5)

	_, err := f.events.Search(ctx, "  ", 10)
	assert.ErrorIs(t, err, ErrValidation)

	f.index.hits = []string{second.ID, "stale-id", first.ID}
	got, err := f.events.Search(ctx, "meetup", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
	assert.Equal(t, "ada", got[0].Creator.Name)
	assert.Equal(t, 10, f.index.size)

	for size, want := range map[int]int{0: 10, -3: 10, 25: 25, 50: 50, 51: 50, 500: 50} {
		_, err = f.events.Search(ctx, "meetup", size)
		require.NoError(t, err)
		assert.Equal(t, want, f.index.size, "size %d", size)
	}

	f.events.Projections = nil
	_, err = f.events.Search(ctx, "meetup", 10)
	assert.ErrorIs(t, err, ErrFeatureDisabled)
}

func TestProjectionFailuresDoNotFailWrites(t *testing.T) {
	f := newFixture(t)
	ada := f.user(t, "ada")
	f.index.err = errBoom
	f.pub.err = errBoom

	e, err := f.events.Create(context.Background(), ada.ID, validInput(2))
	require.NoError(t, err)
	_, err = f.members.Join(context.Background(), e.ID, f.user(t, "bob").ID)
	require.NoError(t, err)
}
