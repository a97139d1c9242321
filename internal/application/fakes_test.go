package application

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-event-finder/internal/domain/entity"
	"github.com/oksasatya/go-event-finder/internal/infrastructure/memory"
	"github.com/oksasatya/go-event-finder/pkg/mailer"
)

type fixture struct {
	store   *memory.Store
	events  *EventService
	members *MembershipService
	cache   *fakeCache
	index   *fakeIndex
	pub     *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	cache := &fakeCache{details: map[string]*entity.EventDetail{}, versions: map[string]int64{}}
	index := &fakeIndex{docs: map[string]*entity.Event{}}
	pub := &fakePublisher{}
	proj := &Projections{Cache: cache, Index: index}
	notifier := &Notifier{Pub: pub, Users: store.Users(), AppName: "Event Finder", EventURL: "https://app.test/events/%s"}

	events := NewEventService(store.Events(), store.Users(), nil)
	events.Projections = proj
	events.Notifier = notifier
	members := NewMembershipService(store.Events(), nil)
	members.Projections = proj
	members.Notifier = notifier

	return &fixture{store: store, events: events, members: members, cache: cache, index: index, pub: pub}
}

func (f *fixture) user(t *testing.T, name string) *entity.User {
	t.Helper()
	u := &entity.User{Name: name, Email: name + "@example.com", Password: "x", Location: "Jakarta"}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u
}

func (f *fixture) event(t *testing.T, creatorID string, seats int) *entity.Event {
	t.Helper()
	e, err := f.events.Create(context.Background(), creatorID, validInput(seats))
	require.NoError(t, err)
	return e
}

func validInput(seats int) CreateEventInput {
	return CreateEventInput{
		Title:           "Go Meetup",
		Description:     "Talks and pizza",
		Location:        "Berlin",
		Date:            time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC),
		MaxParticipants: seats,
	}
}

type fakeCache struct {
	mu       sync.Mutex
	details  map[string]*entity.EventDetail
	versions map[string]int64
	drops    int
}

func (c *fakeCache) GetDetail(_ context.Context, id string) (*entity.EventDetail, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.details[id]
	return d, c.versions[id], ok
}

func (c *fakeCache) SetDetail(_ context.Context, d *entity.EventDetail, version int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[d.ID] != version {
		return
	}
	c.details[d.ID] = d
}

func (c *fakeCache) Drop(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.details, id)
	c.versions[id]++
	c.drops++
}

type fakeIndex struct {
	mu   sync.Mutex
	docs map[string]*entity.Event
	hits []string
	size int
	err  error
}

func (x *fakeIndex) Index(_ context.Context, e *entity.Event) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.docs[e.ID] = e.Clone()
	return x.err
}

func (x *fakeIndex) Remove(_ context.Context, id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.docs, id)
	return x.err
}

func (x *fakeIndex) Search(_ context.Context, _ string, size int) ([]string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.size = size
	return x.hits, x.err
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, body.(mailer.EmailJob))
	return nil
}

func (p *fakePublisher) sent() []mailer.EmailJob {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]mailer.EmailJob(nil), p.jobs...)
}

type fakeCovers struct {
	got []byte
	err error
}

func (c *fakeCovers) PutCover(_ context.Context, eventID, filename, _ string, r io.Reader) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	c.got = b
	return "https://storage.googleapis.com/bucket/events/" + eventID + "/" + filename, nil
}

var errBoom = errors.New("boom")
