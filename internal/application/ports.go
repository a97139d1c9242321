package application

import (
	"context"
	"io"

	"github.com/oksasatya/go-event-finder/internal/domain/entity"
)

// The interfaces below are optional collaborators. A nil value disables the
// feature; the core event operations never depend on them.

// EventCache stores expanded event details. Every Drop bumps the event's
// version; SetDetail only writes when the version read by GetDetail still
// holds, so a detail built before a write never outlives it.
type EventCache interface {
	GetDetail(ctx context.Context, id string) (d *entity.EventDetail, version int64, ok bool)
	SetDetail(ctx context.Context, d *entity.EventDetail, version int64)
	Drop(ctx context.Context, id string)
}

// EventIndexer mirrors events into a full-text index.
type EventIndexer interface {
	Index(ctx context.Context, e *entity.Event) error
	Remove(ctx context.Context, id string) error
	// Search returns matching event ids, best match first.
	Search(ctx context.Context, q string, size int) ([]string, error)
}

// CoverStore saves cover images and returns their public URL.
type CoverStore interface {
	PutCover(ctx context.Context, eventID, filename, contentType string, r io.Reader) (string, error)
}

// JobPublisher puts a JSON job on the notification queue.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}
