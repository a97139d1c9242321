package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-finder/internal/domain/entity"
	"github.com/oksasatya/go-event-finder/pkg/helpers"
)

// Projections keeps the cache and search index in step with event writes.
// Failures are logged and swallowed: the database stays the source of truth.
type Projections struct {
	Cache  EventCache
	Index  EventIndexer
	Logger *logrus.Logger
}

// cachedDetail returns a hit, or on a miss the version storeDetail must pass.
func (p *Projections) cachedDetail(ctx context.Context, id string) (*entity.EventDetail, int64, bool) {
	if p == nil || p.Cache == nil {
		return nil, 0, false
	}
	return p.Cache.GetDetail(ctx, id)
}

func (p *Projections) storeDetail(ctx context.Context, d *entity.EventDetail, version int64) {
	if p == nil || p.Cache == nil {
		return
	}
	p.Cache.SetDetail(ctx, d, version)
}

// Changed drops the cached detail and re-indexes e.
func (p *Projections) Changed(ctx context.Context, e *entity.Event) {
	if p == nil {
		return
	}
	if p.Cache != nil {
		p.Cache.Drop(ctx, e.ID)
	}
	if p.Index != nil {
		c, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := p.Index.Index(c, e); err != nil && p.Logger != nil {
			helpers.LogWarn(p.Logger, "es index failed", err, logrus.Fields{"event_id": e.ID})
		}
	}
}

// Removed forgets every projection of the event.
func (p *Projections) Removed(ctx context.Context, id string) {
	if p == nil {
		return
	}
	if p.Cache != nil {
		p.Cache.Drop(ctx, id)
	}
	if p.Index != nil {
		c, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := p.Index.Remove(c, id); err != nil && p.Logger != nil {
			helpers.LogWarn(p.Logger, "es delete failed", err, logrus.Fields{"event_id": id})
		}
	}
}
