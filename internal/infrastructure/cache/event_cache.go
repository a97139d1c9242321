package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-finder/internal/domain/entity"
	"github.com/oksasatya/go-event-finder/pkg/helpers"
)

// versionTTL outlives any detail TTL so a version is never forgotten while
// a stale detail could still be written.
const versionTTL = 24 * time.Hour

// EventCache keeps expanded event details in Redis as JSON, guarded by a
// per-event version counter.
type EventCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewEventCache(rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *EventCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &EventCache{rdb: rdb, ttl: ttl, logger: logger}
}

func parseVersion(v any) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

// GetDetail returns the cached detail, or on a miss the current version.
func (c *EventCache) GetDetail(ctx context.Context, id string) (*entity.EventDetail, int64, bool) {
	vals, err := c.rdb.MGet(ctx, helpers.KeyEventDetail(id), helpers.KeyEventVersion(id)).Result()
	if err != nil {
		c.warn("event cache read failed", err, id)
		return nil, -1, false
	}
	version := parseVersion(vals[1])
	raw, ok := vals[0].(string)
	if !ok {
		return nil, version, false
	}
	var d entity.EventDetail
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		c.warn("event cache decode failed", err, id)
		return nil, version, false
	}
	return &d, version, true
}

var errVersionMoved = errors.New("event changed since read")

// SetDetail writes d unless the event was dropped after version was read.
func (c *EventCache) SetDetail(ctx context.Context, d *entity.EventDetail, version int64) {
	if version < 0 {
		return
	}
	b, err := json.Marshal(d)
	if err != nil {
		c.warn("event cache encode failed", err, d.ID)
		return
	}
	verKey := helpers.KeyEventVersion(d.ID)
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, verKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errVersionMoved
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, helpers.KeyEventDetail(d.ID), b, c.ttl)
			return nil
		})
		return err
	}, verKey)
	switch {
	case err == nil, errors.Is(err, errVersionMoved), errors.Is(err, redis.TxFailedErr):
	default:
		c.warn("event cache write failed", err, d.ID)
	}
}

// Drop bumps the version and deletes the cached detail.
func (c *EventCache) Drop(ctx context.Context, id string) {
	verKey := helpers.KeyEventVersion(id)
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, verKey)
		p.Expire(ctx, verKey, versionTTL)
		p.Del(ctx, helpers.KeyEventDetail(id))
		return nil
	})
	if err != nil {
		c.warn("event cache delete failed", err, id)
	}
}

func (c *EventCache) warn(msg string, err error, id string) {
	if c.logger != nil {
		helpers.LogWarn(c.logger, msg, err, logrus.Fields{"event_id": id})
	}
}
