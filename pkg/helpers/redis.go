package helpers

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes a redis client
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// KeyUserSession holds the active login session id of a user.
func KeyUserSession(uid string) string {
	return "user:session:" + uid
}

// KeyEventDetail caches the expanded detail view of an event.
func KeyEventDetail(eventID string) string {
	return "event:detail:" + eventID
}

// KeyEventVersion counts invalidations of an event's cached detail.
func KeyEventVersion(eventID string) string {
	return "event:version:" + eventID
}

func RedisDel(ctx context.Context, rdb *redis.Client, key string) error {
	return rdb.Del(ctx, key).Err()
}
