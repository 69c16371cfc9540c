package cache

import (
	"context"
	"time"

	"github.com/redis/rueidis"
)

type RedisSnapshotCache struct {
	client rueidis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisSnapshotCache(client rueidis.Client, prefix string, ttl time.Duration) *RedisSnapshotCache {
	return &RedisSnapshotCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisSnapshotCache) key(username string) string {
	return r.prefix + username
}

func (r *RedisSnapshotCache) Get(ctx context.Context, username string) (string, error) {
	cmd := r.client.B().Get().Key(r.key(username)).Build()
	val, err := r.client.Do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", ErrCacheMiss
		}
		return "", err
	}

	return val, nil
}

func (r *RedisSnapshotCache) Set(ctx context.Context, username, stateJSON string) error {
	set := r.client.B().Set().Key(r.key(username)).Value(stateJSON)
	if seconds := int64(r.ttl / time.Second); seconds > 0 {
		return r.client.Do(ctx, set.ExSeconds(seconds).Build()).Error()
	}
	return r.client.Do(ctx, set.Build()).Error()
}

func (r *RedisSnapshotCache) Fill(ctx context.Context, username, stateJSON string) error {
	set := r.client.B().Set().Key(r.key(username)).Value(stateJSON).Nx()

	var err error
	if seconds := int64(r.ttl / time.Second); seconds > 0 {
		err = r.client.Do(ctx, set.ExSeconds(seconds).Build()).Error()
	} else {
		err = r.client.Do(ctx, set.Build()).Error()
	}
	// NX replies nil when the key already holds a newer value.
	if err != nil && !rueidis.IsRedisNil(err) {
		return err
	}
	return nil
}

func (r *RedisSnapshotCache) Invalidate(ctx context.Context, username string) error {
	cmd := r.client.B().Del().Key(r.key(username)).Build()
	return r.client.Do(ctx, cmd).Error()
}
