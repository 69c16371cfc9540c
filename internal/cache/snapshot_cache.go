package cache

import (
	"context"
	"errors"
)

// SnapshotCache keeps recently read snapshots close to the server. The store
// stays authoritative. Writers overwrite the cached value with what they
// committed; readers only fill an empty key, so a fill carrying a row read
// before a concurrent write cannot replace the newer value.
type SnapshotCache interface {
	Get(ctx context.Context, username string) (string, error)

	// Set overwrites the cached snapshot.
	Set(ctx context.Context, username, stateJSON string) error

	// Fill stores the snapshot only if nothing is cached for username.
	Fill(ctx context.Context, username, stateJSON string) error

	Invalidate(ctx context.Context, username string) error
}

var ErrCacheMiss = errors.New("snapshot not cached")
