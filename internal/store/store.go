package store

import "context"

// Store is the string-keyed persistence collaborator: last write wins, no
// atomicity across keys, bounded total payload. Values are plain strings so
// everything persisted stays JSON-serializable.
type Store interface {
	Get(ctx context.Context, keys ...string) (map[string]string, error)
	Set(ctx context.Context, values map[string]string) error
	Remove(ctx context.Context, key string) error
}
