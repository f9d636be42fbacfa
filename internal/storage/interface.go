package storage

import (
	"context"
)

// Object is a single archived artifact.
type Object struct {
	Key         string
	Body        []byte
	ContentType string
	// Metadata is stored as user-defined object metadata (x-amz-meta-*).
	Metadata map[string]string
}

// ObjectStorage is where accepted memes are archived. Keys are written once;
// a stored object is never replaced.
type ObjectStorage interface {
	// EnsureBucket creates the target bucket when the backend allows it.
	EnsureBucket(ctx context.Context) error

	Put(ctx context.Context, obj Object) error

	// URL returns the address the object is served from.
	URL(key string) string

	Exists(ctx context.Context, key string) (bool, error)
}
