// Package storage is the content-addressable blob store the pipeline
// persists raw generated text into, one object per format.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned for unknown blob keys.
var ErrNotFound = errors.New("blob not found")

// BlobStore defines the contract for durable blob storage.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
