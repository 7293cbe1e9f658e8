// Package storage holds the object storage boundary for uploaded files.
// The document core only ever sees the resulting key: storing the raw
// bytes happens here, before a document row is created.
package storage

import (
	"context"
	"io"
	"time"
)

// PutOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; set -1 to let the
// backend chunk as it supports. ContentType and Metadata are optional.
type PutOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ETag        string
	ContentType string
}

// Storage is an S3-compatible object store client. Methods take a context
// and stream their payload; nothing touches local disk.
type Storage interface {
	// Put uploads an object under the given key.
	Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited download URL for the object.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
