// Package core defines the storage abstractions shared by label sink
// backends. A sink holds rendered label artifacts (QR PNGs) keyed by
// artifact path; higher layers never touch a concrete backend directly.
package core

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a concrete label sink backend.
type Driver string

const (
	// DriverFilesystem stores artifacts under a local directory (default, dev).
	DriverFilesystem Driver = "fs"
	// DriverS3 stores artifacts in an S3 / MinIO compatible bucket.
	DriverS3 Driver = "s3"
	// DriverMemory keeps artifacts in process memory (tests).
	DriverMemory Driver = "memory"
)

// PutOptions carries optional artifact attributes.
type PutOptions struct {
	ContentType string            // MIME type, image/png for rendered labels
	Metadata    map[string]string // small flat key-value: specimen id, caption
}

// SignedURLOptions configures URL pre-signing.
type SignedURLOptions struct {
	Method string        // GET; anything else is unsupported
	Expiry time.Duration // default 15m
}

// Info describes a stored label artifact.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
	URL          string            `json:"url,omitempty"`
}

// Store is the artifact storage surface the label service depends on.
type Store interface {
	// Put stores a new artifact at key. It MUST fail if the key already
	// exists: issuance keys are unique and a collision means a logic error.
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	// Get returns artifact metadata and contents. Missing keys surface an
	// os.ErrNotExist style error.
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// Delete removes an artifact. Returns (false, nil) when it was absent.
	Delete(ctx context.Context, key string) (bool, error)
	// List returns artifacts whose key has the prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]Info, error)
	// PresignURL returns a time-limited GET URL for the key. Backends
	// without URL support return ErrUnsupported.
	PresignURL(ctx context.Context, key string, opts SignedURLOptions) (string, error)
	// Driver reports the configured backend.
	Driver() Driver
}

// ErrUnsupported is returned when an optional capability is not available.
var ErrUnsupported = errors.New("labelsink: unsupported operation")
