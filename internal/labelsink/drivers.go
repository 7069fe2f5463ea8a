package labelsink

import (
	"context"

	sinkfs "wols/internal/infra/labelsink/fs"
	sinkmemory "wols/internal/infra/labelsink/memory"
	sinks3 "wols/internal/infra/labelsink/s3"
)

// NewFilesystem constructs a filesystem-backed Store rooted at the provided
// path. It returns the interface so call sites depend on Store, not on the
// driver type.
func NewFilesystem(root string) (Store, error) {
	return sinkfs.New(root)
}

// NewMemory returns an in-memory Store suitable for tests.
func NewMemory() Store { return sinkmemory.New() }

// S3Config re-exports the S3 driver configuration.
type S3Config = sinks3.Config

// NewS3 constructs an S3-backed Store from the provided configuration.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	return sinks3.New(ctx, cfg)
}

// OpenS3FromEnv constructs an S3 store using environment variables.
func OpenS3FromEnv(ctx context.Context) (Store, error) {
	return sinks3.OpenFromEnv(ctx)
}

// NewMockS3ForTests exposes the in-memory S3 mock for cross-package tests.
func NewMockS3ForTests() Store { return sinks3.NewMockForTests() }
