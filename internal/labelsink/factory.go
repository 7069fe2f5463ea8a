package labelsink

import (
	"context"
	"fmt"
	"os"
)

// Open selects a sink implementation using environment variables.
//
//	WOLS_SINK_DRIVER: fs|s3|memory (default fs)
//	WOLS_SINK_FS_ROOT: directory root when driver=fs (default ./labeldata)
//	(S3 specific variables documented in the s3 driver)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("WOLS_SINK_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv("WOLS_SINK_FS_ROOT"))
	case DriverS3:
		return OpenS3FromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown sink driver %s", driver)
	}
}
