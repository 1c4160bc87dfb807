package photos

import (
	"context"
	"fmt"
	"os"
)

// Open selects an archive backend using environment variables.
//
//	HALLCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	HALLCORE_BLOB_FS_DIR: directory when driver=fs (default ./photodata)
//	(S3 variables documented in s3.go)
func Open(ctx context.Context) (Archive, error) {
	driver := os.Getenv("HALLCORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystemArchive(os.Getenv("HALLCORE_BLOB_FS_DIR"))
	case DriverS3:
		return OpenS3FromEnv(ctx)
	case DriverMemory:
		return NewMemoryArchive(), nil
	default:
		return nil, fmt.Errorf("photos: unknown blob driver %s", driver)
	}
}
