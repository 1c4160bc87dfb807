// Package photos stores resident photos outside the hall snapshot. The hall
// tree only carries photo URLs; the binary payloads live in an archive backend
// selected at startup.
package photos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Driver identifies a concrete archive backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // local directory (default, dev)
	DriverS3         Driver = "s3"     // S3 / MinIO compatible
	DriverMemory     Driver = "memory" // in-process (tests)
)

// Photo describes a stored resident photo.
type Photo struct {
	StudentID   string    `json:"studentId"`
	Size        int64     `json:"sizeBytes"`
	ContentType string    `json:"contentType,omitempty"`
	ETag        string    `json:"etag,omitempty"`
	StoredAt    time.Time `json:"storedAt"`
}

// Archive stores one photo per student. Re-uploading replaces the previous
// photo, matching how residents update their profile picture.
type Archive interface {
	// Put stores or replaces the photo for a student.
	Put(ctx context.Context, studentID string, r io.Reader, contentType string) (Photo, error)
	// Get returns the photo metadata and content. The caller closes the reader.
	Get(ctx context.Context, studentID string) (Photo, io.ReadCloser, error)
	// Delete removes a student's photo. Returns false when none was stored.
	Delete(ctx context.Context, studentID string) (bool, error)
	// List returns metadata for every stored photo ordered by student id.
	List(ctx context.Context) ([]Photo, error)
	// URL returns a time-limited download URL when the backend supports it.
	URL(ctx context.Context, studentID string, expiry time.Duration) (string, error)
	Driver() Driver
}

// ErrNoURL is returned by backends that cannot mint download URLs.
var ErrNoURL = errors.New("photos: download URLs not supported by this backend")

// NotFoundError reports a missing photo.
type NotFoundError struct {
	StudentID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("photos: no photo stored for student %s", e.StudentID)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

func validateStudentID(id string) error {
	if id == "" {
		return fmt.Errorf("photos: empty student id")
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("photos: invalid student id %q", id)
		}
	}
	return nil
}
