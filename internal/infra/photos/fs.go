package photos

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FilesystemArchive stores each photo as a file named after the student id,
// with a JSON sidecar (`<id>.meta`) carrying content type, checksum, and
// timestamps. Writes go through a temp file and rename so a replaced photo is
// never observed half-written.
type FilesystemArchive struct {
	dir string
}

var _ Archive = (*FilesystemArchive)(nil)

// NewFilesystemArchive opens an archive rooted at dir, creating it if needed.
// An empty dir defaults to ./photodata.
func NewFilesystemArchive(dir string) (*FilesystemArchive, error) {
	if dir == "" {
		dir = "./photodata"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FilesystemArchive{dir: dir}, nil
}

func (a *FilesystemArchive) Driver() Driver { return DriverFilesystem }

// Dir returns the archive root directory.
func (a *FilesystemArchive) Dir() string { return a.dir }

type photoMeta struct {
	ContentType string    `json:"contentType,omitempty"`
	ETag        string    `json:"etag"`
	Size        int64     `json:"size"`
	StoredAt    time.Time `json:"storedAt"`
}

func (a *FilesystemArchive) paths(studentID string) (dataPath, metaPath string, err error) {
	if err := validateStudentID(studentID); err != nil {
		return "", "", err
	}
	dataPath = filepath.Join(a.dir, studentID)
	return dataPath, dataPath + ".meta", nil
}

func (a *FilesystemArchive) Put(_ context.Context, studentID string, r io.Reader, contentType string) (Photo, error) {
	dataPath, metaPath, err := a.paths(studentID)
	if err != nil {
		return Photo{}, err
	}
	tmp, err := os.CreateTemp(a.dir, ".upload-*")
	if err != nil {
		return Photo{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, h), r)
	if err != nil {
		_ = tmp.Close()
		return Photo{}, err
	}
	if err := tmp.Close(); err != nil {
		return Photo{}, err
	}
	meta := photoMeta{
		ContentType: contentType,
		ETag:        hex.EncodeToString(h.Sum(nil)),
		Size:        size,
		StoredAt:    time.Now().UTC(),
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return Photo{}, err
	}
	if err := os.Rename(tmp.Name(), dataPath); err != nil {
		return Photo{}, err
	}
	if err := os.WriteFile(metaPath, raw, 0o644); err != nil {
		return Photo{}, err
	}
	return photoFromMeta(studentID, meta), nil
}

func (a *FilesystemArchive) Get(_ context.Context, studentID string) (Photo, io.ReadCloser, error) {
	dataPath, metaPath, err := a.paths(studentID)
	if err != nil {
		return Photo{}, nil, err
	}
	meta, err := readMeta(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Photo{}, nil, NotFoundError{StudentID: studentID}
		}
		return Photo{}, nil, err
	}
	f, err := os.Open(dataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Photo{}, nil, NotFoundError{StudentID: studentID}
		}
		return Photo{}, nil, err
	}
	return photoFromMeta(studentID, meta), f, nil
}

func (a *FilesystemArchive) Delete(_ context.Context, studentID string) (bool, error) {
	dataPath, metaPath, err := a.paths(studentID)
	if err != nil {
		return false, err
	}
	err = os.Remove(dataPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := os.Remove(metaPath); err != nil && !os.IsNotExist(err) {
		return true, err
	}
	return true, nil
}

func (a *FilesystemArchive) List(_ context.Context) ([]Photo, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, err
	}
	var out []Photo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".meta") {
			continue
		}
		meta, err := readMeta(filepath.Join(a.dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		out = append(out, photoFromMeta(strings.TrimSuffix(name, ".meta"), meta))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}

func (a *FilesystemArchive) URL(context.Context, string, time.Duration) (string, error) {
	return "", ErrNoURL
}

func readMeta(path string) (photoMeta, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return photoMeta{}, err
	}
	var meta photoMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return photoMeta{}, err
	}
	return meta, nil
}

func photoFromMeta(studentID string, meta photoMeta) Photo {
	return Photo{
		StudentID:   studentID,
		Size:        meta.Size,
		ContentType: meta.ContentType,
		ETag:        meta.ETag,
		StoredAt:    meta.StoredAt,
	}
}
