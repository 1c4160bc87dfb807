package photos

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sort"
	"sync"
	"time"
)

type memoryEntry struct {
	photo Photo
	data  []byte
}

// MemoryArchive keeps photos in process memory. Intended for tests and
// ephemeral deployments.
type MemoryArchive struct {
	mu   sync.RWMutex
	objs map[string]memoryEntry
}

var _ Archive = (*MemoryArchive)(nil)

// NewMemoryArchive returns an empty in-process archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{objs: make(map[string]memoryEntry)}
}

func (a *MemoryArchive) Driver() Driver { return DriverMemory }

func (a *MemoryArchive) Put(_ context.Context, studentID string, r io.Reader, contentType string) (Photo, error) {
	if err := validateStudentID(studentID); err != nil {
		return Photo{}, err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return Photo{}, err
	}
	sum := sha256.Sum256(b)
	photo := Photo{
		StudentID:   studentID,
		Size:        int64(len(b)),
		ContentType: contentType,
		ETag:        hex.EncodeToString(sum[:]),
		StoredAt:    time.Now().UTC(),
	}
	a.mu.Lock()
	a.objs[studentID] = memoryEntry{photo: photo, data: b}
	a.mu.Unlock()
	return photo, nil
}

func (a *MemoryArchive) Get(_ context.Context, studentID string) (Photo, io.ReadCloser, error) {
	a.mu.RLock()
	entry, ok := a.objs[studentID]
	a.mu.RUnlock()
	if !ok {
		return Photo{}, nil, NotFoundError{StudentID: studentID}
	}
	data := make([]byte, len(entry.data))
	copy(data, entry.data)
	return entry.photo, io.NopCloser(bytes.NewReader(data)), nil
}

func (a *MemoryArchive) Delete(_ context.Context, studentID string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.objs[studentID]
	delete(a.objs, studentID)
	return ok, nil
}

func (a *MemoryArchive) List(_ context.Context) ([]Photo, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Photo, 0, len(a.objs))
	for _, entry := range a.objs {
		out = append(out, entry.photo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}

func (a *MemoryArchive) URL(context.Context, string, time.Duration) (string, error) {
	return "", ErrNoURL
}
