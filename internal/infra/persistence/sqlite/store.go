// Package sqlite persists the hall tree to a single SQLite table as JSON
// blobs. It snapshots the full state after every successful transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"hallcore/internal/infra/persistence/memory"
	"hallcore/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.PersistentStore = (*Store)(nil)

// Store wraps the in-memory store with a snapshotting SQLite backend.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore constructs a snapshotting SQLite-backed persistent store.
func NewStore(path string, engine *domain.RulesEngine, opts ...memory.Option) (*Store, error) {
	if path == "" {
		path = "hallcore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	ms := memory.NewStore(engine, opts...)
	s := &Store{Store: ms, db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

var buckets = []string{"blocks", "floors", "notices"}

// load hydrates the in-memory store from the state table. An unreadable
// bucket degrades to an empty snapshot (the caller reseeds) instead of
// failing open; the unparseable payload is abandoned.
func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	payloads := map[string][]byte{}
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		payloads[bucket] = payload
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	if len(payloads) == 0 {
		return nil
	}
	snapshot, err := decodeSnapshot(payloads)
	if err != nil {
		log.Printf("sqlite: discarding unreadable snapshot: %v", err)
		return nil
	}
	s.ImportState(snapshot)
	return nil
}

func decodeSnapshot(payloads map[string][]byte) (domain.Snapshot, error) {
	var snapshot domain.Snapshot
	if data, ok := payloads["blocks"]; ok {
		if err := json.Unmarshal(data, &snapshot.Blocks); err != nil {
			return domain.Snapshot{}, fmt.Errorf("decode blocks: %w", err)
		}
	}
	if data, ok := payloads["floors"]; ok {
		if err := json.Unmarshal(data, &snapshot.Floors); err != nil {
			return domain.Snapshot{}, fmt.Errorf("decode floors: %w", err)
		}
	}
	if data, ok := payloads["notices"]; ok {
		if err := json.Unmarshal(data, &snapshot.Notices); err != nil {
			return domain.Snapshot{}, fmt.Errorf("decode notices: %w", err)
		}
	}
	return snapshot, nil
}

func (s *Store) persist() (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range buckets {
		var data []byte
		switch bucket {
		case "blocks":
			data, err = json.Marshal(snapshot.Blocks)
		case "floors":
			data, err = json.Marshal(snapshot.Floors)
		case "notices":
			data, err = json.Marshal(snapshot.Notices)
		}
		if err != nil {
			retErr = err
			return retErr
		}
		if _, err = tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", bucket, err)
			return retErr
		}
	}
	return tx.Commit()
}

// RunInTransaction applies fn within a transaction, then snapshots state to
// SQLite if successful. A persist failure is logged and returned; the
// in-memory commit stands.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if pErr := s.persist(); pErr != nil {
		log.Printf("sqlite: persist failed, in-memory state retained: %v", pErr)
		return res, pErr
	}
	return res, nil
}

// ImportState replaces the in-memory tree and snapshots it immediately.
func (s *Store) ImportState(snap domain.Snapshot) {
	s.Store.ImportState(snap)
	if err := s.persist(); err != nil {
		log.Printf("sqlite: persist after import failed: %v", err)
	}
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
