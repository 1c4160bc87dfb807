// Package testutil provides a stub database/sql driver emulating the
// postgres state table for store tests.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

var stubSeq uint64

// StubConn records statements and emulates the bucket/payload state table.
type StubConn struct {
	mu       sync.Mutex
	Execs    []string
	Buckets  map[string][]byte
	FailExec bool
	FailPing bool
}

// NewStubDB registers a sql.DB backed by an in-memory stub connection.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{Buckets: make(map[string][]byte)}
	name := fmt.Sprintf("stubpg%d", atomic.AddUint64(&stubSeq, 1))
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

// SetBucket seeds a bucket payload as if a prior snapshot had been written.
func (c *StubConn) SetBucket(bucket string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Buckets[bucket] = append([]byte(nil), payload...)
}

type stubDriver struct {
	conn *StubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

// Prepare implements driver.Conn; statement mode is not used by the store.
func (c *StubConn) Prepare(string) (driver.Stmt, error) {
	return nil, fmt.Errorf("prepare not supported by stub")
}

// Close implements driver.Conn.
func (c *StubConn) Close() error { return nil }

// Begin implements driver.Conn.
func (c *StubConn) Begin() (driver.Tx, error) { return stubTx{}, nil }

// Ping implements driver.Pinger.
func (c *StubConn) Ping(context.Context) error {
	if c.FailPing {
		return fmt.Errorf("stub ping failure")
	}
	return nil
}

// ExecContext implements driver.ExecerContext, recording DDL and applying
// state-table upserts to the in-memory bucket map.
func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailExec {
		return nil, fmt.Errorf("stub exec failure")
	}
	c.Execs = append(c.Execs, query)
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT INTO STATE") {
		if len(args) != 2 {
			return nil, fmt.Errorf("expected 2 args, got %d", len(args))
		}
		bucket, ok := args[0].Value.(string)
		if !ok {
			return nil, fmt.Errorf("bucket arg not string: %T", args[0].Value)
		}
		var payload []byte
		switch v := args[1].Value.(type) {
		case []byte:
			payload = append([]byte(nil), v...)
		case string:
			payload = []byte(v)
		default:
			return nil, fmt.Errorf("payload arg not bytes: %T", v)
		}
		c.Buckets[bucket] = payload
	}
	return driver.RowsAffected(1), nil
}

// QueryContext implements driver.QueryerContext for the state select.
func (c *StubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !strings.Contains(query, "FROM state") {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	rows := &stubRows{}
	for bucket, payload := range c.Buckets {
		rows.data = append(rows.data, [2]driver.Value{bucket, append([]byte(nil), payload...)})
	}
	return rows, nil
}

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

type stubRows struct {
	data [][2]driver.Value
	pos  int
}

func (r *stubRows) Columns() []string { return []string{"bucket", "payload"} }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.data) {
		return io.EOF
	}
	dest[0] = r.data[r.pos][0]
	dest[1] = r.data[r.pos][1]
	r.pos++
	return nil
}
