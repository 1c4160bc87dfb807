// Package memory provides the in-memory implementation of the hall
// persistence store used for tests and as the transactional core of the
// durable backends.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"hallcore/pkg/avatar"
	"hallcore/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.PersistentStore = (*Store)(nil)

type state struct {
	blocks  []domain.Block
	floors  []domain.Floor
	notices []domain.Notice
}

func (s state) clone() state {
	cp := state{}
	if s.blocks != nil {
		cp.blocks = append([]domain.Block(nil), s.blocks...)
	}
	if s.floors != nil {
		cp.floors = make([]domain.Floor, 0, len(s.floors))
		for _, f := range s.floors {
			cp.floors = append(cp.floors, f.Clone())
		}
	}
	if s.notices != nil {
		cp.notices = append([]domain.Notice(nil), s.notices...)
	}
	return cp
}

// Store is an in-memory transactional store for the hall tree. Mutations run
// inside RunInTransaction against a cloned state; the clone replaces the
// committed state only after the rules engine passes.
type Store struct {
	mu     sync.RWMutex
	state  state
	engine *domain.RulesEngine
	ids    domain.IDSource
	avatar func(name string) string
	nowFn  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithIDSource overrides the identifier generator.
func WithIDSource(ids domain.IDSource) Option {
	return func(s *Store) { s.ids = ids }
}

// WithAvatarFunc overrides the photo URL derivation.
func WithAvatarFunc(fn func(name string) string) Option {
	return func(s *Store) { s.avatar = fn }
}

// WithNowFunc overrides the clock used for notice timestamps.
func WithNowFunc(fn func() time.Time) Option {
	return func(s *Store) { s.nowFn = fn }
}

// NewStore constructs an empty in-memory store backed by the provided rules
// engine.
func NewStore(engine *domain.RulesEngine, opts ...Option) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	s := &Store{
		engine: engine,
		ids:    domain.IDFunc(uuid.NewString),
		avatar: avatar.URL,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExportState returns a deep copy of the committed tree.
func (s *Store) ExportState() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Snapshot{Blocks: s.state.blocks, Floors: s.state.floors, Notices: s.state.notices}.Clone()
}

// ImportState replaces the committed tree with the snapshot, applying the
// legacy block patch for snapshots that predate blocks.
func (s *Store) ImportState(snap domain.Snapshot) {
	snap = snap.Normalized()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state{blocks: snap.Blocks, floors: snap.Floors, notices: snap.Notices}
}

// Empty reports whether the store holds no blocks, floors, or notices.
func (s *Store) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.blocks) == 0 && len(s.state.floors) == 0 && len(s.state.notices) == 0
}

// RunInTransaction executes fn within a transactional copy of the store
// state. The candidate state is committed only when fn and every registered
// rule pass.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{store: s, state: s.state.clone(), now: s.nowFn()}
	if err := fn(tx); err != nil {
		return domain.Result{}, err
	}

	var result domain.Result
	if s.engine != nil {
		view := view{state: &tx.state}
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return domain.Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(ctx context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(view{state: &snapshot})
}

// Blocks returns all blocks from committed state.
func (s *Store) Blocks() []domain.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Block(nil), s.state.blocks...)
}

// Floors returns all floors from committed state.
func (s *Store) Floors() []domain.Floor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Floor, 0, len(s.state.floors))
	for _, f := range s.state.floors {
		out = append(out, f.Clone())
	}
	return out
}

// Notices returns all notice-board entries from committed state.
func (s *Store) Notices() []domain.Notice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Notice(nil), s.state.notices...)
}

// FindBlock retrieves a block by id.
func (s *Store) FindBlock(id string) (domain.Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findBlock(&s.state, id)
}

// FindFloor retrieves a floor by id.
func (s *Store) FindFloor(id int) (domain.Floor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if f := floorIndex(&s.state, id); f >= 0 {
		return s.state.floors[f].Clone(), true
	}
	return domain.Floor{}, false
}

func findBlock(st *state, id string) (domain.Block, bool) {
	for _, b := range st.blocks {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Block{}, false
}

func floorIndex(st *state, id int) int {
	for i := range st.floors {
		if st.floors[i].ID == id {
			return i
		}
	}
	return -1
}

func roomIndex(f *domain.Floor, id int) int {
	for i := range f.Rooms {
		if f.Rooms[i].ID == id {
			return i
		}
	}
	return -1
}

func studentIndex(r *domain.Room, id string) int {
	for i := range r.Students {
		if r.Students[i].ID == id {
			return i
		}
	}
	return -1
}

// view is the read-only snapshot handed to rules and View callers.
type view struct {
	state *state
}

func (v view) Blocks() []domain.Block {
	return append([]domain.Block(nil), v.state.blocks...)
}

func (v view) Floors() []domain.Floor {
	out := make([]domain.Floor, 0, len(v.state.floors))
	for _, f := range v.state.floors {
		out = append(out, f.Clone())
	}
	return out
}

func (v view) Notices() []domain.Notice {
	return append([]domain.Notice(nil), v.state.notices...)
}

func (v view) FindBlock(id string) (domain.Block, bool) {
	return findBlock(v.state, id)
}

func (v view) FindFloor(id int) (domain.Floor, bool) {
	if i := floorIndex(v.state, id); i >= 0 {
		return v.state.floors[i].Clone(), true
	}
	return domain.Floor{}, false
}

func (v view) FindRoom(floorID, roomID int) (domain.Room, bool) {
	fi := floorIndex(v.state, floorID)
	if fi < 0 {
		return domain.Room{}, false
	}
	f := &v.state.floors[fi]
	if ri := roomIndex(f, roomID); ri >= 0 {
		return f.Rooms[ri].Clone(), true
	}
	return domain.Room{}, false
}

func (v view) FindStudent(id string) (domain.Student, int, int, bool) {
	for fi := range v.state.floors {
		f := &v.state.floors[fi]
		for ri := range f.Rooms {
			r := &f.Rooms[ri]
			if si := studentIndex(r, id); si >= 0 {
				return r.Students[si], f.ID, r.ID, true
			}
		}
	}
	return domain.Student{}, 0, 0, false
}
