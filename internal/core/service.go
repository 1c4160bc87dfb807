package core

import (
	"context"
	"errors"
	"time"

	"hallcore/pkg/domain"
)

// FloorStats aggregates occupancy for one floor.
type FloorStats struct {
	TotalRooms       int `json:"totalRooms"`
	OccupiedRooms    int `json:"occupiedRooms"`
	TotalCapacity    int `json:"totalCapacity"`
	CurrentOccupancy int `json:"currentOccupancy"`
}

// BlockStats aggregates occupancy for one block.
type BlockStats struct {
	TotalFloors      int `json:"totalFloors"`
	TotalRooms       int `json:"totalRooms"`
	TotalCapacity    int `json:"totalCapacity"`
	CurrentOccupancy int `json:"currentOccupancy"`
}

// Service exposes the hall operations over a persistent store. It is the
// single mutation path for the tree; callers gate access with the domain
// capability predicate before invoking mutations.
type Service struct {
	store   domain.PersistentStore
	metrics MetricsRecorder
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithMetricsRecorder wires an operation metrics sink.
func WithMetricsRecorder(rec MetricsRecorder) ServiceOption {
	return func(s *Service) { s.metrics = rec }
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

// SeedIfEmpty installs the demo tree when the store holds no data.
func (s *Service) SeedIfEmpty(ctx context.Context) bool {
	if len(s.store.Blocks()) > 0 || len(s.store.Floors()) > 0 {
		return false
	}
	s.store.ImportState(SeedSnapshot())
	return true
}

func (s *Service) run(ctx context.Context, op string, fn func(domain.Transaction) error) (domain.Result, error) {
	start := time.Now()
	res, err := s.store.RunInTransaction(ctx, fn)
	if s.metrics != nil {
		s.metrics.RecordOperation(op, time.Since(start).Seconds(), statusOf(err))
	}
	return res, err
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case isRejection(err):
		return "rejected"
	default:
		return "error"
	}
}

// isRejection distinguishes expected business-rule violations from faults.
func isRejection(err error) bool {
	var (
		notFound  domain.ErrNotFound
		full      domain.ErrRoomFull
		dup       domain.ErrDuplicateRoom
		occupied  domain.ErrOccupied
		violation domain.RuleViolationError
	)
	return errors.As(err, &notFound) || errors.As(err, &full) ||
		errors.As(err, &dup) || errors.As(err, &occupied) || errors.As(err, &violation)
}

// AddBlock appends a new block.
func (s *Service) AddBlock(ctx context.Context, name, description string) (Block, Result, error) {
	var created Block
	res, err := s.run(ctx, "add_block", func(tx Transaction) error {
		var err error
		created, err = tx.AddBlock(name, description)
		return err
	})
	return created, res, err
}

// UpdateBlock replaces a block's name and description.
func (s *Service) UpdateBlock(ctx context.Context, id, name, description string) (Block, Result, error) {
	var updated Block
	res, err := s.run(ctx, "update_block", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateBlock(id, name, description)
		return err
	})
	return updated, res, err
}

// DeleteBlock removes a block; rejected while floors reference it.
func (s *Service) DeleteBlock(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_block", func(tx Transaction) error {
		return tx.DeleteBlock(id)
	})
}

// AddFloor appends a floor to the given block (first block when empty).
func (s *Service) AddFloor(ctx context.Context, name, blockID string) (Floor, Result, error) {
	var created Floor
	res, err := s.run(ctx, "add_floor", func(tx Transaction) error {
		var err error
		created, err = tx.AddFloor(name, blockID)
		return err
	})
	return created, res, err
}

// DeleteFloor removes a floor; rejected while any room has residents.
func (s *Service) DeleteFloor(ctx context.Context, id int) (Result, error) {
	return s.run(ctx, "delete_floor", func(tx Transaction) error {
		return tx.DeleteFloor(id)
	})
}

// AddRoom appends an empty room with the chosen number.
func (s *Service) AddRoom(ctx context.Context, floorID, roomID int) (Room, Result, error) {
	var created Room
	res, err := s.run(ctx, "add_room", func(tx Transaction) error {
		var err error
		created, err = tx.AddRoom(floorID, roomID)
		return err
	})
	return created, res, err
}

// DeleteRoom removes a room; rejected while occupied.
func (s *Service) DeleteRoom(ctx context.Context, floorID, roomID int) (Result, error) {
	return s.run(ctx, "delete_room", func(tx Transaction) error {
		return tx.DeleteRoom(floorID, roomID)
	})
}

// AddStudent creates a student inside the room.
func (s *Service) AddStudent(ctx context.Context, floorID, roomID int, input StudentInput) (Student, Result, error) {
	var created Student
	res, err := s.run(ctx, "add_student", func(tx Transaction) error {
		var err error
		created, err = tx.AddStudent(floorID, roomID, input)
		return err
	})
	return created, res, err
}

// DeleteStudent removes a student from the room.
func (s *Service) DeleteStudent(ctx context.Context, floorID, roomID int, studentID string) (Result, error) {
	return s.run(ctx, "delete_student", func(tx Transaction) error {
		return tx.DeleteStudent(floorID, roomID, studentID)
	})
}

// UpdateStudent patches a student, optionally relocating them when both
// destination ids are supplied. Moves are all-or-nothing: a full destination
// rejects the whole operation and the student stays in the source room.
func (s *Service) UpdateStudent(ctx context.Context, floorID, roomID int, studentID string, patch StudentPatch, newFloorID, newRoomID *int) (Student, Result, error) {
	var updated Student
	op := "update_student"
	if newFloorID != nil && newRoomID != nil {
		op = "move_student"
	}
	res, err := s.run(ctx, op, func(tx Transaction) error {
		var err error
		if newFloorID != nil && newRoomID != nil {
			updated, err = tx.MoveStudent(floorID, roomID, studentID, patch, *newFloorID, *newRoomID)
		} else {
			updated, err = tx.UpdateStudent(floorID, roomID, studentID, patch)
		}
		return err
	})
	return updated, res, err
}

// PostNotice publishes a notice-board entry.
func (s *Service) PostNotice(ctx context.Context, title, body string, priority domain.NoticePriority, postedBy string) (Notice, Result, error) {
	var posted Notice
	res, err := s.run(ctx, "post_notice", func(tx Transaction) error {
		var err error
		posted, err = tx.PostNotice(title, body, priority, postedBy)
		return err
	})
	return posted, res, err
}

// UpdateNotice patches a notice-board entry.
func (s *Service) UpdateNotice(ctx context.Context, id string, patch NoticePatch) (Notice, Result, error) {
	var updated Notice
	res, err := s.run(ctx, "update_notice", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateNotice(id, patch)
		return err
	})
	return updated, res, err
}

// DeleteNotice removes a notice-board entry.
func (s *Service) DeleteNotice(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_notice", func(tx Transaction) error {
		return tx.DeleteNotice(id)
	})
}

// Blocks lists all blocks.
func (s *Service) Blocks() []Block { return s.store.Blocks() }

// Floors lists all floors with rooms and residents.
func (s *Service) Floors() []Floor { return s.store.Floors() }

// Notices lists all notice-board entries.
func (s *Service) Notices() []Notice { return s.store.Notices() }

// Block retrieves one block by id.
func (s *Service) Block(id string) (Block, bool) { return s.store.FindBlock(id) }

// Floor retrieves one floor by id.
func (s *Service) Floor(id int) (Floor, bool) { return s.store.FindFloor(id) }

// FindStudent locates a student anywhere in the hall, returning the floor and
// room ids of their placement.
func (s *Service) FindStudent(id string) (Student, int, int, bool) {
	var (
		student Student
		floorID int
		roomID  int
		found   bool
	)
	_ = s.store.View(context.Background(), func(view domain.TransactionView) error {
		student, floorID, roomID, found = view.FindStudent(id)
		return nil
	})
	return student, floorID, roomID, found
}

// FloorsByBlock lists the floors assigned to a block.
func (s *Service) FloorsByBlock(blockID string) []Floor {
	var out []Floor
	for _, f := range s.store.Floors() {
		if f.BlockID == blockID {
			out = append(out, f)
		}
	}
	return out
}

// FloorStats computes occupancy aggregates for a floor by full traversal.
// An unknown floor yields the zero-valued struct.
func (s *Service) FloorStats(floorID int) FloorStats {
	floor, ok := s.store.FindFloor(floorID)
	if !ok {
		return FloorStats{}
	}
	stats := FloorStats{TotalRooms: len(floor.Rooms)}
	for _, r := range floor.Rooms {
		if len(r.Students) > 0 {
			stats.OccupiedRooms++
		}
		stats.CurrentOccupancy += len(r.Students)
	}
	stats.TotalCapacity = stats.TotalRooms * domain.RoomCapacity
	return stats
}

// BlockStats computes occupancy aggregates for a block by full traversal.
// An unknown or empty block yields the zero-valued struct.
func (s *Service) BlockStats(blockID string) BlockStats {
	stats := BlockStats{}
	for _, f := range s.store.Floors() {
		if f.BlockID != blockID {
			continue
		}
		stats.TotalFloors++
		stats.TotalRooms += len(f.Rooms)
		for _, r := range f.Rooms {
			stats.CurrentOccupancy += len(r.Students)
		}
	}
	stats.TotalCapacity = stats.TotalRooms * domain.RoomCapacity
	return stats
}
