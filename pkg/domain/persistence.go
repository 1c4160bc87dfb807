package domain

import "context"

// Transaction exposes the hall mutations that a persistence implementation
// must support within an atomic scope. Every method leaves the tree
// invariants intact or returns an error without touching state.
type Transaction interface {
	Snapshot() TransactionView
	AddBlock(name, description string) (Block, error)
	UpdateBlock(id, name, description string) (Block, error)
	DeleteBlock(id string) error
	AddFloor(name, blockID string) (Floor, error)
	DeleteFloor(id int) error
	AddRoom(floorID, roomID int) (Room, error)
	DeleteRoom(floorID, roomID int) error
	AddStudent(floorID, roomID int, input StudentInput) (Student, error)
	DeleteStudent(floorID, roomID int, studentID string) error
	UpdateStudent(floorID, roomID int, studentID string, patch StudentPatch) (Student, error)
	MoveStudent(fromFloorID, fromRoomID int, studentID string, patch StudentPatch, toFloorID, toRoomID int) (Student, error)
	PostNotice(title, body string, priority NoticePriority, postedBy string) (Notice, error)
	UpdateNotice(id string, patch NoticePatch) (Notice, error)
	DeleteNotice(id string) error
}

// TransactionView provides read-only access to snapshot data.
type TransactionView = RuleView

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	Blocks() []Block
	Floors() []Floor
	Notices() []Notice
	FindBlock(id string) (Block, bool)
	FindFloor(id int) (Floor, bool)
	ExportState() Snapshot
	ImportState(Snapshot)
}

// IDSource yields unique identifiers for students, blocks, and notices.
// Implementations must never repeat an id within a store's lifetime.
type IDSource interface {
	NewID() string
}

// IDFunc adapts a function to the IDSource interface.
type IDFunc func() string

// NewID implements IDSource.
func (f IDFunc) NewID() string { return f() }
