// Package domain defines the hall entities, value types, and rule
// evaluation primitives used by hallcore.
package domain

import (
	"fmt"
	"time"
)

// EntityType identifies the type of record stored in the hall tree.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityBlock identifies a block record (top-level grouping of floors).
	EntityBlock EntityType = "block"
	// EntityFloor identifies a floor record.
	EntityFloor EntityType = "floor"
	// EntityRoom identifies a room record.
	EntityRoom EntityType = "room"
	// EntityStudent identifies a student record.
	EntityStudent EntityType = "student"
	// EntityNotice identifies a notice-board entry.
	EntityNotice EntityType = "notice"
)

// RoomCapacity is the hard occupancy limit for every room.
const RoomCapacity = 4

// StudentStatus marks whether a resident is enrolled on schedule.
type StudentStatus string

// Canonical student statuses.
const (
	StatusRegular   StudentStatus = "regular"
	StatusIrregular StudentStatus = "irregular"
)

// NoticePriority ranks notice-board entries.
type NoticePriority string

// Canonical notice priorities.
const (
	PriorityLow    NoticePriority = "low"
	PriorityNormal NoticePriority = "normal"
	PriorityHigh   NoticePriority = "high"
)

// Block groups floors, e.g. a building wing.
type Block struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Floor is a numbered level belonging to exactly one block.
// Floor ids are unique hall-wide.
type Floor struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	BlockID string `json:"blockId"`
	Rooms   []Room `json:"rooms"`
}

// Room houses up to RoomCapacity students. Room ids are unique within
// their floor, not globally.
type Room struct {
	ID       int       `json:"id"`
	Students []Student `json:"students"`
}

// Student is a hall resident. A student belongs to exactly one room.
type Student struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Department string        `json:"department"`
	Batch      string        `json:"batch"`
	District   string        `json:"district"`
	EntryDate  string        `json:"entryDate"`
	DOB        string        `json:"dob"`
	BloodGroup string        `json:"bloodGroup"`
	Phone      string        `json:"phone"`
	Email      string        `json:"email"`
	PhotoURL   string        `json:"photoUrl"`
	Status     StudentStatus `json:"status"`
}

// Notice is a notice-board entry published by a supervisor.
type Notice struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	Priority NoticePriority `json:"priority"`
	PostedBy string         `json:"postedBy"`
	PostedAt time.Time      `json:"postedAt"`
}

// StudentInput carries the caller-supplied student fields; the id and photo
// URL are assigned by the store.
type StudentInput struct {
	Name       string
	Department string
	Batch      string
	District   string
	EntryDate  string
	DOB        string
	BloodGroup string
	Phone      string
	Email      string
	Status     StudentStatus
}

// StudentPatch is an explicit field mask for student updates. Nil fields are
// left untouched. Room placement is never part of a patch; moves go through
// MoveStudent.
type StudentPatch struct {
	Name       *string
	Department *string
	Batch      *string
	District   *string
	EntryDate  *string
	DOB        *string
	BloodGroup *string
	Phone      *string
	Email      *string
	PhotoURL   *string
	Status     *StudentStatus
}

// Apply merges the set fields of the patch into the student.
func (p StudentPatch) Apply(s *Student) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Department != nil {
		s.Department = *p.Department
	}
	if p.Batch != nil {
		s.Batch = *p.Batch
	}
	if p.District != nil {
		s.District = *p.District
	}
	if p.EntryDate != nil {
		s.EntryDate = *p.EntryDate
	}
	if p.DOB != nil {
		s.DOB = *p.DOB
	}
	if p.BloodGroup != nil {
		s.BloodGroup = *p.BloodGroup
	}
	if p.Phone != nil {
		s.Phone = *p.Phone
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.PhotoURL != nil {
		s.PhotoURL = *p.PhotoURL
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
}

// IsZero reports whether the patch sets no fields.
func (p StudentPatch) IsZero() bool {
	return p.Name == nil && p.Department == nil && p.Batch == nil &&
		p.District == nil && p.EntryDate == nil && p.DOB == nil &&
		p.BloodGroup == nil && p.Phone == nil && p.Email == nil &&
		p.PhotoURL == nil && p.Status == nil
}

// NoticePatch is the field mask for notice updates.
type NoticePatch struct {
	Title    *string
	Body     *string
	Priority *NoticePriority
}

// Apply merges the set fields of the patch into the notice.
func (p NoticePatch) Apply(n *Notice) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Body != nil {
		n.Body = *p.Body
	}
	if p.Priority != nil {
		n.Priority = *p.Priority
	}
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported mutations captured per transaction.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionMove   Action = "move"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}

// ErrNotFound is returned when an operation references a missing entity.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ErrRoomFull rejects an insert or move into a room at capacity.
type ErrRoomFull struct {
	FloorID int
	RoomID  int
}

func (e ErrRoomFull) Error() string {
	return fmt.Sprintf("room %d on floor %d is at capacity (%d)", e.RoomID, e.FloorID, RoomCapacity)
}

// ErrDuplicateRoom rejects adding a room id already present on the floor.
type ErrDuplicateRoom struct {
	FloorID int
	RoomID  int
}

func (e ErrDuplicateRoom) Error() string {
	return fmt.Sprintf("room %d already exists on floor %d", e.RoomID, e.FloorID)
}

// ErrOccupied rejects deleting a container that still holds residents or
// floors: occupied rooms, floors with resident students, blocks with floors.
type ErrOccupied struct {
	Entity    EntityType
	ID        string
	Occupants int
}

func (e ErrOccupied) Error() string {
	return fmt.Sprintf("%s %s still holds %d occupant(s)", e.Entity, e.ID, e.Occupants)
}
