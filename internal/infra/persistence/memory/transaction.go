package memory

import (
	"strings"
	"time"

	"hallcore/pkg/domain"
)

// transaction mutates a cloned state. No method touches committed storage;
// the store swaps the clone in after rule evaluation.
type transaction struct {
	store   *Store
	state   state
	changes []domain.Change
	now     time.Time
}

var _ domain.Transaction = (*transaction)(nil)

func (tx *transaction) record(change domain.Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot exposes the transactional state read-only.
func (tx *transaction) Snapshot() domain.TransactionView {
	return view{state: &tx.state}
}

// AddBlock appends a new block with a generated id.
func (tx *transaction) AddBlock(name, description string) (domain.Block, error) {
	b := domain.Block{
		ID:          "block-" + strings.ToLower(tx.store.ids.NewID()),
		Name:        name,
		Description: description,
	}
	tx.state.blocks = append(tx.state.blocks, b)
	tx.record(domain.Change{Entity: domain.EntityBlock, Action: domain.ActionCreate, After: b})
	return b, nil
}

// UpdateBlock replaces a block's name and description.
func (tx *transaction) UpdateBlock(id, name, description string) (domain.Block, error) {
	for i := range tx.state.blocks {
		if tx.state.blocks[i].ID != id {
			continue
		}
		before := tx.state.blocks[i]
		tx.state.blocks[i].Name = name
		tx.state.blocks[i].Description = description
		tx.record(domain.Change{Entity: domain.EntityBlock, Action: domain.ActionUpdate, Before: before, After: tx.state.blocks[i]})
		return tx.state.blocks[i], nil
	}
	return domain.Block{}, domain.ErrNotFound{Entity: domain.EntityBlock, ID: id}
}

// DeleteBlock removes a block; rejected while any floor references it.
func (tx *transaction) DeleteBlock(id string) error {
	idx := -1
	for i := range tx.state.blocks {
		if tx.state.blocks[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrNotFound{Entity: domain.EntityBlock, ID: id}
	}
	floors := 0
	for i := range tx.state.floors {
		if tx.state.floors[i].BlockID == id {
			floors++
		}
	}
	if floors > 0 {
		return domain.ErrOccupied{Entity: domain.EntityBlock, ID: id, Occupants: floors}
	}
	before := tx.state.blocks[idx]
	tx.state.blocks = append(tx.state.blocks[:idx], tx.state.blocks[idx+1:]...)
	tx.record(domain.Change{Entity: domain.EntityBlock, Action: domain.ActionDelete, Before: before})
	return nil
}

// AddFloor appends a floor with id max(existing)+1 and no rooms. An empty
// name defaults to "Floor <id>"; an empty blockID targets the first block.
func (tx *transaction) AddFloor(name, blockID string) (domain.Floor, error) {
	if blockID == "" {
		if len(tx.state.blocks) == 0 {
			return domain.Floor{}, domain.ErrNotFound{Entity: domain.EntityBlock, ID: blockID}
		}
		blockID = tx.state.blocks[0].ID
	} else if _, ok := findBlock(&tx.state, blockID); !ok {
		return domain.Floor{}, domain.ErrNotFound{Entity: domain.EntityBlock, ID: blockID}
	}
	maxID := 0
	for i := range tx.state.floors {
		if tx.state.floors[i].ID > maxID {
			maxID = tx.state.floors[i].ID
		}
	}
	f := domain.Floor{ID: maxID + 1, Name: name, BlockID: blockID, Rooms: []domain.Room{}}
	if f.Name == "" {
		f.Name = defaultFloorName(f.ID)
	}
	tx.state.floors = append(tx.state.floors, f)
	tx.record(domain.Change{Entity: domain.EntityFloor, Action: domain.ActionCreate, After: f.Clone()})
	return f.Clone(), nil
}

// DeleteFloor removes a floor; rejected while any of its rooms has students.
func (tx *transaction) DeleteFloor(id int) error {
	fi := floorIndex(&tx.state, id)
	if fi < 0 {
		return domain.ErrNotFound{Entity: domain.EntityFloor, ID: itoa(id)}
	}
	f := &tx.state.floors[fi]
	residents := 0
	for ri := range f.Rooms {
		residents += len(f.Rooms[ri].Students)
	}
	if residents > 0 {
		return domain.ErrOccupied{Entity: domain.EntityFloor, ID: itoa(id), Occupants: residents}
	}
	before := f.Clone()
	tx.state.floors = append(tx.state.floors[:fi], tx.state.floors[fi+1:]...)
	tx.record(domain.Change{Entity: domain.EntityFloor, Action: domain.ActionDelete, Before: before})
	return nil
}

// AddRoom appends an empty room with the caller-chosen id; duplicate ids on
// the same floor are rejected.
func (tx *transaction) AddRoom(floorID, roomID int) (domain.Room, error) {
	fi := floorIndex(&tx.state, floorID)
	if fi < 0 {
		return domain.Room{}, domain.ErrNotFound{Entity: domain.EntityFloor, ID: itoa(floorID)}
	}
	f := &tx.state.floors[fi]
	if roomIndex(f, roomID) >= 0 {
		return domain.Room{}, domain.ErrDuplicateRoom{FloorID: floorID, RoomID: roomID}
	}
	r := domain.Room{ID: roomID, Students: []domain.Student{}}
	f.Rooms = append(f.Rooms, r)
	tx.record(domain.Change{Entity: domain.EntityRoom, Action: domain.ActionCreate, After: r.Clone()})
	return r.Clone(), nil
}

// DeleteRoom removes a room; rejected while it has students.
func (tx *transaction) DeleteRoom(floorID, roomID int) error {
	fi := floorIndex(&tx.state, floorID)
	if fi < 0 {
		return domain.ErrNotFound{Entity: domain.EntityFloor, ID: itoa(floorID)}
	}
	f := &tx.state.floors[fi]
	ri := roomIndex(f, roomID)
	if ri < 0 {
		return domain.ErrNotFound{Entity: domain.EntityRoom, ID: itoa(roomID)}
	}
	if n := len(f.Rooms[ri].Students); n > 0 {
		return domain.ErrOccupied{Entity: domain.EntityRoom, ID: itoa(roomID), Occupants: n}
	}
	before := f.Rooms[ri].Clone()
	f.Rooms = append(f.Rooms[:ri], f.Rooms[ri+1:]...)
	tx.record(domain.Change{Entity: domain.EntityRoom, Action: domain.ActionDelete, Before: before})
	return nil
}

// AddStudent generates an id and photo URL and appends the student to the
// room; rejected when the room is at capacity.
func (tx *transaction) AddStudent(floorID, roomID int, input domain.StudentInput) (domain.Student, error) {
	r, err := tx.room(floorID, roomID)
	if err != nil {
		return domain.Student{}, err
	}
	if len(r.Students) >= domain.RoomCapacity {
		return domain.Student{}, domain.ErrRoomFull{FloorID: floorID, RoomID: roomID}
	}
	status := input.Status
	if status == "" {
		status = domain.StatusRegular
	}
	s := domain.Student{
		ID:         "S" + tx.store.ids.NewID(),
		Name:       input.Name,
		Department: input.Department,
		Batch:      input.Batch,
		District:   input.District,
		EntryDate:  input.EntryDate,
		DOB:        input.DOB,
		BloodGroup: input.BloodGroup,
		Phone:      input.Phone,
		Email:      input.Email,
		PhotoURL:   tx.store.avatar(input.Name),
		Status:     status,
	}
	r.Students = append(r.Students, s)
	tx.record(domain.Change{Entity: domain.EntityStudent, Action: domain.ActionCreate, After: s})
	return s, nil
}

// DeleteStudent removes a student from the room.
func (tx *transaction) DeleteStudent(floorID, roomID int, studentID string) error {
	r, err := tx.room(floorID, roomID)
	if err != nil {
		return err
	}
	si := studentIndex(r, studentID)
	if si < 0 {
		return domain.ErrNotFound{Entity: domain.EntityStudent, ID: studentID}
	}
	before := r.Students[si]
	r.Students = append(r.Students[:si], r.Students[si+1:]...)
	tx.record(domain.Change{Entity: domain.EntityStudent, Action: domain.ActionDelete, Before: before})
	return nil
}

// UpdateStudent patches a student in place.
func (tx *transaction) UpdateStudent(floorID, roomID int, studentID string, patch domain.StudentPatch) (domain.Student, error) {
	r, err := tx.room(floorID, roomID)
	if err != nil {
		return domain.Student{}, err
	}
	si := studentIndex(r, studentID)
	if si < 0 {
		return domain.Student{}, domain.ErrNotFound{Entity: domain.EntityStudent, ID: studentID}
	}
	before := r.Students[si]
	patch.Apply(&r.Students[si])
	r.Students[si].ID = studentID
	tx.record(domain.Change{Entity: domain.EntityStudent, Action: domain.ActionUpdate, Before: before, After: r.Students[si]})
	return r.Students[si], nil
}

// MoveStudent relocates a student, applying the patch in the same step. The
// destination's capacity is checked before the student leaves the source
// room, so a full destination rejects the whole move and neither room
// changes.
func (tx *transaction) MoveStudent(fromFloorID, fromRoomID int, studentID string, patch domain.StudentPatch, toFloorID, toRoomID int) (domain.Student, error) {
	src, err := tx.room(fromFloorID, fromRoomID)
	if err != nil {
		return domain.Student{}, err
	}
	si := studentIndex(src, studentID)
	if si < 0 {
		return domain.Student{}, domain.ErrNotFound{Entity: domain.EntityStudent, ID: studentID}
	}
	dst, err := tx.room(toFloorID, toRoomID)
	if err != nil {
		return domain.Student{}, err
	}
	if len(dst.Students) >= domain.RoomCapacity {
		return domain.Student{}, domain.ErrRoomFull{FloorID: toFloorID, RoomID: toRoomID}
	}
	before := src.Students[si]
	moved := before
	patch.Apply(&moved)
	moved.ID = studentID
	src.Students = append(src.Students[:si], src.Students[si+1:]...)
	dst.Students = append(dst.Students, moved)
	tx.record(domain.Change{Entity: domain.EntityStudent, Action: domain.ActionMove, Before: before, After: moved})
	return moved, nil
}

// PostNotice publishes a notice-board entry.
func (tx *transaction) PostNotice(title, body string, priority domain.NoticePriority, postedBy string) (domain.Notice, error) {
	if priority == "" {
		priority = domain.PriorityNormal
	}
	n := domain.Notice{
		ID:       "notice-" + strings.ToLower(tx.store.ids.NewID()),
		Title:    title,
		Body:     body,
		Priority: priority,
		PostedBy: postedBy,
		PostedAt: tx.now,
	}
	tx.state.notices = append(tx.state.notices, n)
	tx.record(domain.Change{Entity: domain.EntityNotice, Action: domain.ActionCreate, After: n})
	return n, nil
}

// UpdateNotice patches a notice-board entry.
func (tx *transaction) UpdateNotice(id string, patch domain.NoticePatch) (domain.Notice, error) {
	for i := range tx.state.notices {
		if tx.state.notices[i].ID != id {
			continue
		}
		before := tx.state.notices[i]
		patch.Apply(&tx.state.notices[i])
		tx.record(domain.Change{Entity: domain.EntityNotice, Action: domain.ActionUpdate, Before: before, After: tx.state.notices[i]})
		return tx.state.notices[i], nil
	}
	return domain.Notice{}, domain.ErrNotFound{Entity: domain.EntityNotice, ID: id}
}

// DeleteNotice removes a notice-board entry.
func (tx *transaction) DeleteNotice(id string) error {
	for i := range tx.state.notices {
		if tx.state.notices[i].ID != id {
			continue
		}
		before := tx.state.notices[i]
		tx.state.notices = append(tx.state.notices[:i], tx.state.notices[i+1:]...)
		tx.record(domain.Change{Entity: domain.EntityNotice, Action: domain.ActionDelete, Before: before})
		return nil
	}
	return domain.ErrNotFound{Entity: domain.EntityNotice, ID: id}
}

// room resolves a mutable room pointer within the transactional state.
func (tx *transaction) room(floorID, roomID int) (*domain.Room, error) {
	fi := floorIndex(&tx.state, floorID)
	if fi < 0 {
		return nil, domain.ErrNotFound{Entity: domain.EntityFloor, ID: itoa(floorID)}
	}
	f := &tx.state.floors[fi]
	ri := roomIndex(f, roomID)
	if ri < 0 {
		return nil, domain.ErrNotFound{Entity: domain.EntityRoom, ID: itoa(roomID)}
	}
	return &f.Rooms[ri], nil
}
