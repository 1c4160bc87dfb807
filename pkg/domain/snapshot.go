package domain

// Snapshot is the full serialized hall tree written to durable storage.
type Snapshot struct {
	Blocks  []Block  `json:"blocks"`
	Floors  []Floor  `json:"floors"`
	Notices []Notice `json:"notices,omitempty"`
}

// Default blocks injected when hydrating snapshots that predate the block
// feature. Matches the ids the legacy deployments shipped with.
var legacyDefaultBlocks = []Block{
	{ID: "block-a", Name: "A", Description: "Main Building"},
	{ID: "block-b", Name: "B", Description: "Annex Building"},
}

// Normalized patches a snapshot written before blocks existed: missing
// blocks get the default pair and floors without a block are assigned to
// the first default block. An entirely empty snapshot is not legacy data
// and passes through untouched. Applying the patch to a current-schema
// snapshot is a no-op, so it is idempotent and never drops data.
func (s Snapshot) Normalized() Snapshot {
	out := s.Clone()
	if len(out.Blocks) == 0 {
		if len(out.Floors) == 0 {
			return out
		}
		out.Blocks = append([]Block(nil), legacyDefaultBlocks...)
	}
	for i := range out.Floors {
		if out.Floors[i].BlockID == "" {
			out.Floors[i].BlockID = out.Blocks[0].ID
		}
	}
	return out
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{}
	if s.Blocks != nil {
		out.Blocks = append([]Block(nil), s.Blocks...)
	}
	if s.Floors != nil {
		out.Floors = make([]Floor, 0, len(s.Floors))
		for _, f := range s.Floors {
			out.Floors = append(out.Floors, f.Clone())
		}
	}
	if s.Notices != nil {
		out.Notices = append([]Notice(nil), s.Notices...)
	}
	return out
}

// Clone returns a deep copy of the floor and its rooms.
func (f Floor) Clone() Floor {
	cp := f
	if f.Rooms != nil {
		cp.Rooms = make([]Room, 0, len(f.Rooms))
		for _, r := range f.Rooms {
			cp.Rooms = append(cp.Rooms, r.Clone())
		}
	}
	return cp
}

// Clone returns a deep copy of the room and its students.
func (r Room) Clone() Room {
	cp := r
	if r.Students != nil {
		cp.Students = append([]Student(nil), r.Students...)
	}
	return cp
}
