package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"hallcore/pkg/domain"
)

// seqIDs returns an IDSource handing out 001, 002, ... for stable fixtures.
func seqIDs() domain.IDSource {
	n := 0
	return domain.IDFunc(func() string {
		n++
		return fmt.Sprintf("%03d", n)
	})
}

func newFixtureStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(domain.NewRulesEngine(), WithIDSource(seqIDs()))
	ctx := context.Background()
	if _, err := s.RunInTransaction(ctx, func(tx domain.Transaction) error {
		block, err := tx.AddBlock("A", "Main Building")
		if err != nil {
			return err
		}
		if _, err := tx.AddFloor("Ground Floor", block.ID); err != nil {
			return err
		}
		if _, err := tx.AddFloor("First Floor", block.ID); err != nil {
			return err
		}
		if _, err := tx.AddRoom(1, 101); err != nil {
			return err
		}
		if _, err := tx.AddRoom(1, 102); err != nil {
			return err
		}
		if _, err := tx.AddRoom(2, 201); err != nil {
			return err
		}
		for i := 0; i < 3; i++ {
			if _, err := tx.AddStudent(1, 101, domain.StudentInput{
				Name:     fmt.Sprintf("Resident %d", i+1),
				District: "Dhaka",
				Email:    fmt.Sprintf("r%d@student.edu", i+1),
			}); err != nil {
				return err
			}
		}
		_, err = tx.AddStudent(1, 102, domain.StudentInput{Name: "Solo", Email: "solo@student.edu"})
		return err
	}); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return s
}

func mustOccupancy(t *testing.T, s *Store, floorID, roomID, want int) {
	t.Helper()
	f, ok := s.FindFloor(floorID)
	if !ok {
		t.Fatalf("floor %d missing", floorID)
	}
	for _, r := range f.Rooms {
		if r.ID == roomID {
			if len(r.Students) != want {
				t.Fatalf("room %d occupancy = %d, want %d", roomID, len(r.Students), want)
			}
			return
		}
	}
	t.Fatalf("room %d missing on floor %d", roomID, floorID)
}

func TestAddStudentEnforcesCapacity(t *testing.T) {
	s := newFixtureStore(t)
	ctx := context.Background()

	// Fourth student fills the room.
	if _, err := s.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.AddStudent(1, 101, domain.StudentInput{Name: "Fourth"})
		return err
	}); err != nil {
		t.Fatalf("fourth student rejected: %v", err)
	}
	mustOccupancy(t, s, 1, 101, 4)

	// Fifth is rejected and the room is unchanged.
	_, err := s.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.AddStudent(1, 101, domain.StudentInput{Name: "Fifth"})
		return err
	})
	var full domain.ErrRoomFull
	if !errors.As(err, &full) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
	if full.FloorID != 1 || full.RoomID != 101 {
		t.Fatalf("wrong room in error: %+v", full)
	}
	mustOccupancy(t, s, 1, 101, 4)
}

func TestAddStudentAssignsIDAndPhoto(t *testing.T) {
	s := newFixtureStore(t)
	var created domain.Student
	if _, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		created, err = tx.AddStudent(2, 201, domain.StudentInput{Name: "Ahmed Rahman"})
		return err
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if created.ID == "" || created.ID[0] != 'S' {
		t.Fatalf("unexpected id %q", created.ID)
	}
	if created.PhotoURL != "https://api.dicebear.com/7.x/avataaars/svg?seed=AhmedRahman" {
		t.Fatalf("unexpected photo url %q", created.PhotoURL)
	}
	if created.Status != domain.StatusRegular {
		t.Fatalf("expected default regular status, got %q", created.Status)
	}
}

func TestAddRoomRejectsDuplicateID(t *testing.T) {
	s := newFixtureStore(t)
	_, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.AddRoom(1, 101)
		return err
	})
	var dup domain.ErrDuplicateRoom
	if !errors.As(err, &dup) {
		t.Fatalf("expected ErrDuplicateRoom, got %v", err)
	}
	f, _ := s.FindFloor(1)
	if len(f.Rooms) != 2 {
		t.Fatalf("room list changed on duplicate add: %d rooms", len(f.Rooms))
	}
}

func TestRoomIDsUniquePerFloorNotGlobally(t *testing.T) {
	s := newFixtureStore(t)
	// Room 101 exists on floor 1; the same id is fine on floor 2.
	if _, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.AddRoom(2, 101)
		return err
	}); err != nil {
		t.Fatalf("same room id on another floor rejected: %v", err)
	}
}

func TestDeleteGuards(t *testing.T) {
	s := newFixtureStore(t)
	ctx := context.Background()

	// Occupied room cannot be deleted.
	_, err := s.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteRoom(1, 101)
	})
	var occ domain.ErrOccupied
	if !errors.As(err, &occ) || occ.Entity != domain.EntityRoom {
		t.Fatalf("expected room ErrOccupied, got %v", err)
	}
	mustOccupancy(t, s, 1, 101, 3)

	// Floor with resident students cannot be deleted; state unchanged.
	_, err = s.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteFloor(1)
	})
	if !errors.As(err, &occ) || occ.Entity != domain.EntityFloor {
		t.Fatalf("expected floor ErrOccupied, got %v", err)
	}
	if _, ok := s.FindFloor(1); !ok {
		t.Fatalf("floor removed despite rejection")
	}

	// Block with floors cannot be deleted.
	blocks := s.Blocks()
	_, err = s.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteBlock(blocks[0].ID)
	})
	if !errors.As(err, &occ) || occ.Entity != domain.EntityBlock {
		t.Fatalf("expected block ErrOccupied, got %v", err)
	}
	if len(s.Blocks()) != 1 {
		t.Fatalf("block removed despite rejection")
	}

	// Empty room and empty floor delete fine.
	if _, err := s.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteRoom(2, 201)
	}); err != nil {
		t.Fatalf("delete empty room: %v", err)
	}
	if _, err := s.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteFloor(2)
	}); err != nil {
		t.Fatalf("delete empty floor: %v", err)
	}
	if _, ok := s.FindFloor(2); ok {
		t.Fatalf("floor 2 still present")
	}
}

func TestDeleteBlockLifecycle(t *testing.T) {
	s := newFixtureStore(t)
	ctx := context.Background()
	var created domain.Block
	if _, err := s.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = tx.AddBlock("C", "")
		return err
	}); err != nil {
		t.Fatalf("add block: %v", err)
	}
	if _, err := s.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteBlock(created.ID)
	}); err != nil {
		t.Fatalf("delete empty block: %v", err)
	}
	for _, b := range s.Blocks() {
		if b.ID == created.ID {
			t.Fatalf("block %s still listed", created.ID)
		}
	}
}

func TestUpdateStudentPatchInPlace(t *testing.T) {
	s := newFixtureStore(t)
	f, _ := s.FindFloor(1)
	target := f.Rooms[0].Students[0]

	district := "Khulna"
	var updated domain.Student
	if _, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateStudent(1, 101, target.ID, domain.StudentPatch{District: &district})
		return err
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.District != "Khulna" {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.Name != target.Name || updated.ID != target.ID {
		t.Fatalf("unpatched fields changed: %+v", updated)
	}
}

func TestMoveStudentRelocatesAtomically(t *testing.T) {
	s := newFixtureStore(t)
	f, _ := s.FindFloor(1)
	target := f.Rooms[0].Students[0]

	district := "Khulna"
	if _, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.MoveStudent(1, 101, target.ID, domain.StudentPatch{District: &district}, 2, 201)
		return err
	}); err != nil {
		t.Fatalf("move: %v", err)
	}

	mustOccupancy(t, s, 1, 101, 2)
	mustOccupancy(t, s, 2, 201, 1)
	if err := s.View(context.Background(), func(v domain.TransactionView) error {
		got, floorID, roomID, ok := v.FindStudent(target.ID)
		if !ok {
			return fmt.Errorf("student missing after move")
		}
		if floorID != 2 || roomID != 201 {
			return fmt.Errorf("student at %d/%d, want 2/201", floorID, roomID)
		}
		if got.District != "Khulna" {
			return fmt.Errorf("patch lost in move: %+v", got)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func TestMoveStudentFullDestinationRejectsWholeMove(t *testing.T) {
	s := newFixtureStore(t)
	ctx := context.Background()
	// Fill destination room 201.
	if _, err := s.RunInTransaction(ctx, func(tx domain.Transaction) error {
		for i := 0; i < domain.RoomCapacity; i++ {
			if _, err := tx.AddStudent(2, 201, domain.StudentInput{Name: fmt.Sprintf("Occupant %d", i)}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("fill destination: %v", err)
	}

	f, _ := s.FindFloor(1)
	target := f.Rooms[0].Students[0]
	_, err := s.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.MoveStudent(1, 101, target.ID, domain.StudentPatch{}, 2, 201)
		return err
	})
	var full domain.ErrRoomFull
	if !errors.As(err, &full) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
	// The student still lives in the source room; nothing was dropped.
	mustOccupancy(t, s, 1, 101, 3)
	mustOccupancy(t, s, 2, 201, 4)
	if err := s.View(ctx, func(v domain.TransactionView) error {
		_, floorID, roomID, ok := v.FindStudent(target.ID)
		if !ok || floorID != 1 || roomID != 101 {
			return fmt.Errorf("student not in source room: ok=%v %d/%d", ok, floorID, roomID)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteStudent(t *testing.T) {
	s := newFixtureStore(t)
	f, _ := s.FindFloor(1)
	target := f.Rooms[0].Students[0]
	if _, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.DeleteStudent(1, 101, target.ID)
	}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	mustOccupancy(t, s, 1, 101, 2)

	_, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.DeleteStudent(1, 101, target.ID)
	})
	var notFound domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound on re-delete, got %v", err)
	}
}

func TestFloorIDsMonotonic(t *testing.T) {
	s := newFixtureStore(t)
	var added domain.Floor
	if _, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		added, err = tx.AddFloor("", "")
		return err
	}); err != nil {
		t.Fatalf("add floor: %v", err)
	}
	if added.ID != 3 {
		t.Fatalf("expected floor id 3, got %d", added.ID)
	}
	if added.Name != "Floor 3" {
		t.Fatalf("expected default name, got %q", added.Name)
	}
}

func TestFailedTransactionLeavesStateUntouched(t *testing.T) {
	s := newFixtureStore(t)
	before := s.ExportState()
	_, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.AddRoom(1, 110); err != nil {
			return err
		}
		// Later failure must discard the room added above.
		return tx.DeleteRoom(1, 999)
	})
	if err == nil {
		t.Fatalf("expected failure")
	}
	after := s.ExportState()
	if len(after.Floors[0].Rooms) != len(before.Floors[0].Rooms) {
		t.Fatalf("partial transaction leaked into state")
	}
}

func TestRulesEngineBlocksCommit(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(blockEverything{})
	s := NewStore(engine)
	res, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.AddBlock("A", "")
		return err
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
	if !res.HasBlocking() {
		t.Fatalf("result should carry the blocking violation")
	}
	if !s.Empty() {
		t.Fatalf("blocked transaction committed")
	}
}

type blockEverything struct{}

func (blockEverything) Name() string { return "block_everything" }

func (blockEverything) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	if len(changes) == 0 {
		return domain.Result{}, nil
	}
	return domain.Result{Violations: []domain.Violation{{Rule: "block_everything", Severity: domain.SeverityBlock}}}, nil
}

func TestImportStateAppliesLegacyPatch(t *testing.T) {
	s := NewStore(domain.NewRulesEngine())
	s.ImportState(domain.Snapshot{Floors: []domain.Floor{{ID: 1, Name: "Ground Floor", Rooms: []domain.Room{{ID: 101}}}}})
	blocks := s.Blocks()
	if len(blocks) != 2 || blocks[0].ID != "block-a" {
		t.Fatalf("legacy blocks not injected: %+v", blocks)
	}
	f, _ := s.FindFloor(1)
	if f.BlockID != "block-a" {
		t.Fatalf("legacy floor not assigned: %+v", f)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newFixtureStore(t)
	snap := s.ExportState()

	other := NewStore(domain.NewRulesEngine())
	other.ImportState(snap)
	again := other.ExportState()

	if len(again.Blocks) != len(snap.Blocks) || len(again.Floors) != len(snap.Floors) {
		t.Fatalf("round trip changed shape")
	}
	for i, f := range snap.Floors {
		g := again.Floors[i]
		if f.ID != g.ID || f.Name != g.Name || f.BlockID != g.BlockID || len(f.Rooms) != len(g.Rooms) {
			t.Fatalf("floor %d mismatch: %+v vs %+v", f.ID, f, g)
		}
		for j, r := range f.Rooms {
			if r.ID != g.Rooms[j].ID || len(r.Students) != len(g.Rooms[j].Students) {
				t.Fatalf("room mismatch on floor %d", f.ID)
			}
			for k, st := range r.Students {
				if st != g.Rooms[j].Students[k] {
					t.Fatalf("student mismatch: %+v vs %+v", st, g.Rooms[j].Students[k])
				}
			}
		}
	}
}

func TestNoticesLifecycle(t *testing.T) {
	s := newFixtureStore(t)
	ctx := context.Background()
	var posted domain.Notice
	if _, err := s.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		posted, err = tx.PostNotice("Water outage", "Pump maintenance 2-4pm", domain.PriorityHigh, "warden@hall.edu")
		return err
	}); err != nil {
		t.Fatalf("post: %v", err)
	}
	if posted.ID == "" || posted.PostedAt.IsZero() {
		t.Fatalf("notice missing id or timestamp: %+v", posted)
	}

	title := "Water outage (rescheduled)"
	if _, err := s.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateNotice(posted.ID, domain.NoticePatch{Title: &title})
		return err
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := s.Notices(); len(got) != 1 || got[0].Title != title {
		t.Fatalf("update not visible: %+v", got)
	}

	if _, err := s.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteNotice(posted.ID)
	}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := s.Notices(); len(got) != 0 {
		t.Fatalf("notice not removed: %+v", got)
	}
}

func TestViewSeesStableSnapshot(t *testing.T) {
	s := newFixtureStore(t)
	if err := s.View(context.Background(), func(v domain.TransactionView) error {
		if _, ok := v.FindRoom(1, 101); !ok {
			return fmt.Errorf("room 101 missing from view")
		}
		if _, ok := v.FindBlock("missing"); ok {
			return fmt.Errorf("phantom block")
		}
		if len(v.Floors()) != 2 || len(v.Blocks()) != 1 {
			return fmt.Errorf("unexpected view shape")
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}
