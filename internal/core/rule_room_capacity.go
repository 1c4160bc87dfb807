package core

import (
	"context"
	"fmt"
	"strconv"

	"hallcore/pkg/domain"
)

// NewRoomCapacityRule returns the in-transaction rule enforcing the room
// occupancy cap. The transaction operations reject over-capacity inserts up
// front; this rule is the invariant backstop over the whole candidate state.
func NewRoomCapacityRule() domain.Rule {
	return roomCapacityRule{}
}

type roomCapacityRule struct{}

func (roomCapacityRule) Name() string { return "room_capacity" }

func (roomCapacityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, floor := range view.Floors() {
		for _, room := range floor.Rooms {
			if len(room.Students) > domain.RoomCapacity {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "room_capacity",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("room %d on floor %d over capacity: %d/%d residents", room.ID, floor.ID, len(room.Students), domain.RoomCapacity),
					Entity:   domain.EntityRoom,
					EntityID: strconv.Itoa(room.ID),
				})
			}
		}
	}
	return res, nil
}
