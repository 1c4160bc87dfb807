package core

import (
	"context"
	"fmt"
	"strconv"

	"hallcore/pkg/domain"
)

// NewRoomIdentityRule returns the rule asserting that room ids stay pairwise
// distinct within each floor and floor ids stay distinct hall-wide.
func NewRoomIdentityRule() domain.Rule {
	return roomIdentityRule{}
}

type roomIdentityRule struct{}

func (roomIdentityRule) Name() string { return "room_identity" }

func (roomIdentityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	seenFloors := make(map[int]bool)
	for _, floor := range view.Floors() {
		if seenFloors[floor.ID] {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "room_identity",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("duplicate floor id %d", floor.ID),
				Entity:   domain.EntityFloor,
				EntityID: strconv.Itoa(floor.ID),
			})
		}
		seenFloors[floor.ID] = true

		seenRooms := make(map[int]bool, len(floor.Rooms))
		for _, room := range floor.Rooms {
			if seenRooms[room.ID] {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "room_identity",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("duplicate room id %d on floor %d", room.ID, floor.ID),
					Entity:   domain.EntityRoom,
					EntityID: strconv.Itoa(room.ID),
				})
			}
			seenRooms[room.ID] = true
		}
	}
	return res, nil
}
