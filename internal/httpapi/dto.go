package httpapi

import (
	"github.com/go-playground/validator/v10"

	"hallcore/pkg/domain"
)

var validate = validator.New()

type blockRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=64"`
	Description string `json:"description" validate:"max=256"`
}

type floorRequest struct {
	Name    string `json:"name" validate:"max=64"`
	BlockID string `json:"blockId" validate:"required"`
}

type roomRequest struct {
	ID int `json:"id" validate:"required,min=1"`
}

type studentRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=128"`
	Department string `json:"department" validate:"max=128"`
	Batch      string `json:"batch" validate:"max=32"`
	District   string `json:"district" validate:"max=64"`
	EntryDate  string `json:"entryDate" validate:"max=32"`
	DOB        string `json:"dob" validate:"max=32"`
	BloodGroup string `json:"bloodGroup" validate:"max=8"`
	Phone      string `json:"phone" validate:"max=32"`
	Email      string `json:"email" validate:"omitempty,email"`
	Status     string `json:"status" validate:"omitempty,oneof=regular irregular"`
}

func (r studentRequest) toInput() domain.StudentInput {
	return domain.StudentInput{
		Name:       r.Name,
		Department: r.Department,
		Batch:      r.Batch,
		District:   r.District,
		EntryDate:  r.EntryDate,
		DOB:        r.DOB,
		BloodGroup: r.BloodGroup,
		Phone:      r.Phone,
		Email:      r.Email,
		Status:     domain.StudentStatus(r.Status),
	}
}

// studentPatchRequest mirrors StudentPatch: absent fields stay untouched.
// NewFloorID and NewRoomID request a move to another room.
type studentPatchRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=128"`
	Department *string `json:"department" validate:"omitempty,max=128"`
	Batch      *string `json:"batch" validate:"omitempty,max=32"`
	District   *string `json:"district" validate:"omitempty,max=64"`
	EntryDate  *string `json:"entryDate" validate:"omitempty,max=32"`
	DOB        *string `json:"dob" validate:"omitempty,max=32"`
	BloodGroup *string `json:"bloodGroup" validate:"omitempty,max=8"`
	Phone      *string `json:"phone" validate:"omitempty,max=32"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Status     *string `json:"status" validate:"omitempty,oneof=regular irregular"`
	NewFloorID *int    `json:"newFloorId" validate:"omitempty,min=1"`
	NewRoomID  *int    `json:"newRoomId" validate:"omitempty,min=1"`
}

func (r studentPatchRequest) toPatch() domain.StudentPatch {
	patch := domain.StudentPatch{
		Name:       r.Name,
		Department: r.Department,
		Batch:      r.Batch,
		District:   r.District,
		EntryDate:  r.EntryDate,
		DOB:        r.DOB,
		BloodGroup: r.BloodGroup,
		Phone:      r.Phone,
		Email:      r.Email,
	}
	if r.Status != nil {
		status := domain.StudentStatus(*r.Status)
		patch.Status = &status
	}
	return patch
}

// isMove reports whether the patch requests a room change.
func (r studentPatchRequest) isMove() bool {
	return r.NewFloorID != nil || r.NewRoomID != nil
}

// touchesRestricted reports whether the patch changes fields only a
// supervisor may set.
func (r studentPatchRequest) touchesRestricted() bool {
	return r.Status != nil || r.isMove()
}

type noticeRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=128"`
	Body     string `json:"body" validate:"required,min=1,max=4096"`
	Priority string `json:"priority" validate:"omitempty,oneof=low normal high"`
}

type noticePatchRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=128"`
	Body     *string `json:"body" validate:"omitempty,min=1,max=4096"`
	Priority *string `json:"priority" validate:"omitempty,oneof=low normal high"`
}

func (r noticePatchRequest) toPatch() domain.NoticePatch {
	patch := domain.NoticePatch{Title: r.Title, Body: r.Body}
	if r.Priority != nil {
		priority := domain.NoticePriority(*r.Priority)
		patch.Priority = &priority
	}
	return patch
}
