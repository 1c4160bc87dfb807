package httpapi

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"hallcore/pkg/domain"
)

func (s *server) addStudent(c *fiber.Ctx) error {
	floorID, err := s.floorID(c)
	if err != nil {
		return err
	}
	roomID, err := s.roomID(c)
	if err != nil {
		return err
	}
	req, err := parseBody[studentRequest](c)
	if err != nil {
		return err
	}
	student, _, err := s.service.AddStudent(c.Context(), floorID, roomID, req.toInput())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(student)
}

func (s *server) updateStudent(c *fiber.Ctx) error {
	floorID, err := s.floorID(c)
	if err != nil {
		return err
	}
	roomID, err := s.roomID(c)
	if err != nil {
		return err
	}
	studentID := c.Params("studentID")
	req, err := parseBody[studentPatchRequest](c)
	if err != nil {
		return err
	}
	if req.isMove() && (req.NewFloorID == nil || req.NewRoomID == nil) {
		return fiber.NewError(fiber.StatusBadRequest, "a move requires both newFloorId and newRoomId")
	}

	if !domain.Allow(callerRole(c), domain.ActionAdmin, callerEmail(c), "") {
		if req.touchesRestricted() {
			return c.Status(fiber.StatusForbidden).JSON(errorBody("supervisor role required for status changes and moves"))
		}
		current, _, _, found := s.service.FindStudent(studentID)
		if !found {
			return domain.ErrNotFound{Entity: domain.EntityStudent, ID: studentID}
		}
		if !allowSelfOrAdmin(c, current.Email) {
			return c.Status(fiber.StatusForbidden).JSON(errorBody("students may edit only their own record"))
		}
	}

	student, _, err := s.service.UpdateStudent(c.Context(), floorID, roomID, studentID, req.toPatch(), req.NewFloorID, req.NewRoomID)
	if err != nil {
		return err
	}
	return c.JSON(student)
}

func (s *server) deleteStudent(c *fiber.Ctx) error {
	floorID, err := s.floorID(c)
	if err != nil {
		return err
	}
	roomID, err := s.roomID(c)
	if err != nil {
		return err
	}
	if _, err := s.service.DeleteStudent(c.Context(), floorID, roomID, c.Params("studentID")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *server) getStudent(c *fiber.Ctx) error {
	studentID := c.Params("studentID")
	student, floorID, roomID, found := s.service.FindStudent(studentID)
	if !found {
		return domain.ErrNotFound{Entity: domain.EntityStudent, ID: studentID}
	}
	return c.JSON(fiber.Map{
		"student": student,
		"floorId": floorID,
		"roomId":  roomID,
	})
}

func (s *server) uploadPhoto(c *fiber.Ctx) error {
	studentID := c.Params("studentID")
	student, floorID, roomID, found := s.service.FindStudent(studentID)
	if !found {
		return domain.ErrNotFound{Entity: domain.EntityStudent, ID: studentID}
	}
	if !allowSelfOrAdmin(c, student.Email) {
		return c.Status(fiber.StatusForbidden).JSON(errorBody("students may replace only their own photo"))
	}
	body := c.Body()
	if len(body) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "empty photo payload")
	}
	photo, err := s.photos.Put(c.Context(), studentID, bytes.NewReader(body), c.Get(fiber.HeaderContentType))
	if err != nil {
		return err
	}
	// Point the tree at the archived copy instead of the generated avatar.
	photoURL := fmt.Sprintf("/api/v1/students/%s/photo", studentID)
	if _, _, err := s.service.UpdateStudent(c.Context(), floorID, roomID, studentID,
		domain.StudentPatch{PhotoURL: &photoURL}, nil, nil); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(photo)
}

func (s *server) downloadPhoto(c *fiber.Ctx) error {
	studentID := c.Params("studentID")
	photo, rc, err := s.photos.Get(c.Context(), studentID)
	if err != nil {
		return err
	}
	if photo.ContentType != "" {
		c.Set(fiber.HeaderContentType, photo.ContentType)
	}
	return c.SendStream(rc, int(photo.Size))
}

func (s *server) deletePhoto(c *fiber.Ctx) error {
	studentID := c.Params("studentID")
	removed, err := s.photos.Delete(c.Context(), studentID)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrNotFound{Entity: domain.EntityStudent, ID: studentID}
	}
	return c.SendStatus(fiber.StatusNoContent)
}
