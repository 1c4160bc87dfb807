package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"hallcore/pkg/domain"
)

func (s *server) listNotices(c *fiber.Ctx) error {
	return c.JSON(s.service.Notices())
}

func (s *server) postNotice(c *fiber.Ctx) error {
	req, err := parseBody[noticeRequest](c)
	if err != nil {
		return err
	}
	priority := domain.NoticePriority(req.Priority)
	if priority == "" {
		priority = domain.PriorityNormal
	}
	notice, _, err := s.service.PostNotice(c.Context(), req.Title, req.Body, priority, callerEmail(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(notice)
}

func (s *server) updateNotice(c *fiber.Ctx) error {
	req, err := parseBody[noticePatchRequest](c)
	if err != nil {
		return err
	}
	notice, _, err := s.service.UpdateNotice(c.Context(), c.Params("noticeID"), req.toPatch())
	if err != nil {
		return err
	}
	return c.JSON(notice)
}

func (s *server) deleteNotice(c *fiber.Ctx) error {
	if _, err := s.service.DeleteNotice(c.Context(), c.Params("noticeID")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
