package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"hallcore/internal/infra/photos"
	"hallcore/pkg/domain"
)

func errorBody(msg string) fiber.Map {
	return fiber.Map{"error": msg}
}

// errorHandler maps domain errors onto HTTP statuses: unknown targets become
// 404, invariant conflicts 409, malformed input 400.
func (s *server) errorHandler(c *fiber.Ctx, err error) error {
	var (
		notFound   domain.ErrNotFound
		roomFull   domain.ErrRoomFull
		duplicate  domain.ErrDuplicateRoom
		occupied   domain.ErrOccupied
		violations domain.RuleViolationError
		fieldErrs  validator.ValidationErrors
		fiberErr   *fiber.Error
	)
	switch {
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(errorBody(notFound.Error()))
	case photos.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(errorBody(err.Error()))
	case errors.As(err, &roomFull):
		return c.Status(fiber.StatusConflict).JSON(errorBody(roomFull.Error()))
	case errors.As(err, &duplicate):
		return c.Status(fiber.StatusConflict).JSON(errorBody(duplicate.Error()))
	case errors.As(err, &occupied):
		return c.Status(fiber.StatusConflict).JSON(errorBody(occupied.Error()))
	case errors.As(err, &violations):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":      "transaction rejected",
			"violations": violations.Result.Violations,
		})
	case errors.As(err, &fieldErrs):
		return c.Status(fiber.StatusBadRequest).JSON(errorBody(fieldErrs.Error()))
	case errors.As(err, &fiberErr):
		return c.Status(fiberErr.Code).JSON(errorBody(fiberErr.Message))
	}
	s.logger.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	return c.Status(fiber.StatusInternalServerError).JSON(errorBody("internal error"))
}
