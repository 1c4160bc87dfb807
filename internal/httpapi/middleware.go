package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"hallcore/pkg/domain"
)

const (
	headerRole  = "X-Hall-Role"
	headerEmail = "X-Hall-Email"

	localRole  = "hallRole"
	localEmail = "hallEmail"
)

// identity reads the caller identity headers. Requests without a valid role
// are rejected before any handler runs.
func (s *server) identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := domain.Role(c.Get(headerRole))
		if !role.Valid() {
			return c.Status(fiber.StatusUnauthorized).JSON(errorBody("missing or unknown " + headerRole + " header"))
		}
		c.Locals(localRole, role)
		c.Locals(localEmail, c.Get(headerEmail))
		return c.Next()
	}
}

func callerRole(c *fiber.Ctx) domain.Role {
	role, _ := c.Locals(localRole).(domain.Role)
	return role
}

func callerEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(localEmail).(string)
	return email
}

// requireAdmin gates structural mutations to supervisors.
func (s *server) requireAdmin(c *fiber.Ctx) error {
	if !domain.Allow(callerRole(c), domain.ActionAdmin, callerEmail(c), "") {
		return c.Status(fiber.StatusForbidden).JSON(errorBody("supervisor role required"))
	}
	return c.Next()
}

// allowSelfOrAdmin reports whether the caller may edit the record owned by
// targetEmail.
func allowSelfOrAdmin(c *fiber.Ctx, targetEmail string) bool {
	role := callerRole(c)
	if domain.Allow(role, domain.ActionAdmin, callerEmail(c), "") {
		return true
	}
	return domain.Allow(role, domain.ActionSelfService, callerEmail(c), targetEmail)
}
