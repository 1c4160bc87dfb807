package relay

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

var validate = validator.New()

// NewApp builds the relay's HTTP surface: a single POST /emergency endpoint
// with permissive CORS so the hall frontend can call it cross-origin.
func NewApp(mailer *Mailer) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Authorization, Content-Type",
		AllowMethods: "POST, OPTIONS",
	}))

	app.Post("/emergency", func(c *fiber.Ctx) error {
		var alert Alert
		if err := c.BodyParser(&alert); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success":   false,
				"emailSent": false,
				"error":     "malformed request body",
			})
		}
		if err := validate.Struct(alert); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success":   false,
				"emailSent": false,
				"error":     err.Error(),
			})
		}
		messageID, err := mailer.Send(c.Context(), alert)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success":   false,
				"emailSent": false,
				"error":     err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"success":   true,
			"emailSent": true,
			"messageId": messageID,
		})
	})

	return app
}
