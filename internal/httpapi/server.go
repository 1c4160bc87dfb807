// Package httpapi exposes the hall administration operations over HTTP. The
// caller's identity arrives in the X-Hall-Role and X-Hall-Email headers; an
// upstream gateway is expected to have authenticated them.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"hallcore/internal/core"
	"hallcore/internal/infra/photos"
)

// Config wires the server's collaborators.
type Config struct {
	Service *core.Service
	Photos  photos.Archive
	Logger  zerolog.Logger
}

type server struct {
	service *core.Service
	photos  photos.Archive
	logger  zerolog.Logger
}

// New builds the fiber application with all routes registered.
func New(cfg Config) *fiber.App {
	s := &server{service: cfg.Service, photos: cfg.Photos, logger: cfg.Logger}

	app := fiber.New(fiber.Config{
		ErrorHandler:          s.errorHandler,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(s.requestLogger())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(s.metricsHandler()))

	api := app.Group("/api/v1", s.identity())

	api.Get("/blocks", s.listBlocks)
	api.Post("/blocks", s.requireAdmin, s.addBlock)
	api.Put("/blocks/:blockID", s.requireAdmin, s.updateBlock)
	api.Delete("/blocks/:blockID", s.requireAdmin, s.deleteBlock)
	api.Get("/blocks/:blockID/floors", s.listBlockFloors)
	api.Get("/blocks/:blockID/stats", s.blockStats)

	api.Get("/floors", s.listFloors)
	api.Post("/floors", s.requireAdmin, s.addFloor)
	api.Get("/floors/:floorID", s.getFloor)
	api.Delete("/floors/:floorID", s.requireAdmin, s.deleteFloor)
	api.Get("/floors/:floorID/stats", s.floorStats)

	api.Post("/floors/:floorID/rooms", s.requireAdmin, s.addRoom)
	api.Delete("/floors/:floorID/rooms/:roomID", s.requireAdmin, s.deleteRoom)

	api.Post("/floors/:floorID/rooms/:roomID/students", s.requireAdmin, s.addStudent)
	api.Patch("/floors/:floorID/rooms/:roomID/students/:studentID", s.updateStudent)
	api.Delete("/floors/:floorID/rooms/:roomID/students/:studentID", s.requireAdmin, s.deleteStudent)

	api.Get("/students/:studentID", s.getStudent)
	api.Put("/students/:studentID/photo", s.uploadPhoto)
	api.Get("/students/:studentID/photo", s.downloadPhoto)
	api.Delete("/students/:studentID/photo", s.requireAdmin, s.deletePhoto)

	api.Get("/notices", s.listNotices)
	api.Post("/notices", s.requireAdmin, s.postNotice)
	api.Patch("/notices/:noticeID", s.requireAdmin, s.updateNotice)
	api.Delete("/notices/:noticeID", s.requireAdmin, s.deleteNotice)

	return app
}

func (s *server) metricsHandler() http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(core.NewOccupancyCollector(s.service.Store()))
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func (s *server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		s.logger.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("request")
		return err
	}
}
