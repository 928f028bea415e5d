package server

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/app"
	svcErr "github.com/Adeolu5678/EchoinWhispr-sub001/internal/errors"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/service/match"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/service/ratelimit"
)

// New builds the fiber app exposing the rate-limiter and matchmaking
// operations as JSON endpoints. Transport concerns only; all business rules
// live in the services.
func New(appCtx *app.AppContext, limiter *ratelimit.Service, matcher *match.Service) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			code, msg := svcErr.HTTPStatus(err)
			return c.Status(code).JSON(fiber.Map{"error": msg})
		},
	})

	fiberApp.Use(requestID())
	fiberApp.Use(requestLogger(appCtx))

	h := &Handler{appCtx: appCtx, limiter: limiter, matcher: matcher}

	fiberApp.Get("/healthz", h.Health)

	v1 := fiberApp.Group("/v1")
	v1.Get("/quota/:action", h.CheckQuota)
	v1.Post("/actions", h.PerformAction)
	v1.Post("/admin/cleanup", h.Cleanup)
	v1.Post("/matches", h.FindMatch)
	v1.Get("/matches/recent", h.RecentMatches)
	v1.Get("/matches/seen", h.HasRecentMatch)
	v1.Get("/matches/stats", h.MatchStats)

	return fiberApp
}

// requestID tags every request with a uuid, echoed in the response header.
func requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals("request_id", id)
		c.Set("X-Request-ID", id)
		return c.Next()
	}
}

// requestLogger logs method, path, status and duration for every request.
func requestLogger(appCtx *app.AppContext) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		appCtx.Logger.Info("request",
			"request_id", c.Locals("request_id"),
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", fmt.Sprintf("%.2fms", float64(time.Since(start).Microseconds())/1000),
		)
		return err
	}
}
