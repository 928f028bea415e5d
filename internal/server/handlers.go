package server

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/app"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/db"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/service/match"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/service/ratelimit"
)

// Handler carries the service dependencies for all HTTP endpoints. Domain
// errors are returned as-is and mapped centrally by the app error handler.
type Handler struct {
	appCtx  *app.AppContext
	limiter *ratelimit.Service
	matcher *match.Service
}

type actionRequest struct {
	UserID uint64 `json:"user_id"`
	Action string `json:"action"`
}

type findMatchRequest struct {
	UserID uint64 `json:"user_id"`
}

type matchItem struct {
	MatchedUserID   uint64    `json:"matched_user_id"`
	Score           float64   `json:"score"`
	SharedInterests []string  `json:"shared_interests"`
	CreatedAt       time.Time `json:"created_at"`
}

// Health reports DB and Redis connectivity.
func (h *Handler) Health(c *fiber.Ctx) error {
	services := fiber.Map{"db": "ok", "redis": "ok"}
	status := fiber.StatusOK

	sqlDB, err := h.appCtx.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.UserContext())
	}
	if err != nil {
		services["db"] = "error: " + err.Error()
		status = fiber.StatusServiceUnavailable
	}

	if err := h.appCtx.RedisCache.Ping(c.UserContext()); err != nil {
		services["redis"] = "error: " + err.Error()
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{"services": services})
}

// CheckQuota returns the current quota state for (user_id, action) without
// consuming anything.
func (h *Handler) CheckQuota(c *fiber.Ctx) error {
	userID, err := queryUserID(c, "user_id")
	if err != nil {
		return err
	}

	status, err := h.limiter.CheckQuota(
		c.UserContext(), userID, ratelimit.Action(c.Params("action")), time.Now())
	if err != nil {
		return err
	}
	return c.JSON(status)
}

// PerformAction gates and records one occurrence of a quota-limited action:
// enforce first, record only once the action is accepted.
func (h *Handler) PerformAction(c *fiber.Ctx) error {
	var req actionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.UserID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "user_id is required")
	}

	now := time.Now()
	action := ratelimit.Action(req.Action)

	if err := h.limiter.EnforceQuota(c.UserContext(), req.UserID, action, now); err != nil {
		return err
	}
	if err := h.limiter.RecordAction(c.UserContext(), req.UserID, action, now); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"recorded": true})
}

// Cleanup runs one bounded sweep of expired action events.
func (h *Handler) Cleanup(c *fiber.Ctx) error {
	deleted, err := h.limiter.CleanupExpired(c.UserContext(), time.Now())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}

// FindMatch picks a new match for the user. "No eligible candidate" is a
// normal 200 with a null match, distinct from an error.
func (h *Handler) FindMatch(c *fiber.Ctx) error {
	var req findMatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.UserID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "user_id is required")
	}

	result, err := h.matcher.FindMatch(c.UserContext(), req.UserID, time.Now())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"match": result})
}

// RecentMatches returns a page of the user's match history, newest first.
func (h *Handler) RecentMatches(c *fiber.Ctx) error {
	userID, err := queryUserID(c, "user_id")
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	var token *string
	if t := c.Query("page_token"); t != "" {
		token = &t
	}

	matches, nextToken, err := h.matcher.GetRecentMatches(c.UserContext(), userID, token, limit)
	if err != nil {
		return err
	}

	items := make([]matchItem, 0, len(matches))
	for _, m := range matches {
		items = append(items, toMatchItem(m))
	}

	resp := fiber.Map{"matches": items}
	if nextToken != nil {
		resp["next_page_token"] = *nextToken
	}
	return c.JSON(resp)
}

// HasRecentMatch reports whether user_id matched target_id inside the
// anti-repeat window.
func (h *Handler) HasRecentMatch(c *fiber.Ctx) error {
	userID, err := queryUserID(c, "user_id")
	if err != nil {
		return err
	}
	targetID, err := queryUserID(c, "target_id")
	if err != nil {
		return err
	}

	seen, err := h.matcher.HasRecentMatch(c.UserContext(), userID, targetID, time.Now())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"seen": seen})
}

// MatchStats returns the aggregated match history for the user.
func (h *Handler) MatchStats(c *fiber.Ctx) error {
	userID, err := queryUserID(c, "user_id")
	if err != nil {
		return err
	}

	stats, err := h.matcher.GetMatchStats(c.UserContext(), userID, time.Now())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func toMatchItem(m db.Match) matchItem {
	shared := m.SharedInterests
	if shared == nil {
		shared = []string{}
	}
	return matchItem{
		MatchedUserID:   m.MatchedUserID,
		Score:           m.Score,
		SharedInterests: shared,
		CreatedAt:       m.CreatedAt,
	}
}

func queryUserID(c *fiber.Ctx, key string) (uint64, error) {
	id, err := strconv.ParseUint(c.Query(key), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, key+" must be a valid uint64")
	}
	return id, nil
}
