package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/crehm/artflow/internal/service"
	"github.com/crehm/artflow/internal/transfer"
)

type ScheduleHandler struct {
	s service.SchedulerService
}

func NewScheduleHandler(s service.SchedulerService) *ScheduleHandler {
	return &ScheduleHandler{s: s}
}

func (h *ScheduleHandler) CreatePost(c *fiber.Ctx) error {
	var req transfer.SchedulePostRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	if req.Destination == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "destination is required",
		})
	}
	if req.ScheduledTime.IsZero() {
		req.ScheduledTime = time.Now()
	}

	id, err := h.s.AddPost(c.Context(), req.ContentID, req.ContentRef, req.Destination, req.ScheduledTime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post scheduled successfully",
		"id":      id,
	})
}

func (h *ScheduleHandler) ListPending(c *fiber.Ctx) error {
	posts, err := h.s.GetPending(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list pending posts",
		})
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *ScheduleHandler) ListUpcoming(c *fiber.Ctx) error {
	posts, err := h.s.GetUpcoming(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list upcoming posts",
		})
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *ScheduleHandler) ListHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	posts, err := h.s.GetHistory(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list post history",
		})
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *ScheduleHandler) CancelPost(c *fiber.Ctx) error {
	postID := c.Params("id")

	cancelled, err := h.s.Cancel(c.Context(), postID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to cancel post",
		})
	}
	if !cancelled {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "post is not pending",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post cancelled",
	})
}

// RunDue triggers an immediate execution pass over due posts, the same
// pass the cron job fires on its own schedule.
func (h *ScheduleHandler) RunDue(c *fiber.Ctx) error {
	report, err := h.s.ExecuteDue(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"posted": report.Posted,
		"failed": report.Failed,
	})
}
