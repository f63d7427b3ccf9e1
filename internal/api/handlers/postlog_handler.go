package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/crehm/artflow/internal/service"
)

type PostLogHandler struct {
	l *service.PostLogger
}

func NewPostLogHandler(l *service.PostLogger) *PostLogHandler {
	return &PostLogHandler{l: l}
}

func (h *PostLogHandler) ListRecent(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	entries, err := h.l.Recent(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list post log",
		})
	}

	return c.Status(fiber.StatusOK).JSON(entries)
}
