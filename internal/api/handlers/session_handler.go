package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/crehm/artflow/internal/service"
	"github.com/crehm/artflow/internal/transfer"
)

type SessionHandler struct {
	s service.SessionTracker
}

func NewSessionHandler(s service.SessionTracker) *SessionHandler {
	return &SessionHandler{s: s}
}

func (h *SessionHandler) RecordLogin(c *fiber.Ctx) error {
	var req transfer.RecordLoginRequest
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

	if err := h.s.RecordLogin(c.Context(), req.Destination); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to record login",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Login recorded",
	})
}

func (h *SessionHandler) GetStatus(c *fiber.Ctx) error {
	destination := c.Params("destination")

	status, err := h.s.GetStatus(c.Context(), destination)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to read session status",
		})
	}

	return c.Status(fiber.StatusOK).JSON(status)
}

func (h *SessionHandler) ListAlerts(c *fiber.Ctx) error {
	alerts, err := h.s.GetAlerts(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list session alerts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(alerts)
}
