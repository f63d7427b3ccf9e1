package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/crehm/artflow/internal/service"
)

type RotationHandler struct {
	s service.RotationService
}

func NewRotationHandler(s service.RotationService) *RotationHandler {
	return &RotationHandler{s: s}
}

func (h *RotationHandler) RunRotation(c *fiber.Ctx) error {
	report, err := h.s.RunOnce(c.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoEligibleContent) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "no eligible content to publish",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(report)
}

func (h *RotationHandler) GetRound(c *fiber.Ctx) error {
	round, err := h.s.CurrentRound(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to read current round",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"round": round,
	})
}
