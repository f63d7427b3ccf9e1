package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/crehm/artflow/internal/platform"
	"github.com/crehm/artflow/internal/transfer"
)

type DestinationHandler struct {
	registry *platform.Registry
}

func NewDestinationHandler(registry *platform.Registry) *DestinationHandler {
	return &DestinationHandler{registry: registry}
}

func (h *DestinationHandler) ListDestinations(c *fiber.Ctx) error {
	names := h.registry.Names()
	infos := make([]transfer.DestinationInfo, 0, len(names))

	for _, name := range names {
		adapter, err := h.registry.Resolve(name)
		if err != nil {
			continue
		}
		caps := adapter.Capabilities()
		infos = append(infos, transfer.DestinationInfo{
			Name:           adapter.Name(),
			DisplayName:    adapter.DisplayName(),
			Configured:     adapter.IsConfigured(),
			SupportsImages: caps.SupportsImages,
			SupportsVideo:  caps.SupportsVideo,
			MaxTextLength:  caps.MaxTextLength,
		})
	}

	return c.Status(fiber.StatusOK).JSON(infos)
}

func (h *DestinationHandler) VerifyDestination(c *fiber.Ctx) error {
	name := c.Params("destination")

	adapter, err := h.registry.Resolve(name)
	if err != nil {
		if errors.Is(err, platform.ErrUnknownDestination) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to resolve destination",
		})
	}

	if !adapter.IsConfigured() {
		return c.Status(fiber.StatusOK).JSON(transfer.VerifyResponse{
			Destination: name,
			Valid:       false,
			Error:       "destination is not configured",
		})
	}

	valid, err := adapter.VerifyCredentials(c.Context())
	resp := transfer.VerifyResponse{Destination: name, Valid: valid}
	if err != nil {
		resp.Error = err.Error()
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}
