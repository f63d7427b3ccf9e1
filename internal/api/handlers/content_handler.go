package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/crehm/artflow/internal/service"
	"github.com/crehm/artflow/internal/transfer"
)

type ContentHandler struct {
	s service.ContentService
}

func NewContentHandler(s service.ContentService) *ContentHandler {
	return &ContentHandler{s: s}
}

func (h *ContentHandler) CreateContent(c *fiber.Ctx) error {
	var req transfer.CreateContentRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	item, err := h.s.Create(c.Context(), req.Title, req.Description, req.Subject, req.AssetRef)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(item)
}

func (h *ContentHandler) ListContent(c *fiber.Ctx) error {
	contentID := c.Query("id")

	if contentID != "" {
		item, err := h.s.Get(c.Context(), contentID)
		if err != nil {
			if errors.Is(err, service.ErrContentNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "content item not found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unable to load content item",
			})
		}
		return c.Status(fiber.StatusOK).JSON(item)
	}

	items, err := h.s.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list content items",
		})
	}

	return c.Status(fiber.StatusOK).JSON(items)
}
