package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yourusername/ministry-site/internal/models"
)

func (h *Handler) ListSections(c *fiber.Ctx) error {
	sections, err := h.content.ListSections(c.UserContext())
	if err != nil {
		return h.storeError(c, err, "", "Failed to retrieve sections")
	}
	return c.JSON(fiber.Map{"sections": sections})
}

// GetSection returns the section's content blob as stored.
func (h *Handler) GetSection(c *fiber.Ctx) error {
	section := c.Params("section")
	if !models.ValidSection(section) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid section name"})
	}

	content, err := h.content.GetSection(c.UserContext(), section)
	if err != nil {
		return h.storeError(c, err, "Section not found", "Failed to retrieve section")
	}
	return c.JSON(content.Content)
}

func (h *Handler) PutSection(c *fiber.Ctx) error {
	section := c.Params("section")
	if !models.ValidSection(section) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid section name"})
	}

	var blob map[string]any
	if err := c.BodyParser(&blob); err != nil || blob == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Body must be a JSON object")
	}

	content, err := h.content.PutSection(c.UserContext(), section, blob)
	if err != nil {
		return h.storeError(c, err, "", "Failed to save section")
	}
	h.recordEdit(c)
	return c.JSON(content)
}
