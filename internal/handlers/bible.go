package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/yourusername/ministry-site/internal/bible"
)

// The Bible routes use the {success, data|error} envelope instead of {error}.

func (h *Handler) bibleResponse(c *fiber.Ctx, passage *bible.Passage, err error) error {
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"success": true, "data": passage})
	case errors.Is(err, bible.ErrInvalidReference):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	case errors.Is(err, bible.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("Bible lookup failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
}

func (h *Handler) BibleVerse(c *fiber.Ctx) error {
	reference := c.Query("reference")
	if reference == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "reference is required"})
	}
	passage, err := h.bible.Verse(c.UserContext(), reference, c.Query("translation"))
	return h.bibleResponse(c, passage, err)
}

func (h *Handler) BibleVerseOfTheDay(c *fiber.Ctx) error {
	passage, err := h.bible.VerseOfTheDay(c.UserContext(), h.now())
	return h.bibleResponse(c, passage, err)
}

func (h *Handler) BibleRandom(c *fiber.Ctx) error {
	passage, err := h.bible.Random(c.UserContext())
	return h.bibleResponse(c, passage, err)
}
