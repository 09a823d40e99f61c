package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/yourusername/ministry-site/internal/chat"
)

// Chat relays one visitor message. Upstream failures keep the upstream status.
func (h *Handler) Chat(c *fiber.Ctx) error {
	var req chat.Request
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	reply, err := h.chat.Chat(c.UserContext(), req)
	if err == nil {
		return c.JSON(reply)
	}

	var upstream *chat.Error
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, chat.ErrNoCredential):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &upstream):
		h.log.Warn().Int("status", upstream.Status).Str("message", upstream.Message).Msg("Chat upstream failed")
		return c.Status(upstream.Status).JSON(fiber.Map{"error": upstream.Message})
	default:
		h.log.Error().Err(err).Msg("Chat failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
