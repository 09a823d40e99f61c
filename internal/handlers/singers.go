package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yourusername/ministry-site/internal/models"
)

func (h *Handler) ListSingers(c *fiber.Ctx) error {
	singers, err := h.singers.List(c.UserContext())
	if err != nil {
		return h.storeError(c, err, "", "Failed to retrieve singers")
	}
	return c.JSON(singers)
}

func (h *Handler) GetSinger(c *fiber.Ctx) error {
	singer, err := h.singers.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.storeError(c, err, "Singer not found", "Failed to retrieve singer")
	}
	return c.JSON(singer)
}

func (h *Handler) CreateSinger(c *fiber.Ctx) error {
	var req models.SingerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	singer, err := h.singers.Create(c.UserContext(), req.ToSinger())
	if err != nil {
		return h.storeError(c, err, "", "Failed to create singer")
	}
	h.recordEdit(c)
	return c.Status(fiber.StatusCreated).JSON(singer)
}

func (h *Handler) ReplaceSinger(c *fiber.Ctx) error {
	var req models.SingerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	singer, err := h.singers.Replace(c.UserContext(), c.Params("id"), req.ToSinger())
	if err != nil {
		return h.storeError(c, err, "Singer not found", "Failed to update singer")
	}
	h.recordEdit(c)
	return c.JSON(singer)
}

func (h *Handler) DeleteSinger(c *fiber.Ctx) error {
	if err := h.singers.Delete(c.UserContext(), c.Params("id")); err != nil {
		return h.storeError(c, err, "Singer not found", "Failed to delete singer")
	}
	h.recordEdit(c)
	return c.SendStatus(fiber.StatusNoContent)
}
