package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/yourusername/ministry-site/internal/models"
	"github.com/yourusername/ministry-site/internal/sheets"
)

// HeaderFallback is set on music listings served in fallback mode.
const HeaderFallback = "X-Fallback-Mode"

func (h *Handler) ListMusic(c *fiber.Ctx) error {
	rows, res, err := h.music.ListRows(c.UserContext())
	if err != nil {
		h.log.Error().Err(err).Msg("Error reading spreadsheet")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if res.Fallback {
		c.Set(HeaderFallback, res.Message)
	}
	return c.JSON(rows)
}

func musicRequest(c *fiber.Ctx, needIndex, needRow bool) (models.MusicRequest, error) {
	var req models.MusicRequest
	if err := c.BodyParser(&req); err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if needIndex && req.RowIndex == nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "rowIndex is required")
	}
	if needRow {
		if err := req.RowData.Validate(); err != nil {
			return req, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	return req, nil
}

func (h *Handler) musicResult(c *fiber.Ctx, status int, res sheets.Result, err error) error {
	if errors.Is(err, sheets.ErrInvalidRow) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if errors.Is(err, sheets.ErrRowNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Row not found"})
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Error writing spreadsheet")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !res.Fallback {
		h.recordEdit(c)
	}
	return c.Status(status).JSON(res)
}

func (h *Handler) AppendMusic(c *fiber.Ctx) error {
	req, err := musicRequest(c, false, true)
	if err != nil {
		return err
	}
	res, err := h.music.AppendRow(c.UserContext(), req.RowData)
	return h.musicResult(c, fiber.StatusCreated, res, err)
}

func (h *Handler) UpdateMusic(c *fiber.Ctx) error {
	req, err := musicRequest(c, true, true)
	if err != nil {
		return err
	}
	res, err := h.music.UpdateRow(c.UserContext(), *req.RowIndex, req.RowData)
	return h.musicResult(c, fiber.StatusOK, res, err)
}

func (h *Handler) DeleteMusic(c *fiber.Ctx) error {
	req, err := musicRequest(c, true, false)
	if err != nil {
		return err
	}
	res, err := h.music.DeleteRow(c.UserContext(), *req.RowIndex)
	return h.musicResult(c, fiber.StatusOK, res, err)
}
