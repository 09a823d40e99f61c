package handlers

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/yourusername/ministry-site/internal/media"
)

// Upload compresses the multipart "file" and forwards it to the image CDN.
func (h *Handler) Upload(c *fiber.Ctx) error {
	if h.uploads == nil || !h.uploads.Configured() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Image uploads are not configured"})
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file could not be read")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file could not be read")
	}

	res, err := h.uploads.Upload(c.UserContext(), data, fh.Filename)
	switch {
	case errors.Is(err, media.ErrUnsupportedImage):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, media.ErrNotConfigured):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		h.log.Error().Err(err).Str("file", fh.Filename).Msg("Error uploading image")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Upload failed: " + err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// GetBackups lists all backups
func (h *Handler) GetBackups(c *fiber.Ctx) error {
	if h.backups == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Backups are disabled"})
	}
	backups, err := h.backups.ListBackups()
	if err != nil {
		h.log.Error().Err(err).Msg("Error listing backups")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list backups"})
	}
	return c.JSON(backups)
}

// CreateBackup manually triggers a backup
func (h *Handler) CreateBackup(c *fiber.Ctx) error {
	if h.backups == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Backups are disabled"})
	}
	meta, err := h.backups.CreateBackup(c.UserContext(), "manual")
	if err != nil {
		h.log.Error().Err(err).Msg("Error creating backup")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create backup"})
	}
	return c.Status(fiber.StatusCreated).JSON(meta)
}
