package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yourusername/ministry-site/internal/auth"
	"github.com/yourusername/ministry-site/internal/models"
)

// ListPrayerRequests hides private requests from anonymous callers.
func (h *Handler) ListPrayerRequests(c *fiber.Ctx) error {
	all, err := h.prayers.List(c.UserContext())
	if err != nil {
		return h.storeError(c, err, "", "Failed to retrieve prayer requests")
	}
	if _, ok := auth.FromContext(c); ok {
		return c.JSON(all)
	}

	public := make([]models.PrayerRequest, 0, len(all))
	for _, pr := range all {
		if pr.IsPublic {
			public = append(public, pr)
		}
	}
	return c.JSON(public)
}

func (h *Handler) GetPrayerRequest(c *fiber.Ctx) error {
	pr, err := h.prayers.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.storeError(c, err, "Prayer request not found", "Failed to retrieve prayer request")
	}
	if _, ok := auth.FromContext(c); !ok && !pr.IsPublic {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Prayer request not found"})
	}
	return c.JSON(pr)
}

func (h *Handler) CreatePrayerRequest(c *fiber.Ctx) error {
	var in models.PrayerRequestInput
	if err := bind(c, &in); err != nil {
		return err
	}

	pr, err := h.prayers.Create(c.UserContext(), in.ToPrayerRequest())
	if err != nil {
		return h.storeError(c, err, "", "Failed to create prayer request")
	}
	return c.Status(fiber.StatusCreated).JSON(pr)
}

func (h *Handler) ReplacePrayerRequest(c *fiber.Ctx) error {
	var in models.PrayerRequestInput
	if err := bind(c, &in); err != nil {
		return err
	}

	pr, err := h.prayers.Replace(c.UserContext(), c.Params("id"), in.ToPrayerRequest())
	if err != nil {
		return h.storeError(c, err, "Prayer request not found", "Failed to update prayer request")
	}
	return c.JSON(pr)
}

func (h *Handler) DeletePrayerRequest(c *fiber.Ctx) error {
	if err := h.prayers.Delete(c.UserContext(), c.Params("id")); err != nil {
		return h.storeError(c, err, "Prayer request not found", "Failed to delete prayer request")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Pray adds one to the prayer count. Repeat calls are not suppressed.
func (h *Handler) Pray(c *fiber.Ctx) error {
	count, err := h.prayers.IncrementPrayerCount(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.storeError(c, err, "Prayer request not found", "Failed to record prayer")
	}
	return c.JSON(fiber.Map{"id": c.Params("id"), "prayerCount": count})
}
