package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yourusername/ministry-site/internal/models"
)

func (h *Handler) ListSongs(c *fiber.Ctx) error {
	songs, err := h.songs.List(c.UserContext())
	if err != nil {
		return h.storeError(c, err, "", "Failed to retrieve songs")
	}
	return c.JSON(songs)
}

func (h *Handler) GetSong(c *fiber.Ctx) error {
	song, err := h.songs.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.storeError(c, err, "Song not found", "Failed to retrieve song")
	}
	return c.JSON(song)
}

// songFromBody binds a SongRequest and parses its date-time.
func songFromBody(c *fiber.Ctx) (models.Song, error) {
	var req models.SongRequest
	if err := bind(c, &req); err != nil {
		return models.Song{}, err
	}
	song, err := req.ToSong()
	if err != nil {
		return models.Song{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return song, nil
}

func (h *Handler) CreateSong(c *fiber.Ctx) error {
	in, err := songFromBody(c)
	if err != nil {
		return err
	}

	song, err := h.songs.Create(c.UserContext(), in)
	if err != nil {
		return h.storeError(c, err, "", "Failed to create song")
	}

	// The index is best-effort; the store is the source of truth.
	if h.index != nil {
		if err := h.index.IndexSong(c.UserContext(), &song); err != nil {
			h.log.Warn().Err(err).Str("id", song.ID).Msg("Error indexing song")
		}
	}
	h.recordEdit(c)
	return c.Status(fiber.StatusCreated).JSON(song)
}

func (h *Handler) ReplaceSong(c *fiber.Ctx) error {
	in, err := songFromBody(c)
	if err != nil {
		return err
	}

	song, err := h.songs.Replace(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return h.storeError(c, err, "Song not found", "Failed to update song")
	}

	if h.index != nil {
		if err := h.index.IndexSong(c.UserContext(), &song); err != nil {
			h.log.Warn().Err(err).Str("id", song.ID).Msg("Error updating song in index")
		}
	}
	h.recordEdit(c)
	return c.JSON(song)
}

func (h *Handler) DeleteSong(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.songs.Delete(c.UserContext(), id); err != nil {
		return h.storeError(c, err, "Song not found", "Failed to delete song")
	}

	if h.index != nil {
		if err := h.index.DeleteSong(c.UserContext(), id); err != nil {
			h.log.Warn().Err(err).Str("id", id).Msg("Error deleting song from index")
		}
	}
	h.recordEdit(c)
	return c.SendStatus(fiber.StatusNoContent)
}

// SearchSongs uses the index when available and falls back to the store.
func (h *Handler) SearchSongs(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		query = "*"
	}

	if h.index != nil {
		results, err := h.index.Search(c.UserContext(), query)
		if err == nil {
			return c.JSON(results)
		}
		h.log.Warn().Err(err).Msg("Index search failed, falling back to store")
	}

	songs, err := h.songs.Search(c.UserContext(), query)
	if err != nil {
		return h.storeError(c, err, "", "Search failed")
	}
	return c.JSON(models.SearchResult{
		Songs:      songs,
		TotalFound: len(songs),
	})
}

// ReindexAll rebuilds the search index from the song store.
func (h *Handler) ReindexAll(c *fiber.Ctx) error {
	if h.index == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Search index is disabled"})
	}

	songs, err := h.songs.List(c.UserContext())
	if err != nil {
		return h.storeError(c, err, "", "Failed to retrieve songs")
	}
	if err := h.index.ReindexAll(c.UserContext(), songs); err != nil {
		h.log.Error().Err(err).Msg("Error reindexing")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Reindex failed"})
	}

	return c.JSON(fiber.Map{
		"message": "Reindex completed successfully",
		"count":   len(songs),
	})
}
