package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gookit/validate"
	"github.com/rs/zerolog"

	"github.com/yourusername/ministry-site/internal/backup"
	"github.com/yourusername/ministry-site/internal/bible"
	"github.com/yourusername/ministry-site/internal/chat"
	"github.com/yourusername/ministry-site/internal/logging"
	"github.com/yourusername/ministry-site/internal/media"
	"github.com/yourusername/ministry-site/internal/models"
	"github.com/yourusername/ministry-site/internal/sheets"
	"github.com/yourusername/ministry-site/internal/store"
)

// SongIndex is the optional full-text index kept beside the song store.
type SongIndex interface {
	IndexSong(ctx context.Context, song *models.Song) error
	DeleteSong(ctx context.Context, id string) error
	Search(ctx context.Context, query string) (*models.SearchResult, error)
	ReindexAll(ctx context.Context, songs []models.Song) error
}

type MusicSheet interface {
	ListRows(ctx context.Context) ([]models.MusicRow, sheets.Result, error)
	AppendRow(ctx context.Context, row models.MusicRow) (sheets.Result, error)
	UpdateRow(ctx context.Context, index int, row models.MusicRow) (sheets.Result, error)
	DeleteRow(ctx context.Context, index int) (sheets.Result, error)
	Degraded() bool
}

type Scripture interface {
	Verse(ctx context.Context, reference, translation string) (*bible.Passage, error)
	VerseOfTheDay(ctx context.Context, day time.Time) (*bible.Passage, error)
	Random(ctx context.Context) (*bible.Passage, error)
}

type Chatter interface {
	Chat(ctx context.Context, req chat.Request) (chat.Reply, error)
	Configured() bool
}

type ImageUploader interface {
	Upload(ctx context.Context, data []byte, name string) (media.Uploaded, error)
	Configured() bool
}

type Backups interface {
	CreateBackup(ctx context.Context, backupType string) (backup.Metadata, error)
	ListBackups() ([]backup.Metadata, error)
	RecordEdit(ctx context.Context)
}

// Deps are the collaborators of a Handler. Index, Backups and the
// external-service fields may be nil; the matching routes then degrade.
type Deps struct {
	Stores  store.Stores
	Index   SongIndex
	Music   MusicSheet
	Bible   Scripture
	Chat    Chatter
	Uploads ImageUploader
	Backups Backups
}

type Handler struct {
	singers store.Singers
	songs   store.Songs
	prayers store.PrayerRequests
	content store.Content
	index   SongIndex
	music   MusicSheet
	bible   Scripture
	chat    Chatter
	uploads ImageUploader
	backups Backups
	now     func() time.Time
	log     zerolog.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		singers: d.Stores.Singers,
		songs:   d.Stores.Songs,
		prayers: d.Stores.PrayerRequests,
		content: d.Stores.Content,
		index:   d.Index,
		music:   d.Music,
		bible:   d.Bible,
		chat:    d.Chat,
		uploads: d.Uploads,
		backups: d.Backups,
		now:     time.Now,
		log:     logging.For("handlers"),
	}
}

// Guards are the middlewares placed in front of protected routes.
type Guards struct {
	// Admin always requires a bearer token.
	Admin fiber.Handler
	// Writes protects entity mutations; a passthrough unless configured.
	Writes fiber.Handler
	// Viewer attaches claims when present and never rejects.
	Viewer fiber.Handler
	// ChatLimit throttles the chat proxy.
	ChatLimit fiber.Handler
}

// Register mounts every route on api.
func (h *Handler) Register(api fiber.Router, g Guards) {
	api.Get("/health", h.HealthCheck)

	api.Get("/singers", h.ListSingers)
	api.Post("/singers", g.Writes, h.CreateSinger)
	api.Get("/singers/:id", h.GetSinger)
	api.Put("/singers/:id", g.Writes, h.ReplaceSinger)
	api.Delete("/singers/:id", g.Writes, h.DeleteSinger)

	api.Get("/songs", h.ListSongs)
	api.Post("/songs", g.Writes, h.CreateSong)
	api.Get("/songs/search", h.SearchSongs)
	api.Get("/songs/:id", h.GetSong)
	api.Put("/songs/:id", g.Writes, h.ReplaceSong)
	api.Delete("/songs/:id", g.Writes, h.DeleteSong)

	api.Get("/music", h.ListMusic)
	api.Post("/music", g.Writes, h.AppendMusic)
	api.Put("/music", g.Writes, h.UpdateMusic)
	api.Delete("/music", g.Writes, h.DeleteMusic)

	api.Get("/prayer-requests", g.Viewer, h.ListPrayerRequests)
	api.Post("/prayer-requests", h.CreatePrayerRequest)
	api.Get("/prayer-requests/:id", g.Viewer, h.GetPrayerRequest)
	api.Put("/prayer-requests/:id", g.Admin, h.ReplacePrayerRequest)
	api.Delete("/prayer-requests/:id", g.Admin, h.DeletePrayerRequest)
	api.Post("/prayer-requests/:id/pray", h.Pray)

	api.Get("/admin", h.ListSections)
	api.Get("/admin/:section", h.GetSection)
	api.Put("/admin/:section", g.Admin, h.PutSection)

	api.Get("/bible/verse", h.BibleVerse)
	api.Get("/bible/verse-of-the-day", h.BibleVerseOfTheDay)
	api.Get("/bible/random", h.BibleRandom)

	api.Post("/chat", g.ChatLimit, h.Chat)

	api.Post("/upload", g.Admin, h.Upload)

	api.Get("/backups", g.Admin, h.GetBackups)
	api.Post("/backups", g.Admin, h.CreateBackup)
	api.Post("/reindex", g.Admin, h.ReindexAll)
}

// bind decodes the JSON body into dst and applies its validate tags. The
// returned *fiber.Error is rendered as {error} by the app's error handler.
func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	v := validate.Struct(dst)
	if !v.Validate() {
		return fiber.NewError(fiber.StatusBadRequest, v.Errors.One())
	}
	return nil
}

// storeError maps a store failure onto 404 or 500.
func (h *Handler) storeError(c *fiber.Ctx, err error, notFound, failed string) error {
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFound})
	}
	h.log.Error().Err(err).Str("path", c.Path()).Msg(failed)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": failed + ": " + err.Error()})
}

// recordEdit counts a content mutation toward the edit-threshold backup.
func (h *Handler) recordEdit(c *fiber.Ctx) {
	if h.backups == nil {
		return
	}
	ctx := context.WithoutCancel(c.UserContext())
	go h.backups.RecordEdit(ctx)
}

// HealthCheck returns server health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	search := "store"
	if h.index != nil {
		search = "typesense"
	}
	return c.JSON(fiber.Map{
		"status": "healthy",
		"timestamp": fiber.Map{
			"unix": h.now().Unix(),
		},
		"subsystems": fiber.Map{
			"sheetsFallback": h.music == nil || h.music.Degraded(),
			"chat":           h.chat != nil && h.chat.Configured(),
			"uploads":        h.uploads != nil && h.uploads.Configured(),
			"backups":        h.backups != nil,
			"search":         search,
		},
	})
}
