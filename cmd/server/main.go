package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourusername/ministry-site/internal/auth"
	"github.com/yourusername/ministry-site/internal/backup"
	"github.com/yourusername/ministry-site/internal/bible"
	"github.com/yourusername/ministry-site/internal/chat"
	"github.com/yourusername/ministry-site/internal/config"
	"github.com/yourusername/ministry-site/internal/content"
	"github.com/yourusername/ministry-site/internal/database"
	"github.com/yourusername/ministry-site/internal/handlers"
	"github.com/yourusername/ministry-site/internal/logging"
	"github.com/yourusername/ministry-site/internal/media"
	"github.com/yourusername/ministry-site/internal/metrics"
	"github.com/yourusername/ministry-site/internal/server"
	"github.com/yourusername/ministry-site/internal/sheets"
	"github.com/yourusername/ministry-site/internal/store"
	"github.com/yourusername/ministry-site/internal/store/memory"
	"github.com/yourusername/ministry-site/internal/typesense"
)

// editsPerBackup triggers an extra backup after this many content edits.
const editsPerBackup = 100

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.L().Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logging.Init(cfg.LogLevel, cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := metrics.New(cfg.MetricsEnabled, nil)

	var (
		stores store.Stores
		dumper backup.Dumper
	)
	switch cfg.StoreBackend {
	case config.BackendMemory:
		stores = memory.New()
		dumper = backup.Snapshot{Stores: stores}
		log.Warn().Msg("Using in-memory store; data is lost on restart")
	default:
		db, err := database.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
		stores = db.Stores()
		dumper = backup.PgDump{DSN: cfg.DatabaseURL}
	}

	var cacheBackend content.Backend = content.NewFreecache(cfg.ContentCacheMB)
	if rdb := content.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword); rdb != nil {
		defer rdb.Close()
		cacheBackend = content.NewRedis(rdb, "ministry-site:")
		log.Info().Str("addr", cfg.RedisAddr).Msg("Content cache backed by redis")
	}
	stores.Content = content.New(stores.Content, cacheBackend, cfg.ContentCacheTTL, rec)

	deps := handlers.Deps{
		Stores: stores,
		Bible:  bible.New(cfg.BibleAPIURL),
	}

	if !cfg.DisableTypesense {
		ts, err := typesense.New(ctx, cfg.TypesenseAPIKey, cfg.TypesenseHost)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Typesense")
		}
		deps.Index = ts
	} else {
		log.Info().Msg("Typesense is disabled; search uses the song store")
	}

	music := sheets.New(ctx, sheets.Config{
		SpreadsheetID:   cfg.SheetsSpreadsheetID,
		SheetName:       cfg.SheetsSheetName,
		SheetID:         cfg.SheetsSheetID,
		CredentialsJSON: cfg.SheetsCredentialsJSON,
		CredentialsFile: cfg.SheetsCredentialsFile,
	})
	music.SetRecorder(rec)
	deps.Music = music

	proxy := chat.New(chat.Config{
		APIKey:          cfg.GeminiAPIKey,
		AllowRequestKey: cfg.ChatAllowRequestKey,
		Models:          cfg.GeminiModels,
	}, chat.NewGenaiUpstream(cfg.GeminiBaseURL, nil), rec)
	if !proxy.Configured() {
		log.Warn().Bool("allowRequestKey", cfg.ChatAllowRequestKey).Msg("GEMINI_API_KEY not set; chat answers 401")
	}
	deps.Chat = proxy

	var uploader media.Uploader
	if cfg.CloudinaryConfigured() {
		cld, err := media.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		if err != nil {
			log.Error().Err(err).Msg("Image uploads disabled")
		} else {
			uploader = cld
		}
	}
	deps.Uploads = media.NewService(uploader, media.DefaultCompressOptions)

	if cfg.BackupEnabled {
		mgr := backup.NewManager(dumper, cfg.BackupDir, cfg.BackupRetention, editsPerBackup)
		mgr.Start(ctx)
		deps.Backups = mgr
	}

	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set; protected routes reject every request")
	}

	app := server.New(server.Options{
		Deps:          deps,
		Metrics:       rec,
		Verifier:      auth.NewVerifier(cfg.JWTSecret),
		RequireWrites: cfg.AuthRequireWrites,
		ChatRateLimit: cfg.ChatRateLimit,
		AccessLog:     true,
	})

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("Error during shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("store", cfg.StoreBackend).Bool("sheetsFallback", music.Degraded()).Msg("Server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
