package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds every runtime setting. Each field maps to one environment
// variable of the same (upper-cased) name.
type Config struct {
	Port     string `mapstructure:"PORT" validate:"required"`
	LogLevel string `mapstructure:"LOG_LEVEL" validate:"required|in:trace,debug,info,warn,error"`
	Debug    bool   `mapstructure:"DEBUG"`

	StoreBackend string `mapstructure:"STORE_BACKEND" validate:"required|in:postgres,memory"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`

	SheetsSpreadsheetID   string `mapstructure:"SHEETS_SPREADSHEET_ID"`
	SheetsSheetName       string `mapstructure:"SHEETS_SHEET_NAME" validate:"required"`
	SheetsSheetID         int64  `mapstructure:"SHEETS_SHEET_ID"`
	SheetsCredentialsJSON string `mapstructure:"SHEETS_CREDENTIALS_JSON"`
	SheetsCredentialsFile string `mapstructure:"SHEETS_CREDENTIALS_FILE"`

	GeminiAPIKey        string   `mapstructure:"GEMINI_API_KEY"`
	GeminiBaseURL       string   `mapstructure:"GEMINI_BASE_URL"`
	GeminiModels        []string `mapstructure:"GEMINI_MODELS"`
	ChatAllowRequestKey bool     `mapstructure:"CHAT_ALLOW_REQUEST_KEY"`
	ChatRateLimit       int      `mapstructure:"CHAT_RATE_LIMIT"`

	BibleAPIURL string `mapstructure:"BIBLE_API_URL" validate:"required"`

	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `mapstructure:"CLOUDINARY_FOLDER"`

	JWTSecret         string `mapstructure:"JWT_SECRET"`
	AuthRequireWrites bool   `mapstructure:"AUTH_REQUIRE_WRITES"`

	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	ContentCacheTTL time.Duration `mapstructure:"CONTENT_CACHE_TTL"`
	ContentCacheMB  int           `mapstructure:"CONTENT_CACHE_MB"`

	TypesenseHost    string `mapstructure:"TYPESENSE_HOST"`
	TypesenseAPIKey  string `mapstructure:"TYPESENSE_API_KEY"`
	DisableTypesense bool   `mapstructure:"DISABLE_TYPESENSE"`

	BackupEnabled   bool   `mapstructure:"BACKUP_ENABLED"`
	BackupDir       string `mapstructure:"BACKUP_DIR"`
	BackupRetention int    `mapstructure:"BACKUP_RETENTION_DAYS"`

	MetricsEnabled bool `mapstructure:"METRICS_ENABLED"`
}

var defaults = map[string]any{
	"PORT":                    "8080",
	"LOG_LEVEL":               "info",
	"DEBUG":                   false,
	"STORE_BACKEND":           BackendPostgres,
	"DATABASE_URL":            "",
	"SHEETS_SPREADSHEET_ID":   "",
	"SHEETS_SHEET_NAME":       "Sheet1",
	"SHEETS_SHEET_ID":         0,
	"SHEETS_CREDENTIALS_JSON": "",
	"SHEETS_CREDENTIALS_FILE": "",
	"GEMINI_API_KEY":          "",
	"GEMINI_BASE_URL":         "",
	"GEMINI_MODELS":           []string{},
	"CHAT_ALLOW_REQUEST_KEY":  false,
	"CHAT_RATE_LIMIT":         20,
	"BIBLE_API_URL":           "https://bible-api.com",
	"CLOUDINARY_CLOUD_NAME":   "",
	"CLOUDINARY_API_KEY":      "",
	"CLOUDINARY_API_SECRET":   "",
	"CLOUDINARY_FOLDER":       "ministry-site",
	"JWT_SECRET":              "",
	"AUTH_REQUIRE_WRITES":     false,
	"REDIS_ADDR":              "",
	"REDIS_PASSWORD":          "",
	"CONTENT_CACHE_TTL":       "5m",
	"CONTENT_CACHE_MB":        8,
	"TYPESENSE_HOST":          "",
	"TYPESENSE_API_KEY":       "",
	"DISABLE_TYPESENSE":       true,
	"BACKUP_ENABLED":          false,
	"BACKUP_DIR":              "./backups",
	"BACKUP_RETENTION_DAYS":   7,
	"METRICS_ENABLED":         true,
}

// Load reads .env files (if present), then the process environment, and
// returns a validated Config. A missing .env file is not an error.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.GeminiModels = splitList(cfg.GeminiModels)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field rules and cross-field requirements.
func (c *Config) Validate() error {
	v := validate.Struct(c)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %w", v.Errors)
	}
	if c.StoreBackend == BackendPostgres && c.DatabaseURL == "" {
		return errors.New("invalid config: DATABASE_URL is required when STORE_BACKEND=postgres")
	}
	if !c.DisableTypesense && (c.TypesenseHost == "" || c.TypesenseAPIKey == "") {
		return errors.New("invalid config: TYPESENSE_HOST and TYPESENSE_API_KEY are required (or set DISABLE_TYPESENSE=true)")
	}
	if c.ContentCacheTTL <= 0 {
		return errors.New("invalid config: CONTENT_CACHE_TTL must be positive")
	}
	return nil
}

// SheetsConfigured reports whether a spreadsheet id and some credential are present.
func (c *Config) SheetsConfigured() bool {
	return c.SheetsSpreadsheetID != "" && (c.SheetsCredentialsJSON != "" || c.SheetsCredentialsFile != "")
}

// CloudinaryConfigured reports whether image uploads can be forwarded.
func (c *Config) CloudinaryConfigured() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// splitList normalises comma separated values that arrive as one element.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
