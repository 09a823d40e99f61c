// Package chat forwards visitor messages to the Gemini API, walking a list of
// API versions and candidate models until one answers.
package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/yourusername/ministry-site/internal/logging"
	"github.com/yourusername/ministry-site/internal/metrics"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	ErrNoCredential = errors.New("chat API key not configured")
	ErrEmptyMessage = errors.New("message is required")
)

// DefaultVersions is newest first.
var DefaultVersions = []string{"v1", "v1beta"}

var DefaultModels = []string{
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
	"gemini-pro",
}

type Request struct {
	Message string `json:"message" validate:"required"`
	History []Turn `json:"history"`
	APIKey  string `json:"apiKey,omitempty"`
}

type Reply struct {
	Reply   string `json:"reply"`
	Model   string `json:"model,omitempty"`
	Version string `json:"version,omitempty"`
}

// Error carries the status of the last failed upstream attempt.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("chat upstream failed (%d): %s", e.Status, e.Message)
}

// Model is a model advertised by the list endpoint.
type Model struct {
	Name    string
	Actions []string
}

// Upstream performs single calls against one API version.
type Upstream interface {
	Generate(ctx context.Context, apiKey, version, model string, contents []*genai.Content) (string, error)
	ListModels(ctx context.Context, apiKey, version string) ([]Model, error)
}

type Config struct {
	APIKey          string
	AllowRequestKey bool
	Versions        []string
	Models          []string
}

type Proxy struct {
	upstream        Upstream
	apiKey          string
	allowRequestKey bool
	versions        []string
	models          []string
	metrics         metrics.Recorder
	log             zerolog.Logger
}

func New(cfg Config, upstream Upstream, rec metrics.Recorder) *Proxy {
	versions := cfg.Versions
	if len(versions) == 0 {
		versions = DefaultVersions
	}
	models := cfg.Models
	if len(models) == 0 {
		models = DefaultModels
	}
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &Proxy{
		upstream:        upstream,
		apiKey:          cfg.APIKey,
		allowRequestKey: cfg.AllowRequestKey,
		versions:        versions,
		models:          models,
		metrics:         rec,
		log:             logging.For("chat"),
	}
}

// Configured reports whether a server-side key is present.
func (p *Proxy) Configured() bool {
	return p.apiKey != ""
}

func (p *Proxy) resolveKey(requestKey string) (string, error) {
	if p.apiKey != "" {
		return p.apiKey, nil
	}
	if p.allowRequestKey && strings.TrimSpace(requestKey) != "" {
		return strings.TrimSpace(requestKey), nil
	}
	return "", ErrNoCredential
}

// Chat answers req. Failures are ErrNoCredential, ErrEmptyMessage or *Error.
func (p *Proxy) Chat(ctx context.Context, req Request) (Reply, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}
	key, err := p.resolveKey(req.APIKey)
	if err != nil {
		return Reply{}, err
	}

	m := &machine{
		proxy:    p,
		key:      key,
		contents: buildContents(req.History, message),
		notFound: make(map[string]bool),
	}
	return m.run(ctx)
}

// statusOf extracts the HTTP status from an upstream error.
func statusOf(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr.Code != 0 {
		return apiErrPtr.Code
	}
	var chatErr *Error
	if errors.As(err, &chatErr) {
		return chatErr.Status
	}
	return http.StatusInternalServerError
}

func messageOf(err error) string {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
