package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"google.golang.org/genai"
)

// maxCachedClients bounds the per-key client cache; request-supplied keys
// would otherwise grow it without limit.
const maxCachedClients = 16

// GenaiUpstream calls the Gemini API through the genai SDK, selecting the API
// version per call.
type GenaiUpstream struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.Mutex
	clients map[string]*genai.Client
}

func NewGenaiUpstream(baseURL string, httpClient *http.Client) *GenaiUpstream {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &GenaiUpstream{
		baseURL:    baseURL,
		httpClient: httpClient,
		clients:    make(map[string]*genai.Client),
	}
}

func (g *GenaiUpstream) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.clients[apiKey]; ok {
		return c, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  g.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("error creating genai client: %w", err)
	}
	if len(g.clients) >= maxCachedClients {
		clear(g.clients)
	}
	g.clients[apiKey] = c
	return c, nil
}

func (g *GenaiUpstream) Generate(ctx context.Context, apiKey, version, model string, contents []*genai.Content) (string, error) {
	c, err := g.client(ctx, apiKey)
	if err != nil {
		return "", err
	}
	resp, err := c.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		HTTPOptions: &genai.HTTPOptions{APIVersion: version},
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (g *GenaiUpstream) ListModels(ctx context.Context, apiKey, version string) ([]Model, error) {
	c, err := g.client(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	var out []Model
	page, err := c.Models.List(ctx, &genai.ListModelsConfig{
		HTTPOptions: &genai.HTTPOptions{APIVersion: version},
	})
	for {
		if errors.Is(err, genai.ErrPageDone) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		for _, m := range page.Items {
			if m == nil {
				continue
			}
			out = append(out, Model{Name: m.Name, Actions: m.SupportedActions})
		}
		page, err = page.Next(ctx)
	}
}
