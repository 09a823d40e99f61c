// Package client fetches admin-managed site content the way the site's
// pages do: one GET per section, no shared cache, no automatic retry.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

type State int

const (
	Loading State = iota
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	// ErrNotLoading is returned by Load once the loader has settled.
	ErrNotLoading = errors.New("loader is not in the loading state")
	// ErrNotFailed is returned by Retry unless the last load failed.
	ErrNotFailed = errors.New("retry is only allowed after a failure")
	// ErrInFlight is returned while another Load or Retry is fetching.
	ErrInFlight = errors.New("load already in progress")
)

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// ContentLoader loads one section. Each loader is independent; two loaders
// for the same section fetch it twice.
type ContentLoader struct {
	url        string
	httpClient *http.Client

	mu       sync.Mutex
	state    State
	inFlight bool
	content  map[string]any
	err      error
}

func NewContentLoader(baseURL, section string, httpClient *http.Client) *ContentLoader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &ContentLoader{
		url:        strings.TrimRight(baseURL, "/") + "/api/admin/" + url.PathEscape(section),
		httpClient: httpClient,
		state:      Loading,
	}
}

// Load performs the single GET of the Loading state and settles in Ready or
// Failed.
func (l *ContentLoader) Load(ctx context.Context) error {
	if err := l.begin(Loading, ErrNotLoading); err != nil {
		return err
	}
	return l.run(ctx)
}

// Retry re-enters Loading from Failed and loads again.
func (l *ContentLoader) Retry(ctx context.Context) error {
	if err := l.begin(Failed, ErrNotFailed); err != nil {
		return err
	}
	return l.run(ctx)
}

// begin claims the single fetch slot if the loader is in state from.
func (l *ContentLoader) begin(from State, wrong error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inFlight {
		return ErrInFlight
	}
	if l.state != from {
		return wrong
	}
	l.state, l.err, l.inFlight = Loading, nil, true
	return nil
}

func (l *ContentLoader) run(ctx context.Context) error {
	content, err := l.fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.inFlight = false
	if err != nil {
		l.state, l.content, l.err = Failed, nil, err
		return err
	}
	l.state, l.content, l.err = Ready, content, nil
	return nil
}

// Snapshot returns the current state with its content or error.
func (l *ContentLoader) Snapshot() (State, map[string]any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state, l.content, l.err
}

func (l *ContentLoader) fetch(ctx context.Context) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var content map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&content); err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}
	return content, nil
}

// Sections lists the section names the site currently stores.
func Sections(ctx context.Context, baseURL string, httpClient *http.Client) ([]string, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/api/admin", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var out struct {
		Sections []string `json:"sections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode sections: %w", err)
	}
	return out.Sections, nil
}
