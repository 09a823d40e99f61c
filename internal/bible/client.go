package bible

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

var (
	ErrNotFound         = errors.New("passage not found")
	ErrInvalidReference = errors.New("invalid reference")
)

const DefaultTranslation = "kjv"

var translationPattern = regexp.MustCompile(`^[a-z][a-z0-9-]{1,15}$`)

// Verse is one verse within a passage.
type Verse struct {
	BookName string `json:"book_name"`
	Chapter  int    `json:"chapter"`
	Verse    int    `json:"verse"`
	Text     string `json:"text"`
}

// Passage is what the API returns to site visitors.
type Passage struct {
	Reference   string  `json:"reference"`
	Text        string  `json:"text"`
	Verses      []Verse `json:"verses,omitempty"`
	Translation string  `json:"translation"`
}

// upstreamPassage is the bible-api.com response body.
type upstreamPassage struct {
	Reference       string  `json:"reference"`
	Verses          []Verse `json:"verses"`
	Text            string  `json:"text"`
	TranslationID   string  `json:"translation_id"`
	TranslationName string  `json:"translation_name"`
	Error           string  `json:"error"`
}

// Client talks to a bible-api.com compatible service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	// pick returns an index in [0, n).
	pick func(n int) int
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		pick: rand.IntN,
	}
}

// Verse fetches a passage such as "John 3:16" or "Psalm 23:1-3".
func (c *Client) Verse(ctx context.Context, reference, translation string) (*Passage, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrInvalidReference)
	}
	translation = strings.ToLower(strings.TrimSpace(translation))
	if translation == "" {
		translation = DefaultTranslation
	}
	if !translationPattern.MatchString(translation) {
		return nil, fmt.Errorf("%w: unknown translation %q", ErrInvalidReference, translation)
	}

	endpoint := fmt.Sprintf("%s/%s?translation=%s", c.baseURL, url.PathEscape(reference), url.QueryEscape(translation))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch passage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, reference)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var up upstreamPassage
	if err := json.NewDecoder(resp.Body).Decode(&up); err != nil {
		return nil, fmt.Errorf("failed to decode passage: %w", err)
	}
	if up.Error != "" || strings.TrimSpace(up.Text) == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, reference)
	}

	return &Passage{
		Reference:   up.Reference,
		Text:        strings.TrimSpace(up.Text),
		Verses:      up.Verses,
		Translation: translationLabel(up.TranslationName, up.TranslationID, translation),
	}, nil
}

// VerseOfTheDay is stable for a calendar day.
func (c *Client) VerseOfTheDay(ctx context.Context, day time.Time) (*Passage, error) {
	ref := DailyReferences[day.YearDay()%len(DailyReferences)]
	return c.Verse(ctx, ref, DefaultTranslation)
}

// Random picks uniformly from DailyReferences.
func (c *Client) Random(ctx context.Context) (*Passage, error) {
	ref := DailyReferences[c.pick(len(DailyReferences))]
	return c.Verse(ctx, ref, DefaultTranslation)
}

func translationLabel(name, id, requested string) string {
	if id == "" {
		id = requested
	}
	if name == "" {
		return strings.ToUpper(id)
	}
	return fmt.Sprintf("%s (%s)", name, strings.ToUpper(id))
}
