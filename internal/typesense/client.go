package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/typesense/typesense-go/typesense"
	"github.com/typesense/typesense-go/typesense/api"
	"github.com/typesense/typesense-go/typesense/api/pointer"

	"github.com/yourusername/ministry-site/internal/logging"
	"github.com/yourusername/ministry-site/internal/models"
)

type Client struct {
	client *typesense.Client
	log    zerolog.Logger
}

const collectionName = "songs"

func New(ctx context.Context, apiKey, host string) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(host),
		typesense.WithAPIKey(apiKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	tc := &Client{client: client, log: logging.For("typesense")}

	if err := tc.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("error initializing schema: %w", err)
	}

	tc.log.Info().Str("host", host).Msg("Typesense client initialized")
	return tc, nil
}

func (c *Client) initSchema(ctx context.Context) error {
	if _, err := c.client.Collection(collectionName).Retrieve(ctx); err == nil {
		c.log.Debug().Msg("Collection already exists")
		return nil
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "song_name", Type: "string"},
			{Name: "artist", Type: "string", Facet: pointer.True()},
			{Name: "album", Type: "string", Optional: pointer.True()},
			{Name: "genre", Type: "string", Optional: pointer.True(), Facet: pointer.True()},
			{Name: "singer", Type: "string", Optional: pointer.True()},
			{Name: "lyrics", Type: "string", Optional: pointer.True()},
			{Name: "date_time", Type: "int64"},
		},
		DefaultSortingField: pointer.String("date_time"),
	}

	if _, err := c.client.Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("error creating collection: %w", err)
	}

	c.log.Info().Msg("Typesense collection created")
	return nil
}

func document(song *models.Song) map[string]any {
	doc := map[string]any{
		"id":        song.ID,
		"song_name": song.SongName,
		"artist":    song.Artist,
		"date_time": song.DateTime.Unix(),
	}
	optional := map[string]*string{
		"album":  song.Album,
		"genre":  song.Genre,
		"singer": song.Singer,
		"lyrics": song.Lyrics,
	}
	for key, v := range optional {
		if v != nil {
			doc[key] = *v
		}
	}
	return doc
}

func (c *Client) IndexSong(ctx context.Context, song *models.Song) error {
	if _, err := c.client.Collection(collectionName).Documents().Upsert(ctx, document(song)); err != nil {
		return fmt.Errorf("error indexing song: %w", err)
	}
	return nil
}

func (c *Client) DeleteSong(ctx context.Context, id string) error {
	if _, err := c.client.Collection(collectionName).Document(id).Delete(ctx); err != nil {
		return fmt.Errorf("error deleting song from index: %w", err)
	}
	return nil
}

func (c *Client) Search(ctx context.Context, query string) (*models.SearchResult, error) {
	if query == "" {
		query = "*"
	}
	searchParams := &api.SearchCollectionParams{
		Q:                 query,
		QueryBy:           "song_name,artist,album,genre,singer,lyrics",
		Prefix:            pointer.String("true"),
		PerPage:           pointer.Int(50),
		HighlightStartTag: pointer.String(""),
		HighlightEndTag:   pointer.String(""),
	}

	result, err := c.client.Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("error searching: %w", err)
	}

	songs := make([]models.Song, 0)
	if result.Hits != nil {
		for _, hit := range *result.Hits {
			if hit.Document == nil {
				continue
			}
			songs = append(songs, fromDocument(*hit.Document))
		}
	}

	out := &models.SearchResult{Songs: songs}
	if result.SearchTimeMs != nil {
		out.SearchTime = *result.SearchTimeMs
	}
	if result.Found != nil {
		out.TotalFound = *result.Found
	}
	return out, nil
}

func fromDocument(doc map[string]any) models.Song {
	str := func(key string) string {
		s, _ := doc[key].(string)
		return s
	}
	opt := func(key string) *string {
		if s, ok := doc[key].(string); ok {
			return &s
		}
		return nil
	}

	song := models.Song{
		ID:       str("id"),
		SongName: str("song_name"),
		Artist:   str("artist"),
		Album:    opt("album"),
		Genre:    opt("genre"),
		Singer:   opt("singer"),
		Lyrics:   opt("lyrics"),
	}
	if ts, ok := doc["date_time"].(float64); ok {
		song.DateTime = time.Unix(int64(ts), 0).UTC()
	}
	return song
}

// ReindexAll drops the collection and indexes songs from scratch.
func (c *Client) ReindexAll(ctx context.Context, songs []models.Song) error {
	c.log.Info().Int("songs", len(songs)).Msg("Starting full reindex")

	if _, err := c.client.Collection(collectionName).Delete(ctx); err != nil {
		c.log.Warn().Err(err).Msg("Could not delete existing collection")
	}

	if err := c.initSchema(ctx); err != nil {
		return fmt.Errorf("error recreating schema: %w", err)
	}

	for i := range songs {
		if err := c.IndexSong(ctx, &songs[i]); err != nil {
			return fmt.Errorf("error indexing song %s: %w", songs[i].ID, err)
		}
		if (i+1)%100 == 0 {
			c.log.Info().Msgf("Indexed %d/%d songs", i+1, len(songs))
		}
	}

	c.log.Info().Int("songs", len(songs)).Msg("Reindex complete")
	return nil
}
