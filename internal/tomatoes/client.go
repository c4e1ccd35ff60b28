// Package tomatoes matches films against a critic-aggregator catalog API
// and attaches its structured metadata.
package tomatoes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/andrewblim/predictopedia/internal/fetcher"
)

// Person is an abridged cast or crew credit.
type Person struct {
	Name string `json:"name"`
}

// Movie is a catalog record, as returned by both search and detail
// endpoints. Search results omit genres; a detail fetch by id is required
// to get them.
type Movie struct {
	ID           json.Number       `json:"id"`
	Title        string            `json:"title"`
	MPAARating   string            `json:"mpaa_rating"`
	Runtime      json.Number       `json:"runtime"`
	Genres       []string          `json:"genres"`
	AlternateIDs map[string]string `json:"alternate_ids"`
	ReleaseDates struct {
		Theater string `json:"theater"` // YYYY-MM-DD
	} `json:"release_dates"`
	AbridgedDirectors []Person `json:"abridged_directors"`
	AbridgedCast      []Person `json:"abridged_cast"`
}

type searchResponse struct {
	Movies []Movie `json:"movies"`
	Error  string  `json:"error"`
}

// Client talks to the catalog API. Every request carries the API key.
type Client struct {
	fetcher *fetcher.HTTPFetcher
	baseURL string
	apiKey  string
	log     *zap.Logger
}

// NewClient creates a catalog client. The API key is required.
func NewClient(f *fetcher.HTTPFetcher, baseURL, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, eris.New("tomatoes: api key is required")
	}
	return &Client{
		fetcher: f,
		baseURL: baseURL,
		apiKey:  apiKey,
		log:     zap.L().With(zap.String("component", "tomatoes")),
	}, nil
}

// Search queries the catalog by title.
func (c *Client) Search(ctx context.Context, title string) ([]Movie, error) {
	u := fmt.Sprintf("%s/movies.json?apikey=%s&q=%s",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(title))
	var resp searchResponse
	if err := c.fetcher.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, eris.Errorf("tomatoes: api error: %s", resp.Error)
	}
	return resp.Movies, nil
}

// MovieInfo fetches the full catalog record by id.
func (c *Client) MovieInfo(ctx context.Context, id string) (*Movie, error) {
	u := fmt.Sprintf("%s/movies/%s.json?apikey=%s",
		c.baseURL, url.PathEscape(id), url.QueryEscape(c.apiKey))
	var m Movie
	if err := c.fetcher.GetJSON(ctx, u, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
