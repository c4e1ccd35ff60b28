// Package wikipedia resolves film titles to encyclopedia articles and
// retrieves their edit history over a pre-opening window.
package wikipedia

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/andrewblim/predictopedia/internal/fetcher"
)

// maxSearchLimit is the most hits the opensearch backend will return;
// asking for more is pointless.
const maxSearchLimit = 15

// Client talks to a MediaWiki api.php endpoint.
type Client struct {
	fetcher     *fetcher.HTTPFetcher
	apiURL      string
	searchLimit int
	log         *zap.Logger
}

// NewClient creates a Client for the given api.php URL. searchLimit is
// clamped to the backend's cap of 15.
func NewClient(f *fetcher.HTTPFetcher, apiURL string, searchLimit int) *Client {
	if searchLimit <= 0 || searchLimit > maxSearchLimit {
		searchLimit = maxSearchLimit
	}
	return &Client{
		fetcher:     f,
		apiURL:      apiURL,
		searchLimit: searchLimit,
		log:         zap.L().With(zap.String("component", "wikipedia")),
	}
}

func (c *Client) api(ctx context.Context, params url.Values, out any) error {
	return c.fetcher.GetJSON(ctx, c.apiURL+"?"+params.Encode(), out)
}

// OpenSearch queries the opensearch index for query and returns the hit
// titles, at most searchLimit of them.
func (c *Client) OpenSearch(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("action", "opensearch")
	params.Set("search", query)
	params.Set("limit", strconv.Itoa(c.searchLimit))

	// The opensearch response is a positional array:
	// [query, [titles], [descriptions], [urls]].
	var raw []jsonArrayElem
	if err := c.fetcher.GetJSON(ctx, c.apiURL+"?"+params.Encode(), &raw); err != nil {
		return nil, err
	}
	if len(raw) < 2 {
		return nil, nil
	}
	return raw[1].strings, nil
}

// jsonArrayElem decodes an opensearch array element that may be either a
// string or an array of strings.
type jsonArrayElem struct {
	strings []string
}

func (e *jsonArrayElem) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var s []string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		e.strings = s
	}
	return nil
}
