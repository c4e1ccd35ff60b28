package wikipedia

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// revisionBatchSize is the rvlimit sent per history request.
const revisionBatchSize = 500

// Revision is one edit to an article, newest-first in fetch order.
// Immutable once fetched.
type Revision struct {
	RevID     int64     `json:"revid"`
	ParentID  int64     `json:"parentid"`
	User      string    `json:"user"`
	UserID    int64     `json:"userid"`
	Timestamp time.Time `json:"timestamp"`
	Comment   string    `json:"comment,omitempty"`
	Size      int64     `json:"size"`
	// Content is the raw wikitext, delivered under the "*" key. The API
	// omits it for some large or suppressed revisions; nil records that.
	Content *string `json:"*,omitempty"`
}

type historyResponse struct {
	Query struct {
		Pages map[string]historyPage `json:"pages"`
	} `json:"query"`
	QueryContinue *struct {
		Revisions struct {
			RVContinue json.Number `json:"rvcontinue"`
		} `json:"revisions"`
	} `json:"query-continue"`
}

type historyPage struct {
	PageID    int64      `json:"pageid"`
	Title     string     `json:"title"`
	Revisions []Revision `json:"revisions"`
	// raw lets us distinguish "no revisions field" from "empty revisions".
	raw json.RawMessage
}

func (p *historyPage) UnmarshalJSON(data []byte) error {
	type alias historyPage
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = historyPage(a)
	p.raw = data
	return nil
}

func (p *historyPage) hasRevisionsField() bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(p.raw, &fields); err != nil {
		return false
	}
	_, ok := fields["revisions"]
	return ok
}

// HistoryPager pages through an article's revision history newest-to-oldest
// within a timestamp window, following the continuation cursor until the
// source is exhausted.
type HistoryPager struct {
	client *Client
	title  string
	start  time.Time // newest timestamp in window
	end    time.Time // oldest timestamp in window
	cursor string    // rvstartid for the next request, "" on the first
	done   bool
}

// NewHistoryPager creates a pager over title's revisions with timestamps in
// [end, start], start being the more recent bound.
func (c *Client) NewHistoryPager(title string, start, end time.Time) *HistoryPager {
	return &HistoryPager{client: c, title: title, start: start, end: end}
}

// Done reports whether the history is exhausted.
func (p *HistoryPager) Done() bool {
	return p.done
}

// Next fetches the next batch of revisions. An article that does not exist
// is a hard error; an article with no revisions field in the response (no
// history in-window) just ends iteration. After exhaustion Next returns
// (nil, nil) and Done reports true.
func (p *HistoryPager) Next(ctx context.Context) ([]Revision, error) {
	if p.done {
		return nil, nil
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("action", "query")
	params.Set("redirects", "")
	params.Set("prop", "revisions")
	params.Set("rvlimit", strconv.Itoa(revisionBatchSize))
	params.Set("rvdir", "older")
	params.Set("rvprop", strings.Join([]string{
		"ids", "user", "userid", "timestamp", "flags", "comment", "size", "content",
	}, "|"))
	params.Set("titles", p.title)
	params.Set("rvend", mediawikiTimestamp(p.end))
	if p.cursor == "" {
		params.Set("rvstart", mediawikiTimestamp(p.start))
	} else {
		params.Set("rvstartid", p.cursor)
	}

	var resp historyResponse
	if err := p.client.api(ctx, params, &resp); err != nil {
		return nil, err
	}

	page, err := singlePage(resp, p.title)
	if err != nil {
		p.done = true
		return nil, err
	}
	if !page.hasRevisionsField() {
		// No revisions in-window; whatever was collected so far stands.
		p.done = true
		return nil, nil
	}

	if resp.QueryContinue != nil {
		p.cursor = resp.QueryContinue.Revisions.RVContinue.String()
	} else {
		p.done = true
	}
	return page.Revisions, nil
}

// singlePage extracts the one page object from a query response. A missing
// or "-1"-keyed pages object means the article does not exist, which is a
// hard error distinct from an empty history.
func singlePage(resp historyResponse, title string) (*historyPage, error) {
	if len(resp.Query.Pages) == 0 {
		return nil, eris.Errorf("wikipedia: no page found for %q", title)
	}
	if _, missing := resp.Query.Pages["-1"]; missing {
		return nil, eris.Errorf("wikipedia: no page found for %q", title)
	}
	for k := range resp.Query.Pages {
		page := resp.Query.Pages[k]
		return &page, nil
	}
	return nil, eris.Errorf("wikipedia: no page found for %q", title)
}

// FetchHistory collects every revision of title with a timestamp between
// (opening − startOffsetDays) and (opening − endOffsetDays), newest first.
func (c *Client) FetchHistory(ctx context.Context, title string, opening time.Time, startOffsetDays, endOffsetDays int) ([]Revision, error) {
	start := opening.AddDate(0, 0, -startOffsetDays)
	end := opening.AddDate(0, 0, -endOffsetDays)

	var all []Revision
	pager := c.NewHistoryPager(title, start, end)
	for !pager.Done() {
		batch, err := pager.Next(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
	}
	return all, nil
}

// mediawikiTimestamp renders t in the API's YYYYMMDDHHMMSS form.
func mediawikiTimestamp(t time.Time) string {
	return t.Format("20060102150405")
}
