// Package fetcher performs rate-limited HTTP GETs with bounded retry and
// decodes HTML and JSON responses.
package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/andrewblim/predictopedia/internal/resilience"
)

// Options configures the HTTP fetcher.
type Options struct {
	UserAgent   string
	Timeout     time.Duration
	MaxAttempts int
	// RatePerSec is the request rate allowed per upstream host.
	RatePerSec float64
}

// HTTPFetcher issues GET requests with per-host rate limiting and retries
// the transient failure class up to MaxAttempts total tries. Non-transient
// failures propagate immediately.
type HTTPFetcher struct {
	client *http.Client
	opts   Options

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates an HTTPFetcher with the given options.
func New(opts Options) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "predictopedia/1.0"
	}
	if opts.RatePerSec == 0 {
		opts.RatePerSec = 4
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (f *HTTPFetcher) limiterFor(rawURL string) *rate.Limiter {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(f.opts.RatePerSec), 1)
		f.limiters[host] = lim
	}
	return lim
}

// Get fetches rawURL and returns the response body. Transient failures
// (timeouts, 408/429/5xx) are retried up to MaxAttempts, then the last
// failure is returned.
func (f *HTTPFetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	cfg := resilience.RetryConfig{
		MaxAttempts: f.opts.MaxAttempts,
		OnRetry: func(attempt int, err error) {
			zap.L().Warn("http request failed, retrying",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		},
	}
	return resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]byte, error) {
		return f.getOnce(ctx, rawURL)
	})
}

func (f *HTTPFetcher) getOnce(ctx context.Context, rawURL string) ([]byte, error) {
	if err := f.limiterFor(rawURL).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetcher: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err // net/http errors carry their own transience signals
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("fetcher: http %d from %s", resp.StatusCode, rawURL)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read body from %s", rawURL)
	}
	return body, nil
}

// GetHTML fetches rawURL and parses the body as an HTML document.
func (f *HTTPFetcher) GetHTML(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, err := f.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse html from %s", rawURL)
	}
	return doc, nil
}

// GetJSON fetches rawURL and decodes the body into out.
func (f *HTTPFetcher) GetJSON(ctx context.Context, rawURL string, out any) error {
	body, err := f.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "fetcher: decode json from %s", rawURL)
	}
	return nil
}
