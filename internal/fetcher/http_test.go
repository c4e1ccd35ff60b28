package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher() *HTTPFetcher {
	return New(Options{
		UserAgent:   "test-agent",
		Timeout:     5 * time.Second,
		MaxAttempts: 3,
		RatePerSec:  1000,
	})
}

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	body, err := newTestFetcher().Get(context.Background(), srv.URL+"/data")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestGetRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("eventually"))
	}))
	defer srv.Close()

	body, err := newTestFetcher().Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "eventually", string(body))
	assert.Equal(t, int64(3), calls.Load())
}

func TestGetGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, int64(3), calls.Load())
}

func TestGetDoesNotRetryPermanentStatus(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, int64(1), calls.Load())
}

func TestGetHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p id="greeting">hi</p></body></html>`))
	}))
	defer srv.Close()

	doc, err := newTestFetcher().GetHTML(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "hi", doc.Find("#greeting").Text())
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"tron","year":2010}`))
	}))
	defer srv.Close()

	var out struct {
		Name string `json:"name"`
		Year int    `json:"year"`
	}
	require.NoError(t, newTestFetcher().GetJSON(context.Background(), srv.URL, &out))
	assert.Equal(t, "tron", out.Name)
	assert.Equal(t, 2010, out.Year)
}

func TestGetJSONDecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	var out map[string]any
	assert.Error(t, newTestFetcher().GetJSON(context.Background(), srv.URL, &out))
}
