package feature

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewblim/predictopedia/internal/film"
	"github.com/andrewblim/predictopedia/internal/wikipedia"
)

func rev(user string, ts time.Time, size int64, content string) wikipedia.Revision {
	r := wikipedia.Revision{User: user, Timestamp: ts, Size: size}
	if content != "" {
		r.Content = &content
	}
	return r
}

func i64(v int64) *int64 { return &v }

func TestCountEditRunsAuthorBoundaries(t *testing.T) {
	opening := day(2010, 7, 16)
	// Newest-first fetch order: Alice, Alice, Bob, Alice is three runs.
	revisions := []wikipedia.Revision{
		rev("Alice", day(2010, 7, 15), 100, ""),
		rev("Alice", day(2010, 7, 14), 100, ""),
		rev("Bob", day(2010, 7, 13), 100, ""),
		rev("Alice", day(2010, 7, 12), 100, ""),
	}
	near, far := countEditRuns(revisions, opening)
	assert.Equal(t, 3, near)
	assert.Zero(t, far)
}

func TestCountEditRunsBucketsByRunStart(t *testing.T) {
	opening := day(2010, 7, 16)
	revisions := []wikipedia.Revision{
		rev("Alice", day(2010, 7, 10), 100, ""), // 6 days out: near
		rev("Bob", day(2010, 7, 8), 100, ""),    // 8 days out: far
		rev("Bob", day(2010, 6, 25), 100, ""),   // same run, start already counted
		rev("Carol", day(2010, 6, 20), 100, ""), // 26 days out: far
	}
	near, far := countEditRuns(revisions, opening)
	assert.Equal(t, 1, near)
	assert.Equal(t, 2, far)
}

func TestCountEditRunsEmptyHistory(t *testing.T) {
	near, far := countEditRuns(nil, day(2010, 7, 16))
	assert.Zero(t, near)
	assert.Zero(t, far)
}

func TestContentStatsAveragesOverContentBearingRevisions(t *testing.T) {
	revisions := []wikipedia.Revision{
		rev("Alice", day(2010, 7, 15), 200, "shown in imax\n== Plot ==\n[[File:poster.jpg]]"),
		rev("Bob", day(2010, 7, 14), 100, "== Plot ==\n== Cast =="),
		rev("Carol", day(2010, 7, 13), 300, ""), // no content: excluded from keyword means
	}
	imax, extFile, headings, avgSize := contentStats(revisions)
	assert.InDelta(t, 0.5, imax, 1e-9)
	assert.InDelta(t, 0.5, extFile, 1e-9)
	assert.InDelta(t, 1.5, headings, 1e-9)
	assert.InDelta(t, 200.0, avgSize, 1e-9, "size averages over all revisions")
}

func TestContentStatsKeywordPatterns(t *testing.T) {
	cases := []struct {
		content string
		imax    float64
		extFile float64
	}{
		{"released in imax theaters", 1, 0},
		{"climaxes early", 0, 0}, // imax needs a word boundary before it
		{"[[file:one.jpg]] and [[File:two.jpg]]", 0, 2},
		{"a plain File: mention", 0, 0},
	}
	for _, c := range cases {
		imax, extFile, _, _ := contentStats([]wikipedia.Revision{rev("A", day(2010, 1, 1), 10, c.content)})
		assert.Equal(t, c.imax, imax, c.content)
		assert.Equal(t, c.extFile, extFile, c.content)
	}
}

func writeCacheEntry(t *testing.T, dir, title string, revisions []wikipedia.Revision) *wikipedia.Cache {
	t.Helper()
	cache, err := wikipedia.NewCache(dir)
	require.NoError(t, err)
	require.NoError(t, cache.Write(title, revisions))
	return cache
}

func TestExtractBuildsRow(t *testing.T) {
	dir := t.TempDir()
	cache := writeCacheEntry(t, dir, "Inception", []wikipedia.Revision{
		rev("Alice", day(2010, 7, 15), 400, "an imax release\n== Plot =="),
		rev("Bob", day(2010, 7, 10), 200, ""),
	})

	runtime := 148
	films := []film.Film{{
		Title:           "Inception",
		Year:            2010,
		OpeningDate:     day(2010, 7, 16), // a Friday
		OpeningGross:    i64(62_785_337),
		OpeningTheaters: i64(3792),
		MPAARating:      "PG-13",
		Runtime:         &runtime,
		Genres:          "Action & Adventure,Mystery & Suspense,Science Fiction & Fantasy",
		WikiTitle:       "Inception",
	}}

	rows, response, err := NewExtractor(cache).Extract(films)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "Inception", row.Title)
	assert.Equal(t, 1, row.GenreFlags[0], "genre_action")
	assert.Equal(t, 1, row.GenreFlags[11], "genre_mystery")
	assert.Equal(t, 1, row.GenreFlags[13], "genre_scifi")
	assert.Zero(t, row.GenreFlags[7], "genre_drama")
	assert.Equal(t, 1, row.MPAAPG13)
	assert.Zero(t, row.MPAAG)
	assert.Equal(t, 1, row.ReleaseFriday)
	assert.Equal(t, 2, row.EditRuns0to7)
	assert.Equal(t, 148, row.Runtime)
	assert.InDelta(t, 1.0, row.WordIMAX, 1e-9)
	assert.InDelta(t, 300.0, row.AvgSize, 1e-9)
	assert.InDelta(t, 62_785_337.0/3792.0, response[0], 1e-9)
}

func TestExtractNonFridayOpening(t *testing.T) {
	dir := t.TempDir()
	cache := writeCacheEntry(t, dir, "Midweek Film", nil)

	films := []film.Film{{
		Title:       "Midweek Film",
		Year:        2010,
		OpeningDate: day(2010, 11, 24), // a Wednesday
		WikiTitle:   "Midweek Film",
	}}
	rows, response, err := NewExtractor(cache).Extract(films)
	require.NoError(t, err)
	assert.Zero(t, rows[0].ReleaseFriday)
	assert.True(t, math.IsNaN(response[0]), "missing revenue yields NaN response")
}

func TestExtractUnresolvedTitleAbortsRun(t *testing.T) {
	cache, err := wikipedia.NewCache(t.TempDir())
	require.NoError(t, err)

	films := []film.Film{{Title: "Nameless", Year: 2010}}
	_, _, err = NewExtractor(cache).Extract(films)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no resolved article title")
}

func TestExtractMissingCacheEntryAbortsRun(t *testing.T) {
	cache, err := wikipedia.NewCache(t.TempDir())
	require.NoError(t, err)

	films := []film.Film{{Title: "Uncached", Year: 2010, WikiTitle: "Uncached"}}
	_, _, err = NewExtractor(cache).Extract(films)
	require.Error(t, err)
}

func TestAttachSimilarRevenue(t *testing.T) {
	films := []film.Film{
		{Title: "Current", Year: 2010},
		{Title: "PastA", Year: 2009, OpeningGross: i64(10_000_000), OpeningTheaters: i64(2000)}, // 5000/theater
		{Title: "PastB", Year: 2009, OpeningGross: i64(3_000_000), OpeningTheaters: i64(3000)},  // 1000/theater
		{Title: "NoRevenue", Year: 2009},
	}
	rows := []Row{{Title: "Current"}, {Title: "PastA"}, {Title: "PastB"}, {Title: "NoRevenue"}}

	scores := &Matrix{n: 4, scores: [][]float64{
		{0, 0.6, 0.2, 0.9},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}}
	AttachSimilarRevenue(films, rows, scores)

	// NoRevenue drops out of numerator and denominator alike.
	want := (0.6*5000 + 0.2*1000) / (0.6 + 0.2)
	assert.InDelta(t, want, rows[0].SimilarPastRevenue, 1e-9)
	assert.Zero(t, rows[1].SimilarPastRevenue, "film with no qualifying predecessor stays zero")
}
