package tomatoes

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/antzucaro/matchr"
	"go.uber.org/zap"

	"github.com/andrewblim/predictopedia/internal/config"
	"github.com/andrewblim/predictopedia/internal/film"
)

// yearTolerance allows the catalog's theater release year to differ from
// the chart year by one, absorbing small or non-US earlier releases.
const yearTolerance = 1

var nonWord = regexp.MustCompile(`\W`)

// BestSearchHit searches the catalog for title and picks the candidate
// whose title is the closest string match, among candidates released within
// yearTolerance of year. Returns nil when nothing survives the filter; that
// is a miss, not an error.
func (c *Client) BestSearchHit(ctx context.Context, title string, year int) (*Movie, error) {
	results, err := c.Search(ctx, title)
	if err != nil {
		return nil, err
	}

	var hits []Movie
	for _, m := range results {
		theater := m.ReleaseDates.Theater
		if len(theater) < 4 {
			continue
		}
		hitYear, err := strconv.Atoi(theater[:4])
		if err != nil {
			continue
		}
		diff := year - hitYear
		if diff < 0 {
			diff = -diff
		}
		if diff <= yearTolerance {
			hits = append(hits, m)
		}
	}
	if len(hits) == 0 {
		return nil, nil
	}

	// Highest JaroWinkler similarity to the query title wins; SliceStable
	// keeps the search ranking as the tie-breaker.
	sort.SliceStable(hits, func(i, j int) bool {
		return matchr.JaroWinkler(title, hits[i].Title, false) >
			matchr.JaroWinkler(title, hits[j].Title, false)
	})
	return &hits[0], nil
}

// AttachData fills each film's catalog-derived fields in place. A film that
// cannot be matched keeps its row with all dependent fields null. Explicit
// id overrides keyed "Title (Year)" bypass the search.
func (c *Client) AttachData(ctx context.Context, films []film.Film, ov config.TomatoesOverrides) error {
	for i := range films {
		f := &films[i]

		id := ov.IDOverride[f.Key()]
		if id == "" {
			hit, err := c.BestSearchHit(ctx, f.Title, f.Year)
			if err != nil {
				return err
			}
			if hit == nil {
				c.log.Info("no catalog match", zap.String("title", f.Title), zap.Int("year", f.Year))
				continue
			}
			id = hit.ID.String()
		}

		detail, err := c.MovieInfo(ctx, id)
		if err != nil {
			return err
		}
		applyMovie(f, detail)

		if normalizeTitle(detail.Title) != normalizeTitle(f.Title) {
			c.log.Info("using differently-titled catalog record",
				zap.String("title", f.Title),
				zap.String("catalog_title", detail.Title),
			)
		}
	}
	return nil
}

func applyMovie(f *film.Film, m *Movie) {
	f.CriticID = m.ID.String()
	f.MPAARating = m.MPAARating
	if rt, err := strconv.Atoi(m.Runtime.String()); err == nil {
		f.Runtime = &rt
	}
	if len(m.Genres) > 0 {
		f.Genres = strings.Join(m.Genres, ",")
	}
	f.IMDBID = m.AlternateIDs["imdb"]
	f.Directors = joinNames(m.AbridgedDirectors)
	f.Actors = joinNames(m.AbridgedCast)
}

func joinNames(people []Person) string {
	names := make([]string, 0, len(people))
	for _, p := range people {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	return strings.Join(names, ",")
}

// normalizeTitle lowercases and strips non-word characters for the
// imprecise-match diagnostic.
func normalizeTitle(s string) string {
	return strings.ToLower(nonWord.ReplaceAllString(s, ""))
}
