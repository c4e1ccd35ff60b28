package wikipedia

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/andrewblim/predictopedia/internal/config"
	"github.com/andrewblim/predictopedia/internal/film"
)

// AttachTitles resolves each film's article title in place. Explicit
// overrides keyed "Title (Year)" bypass the resolution cascade. An
// unresolved title leaves the field empty and keeps the row.
func (c *Client) AttachTitles(ctx context.Context, films []film.Film, ov config.WikipediaOverrides) error {
	for i := range films {
		f := &films[i]
		if override, ok := ov.TitleOverride[f.Key()]; ok {
			f.WikiTitle = override
			continue
		}
		resolved, err := c.ResolveTitle(ctx, f.Title, f.Year)
		if err != nil {
			return eris.Wrapf(err, "wikipedia: resolve %q", f.Title)
		}
		f.WikiTitle = resolved
		c.LogResolution(f.Title, resolved)
	}
	return nil
}

// ScrapeRevisions fetches each film's pre-opening edit history and writes
// it to the cache. A film with no resolved title is a hard error here:
// every film must have a cache entry before feature extraction.
func (c *Client) ScrapeRevisions(ctx context.Context, films []film.Film, cache *Cache, startOffsetDays, endOffsetDays int) error {
	for i := range films {
		f := &films[i]
		if f.WikiTitle == "" {
			return eris.Errorf("wikipedia: no resolved article title for %q (%d)", f.Title, f.Year)
		}
		revisions, err := c.FetchHistory(ctx, f.WikiTitle, f.OpeningDate, startOffsetDays, endOffsetDays)
		if err != nil {
			return eris.Wrapf(err, "wikipedia: fetch history for %q", f.WikiTitle)
		}
		if err := cache.Write(f.WikiTitle, revisions); err != nil {
			return err
		}
		c.log.Info("cached revisions",
			zap.String("title", f.WikiTitle),
			zap.Int("revisions", len(revisions)),
		)
	}
	return nil
}
