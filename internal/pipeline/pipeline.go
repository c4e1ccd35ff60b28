// Package pipeline sequences the retrieval stages: gross-chart scrape,
// catalog metadata attach, article-title resolution, film table write, and
// the optional revision scrape.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/andrewblim/predictopedia/internal/boxoffice"
	"github.com/andrewblim/predictopedia/internal/config"
	"github.com/andrewblim/predictopedia/internal/feature"
	"github.com/andrewblim/predictopedia/internal/fetcher"
	"github.com/andrewblim/predictopedia/internal/film"
	"github.com/andrewblim/predictopedia/internal/tomatoes"
	"github.com/andrewblim/predictopedia/internal/wikipedia"
)

// Pipeline wires the retrieval and extraction stages together. Processing
// is deliberately sequential: one film, page, or revision batch at a time,
// with all pacing at the fetcher's rate limiters.
type Pipeline struct {
	cfg     *config.Config
	fetcher *fetcher.HTTPFetcher
	log     *zap.Logger
}

// New creates a Pipeline from cfg.
func New(cfg *config.Config) *Pipeline {
	f := fetcher.New(fetcher.Options{
		UserAgent:   cfg.HTTP.UserAgent,
		Timeout:     time.Duration(cfg.HTTP.TimeoutSecs) * time.Second,
		MaxAttempts: cfg.HTTP.MaxAttempts,
		RatePerSec:  cfg.HTTP.RatePerSec,
	})
	return &Pipeline{
		cfg:     cfg,
		fetcher: f,
		log:     zap.L().With(zap.String("component", "pipeline")),
	}
}

// Retrieve runs the full retrieval for years and writes the film table to
// outputCSV. When scrapeRevisions is set it also fills the revision cache.
// Returns the retained film count.
func (p *Pipeline) Retrieve(ctx context.Context, years []int, outputCSV string, scrapeRevisions bool) (int, error) {
	boOv, err := config.LoadBoxOfficeOverrides(p.cfg.BoxOffice.OverrideFile)
	if err != nil {
		return 0, err
	}
	rtOv, err := config.LoadTomatoesOverrides(p.cfg.Tomatoes.OverrideFile)
	if err != nil {
		return 0, err
	}
	wikiOv, err := config.LoadWikipediaOverrides(p.cfg.Wikipedia.OverrideFile)
	if err != nil {
		return 0, err
	}

	p.log.Info("scraping annual gross charts", zap.Ints("years", years))
	scraper := boxoffice.NewScraper(p.fetcher, p.cfg.BoxOffice.BaseURL)
	films, err := scraper.DomesticGross(ctx, years, boOv)
	if err != nil {
		return 0, err
	}
	p.log.Info("scraped films", zap.Int("count", len(films)))

	apiKey := p.cfg.Tomatoes.APIKey
	if rtOv.APIKey != "" {
		apiKey = rtOv.APIKey
	}
	catalog, err := tomatoes.NewClient(p.fetcher, p.cfg.Tomatoes.BaseURL, apiKey)
	if err != nil {
		return 0, err
	}
	p.log.Info("attaching catalog metadata")
	if err := catalog.AttachData(ctx, films, rtOv); err != nil {
		return 0, err
	}

	p.log.Info("resolving article titles")
	wiki := wikipedia.NewClient(p.fetcher, p.cfg.Wikipedia.APIURL, p.cfg.Wikipedia.SearchLimit)
	if err := wiki.AttachTitles(ctx, films, wikiOv); err != nil {
		return 0, err
	}

	if err := film.WriteTableFile(outputCSV, films); err != nil {
		return 0, err
	}
	p.log.Info("wrote film table", zap.String("path", outputCSV), zap.Int("films", len(films)))

	if scrapeRevisions {
		if err := p.ScrapeRevisions(ctx, films); err != nil {
			return 0, err
		}
	}
	return len(films), nil
}

// ScrapeRevisions fills the revision cache for films.
func (p *Pipeline) ScrapeRevisions(ctx context.Context, films []film.Film) error {
	cache, err := wikipedia.NewCache(p.cfg.Wikipedia.ScrapeDir)
	if err != nil {
		return err
	}
	wiki := wikipedia.NewClient(p.fetcher, p.cfg.Wikipedia.APIURL, p.cfg.Wikipedia.SearchLimit)
	return wiki.ScrapeRevisions(ctx, films, cache,
		p.cfg.Wikipedia.HorizonStartDays, p.cfg.Wikipedia.HorizonEndDays)
}

// Features reads the film table at filmCSV, extracts feature vectors using
// the cached revisions, and writes them to outputCSV. Returns the row count.
func (p *Pipeline) Features(ctx context.Context, filmCSV, outputCSV string) (int, error) {
	films, err := film.ReadTableFile(filmCSV)
	if err != nil {
		return 0, err
	}
	if len(films) == 0 {
		return 0, eris.Errorf("pipeline: no films in %s", filmCSV)
	}

	cache, err := wikipedia.NewCache(p.cfg.Wikipedia.ScrapeDir)
	if err != nil {
		return 0, err
	}
	rows, response, err := feature.NewExtractor(cache).Extract(films)
	if err != nil {
		return 0, err
	}

	metric, err := feature.MetricByName(p.cfg.Feature.Metric)
	if err != nil {
		return 0, err
	}
	p.log.Info("computing one-way similarities",
		zap.String("metric", p.cfg.Feature.Metric),
		zap.Int("max_days_apart", p.cfg.Feature.MaxDaysApart),
	)
	scores := feature.SubsequenceScores(films, metric, p.cfg.Feature.MaxDaysApart)
	feature.AttachSimilarRevenue(films, rows, scores)

	if err := feature.WriteTableFile(outputCSV, rows, response); err != nil {
		return 0, err
	}
	p.log.Info("wrote feature table", zap.String("path", outputCSV), zap.Int("rows", len(rows)))
	return len(rows), nil
}
