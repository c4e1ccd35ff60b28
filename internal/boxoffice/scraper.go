// Package boxoffice scrapes annual domestic gross charts and the per-film
// daily breakdown pages used to correct non-Friday opening grosses.
package boxoffice

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/andrewblim/predictopedia/internal/config"
	"github.com/andrewblim/predictopedia/internal/fetcher"
	"github.com/andrewblim/predictopedia/internal/film"
)

// chartColumns is the cell count of a valid data row in the annual chart.
// Rows with any other shape are skipped.
const chartColumns = 9

var nonDigits = regexp.MustCompile(`\D`)

// Scraper reads annual gross charts from the box-office site.
type Scraper struct {
	fetcher *fetcher.HTTPFetcher
	baseURL string
	log     *zap.Logger
}

// NewScraper creates a Scraper rooted at baseURL.
func NewScraper(f *fetcher.HTTPFetcher, baseURL string) *Scraper {
	return &Scraper{
		fetcher: f,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     zap.L().With(zap.String("component", "boxoffice")),
	}
}

// DomesticGross scrapes the annual chart for each year and returns one film
// record per parsed row, with the overrides' corpus filters applied.
func (s *Scraper) DomesticGross(ctx context.Context, years []int, ov config.BoxOfficeOverrides) ([]film.Film, error) {
	var films []film.Film
	for _, year := range years {
		doc, err := s.fetcher.GetHTML(ctx, s.chartURL(year, 1))
		if err != nil {
			return nil, eris.Wrapf(err, "boxoffice: fetch %d chart", year)
		}
		// Pagination links sit in the first <center> block; the current
		// page is not linked, hence the +1.
		pageCount := doc.Find("center").First().Find("a").Length() + 1
		for page := 1; page <= pageCount; page++ {
			s.log.Debug("parsing chart page", zap.Int("year", year), zap.Int("page", page))
			if page > 1 {
				doc, err = s.fetcher.GetHTML(ctx, s.chartURL(year, page))
				if err != nil {
					return nil, eris.Wrapf(err, "boxoffice: fetch %d chart page %d", year, page)
				}
			}
			parsed, err := s.parseChartPage(ctx, doc, year)
			if err != nil {
				return nil, err
			}
			films = append(films, parsed...)
		}
	}
	return ApplyOverrides(films, ov), nil
}

func (s *Scraper) chartURL(year, page int) string {
	return fmt.Sprintf("%s/yearly/chart/?page=%d&view=releasedate&view2=domestic&yr=%d&p=.htm",
		s.baseURL, page, year)
}

// parseChartPage extracts film rows from one chart page. A failed numeric
// cell leaves that field nil; only a wrong cell count drops the row.
func (s *Scraper) parseChartPage(ctx context.Context, doc *goquery.Document, year int) ([]film.Film, error) {
	rankCell := doc.Find("td").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return strings.TrimSpace(sel.Text()) == "Rank"
	}).First()
	if rankCell.Length() == 0 {
		return nil, eris.Errorf("boxoffice: no chart table found for %d", year)
	}

	yearSuffix := regexp.MustCompile(fmt.Sprintf(`\s+\(%d\)$`, year))

	var films []film.Film
	rankCell.Closest("table").Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() != chartColumns {
			return
		}

		f := film.Film{
			Title: yearSuffix.ReplaceAllString(strings.TrimSpace(cells.Eq(1).Text()), ""),
			Year:  year,
		}
		f.OpeningDate = parseMonthDay(cells.Eq(7).Text(), year)
		f.TotalGross = parseDollars(cells.Eq(3).Text())
		f.TotalTheaters = parseDollars(cells.Eq(4).Text())
		f.OpeningTheaters = parseDollars(cells.Eq(6).Text())

		if !f.OpeningDate.IsZero() && f.OpeningDate.Weekday() != time.Friday {
			f.OpeningGross = s.threeDayOpeningGross(ctx, cells, f.OpeningDate)
		} else {
			f.OpeningGross = parseDollars(cells.Eq(5).Text())
		}

		films = append(films, f)
	})
	return films, nil
}

// threeDayOpeningGross recomputes the opening gross of a non-Friday release
// by summing the daily chart amounts for the opening date and the two days
// after. If any of the three lookups fails, it falls back to the chart's
// single-column opening gross as-is, even when the other two succeeded.
func (s *Scraper) threeDayOpeningGross(ctx context.Context, cells *goquery.Selection, opening time.Time) *int64 {
	fallback := parseDollars(cells.Eq(5).Text())

	href, ok := cells.Eq(1).Find("a").First().Attr("href")
	if !ok {
		return fallback
	}
	daily, err := s.fetcher.GetHTML(ctx, s.baseURL+href+"&page=daily")
	if err != nil {
		s.log.Warn("daily breakdown fetch failed, using chart opening gross",
			zap.String("href", href), zap.Error(err))
		return fallback
	}

	var total int64
	for d := 0; d < 3; d++ {
		day := opening.AddDate(0, 0, d)
		amount, ok := dailyGrossFor(daily, day)
		if !ok {
			return fallback
		}
		total += amount
	}
	return &total
}

// dailyGrossFor locates the daily chart row for day and returns its gross.
func dailyGrossFor(doc *goquery.Document, day time.Time) (int64, bool) {
	target := fmt.Sprintf("/daily/chart/?sortdate=%s", day.Format("2006-01-02"))
	row := doc.Find("a").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		return strings.Contains(href, target)
	}).First()
	if row.Length() == 0 {
		return 0, false
	}
	revs := parseDollars(row.Parent().Find(`font[color="#000080"]`).First().Text())
	if revs == nil {
		return 0, false
	}
	return *revs, true
}

// parseDollars strips every non-digit character and parses what remains.
// Returns nil when nothing parseable is left.
func parseDollars(s string) *int64 {
	digits := nonDigits.ReplaceAllString(s, "")
	if digits == "" {
		return nil
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseMonthDay parses a chart "month/day" cell against the chart year.
// Returns the zero time when the cell is unparseable.
func parseMonthDay(s string, year int) time.Time {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return time.Time{}
	}
	month, err1 := strconv.Atoi(parts[0])
	day, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
