package feature

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/andrewblim/predictopedia/internal/film"
	"github.com/andrewblim/predictopedia/internal/wikipedia"
)

// Edit-run bucket boundaries, in days before the opening date.
const (
	nearWindowDays = 7
	farWindowDays  = 28
)

// genreVocabulary is the closed genre vocabulary; membership is exact
// against the film's comma-joined genre list.
var genreVocabulary = [18]struct {
	Column string
	Label  string
}{
	{"genre_action", "Action & Adventure"},
	{"genre_animation", "Animation"},
	{"genre_arthouse", "Art House & International"},
	{"genre_classics", "Classics"},
	{"genre_comedy", "Comedy"},
	{"genre_cult", "Cult Movies"},
	{"genre_documentary", "Documentary"},
	{"genre_drama", "Drama"},
	{"genre_horror", "Horror"},
	{"genre_kids", "Kids & Family"},
	{"genre_musical", "Musical & Performing Arts"},
	{"genre_mystery", "Mystery & Suspense"},
	{"genre_romance", "Romance"},
	{"genre_scifi", "Science Fiction & Fantasy"},
	{"genre_special", "Special Interest"},
	{"genre_sports", "Sports & Fitness"},
	{"genre_tv", "Television"},
	{"genre_western", "Western"},
}

// Keyword families counted in lower-cased revision content.
var (
	imaxRe      = regexp.MustCompile(`\Wimax`)
	fileEmbedRe = regexp.MustCompile(`\[\[file:`)
	headingRe   = regexp.MustCompile(`==.*==`)
)

// Row is the fixed-schema feature vector for one film.
type Row struct {
	Title string
	Year  int

	GenreFlags    [len(genreVocabulary)]int
	MPAAG         int
	MPAAPG        int
	MPAAPG13      int
	ReleaseFriday int

	EditRuns0to7  int
	EditRuns7to28 int
	WordIMAX      float64
	WordExtFile   float64
	WordHeadings  float64
	AvgSize       float64

	SimilarPastRevenue float64
	Runtime            int
}

// Extractor computes feature rows from films and their cached revisions.
type Extractor struct {
	cache *wikipedia.Cache
	log   *zap.Logger
}

// NewExtractor creates an Extractor reading revisions from cache.
func NewExtractor(cache *wikipedia.Cache) *Extractor {
	return &Extractor{
		cache: cache,
		log:   zap.L().With(zap.String("component", "feature")),
	}
}

// Extract computes a feature row and the revenue-per-theater response for
// every film. A film with no resolved article title, or with a resolved
// title but no cache entry, aborts the whole run: a partial feature table
// would silently train the model on incomplete inputs.
func (e *Extractor) Extract(films []film.Film) ([]Row, []float64, error) {
	rows := make([]Row, len(films))
	response := make([]float64, len(films))

	for i := range films {
		f := &films[i]
		if f.WikiTitle == "" {
			return nil, nil, eris.Errorf("feature: no resolved article title for %q (%d)", f.Title, f.Year)
		}
		revisions, err := e.cache.Read(f.WikiTitle)
		if err != nil {
			return nil, nil, err
		}
		e.log.Debug("extracting features",
			zap.String("title", f.Title),
			zap.Int("revisions", len(revisions)),
		)

		row := Row{Title: f.Title, Year: f.Year}

		genres := f.GenreSet()
		for g, entry := range genreVocabulary {
			if genres[entry.Label] {
				row.GenreFlags[g] = 1
			}
		}

		// The unrated bucket is tiny, so anything outside these three is
		// left as "R or unrated" with all flags zero.
		switch f.MPAARating {
		case "G":
			row.MPAAG = 1
		case "PG":
			row.MPAAPG = 1
		case "PG-13":
			row.MPAAPG13 = 1
		}

		if !f.OpeningDate.IsZero() && f.OpeningDate.Weekday() == time.Friday {
			row.ReleaseFriday = 1
		}

		row.EditRuns0to7, row.EditRuns7to28 = countEditRuns(revisions, f.OpeningDate)
		row.WordIMAX, row.WordExtFile, row.WordHeadings, row.AvgSize = contentStats(revisions)

		if f.Runtime != nil {
			row.Runtime = *f.Runtime
		}

		rows[i] = row
		if rpt, ok := f.RevenuePerTheater(); ok {
			response[i] = rpt
		} else {
			response[i] = math.NaN()
		}
	}
	return rows, response, nil
}

// countEditRuns counts maximal consecutive same-author revision sequences,
// bucketed by how many days before opening the run's first-encountered
// revision occurred. The scan follows fetch order (newest to oldest); a new
// run starts whenever the author differs from the previous revision's.
func countEditRuns(revisions []wikipedia.Revision, opening time.Time) (near, far int) {
	prevUser := ""
	first := true
	for _, rev := range revisions {
		if first || rev.User != prevUser {
			days := daysBetween(rev.Timestamp.Truncate(24*time.Hour), opening)
			if days <= nearWindowDays {
				near++
			} else if days <= farWindowDays {
				far++
			}
			prevUser = rev.User
			first = false
		}
	}
	return near, far
}

// contentStats averages keyword-family match counts over the revisions that
// carry content, and revision byte size over all revisions.
func contentStats(revisions []wikipedia.Revision) (imax, extFile, headings, avgSize float64) {
	var sizeSum int64
	withContent := 0
	for _, rev := range revisions {
		sizeSum += rev.Size
		if rev.Content == nil {
			continue
		}
		content := strings.ToLower(*rev.Content)
		imax += float64(len(imaxRe.FindAllString(content, -1)))
		extFile += float64(len(fileEmbedRe.FindAllString(content, -1)))
		headings += float64(len(headingRe.FindAllString(content, -1)))
		withContent++
	}
	if withContent > 0 {
		imax /= float64(withContent)
		extFile /= float64(withContent)
		headings /= float64(withContent)
	}
	if len(revisions) > 0 {
		avgSize = float64(sizeSum) / float64(len(revisions))
	}
	return imax, extFile, headings, avgSize
}

// AttachSimilarRevenue fills each row's similarity-weighted average
// competitor revenue per theater. A film with no qualifying predecessor
// keeps exactly zero. Predecessors without both opening gross and theater
// count drop out of numerator and denominator alike.
func AttachSimilarRevenue(films []film.Film, rows []Row, scores *Matrix) {
	for i := range rows {
		var num, denom float64
		for j := range films {
			sim := scores.Score(i, j)
			if sim <= 0 {
				continue
			}
			rpt, ok := films[j].RevenuePerTheater()
			if !ok {
				continue
			}
			num += sim * rpt
			denom += sim
		}
		if denom > 0 {
			rows[i].SimilarPastRevenue = num / denom
		}
	}
}
