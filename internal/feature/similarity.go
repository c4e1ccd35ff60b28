// Package feature turns the reconciled film table and cached revision
// history into the numeric feature vectors used by the revenue model.
package feature

import (
	"math"
	"time"

	"github.com/rotisserie/eris"

	"github.com/andrewblim/predictopedia/internal/film"
)

// Members holds the sets a similarity metric compares. People fuses the
// directors credit into one element (duos stay together) alongside the
// individual actors.
type Members struct {
	People map[string]bool
	Genres map[string]bool
}

// Metric scores the overlap between two films' members in [0, 1].
type Metric func(a, b Members) float64

// MetricByName returns the metric registered under name.
func MetricByName(name string) (Metric, error) {
	switch name {
	case "jaccard_people":
		return JaccardPeople, nil
	case "jaccard_genres":
		return JaccardGenres, nil
	case "sorensen_people":
		return SorensenPeople, nil
	case "sorensen_genres":
		return SorensenGenres, nil
	case "people_genres_jaccard":
		return PeopleGenresJaccard, nil
	case "people_genres_sorensen":
		return PeopleGenresSorensen, nil
	default:
		return nil, eris.Errorf("feature: unknown similarity metric %q", name)
	}
}

func intersectionSize(a, b map[string]bool) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if b[k] {
			n++
		}
	}
	return n
}

func unionSize(a, b map[string]bool) int {
	return len(a) + len(b) - intersectionSize(a, b)
}

// JaccardPeople is |A∩B| / |A∪B| over shared cast and crew.
func JaccardPeople(a, b Members) float64 {
	union := unionSize(a.People, b.People)
	if union == 0 {
		return 0
	}
	return float64(intersectionSize(a.People, b.People)) / float64(union)
}

// JaccardGenres is |A∩B| / |A∪B| over shared genres.
func JaccardGenres(a, b Members) float64 {
	union := unionSize(a.Genres, b.Genres)
	if union == 0 {
		return 0
	}
	return float64(intersectionSize(a.Genres, b.Genres)) / float64(union)
}

// SorensenPeople is the Sørensen-Dice coefficient over shared cast and crew.
func SorensenPeople(a, b Members) float64 {
	denom := len(a.People) + len(b.People)
	if denom == 0 {
		return 0
	}
	return 2 * float64(intersectionSize(a.People, b.People)) / float64(denom)
}

// SorensenGenres is the Sørensen-Dice coefficient over shared genres.
func SorensenGenres(a, b Members) float64 {
	denom := len(a.Genres) + len(b.Genres)
	if denom == 0 {
		return 0
	}
	return 2 * float64(intersectionSize(a.Genres, b.Genres)) / float64(denom)
}

// PeopleGenresJaccard is the geometric mean of the two Jaccard scores.
func PeopleGenresJaccard(a, b Members) float64 {
	return math.Sqrt(JaccardPeople(a, b) * JaccardGenres(a, b))
}

// PeopleGenresSorensen is the geometric mean of the two Sørensen scores.
func PeopleGenresSorensen(a, b Members) float64 {
	return math.Sqrt(SorensenPeople(a, b) * SorensenGenres(a, b))
}

// Matrix holds directed pairwise similarity scores. Score(i, j) is the
// weight with which film j's past performance feeds film i's feature;
// it is nonzero only when j opened strictly before i within the day window.
type Matrix struct {
	n      int
	scores [][]float64
}

// Score returns the contribution weight of film j into film i.
func (m *Matrix) Score(i, j int) float64 {
	return m.scores[i][j]
}

// Len returns the films-per-side count of the matrix.
func (m *Matrix) Len() int {
	return m.n
}

// SubsequenceScores computes the directed similarity matrix for films.
// Same-day openings, self-pairs, date gaps beyond maxDaysApart, and films
// with unknown opening dates all score zero in both directions.
func SubsequenceScores(films []film.Film, metric Metric, maxDaysApart int) *Matrix {
	n := len(films)
	m := &Matrix{n: n, scores: make([][]float64, n)}
	for i := range m.scores {
		m.scores[i] = make([]float64, n)
	}

	members := make([]Members, n)
	for i := range films {
		members[i] = Members{People: films[i].PeopleSet(), Genres: films[i].GenreSet()}
	}

	for i := 0; i < n; i++ {
		if films[i].OpeningDate.IsZero() {
			continue
		}
		for j := i + 1; j < n; j++ {
			if films[j].OpeningDate.IsZero() {
				continue
			}
			days := daysBetween(films[j].OpeningDate, films[i].OpeningDate)
			if days == 0 || days > maxDaysApart || days < -maxDaysApart {
				continue
			}
			score := metric(members[i], members[j])
			if days > 0 {
				// i opened after j: j contributes into i.
				m.scores[i][j] = score
			} else {
				m.scores[j][i] = score
			}
		}
	}
	return m
}

// daysBetween returns the whole days from a to b (positive when b is later).
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
