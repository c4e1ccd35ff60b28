package feature

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewblim/predictopedia/internal/film"
)

func mkMembers(people, genres []string) Members {
	m := Members{}
	if len(people) > 0 {
		m.People = make(map[string]bool, len(people))
		for _, p := range people {
			m.People[p] = true
		}
	}
	if len(genres) > 0 {
		m.Genres = make(map[string]bool, len(genres))
		for _, g := range genres {
			m.Genres[g] = true
		}
	}
	return m
}

func TestMetricValues(t *testing.T) {
	a := mkMembers([]string{"Jeff Bridges", "Matt Damon"}, []string{"Western", "Drama"})
	b := mkMembers([]string{"Matt Damon", "Emily Blunt"}, []string{"Drama"})

	assert.InDelta(t, 1.0/3.0, JaccardPeople(a, b), 1e-9)
	assert.InDelta(t, 0.5, JaccardGenres(a, b), 1e-9)
	assert.InDelta(t, 0.5, SorensenPeople(a, b), 1e-9)
	assert.InDelta(t, 2.0/3.0, SorensenGenres(a, b), 1e-9)
	assert.InDelta(t, math.Sqrt(1.0/3.0*0.5), PeopleGenresJaccard(a, b), 1e-9)
	assert.InDelta(t, math.Sqrt(0.5*2.0/3.0), PeopleGenresSorensen(a, b), 1e-9)
}

func TestMetricsHandleEmptySets(t *testing.T) {
	empty := Members{}
	full := mkMembers([]string{"Someone"}, []string{"Drama"})

	assert.Zero(t, JaccardPeople(empty, empty))
	assert.Zero(t, SorensenGenres(empty, empty))
	assert.Zero(t, JaccardPeople(empty, full))
	assert.Zero(t, PeopleGenresJaccard(empty, full))
}

func TestMetricByName(t *testing.T) {
	for _, name := range []string{
		"jaccard_people", "jaccard_genres",
		"sorensen_people", "sorensen_genres",
		"people_genres_jaccard", "people_genres_sorensen",
	} {
		m, err := MetricByName(name)
		require.NoError(t, err, name)
		require.NotNil(t, m, name)
	}
	_, err := MetricByName("cosine_people")
	require.Error(t, err)
}

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestSubsequenceScoresAreDirected(t *testing.T) {
	films := []film.Film{
		{Title: "Early", Year: 2010, OpeningDate: day(2010, 6, 4), Genres: "Drama", Actors: "Matt Damon"},
		{Title: "Late", Year: 2010, OpeningDate: day(2010, 7, 2), Genres: "Drama", Actors: "Matt Damon"},
	}
	m := SubsequenceScores(films, JaccardGenres, 1825)

	assert.Equal(t, 2, m.Len())
	// Early contributes into Late, never the reverse.
	assert.Equal(t, 1.0, m.Score(1, 0))
	assert.Zero(t, m.Score(0, 1))
	assert.Zero(t, m.Score(0, 0))
	assert.Zero(t, m.Score(1, 1))
}

func TestSubsequenceScoresOrderIndependentOfSliceOrder(t *testing.T) {
	early := film.Film{Title: "Early", Year: 2010, OpeningDate: day(2010, 6, 4), Genres: "Drama"}
	late := film.Film{Title: "Late", Year: 2010, OpeningDate: day(2010, 7, 2), Genres: "Drama"}

	m := SubsequenceScores([]film.Film{late, early}, JaccardGenres, 1825)
	// late is index 0 here; early (index 1) still feeds into it.
	assert.Equal(t, 1.0, m.Score(0, 1))
	assert.Zero(t, m.Score(1, 0))
}

func TestSubsequenceScoresSameDayIsZero(t *testing.T) {
	films := []film.Film{
		{Title: "A", Year: 2010, OpeningDate: day(2010, 6, 4), Genres: "Drama"},
		{Title: "B", Year: 2010, OpeningDate: day(2010, 6, 4), Genres: "Drama"},
	}
	m := SubsequenceScores(films, JaccardGenres, 1825)
	assert.Zero(t, m.Score(0, 1))
	assert.Zero(t, m.Score(1, 0))
}

func TestSubsequenceScoresRespectsDayWindow(t *testing.T) {
	films := []film.Film{
		{Title: "Old", Year: 2000, OpeningDate: day(2000, 1, 7), Genres: "Drama"},
		{Title: "New", Year: 2010, OpeningDate: day(2010, 1, 8), Genres: "Drama"},
	}
	m := SubsequenceScores(films, JaccardGenres, 1825)
	assert.Zero(t, m.Score(1, 0), "gap beyond the window scores zero")

	wide := SubsequenceScores(films, JaccardGenres, 4000)
	assert.Equal(t, 1.0, wide.Score(1, 0))
}

func TestSubsequenceScoresSkipsUnknownDates(t *testing.T) {
	films := []film.Film{
		{Title: "Dated", Year: 2010, OpeningDate: day(2010, 6, 4), Genres: "Drama"},
		{Title: "Undated", Year: 2010, Genres: "Drama"},
	}
	m := SubsequenceScores(films, JaccardGenres, 1825)
	assert.Zero(t, m.Score(0, 1))
	assert.Zero(t, m.Score(1, 0))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 28, daysBetween(day(2010, 6, 4), day(2010, 7, 2)))
	assert.Equal(t, -28, daysBetween(day(2010, 7, 2), day(2010, 6, 4)))
	assert.Zero(t, daysBetween(day(2010, 6, 4), day(2010, 6, 4)))
}
