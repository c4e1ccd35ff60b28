// Package film defines the film record assembled by the retrieval stages
// and its delimited-table persistence.
package film

import (
	"fmt"
	"strings"
	"time"
)

// Film is one theatrical release. Identity key: (Title, Year). Retrieval
// stages attach columns additively; empty strings and nil pointers mark
// values a source could not provide.
type Film struct {
	Title           string
	Year            int
	OpeningDate     time.Time // zero value = unknown
	TotalGross      *int64
	TotalTheaters   *int64
	OpeningGross    *int64
	OpeningTheaters *int64
	MPAARating      string
	Runtime         *int
	Genres          string // comma-joined, "" = unresolved
	CriticID        string
	IMDBID          string
	Directors       string // comma-joined
	Actors          string // comma-joined
	WikiTitle       string // resolved article title, "" = unresolved
}

// Key returns the "Title (Year)" composite key used by override tables.
func (f *Film) Key() string {
	return fmt.Sprintf("%s (%d)", f.Title, f.Year)
}

// GenreSet splits the comma-joined genre list into a set. Nil when the
// genre list is unresolved.
func (f *Film) GenreSet() map[string]bool {
	if f.Genres == "" {
		return nil
	}
	set := make(map[string]bool)
	for _, g := range strings.Split(f.Genres, ",") {
		set[g] = true
	}
	return set
}

// PeopleSet returns the cast and crew as a set. The directors string is a
// single element: directing duos are credited together and stay fused.
func (f *Film) PeopleSet() map[string]bool {
	set := make(map[string]bool)
	if f.Directors != "" {
		set[f.Directors] = true
	}
	if f.Actors != "" {
		for _, a := range strings.Split(f.Actors, ",") {
			set[a] = true
		}
	}
	return set
}

// RevenuePerTheater returns opening gross divided by opening theaters.
// ok is false when either side is missing or theaters is zero.
func (f *Film) RevenuePerTheater() (float64, bool) {
	if f.OpeningGross == nil || f.OpeningTheaters == nil || *f.OpeningTheaters == 0 {
		return 0, false
	}
	return float64(*f.OpeningGross) / float64(*f.OpeningTheaters), true
}
