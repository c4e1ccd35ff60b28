package boxoffice

import (
	"github.com/andrewblim/predictopedia/internal/config"
	"github.com/andrewblim/predictopedia/internal/film"
)

// ApplyOverrides applies the corpus-level filters from the box-office
// override file: minimum opening-theater threshold, skip list, and title
// renames. Filters run in that order; a film with an unknown theater count
// does not meet a nonzero threshold.
func ApplyOverrides(films []film.Film, ov config.BoxOfficeOverrides) []film.Film {
	skip := make(map[string]bool, len(ov.SkipTitles))
	for _, t := range ov.SkipTitles {
		skip[t] = true
	}

	out := films[:0]
	for _, f := range films {
		if ov.MinOpeningTheaters > 0 {
			if f.OpeningTheaters == nil || *f.OpeningTheaters < int64(ov.MinOpeningTheaters) {
				continue
			}
		}
		if skip[f.Title] {
			continue
		}
		if renamed, ok := ov.TitleChanges[f.Title]; ok {
			f.Title = renamed
		}
		out = append(out, f)
	}
	return out
}
