package feature

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
)

// Header returns the feature table's column names in output order.
func Header() []string {
	cols := []string{"title", "year"}
	for _, g := range genreVocabulary {
		cols = append(cols, g.Column)
	}
	return append(cols,
		"mpaa_g", "mpaa_pg", "mpaa_pg13", "release_friday",
		"edit_runs_0_7", "edit_runs_7_28",
		"word_imax", "word_extfile", "word_headings", "avg_size",
		"similar_past_revenue", "runtime", "response",
	)
}

// WriteTable writes the feature rows and response as CSV. The response cell
// is empty when the film's revenue per theater is unknown.
func WriteTable(w io.Writer, rows []Row, response []float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return eris.Wrap(err, "feature: write header")
	}
	for i, row := range rows {
		rec := []string{row.Title, strconv.Itoa(row.Year)}
		for _, flag := range row.GenreFlags {
			rec = append(rec, strconv.Itoa(flag))
		}
		rec = append(rec,
			strconv.Itoa(row.MPAAG),
			strconv.Itoa(row.MPAAPG),
			strconv.Itoa(row.MPAAPG13),
			strconv.Itoa(row.ReleaseFriday),
			strconv.Itoa(row.EditRuns0to7),
			strconv.Itoa(row.EditRuns7to28),
			formatFloat(row.WordIMAX),
			formatFloat(row.WordExtFile),
			formatFloat(row.WordHeadings),
			formatFloat(row.AvgSize),
			formatFloat(row.SimilarPastRevenue),
			strconv.Itoa(row.Runtime),
		)
		resp := ""
		if i < len(response) && !math.IsNaN(response[i]) {
			resp = formatFloat(response[i])
		}
		rec = append(rec, resp)
		if err := cw.Write(rec); err != nil {
			return eris.Wrapf(err, "feature: write row %d", i)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "feature: flush")
}

// WriteTableFile writes the feature table to a CSV file at path.
func WriteTableFile(path string, rows []Row, response []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "feature: create %s", path)
	}
	if err := WriteTable(f, rows, response); err != nil {
		f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "feature: close %s", path)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
