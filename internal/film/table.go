package film

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

var tableHeader = []string{
	"title", "year", "opening_date",
	"total_gross", "total_theaters", "opening_gross", "opening_theaters",
	"mpaa_rating", "runtime", "genres",
	"rt_id", "imdb_id", "directors", "actors", "wiki_title",
}

const dateLayout = "2006-01-02"

// WriteTable writes films as CSV. Dates serialize as YYYY-MM-DD; nil fields
// serialize as empty cells.
func WriteTable(w io.Writer, films []Film) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tableHeader); err != nil {
		return eris.Wrap(err, "film: write header")
	}
	for i := range films {
		f := &films[i]
		date := ""
		if !f.OpeningDate.IsZero() {
			date = f.OpeningDate.Format(dateLayout)
		}
		row := []string{
			f.Title,
			strconv.Itoa(f.Year),
			date,
			formatInt64(f.TotalGross),
			formatInt64(f.TotalTheaters),
			formatInt64(f.OpeningGross),
			formatInt64(f.OpeningTheaters),
			f.MPAARating,
			formatInt(f.Runtime),
			f.Genres,
			f.CriticID,
			f.IMDBID,
			f.Directors,
			f.Actors,
			f.WikiTitle,
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrapf(err, "film: write row %d", i)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "film: flush")
}

// ReadTable reads a film CSV written by WriteTable. The header must match
// exactly; the date column round-trips losslessly to the day.
func ReadTable(r io.Reader) ([]Film, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrap(err, "film: read header")
	}
	if len(header) != len(tableHeader) {
		return nil, eris.Errorf("film: expected %d columns, got %d", len(tableHeader), len(header))
	}
	for i, col := range header {
		if col != tableHeader[i] {
			return nil, eris.Errorf("film: unexpected column %q at position %d", col, i)
		}
	}

	var films []Film
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "film: read line %d", line)
		}
		f := Film{
			Title:      row[0],
			MPAARating: row[7],
			Genres:     row[9],
			CriticID:   row[10],
			IMDBID:     row[11],
			Directors:  row[12],
			Actors:     row[13],
			WikiTitle:  row[14],
		}
		if f.Year, err = strconv.Atoi(row[1]); err != nil {
			return nil, eris.Wrapf(err, "film: line %d: year", line)
		}
		if row[2] != "" {
			if f.OpeningDate, err = time.Parse(dateLayout, row[2]); err != nil {
				return nil, eris.Wrapf(err, "film: line %d: opening_date", line)
			}
		}
		if f.TotalGross, err = parseInt64(row[3]); err != nil {
			return nil, eris.Wrapf(err, "film: line %d: total_gross", line)
		}
		if f.TotalTheaters, err = parseInt64(row[4]); err != nil {
			return nil, eris.Wrapf(err, "film: line %d: total_theaters", line)
		}
		if f.OpeningGross, err = parseInt64(row[5]); err != nil {
			return nil, eris.Wrapf(err, "film: line %d: opening_gross", line)
		}
		if f.OpeningTheaters, err = parseInt64(row[6]); err != nil {
			return nil, eris.Wrapf(err, "film: line %d: opening_theaters", line)
		}
		if f.Runtime, err = parseInt(row[8]); err != nil {
			return nil, eris.Wrapf(err, "film: line %d: runtime", line)
		}
		films = append(films, f)
	}
	return films, nil
}

// WriteTableFile writes films to a CSV file at path.
func WriteTableFile(path string, films []Film) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "film: create %s", path)
	}
	if err := WriteTable(f, films); err != nil {
		f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "film: close %s", path)
}

// ReadTableFile reads a film CSV file at path.
func ReadTableFile(path string) ([]Film, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "film: open %s", path)
	}
	defer f.Close()
	return ReadTable(f)
}

func formatInt64(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func parseInt64(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
