// internal/adapters/csvsource/loader.go
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"estate_dashboard/internal/adapters/observability"
	"estate_dashboard/internal/domain"
)

const DefaultPath = "data/real_estate_listings.csv"

// Loader reads the listing table from a CSV file with a header row.
type Loader struct {
	path string
}

func New(path string) *Loader {
	if path == "" {
		path = DefaultPath
	}
	return &Loader{path: path}
}

func (l *Loader) Path() string { return l.path }

// Load reads and parses the whole file. Every failure wraps
// domain.ErrDataUnavailable.
func (l *Loader) Load(ctx context.Context) (domain.Table, error) {
	start := time.Now()
	t, err := l.load(ctx)
	observability.ObserveLoad("csv", err, time.Since(start))
	if err != nil {
		return domain.Table{}, err
	}
	observability.SetDatasetRows(t.Len())
	return t, nil
}

func (l *Loader) load(ctx context.Context) (domain.Table, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: open %q: %v", domain.ErrDataUnavailable, l.path, err)
	}
	defer f.Close()

	t, err := Parse(ctx, f)
	if err != nil {
		return domain.Table{}, fmt.Errorf("%s: %w", l.path, err)
	}
	return t, nil
}

// Parse decodes CSV from r. Required columns may appear in any order; any
// other columns are carried through as Extra values.
func Parse(ctx context.Context, r io.Reader) (domain.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.Table{}, fmt.Errorf("%w: empty file, header row required", domain.ErrDataUnavailable)
	}
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: read header: %v", domain.ErrDataUnavailable, err)
	}

	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	idx := make(map[string]int, len(domain.RequiredColumns))
	var extraIdx []int
	var extra []string
	for i, slot := range domain.Layout(cols) {
		if slot.Required != "" {
			idx[slot.Required] = i
			continue
		}
		extraIdx = append(extraIdx, i)
		extra = append(extra, cols[i])
	}

	var missing []string
	for _, c := range domain.RequiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return domain.Table{}, fmt.Errorf("%w: missing required columns: %s", domain.ErrDataUnavailable, strings.Join(missing, ", "))
	}

	t := domain.Table{Columns: cols, Extra: extra}
	for row := 0; ; row++ {
		if row%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return domain.Table{}, err
			}
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Table{}, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
		}

		l, err := parseRow(row, rec, idx)
		if err != nil {
			// header is line 1
			return domain.Table{}, fmt.Errorf("%w: line %d: %v", domain.ErrDataUnavailable, row+2, err)
		}
		if len(extraIdx) > 0 {
			l.Extra = make([]string, len(extraIdx))
			for j, i := range extraIdx {
				l.Extra[j] = rec[i]
			}
		}
		t.Rows = append(t.Rows, l)
	}
	if t.Rows == nil {
		t.Rows = []domain.Listing{}
	}
	return t, nil
}

func parseRow(row int, rec []string, idx map[string]int) (domain.Listing, error) {
	l := domain.Listing{Row: row}
	var err error
	if l.Price, err = parseFloat(rec, idx, domain.ColPrice); err != nil {
		return l, err
	}
	if l.Bedrooms, err = parseCount(rec, idx, domain.ColBedrooms); err != nil {
		return l, err
	}
	if l.Bathrooms, err = parseCount(rec, idx, domain.ColBathrooms); err != nil {
		return l, err
	}
	if l.SquareFeet, err = parseFloat(rec, idx, domain.ColSquareFeet); err != nil {
		return l, err
	}
	if l.Latitude, err = parseFloat(rec, idx, domain.ColLatitude); err != nil {
		return l, err
	}
	if l.Longitude, err = parseFloat(rec, idx, domain.ColLongitude); err != nil {
		return l, err
	}
	return l, nil
}

func parseFloat(rec []string, idx map[string]int, col string) (float64, error) {
	s := strings.TrimSpace(rec[idx[col]])
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("column %s: %q is not a number", col, s)
	}
	return f, nil
}

// parseCount accepts "3" and integral floats such as "3.0".
func parseCount(rec []string, idx map[string]int, col string) (int, error) {
	s := strings.TrimSpace(rec[idx[col]])
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("column %s: %q is not an integer count", col, s)
	}
	return int(f), nil
}
