// Package export writes a filtered listing table as a downloadable file.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"estate_dashboard/internal/domain"
)

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SheetName       = "Listings"
)

// layout maps every column of t to its slot. The last column is the derived
// Size and is handled by cells.
func layout(t domain.SizedTable) []domain.ColumnSlot {
	if len(t.Columns) == 0 {
		return nil
	}
	return domain.Layout(t.Columns[:len(t.Columns)-1])
}

// cells returns the row values in column position order. Numeric columns
// keep their numeric type so spreadsheets do not store them as text.
func cells(slots []domain.ColumnSlot, l domain.SizedListing) []any {
	out := make([]any, 0, len(slots)+1)
	for _, s := range slots {
		switch s.Required {
		case domain.ColPrice:
			out = append(out, l.Price)
		case domain.ColBedrooms:
			out = append(out, l.Bedrooms)
		case domain.ColBathrooms:
			out = append(out, l.Bathrooms)
		case domain.ColSquareFeet:
			out = append(out, l.SquareFeet)
		case domain.ColLatitude:
			out = append(out, l.Latitude)
		case domain.ColLongitude:
			out = append(out, l.Longitude)
		default:
			if s.Extra < len(l.Extra) {
				out = append(out, l.Extra[s.Extra])
			} else {
				out = append(out, "")
			}
		}
	}
	return append(out, l.Size)
}

func text(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func WriteCSV(w io.Writer, t domain.SizedTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	slots := layout(t)
	rec := make([]string, 0, len(t.Columns))
	for _, l := range t.Rows {
		rec = rec[:0]
		for _, v := range cells(slots, l) {
			rec = append(rec, text(v))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("csv: write row %d: %w", l.Row, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteXLSX(w io.Writer, t domain.SizedTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("xlsx: stream writer: %w", err)
	}

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("xlsx: write header: %w", err)
	}
	slots := layout(t)
	for i, l := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: cell name: %w", err)
		}
		if err := sw.SetRow(cell, cells(slots, l)); err != nil {
			return fmt.Errorf("xlsx: write row %d: %w", l.Row, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("xlsx: flush: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}
