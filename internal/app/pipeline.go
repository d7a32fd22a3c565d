package app

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"estate_dashboard/internal/domain"
)

var validate = validator.New()

// rangeProblem describes why r is not a usable selection, or returns "".
func rangeProblem(name string, r domain.Range) string {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) {
		return name + " bound is NaN"
	}
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Sprintf("%s min %v is greater than max %v", name, r.Min, r.Max)
		}
		return fmt.Sprintf("%s: %v", name, err)
	}
	return ""
}

// ValidateSelection reports every invalid range of sel in one error.
func ValidateSelection(sel domain.RangeSelection) error {
	var msgs []string
	for _, c := range []struct {
		name string
		r    domain.Range
	}{
		{domain.ColPrice, sel.Price},
		{domain.ColBedrooms, sel.Bedrooms},
		{domain.ColBathrooms, sel.Bathrooms},
		{domain.ColSquareFeet, sel.SquareFeet},
	} {
		if msg := rangeProblem(c.name, c.r); msg != "" {
			msgs = append(msgs, msg)
		}
	}
	if len(msgs) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidRange, strings.Join(msgs, "; "))
	}
	return nil
}

// Filter keeps the rows whose Price, Bedrooms, Bathrooms and SquareFeet all
// fall inside the given closed ranges. Row order and columns are preserved;
// the input table is not modified.
func Filter(t domain.Table, price, bedrooms, bathrooms, squareFeet domain.Range) (domain.Table, error) {
	return FilterSelection(t, domain.RangeSelection{
		Price:      price,
		Bedrooms:   bedrooms,
		Bathrooms:  bathrooms,
		SquareFeet: squareFeet,
	})
}

func FilterSelection(t domain.Table, sel domain.RangeSelection) (domain.Table, error) {
	if err := ValidateSelection(sel); err != nil {
		return domain.Table{}, err
	}

	out := domain.Table{
		Columns: t.Columns,
		Extra:   t.Extra,
		Rows:    make([]domain.Listing, 0, len(t.Rows)),
	}
	for _, l := range t.Rows {
		if sel.Price.Contains(l.Price) &&
			sel.Bedrooms.Contains(float64(l.Bedrooms)) &&
			sel.Bathrooms.Contains(float64(l.Bathrooms)) &&
			sel.SquareFeet.Contains(l.SquareFeet) {
			out.Rows = append(out.Rows, l)
		}
	}
	return out, nil
}

// DeriveSize adds Size = Price / 2000 to every row. The value is not clamped.
func DeriveSize(t domain.Table) domain.SizedTable {
	cols := make([]string, 0, len(t.Columns)+1)
	cols = append(cols, t.Columns...)
	cols = append(cols, "Size")

	out := domain.SizedTable{
		Columns: cols,
		Extra:   t.Extra,
		Rows:    make([]domain.SizedListing, len(t.Rows)),
	}
	for i, l := range t.Rows {
		out.Rows[i] = domain.SizedListing{Listing: l, Size: l.Price / domain.SizeDivisor}
	}
	return out
}
