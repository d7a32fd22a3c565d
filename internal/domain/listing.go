package domain

// Required source columns, in the order the dataset ships them.
const (
	ColPrice      = "Price"
	ColBedrooms   = "Bedrooms"
	ColBathrooms  = "Bathrooms"
	ColSquareFeet = "SquareFeet"
	ColLatitude   = "Latitude"
	ColLongitude  = "Longitude"
)

var RequiredColumns = []string{ColPrice, ColBedrooms, ColBathrooms, ColSquareFeet, ColLatitude, ColLongitude}

// ColumnSlot locates the value of one table column inside a Listing.
type ColumnSlot struct {
	Required string // required column name; "" for an extra column
	Extra    int    // index into Listing.Extra when Required is ""
}

// Layout maps header positions to slots. The first occurrence of a required
// name fills that field; every other column, repeats included, is an extra
// column in header order.
func Layout(cols []string) []ColumnSlot {
	required := make(map[string]bool, len(RequiredColumns))
	for _, c := range RequiredColumns {
		required[c] = true
	}
	seen := make(map[string]bool, len(RequiredColumns))
	out := make([]ColumnSlot, len(cols))
	extra := 0
	for i, c := range cols {
		if required[c] && !seen[c] {
			seen[c] = true
			out[i] = ColumnSlot{Required: c}
			continue
		}
		out[i] = ColumnSlot{Extra: extra}
		extra++
	}
	return out
}

// SizeDivisor scales Price into a map-marker size.
const SizeDivisor = 2000.0

type Listing struct {
	Row        int      `json:"row"` // position in the source table
	Price      float64  `json:"price"`
	Bedrooms   int      `json:"bedrooms"`
	Bathrooms  int      `json:"bathrooms"`
	SquareFeet float64  `json:"square_feet"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Extra      []string `json:"extra,omitempty"` // values of Table.Extra columns
}

// Table is the loaded dataset. It is never mutated after load.
type Table struct {
	Columns []string  `json:"columns"`
	Extra   []string  `json:"extra_columns,omitempty"`
	Rows    []Listing `json:"rows"`
}

func (t Table) Len() int { return len(t.Rows) }

// Head returns a copy of the first n rows (all rows when n exceeds the table
// size). The copy shares nothing with t.
func (t Table) Head(n int) []Listing {
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	out := make([]Listing, n)
	for i, l := range t.Rows[:n] {
		if l.Extra != nil {
			l.Extra = append([]string(nil), l.Extra...)
		}
		out[i] = l
	}
	return out
}

type SizedListing struct {
	Listing
	Size float64 `json:"size"`
}

type SizedTable struct {
	Columns []string       `json:"columns"`
	Extra   []string       `json:"extra_columns,omitempty"`
	Rows    []SizedListing `json:"rows"`
}

func (t SizedTable) Len() int { return len(t.Rows) }
