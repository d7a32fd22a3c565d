package domain

import "context"

// ListingSource yields the full listing table (CSV file, MySQL, ...).
type ListingSource interface {
	Load(ctx context.Context) (Table, error)
}

type ListingRepository interface {
	// Write paths
	Truncate(ctx context.Context) error
	SaveColumns(ctx context.Context, columns []string) error
	InsertListings(ctx context.Context, rows []Listing) error
	// MarkComplete is the last write of an import; Load fails until it ran.
	MarkComplete(ctx context.Context, rows int) error

	// Read paths
	Load(ctx context.Context) (Table, error)
	Count(ctx context.Context) (int, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models
type OverviewView struct {
	Total   int       `json:"total"`
	Columns []string  `json:"columns"`
	Head    []Listing `json:"head"`
}

type ListingsView struct {
	Selection RangeSelection `json:"selection"`
	Total     int            `json:"total"`
	Matched   int            `json:"matched"`
	Table     SizedTable     `json:"table"`
}

type DashboardView struct {
	Selection RangeSelection `json:"selection"`
	Total     int            `json:"total"`
	Matched   int            `json:"matched"`
	Table     SizedTable     `json:"table"`
	Charts    Charts         `json:"charts"`
	Insights  Insights       `json:"insights"`
}

type Charts struct {
	Histogram []HistogramBin `json:"price_histogram"`
	Scatter   []ScatterPoint `json:"price_vs_square_feet"`
	Map       MapLayer       `json:"price_vs_area"`
}

type HistogramBin struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

type ScatterPoint struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

type MapPoint struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Size float64 `json:"size"`
}

type MapLayer struct {
	Zoom   int        `json:"zoom"`
	Points []MapPoint `json:"points"`
}

type Insights struct {
	Count        int           `json:"count"`
	MinPrice     float64       `json:"min_price"`
	MaxPrice     float64       `json:"max_price"`
	AveragePrice float64       `json:"average_price"`
	ModalBin     *HistogramBin `json:"modal_price_bin,omitempty"`
}
