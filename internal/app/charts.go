package app

import (
	"math"

	"estate_dashboard/internal/domain"
)

const (
	HistogramMaxBins = 30
	MapZoom          = 11
)

// BuildCharts turns the filtered, sized table into the three chart series.
func BuildCharts(t domain.SizedTable) domain.Charts {
	prices := make([]float64, len(t.Rows))
	scatter := make([]domain.ScatterPoint, len(t.Rows))
	points := make([]domain.MapPoint, len(t.Rows))
	for i, l := range t.Rows {
		prices[i] = l.Price
		scatter[i] = domain.ScatterPoint{X: l.SquareFeet, Y: l.Price, Size: l.Price}
		points[i] = domain.MapPoint{Lat: l.Latitude, Lon: l.Longitude, Size: l.Size}
	}
	return domain.Charts{
		Histogram: Histogram(prices, HistogramMaxBins),
		Scatter:   scatter,
		Map:       domain.MapLayer{Zoom: MapZoom, Points: points},
	}
}

// Histogram splits values into at most maxBins equal-width bins spanning
// [min, max]. Bins are half-open except the last, which includes max.
func Histogram(values []float64, maxBins int) []domain.HistogramBin {
	if len(values) == 0 || maxBins <= 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return []domain.HistogramBin{{Start: lo, End: hi, Count: len(values)}}
	}

	width := (hi - lo) / float64(maxBins)
	bins := make([]domain.HistogramBin, maxBins)
	for i := range bins {
		bins[i].Start = lo + width*float64(i)
		bins[i].End = lo + width*float64(i+1)
	}
	bins[maxBins-1].End = hi

	last := maxBins - 1
	for _, v := range values {
		i := int((v - lo) / width)
		if i > last {
			i = last
		}
		// the division can land one bin off the published edges
		for i > 0 && v < bins[i].Start {
			i--
		}
		for i < last && v >= bins[i].End {
			i++
		}
		bins[i].Count++
	}
	return bins
}

// Summarize computes the insights block shown under the charts.
func Summarize(t domain.SizedTable, hist []domain.HistogramBin) domain.Insights {
	in := domain.Insights{Count: t.Len()}
	if t.Len() == 0 {
		return in
	}

	in.MinPrice, in.MaxPrice = t.Rows[0].Price, t.Rows[0].Price
	var total float64
	for _, l := range t.Rows {
		total += l.Price
		in.MinPrice = math.Min(in.MinPrice, l.Price)
		in.MaxPrice = math.Max(in.MaxPrice, l.Price)
	}
	in.AveragePrice = round2(total / float64(t.Len()))

	for i := range hist {
		if hist[i].Count == 0 {
			continue
		}
		if in.ModalBin == nil || hist[i].Count > in.ModalBin.Count {
			b := hist[i]
			in.ModalBin = &b
		}
	}
	return in
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
