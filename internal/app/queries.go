package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"estate_dashboard/internal/domain"
)

const DefaultOverviewRows = 5

type QueryService struct {
	tables   *TableCache
	cache    domain.Cache
	cacheTTL time.Duration
}

// NewQueryService wires the memoized table with an optional response cache;
// c may be nil.
func NewQueryService(t *TableCache, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{tables: t, cache: c, cacheTTL: ttl}
}

func (s *QueryService) Overview(ctx context.Context, limit int) (domain.OverviewView, error) {
	t, err := s.tables.Table(ctx)
	if err != nil {
		return domain.OverviewView{}, err
	}
	if limit <= 0 {
		limit = DefaultOverviewRows
	}
	cols := append([]string(nil), t.Columns...)
	return domain.OverviewView{Total: t.Len(), Columns: cols, Head: t.Head(limit)}, nil
}

// Filtered runs the filter and derive pipeline over the loaded table.
func (s *QueryService) Filtered(ctx context.Context, sel domain.RangeSelection) (domain.SizedTable, int, error) {
	t, err := s.tables.Table(ctx)
	if err != nil {
		return domain.SizedTable{}, 0, err
	}
	ft, err := FilterSelection(t, sel)
	if err != nil {
		return domain.SizedTable{}, 0, err
	}
	return DeriveSize(ft), t.Len(), nil
}

func (s *QueryService) Listings(ctx context.Context, sel domain.RangeSelection) (domain.ListingsView, error) {
	st, total, err := s.Filtered(ctx, sel)
	if err != nil {
		return domain.ListingsView{}, err
	}
	return domain.ListingsView{Selection: sel, Total: total, Matched: st.Len(), Table: st}, nil
}

func (s *QueryService) Dashboard(ctx context.Context, sel domain.RangeSelection) (domain.DashboardView, error) {
	if err := ValidateSelection(sel); err != nil {
		return domain.DashboardView{}, err
	}
	_, version, err := s.tables.Snapshot(ctx)
	if err != nil {
		return domain.DashboardView{}, err
	}

	key := dashboardKey(version, sel)
	var dv domain.DashboardView
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &dv); ok {
			return dv, nil
		}
	}

	st, total, err := s.Filtered(ctx, sel)
	if err != nil {
		return domain.DashboardView{}, err
	}
	charts := BuildCharts(st)
	dv = domain.DashboardView{
		Selection: sel,
		Total:     total,
		Matched:   st.Len(),
		Table:     st,
		Charts:    charts,
		Insights:  Summarize(st, charts.Histogram),
	}

	// large payloads are recomputed instead of cached
	if s.cache != nil {
		if b, _ := json.Marshal(dv); len(b) < 1_000_000 {
			_ = s.cache.Set(ctx, key, dv, int(s.cacheTTL.Seconds()))
		}
	}
	return dv, nil
}

func dashboardKey(version string, sel domain.RangeSelection) string {
	return fmt.Sprintf("dashboard:%s:%g:%g:%g:%g:%g:%g:%g:%g", version,
		sel.Price.Min, sel.Price.Max,
		sel.Bedrooms.Min, sel.Bedrooms.Max,
		sel.Bathrooms.Min, sel.Bathrooms.Max,
		sel.SquareFeet.Min, sel.SquareFeet.Max)
}
