// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/rs/zerolog/log"

	"estate_dashboard/internal/app"
	"estate_dashboard/internal/domain"
)

type Handlers struct {
	Q     *app.QueryService
	Ready func() bool // nil means always ready
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/readyz", h.ready)
	s.mux.Route("/v1", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/filters", h.getFilters)
		r.Get("/overview", h.getOverview)
		r.Get("/listings", h.listListings)
		r.Get("/dashboard", h.getDashboard)
		r.Get("/export.csv", h.exportCSV)
		r.Get("/export.xlsx", h.exportXLSX)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRange):
		writeProblem(w, http.StatusBadRequest, "Invalid Range", err.Error())
	case errors.Is(err, domain.ErrDataUnavailable):
		log.Error().Err(err).Str("path", r.URL.Path).Msg("listing data unavailable")
		writeProblem(w, http.StatusServiceUnavailable, "Data Unavailable", err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "unexpected error")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// parseSelection reads the eight range bounds from the query string. A
// missing bound takes the slider default.
func parseSelection(q url.Values) (domain.RangeSelection, error) {
	sel := domain.DefaultSelection()
	for _, p := range []struct {
		key string
		dst *float64
	}{
		{"price_min", &sel.Price.Min}, {"price_max", &sel.Price.Max},
		{"bedrooms_min", &sel.Bedrooms.Min}, {"bedrooms_max", &sel.Bedrooms.Max},
		{"bathrooms_min", &sel.Bathrooms.Min}, {"bathrooms_max", &sel.Bathrooms.Max},
		{"sqft_min", &sel.SquareFeet.Min}, {"sqft_max", &sel.SquareFeet.Max},
	} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return domain.RangeSelection{}, fmt.Errorf("%w: %s must be a number, got %q", domain.ErrInvalidRange, p.key, v)
		}
		*p.dst = f
	}
	return sel, nil
}

func (h *Handlers) ready(w http.ResponseWriter, r *http.Request) {
	if h.Ready != nil && !h.Ready() {
		writeProblem(w, http.StatusServiceUnavailable, "Not Ready", "listing table not loaded")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (h *Handlers) getFilters(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{"sliders": domain.Sliders()})
}

func (h *Handlers) getOverview(w http.ResponseWriter, r *http.Request) {
	limit := app.DefaultOverviewRows
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 100 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 100")
			return
		}
		limit = l
	}
	out, err := h.Q.Overview(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, out)
}

func (h *Handlers) listListings(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Q.Listings(r.Context(), sel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	noteFilter(r, sel, out.Matched, out.Total)
	render.JSON(w, r, out)
}

func (h *Handlers) getDashboard(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Q.Dashboard(r.Context(), sel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	noteFilter(r, sel, out.Matched, out.Total)

	etag, body := calcETagAndBody(out)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write dashboard body")
	}
}
