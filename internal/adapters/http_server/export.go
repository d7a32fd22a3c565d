package httpserver

import (
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"estate_dashboard/internal/adapters/export"
	"estate_dashboard/internal/domain"
)

func (h *Handlers) exportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "listings.csv", export.ContentTypeCSV, export.WriteCSV)
}

func (h *Handlers) exportXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "listings.xlsx", export.ContentTypeXLSX, export.WriteXLSX)
}

func (h *Handlers) export(w http.ResponseWriter, r *http.Request, name, ctype string,
	write func(io.Writer, domain.SizedTable) error) {
	sel, err := parseSelection(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	st, total, err := h.Q.Filtered(r.Context(), sel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	noteFilter(r, sel, st.Len(), total)

	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	if err := write(w, st); err != nil {
		// headers are gone; the client sees a truncated body
		log.Error().Err(err).Str("file", name).Msg("export failed")
	}
}
