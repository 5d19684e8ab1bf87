package importer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
)

// Handler exposes the importer over HTTP. Request bodies are raw CSV.
type Handler struct {
	service   *Service
	recompute func(ctx context.Context) error
}

// NewHandler wires the importer routes. recompute, when non-nil, runs
// after each successful import so planning reflects the new data.
func NewHandler(service *Service, recompute func(ctx context.Context) error) *Handler {
	return &Handler{service: service, recompute: recompute}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/ingest/products", h.handle(h.service.ImportProducts)).Methods("POST")
	router.HandleFunc("/api/ingest/lots", h.handle(h.service.ImportLots)).Methods("POST")
	router.HandleFunc("/api/ingest/sales", h.handle(h.service.ImportSales)).Methods("POST")
}

func (h *Handler) handle(importFn func(ctx context.Context, r io.Reader) (*Result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		result, err := importFn(r.Context(), r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if h.recompute != nil {
			if err := h.recompute(r.Context()); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}
