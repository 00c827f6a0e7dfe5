package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the HTTP API.
func NewRouter(h *ComprobanteHandler) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/comprobantes", h.Upload).Methods(http.MethodPost)
	api.HandleFunc("/comprobantes", h.List).Methods(http.MethodGet)
	api.HandleFunc("/comprobantes/export", h.Export).Methods(http.MethodGet)
	api.HandleFunc("/comprobantes/{id}", h.GetByID).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	return r
}
