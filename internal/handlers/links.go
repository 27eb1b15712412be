package handlers

import (
	"net/http"

	"github.com/diewo77/fieldservice/internal/httpx"
	"github.com/diewo77/fieldservice/internal/models"
	"github.com/diewo77/fieldservice/internal/store"
	"gorm.io/gorm"
)

// LinkHandler exposes one association table. Rows are addressed by their
// full key, sent as the request body on create and delete.
type LinkHandler[L any, P models.LinkRecord[L]] struct {
	links *store.LinkRepository[L, P]
}

func NewLinkHandler[L any, P models.LinkRecord[L]](db *gorm.DB) *LinkHandler[L, P] {
	return &LinkHandler[L, P]{links: store.Links[L, P](db)}
}

func (h *LinkHandler[L, P]) Register(mux *http.ServeMux, base string) {
	mux.HandleFunc("GET /"+base, h.List)
	mux.HandleFunc("POST /"+base, h.Create)
	mux.HandleFunc("DELETE /"+base, h.Delete)
}

func (h *LinkHandler[L, P]) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.links.List(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *LinkHandler[L, P]) Create(w http.ResponseWriter, r *http.Request) {
	row := P(new(L))
	if !httpx.Decode(w, r, row) {
		return
	}
	if err := h.links.Create(r.Context(), row); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, row)
}

func (h *LinkHandler[L, P]) Delete(w http.ResponseWriter, r *http.Request) {
	row := P(new(L))
	if !httpx.Decode(w, r, row) {
		return
	}
	if err := h.links.Delete(r.Context(), row); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.DetailResponse{Detail: h.links.Kind() + " Deleted"})
}
