package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/fieldservice/internal/errs"
	"github.com/diewo77/fieldservice/internal/httpx"
	"github.com/diewo77/fieldservice/internal/models"
	"github.com/diewo77/fieldservice/internal/services"
)

// EntityHandler exposes list/get/create/upsert/delete for one entity type.
type EntityHandler[E any, P models.Record[E]] struct {
	svc *services.EntityService[E, P]
}

func NewEntityHandler[E any, P models.Record[E]](svc *services.EntityService[E, P]) *EntityHandler[E, P] {
	return &EntityHandler[E, P]{svc: svc}
}

// Register mounts the handler under /base.
func (h *EntityHandler[E, P]) Register(mux *http.ServeMux, base string) {
	mux.HandleFunc("GET /"+base, h.List)
	mux.HandleFunc("POST /"+base, h.Create)
	mux.HandleFunc("GET /"+base+"/{id}", h.Get)
	mux.HandleFunc("PUT /"+base+"/{id}", h.Update)
	mux.HandleFunc("DELETE /"+base+"/{id}", h.Delete)
}

// List returns every row, or a one-element array when ?id= is given.
func (h *EntityHandler[E, P]) List(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("id"); raw != "" {
		id, err := parseID(raw, h.svc.Kind())
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		rec, err := h.svc.Get(r.Context(), id)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		redact(rec)
		httpx.JSON(w, http.StatusOK, []P{rec})
		return
	}

	rows, err := h.svc.List(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	for i := range rows {
		redact(P(&rows[i]))
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *EntityHandler[E, P]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"), h.svc.Kind())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	redact(rec)
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *EntityHandler[E, P]) Create(w http.ResponseWriter, r *http.Request) {
	candidate := P(new(E))
	if !httpx.Decode(w, r, candidate) {
		return
	}
	rec, err := h.svc.Create(r.Context(), candidate)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	redact(rec)
	httpx.JSON(w, http.StatusCreated, rec)
}

// Update upserts under the path id. Both branches answer 201.
func (h *EntityHandler[E, P]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"), h.svc.Kind())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	candidate := P(new(E))
	if !httpx.Decode(w, r, candidate) {
		return
	}
	rec, _, err := h.svc.Upsert(r.Context(), &id, candidate)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	redact(rec)
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *EntityHandler[E, P]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"), h.svc.Kind())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.DetailResponse{Detail: h.svc.Kind() + " Deleted"})
}

func parseID(raw, kind string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errs.Validation("parse id", kind, map[string]string{"id": "invalid_id"})
	}
	return uint(id), nil
}

func redact(rec any) {
	if rd, ok := rec.(models.Redactor); ok {
		rd.Redact()
	}
}
