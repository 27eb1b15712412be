package handlers

import (
	"context"
	"net/http"

	"github.com/diewo77/fieldservice/internal/httpx"
	"github.com/diewo77/fieldservice/internal/services"
)

// RelationHandler serves the derived, read-only relationship views.
type RelationHandler struct {
	rel *services.Resolver
}

func NewRelationHandler(rel *services.Resolver) *RelationHandler {
	return &RelationHandler{rel: rel}
}

func (h *RelationHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /customer/{id}/jobs", traverse("Customer", h.rel.CustomerJobs))
	mux.HandleFunc("GET /customer/{id}/services", traverse("Customer", h.rel.CustomerServices))
	mux.HandleFunc("GET /customer/{id}/frequency", traverse("Customer", h.rel.CustomerFrequency))
	mux.HandleFunc("GET /customer/{id}/servicearea", traverse("Customer", h.rel.CustomerServiceArea))
	mux.HandleFunc("GET /employee/{id}/jobs", traverse("Employee", h.rel.EmployeeJobs))
	mux.HandleFunc("GET /employee/{id}/expenses", traverse("Employee", h.rel.EmployeeExpenses))
	mux.HandleFunc("GET /job/{id}/employee", traverse("Job", h.rel.JobEmployee))
	mux.HandleFunc("GET /job/{id}/customer", traverse("Job", h.rel.JobCustomer))
	mux.HandleFunc("GET /job/{id}/invoice", traverse("Job", h.rel.JobInvoice))
	mux.HandleFunc("GET /job/{id}/services", traverse("Job", h.rel.JobServices))
	mux.HandleFunc("GET /job/{id}/expenses", traverse("Job", h.rel.JobExpenses))
	mux.HandleFunc("GET /invoice/{id}/job", traverse("Invoice", h.rel.InvoiceJob))
	mux.HandleFunc("GET /invoice/{id}/services", traverse("Invoice", h.rel.InvoiceServices))
}

func traverse[T any](kind string, fn func(context.Context, uint) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r.PathValue("id"), kind)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		out, err := fn(r.Context(), id)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, out)
	}
}
