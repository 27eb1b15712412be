package server

import (
	"net/http"

	"github.com/diewo77/fieldservice/internal/handlers"
	"github.com/diewo77/fieldservice/internal/httpx"
	"github.com/diewo77/fieldservice/internal/metrics"
	"github.com/diewo77/fieldservice/internal/middleware"
	"github.com/diewo77/fieldservice/internal/models"
	"github.com/diewo77/fieldservice/internal/services"
	"github.com/diewo77/fieldservice/internal/store"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Store    *store.Store
	Payments handlers.PaymentGateway
	Currency string
	Limiter  *middleware.RateLimiter
	Log      logrus.FieldLogger
}

// New constructs the root http.Handler with all routes and middlewares applied.
func New(d Deps) http.Handler {
	mux := http.NewServeMux()
	st := d.Store

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			d.Log.WithError(err).Warn("health check failed")
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// Entities
	handlers.NewEntityHandler(services.NewEntityService[models.Services](st)).Register(mux, "services")
	handlers.NewEntityHandler(services.NewEntityService[models.Frequency](st)).Register(mux, "frequency")
	handlers.NewEntityHandler(services.NewEntityService[models.ServiceArea](st)).Register(mux, "servicearea")
	handlers.NewEntityHandler(services.NewEntityService[models.User](st)).Register(mux, "user")
	handlers.NewEntityHandler(services.NewEntityService[models.Invoice](st)).Register(mux, "invoice")
	handlers.NewEntityHandler(services.NewEntityService[models.Customer](st)).Register(mux, "customer")
	handlers.NewEntityHandler(services.NewEntityService[models.Employee](st)).Register(mux, "employee")
	handlers.NewEntityHandler(services.NewEntityService[models.Expense](st)).Register(mux, "expense")
	handlers.NewEntityHandler(services.NewEntityService[models.Job](st)).Register(mux, "job")

	// Link tables
	handlers.NewLinkHandler[models.ServiceLink](st.DB()).Register(mux, "servicelink")
	handlers.NewLinkHandler[models.CustomerJobsLink](st.DB()).Register(mux, "customerjobslink")
	handlers.NewLinkHandler[models.CustomerFrequencyLink](st.DB()).Register(mux, "customerfrequencylink")
	handlers.NewLinkHandler[models.CustomerServiceAreaLink](st.DB()).Register(mux, "customerservicearealink")

	// Derived views
	handlers.NewRelationHandler(services.NewResolver(st)).Register(mux)

	// Payments
	if d.Payments != nil {
		invoices := services.NewInvoiceService(st, d.Payments, d.Log)
		charges := func(fn http.HandlerFunc) http.Handler { return fn }
		if d.Limiter != nil {
			charges = d.Limiter.Wrap
		}
		handlers.NewPaymentHandler(d.Payments, invoices, d.Currency).Register(mux, charges)
	}

	var h http.Handler = mux
	h = middleware.Logging(d.Log)(h)
	h = middleware.Recover(d.Log)(h)
	h = metrics.InstrumentHandler(h)
	return middleware.RequestID(h)
}
