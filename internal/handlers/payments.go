package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/fieldservice/internal/errs"
	"github.com/diewo77/fieldservice/internal/httpx"
)

// PaymentGateway is the processor-facing side of payments.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, amountMinorUnits int64, sourceID, idempotencyKey string) (json.RawMessage, error)
	GetPayment(ctx context.Context, paymentID string) (json.RawMessage, error)
	ListPayments(ctx context.Context) (json.RawMessage, error)
	CompletePayment(ctx context.Context, paymentID string) (json.RawMessage, error)
	CancelPayment(ctx context.Context, paymentID string) (json.RawMessage, error)
}

// InvoicePayer settles an invoice through the gateway.
type InvoicePayer interface {
	Pay(ctx context.Context, invoiceID uint, sourceID, idempotencyKey string) (json.RawMessage, error)
}

type PaymentHandler struct {
	gateway  PaymentGateway
	invoices InvoicePayer
	currency string
}

func NewPaymentHandler(gateway PaymentGateway, invoices InvoicePayer, currency string) *PaymentHandler {
	return &PaymentHandler{gateway: gateway, invoices: invoices, currency: strings.ToUpper(currency)}
}

// Register mounts the read routes on mux and the charge routes on charges,
// which the router wraps with rate limiting.
func (h *PaymentHandler) Register(mux *http.ServeMux, charges func(http.HandlerFunc) http.Handler) {
	mux.HandleFunc("GET /payments", h.List)
	mux.HandleFunc("GET /payments/{id}", h.Get)
	mux.Handle("POST /payments", charges(h.Create))
	mux.Handle("POST /payments/{id}/complete", charges(h.Complete))
	mux.Handle("POST /payments/{id}/cancel", charges(h.Cancel))
	mux.Handle("POST /invoice/{id}/payments", charges(h.PayInvoice))
}

type amountMoney struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type createPaymentRequest struct {
	SourceID       string       `json:"source_id"`
	IdempotencyKey string       `json:"idempotency_key"`
	AmountMoney    *amountMoney `json:"amount_money"`
	Amount         int64        `json:"amount"`
}

// Create forwards a charge. The body follows the processor's shape; the
// fields may also be given as query parameters (amount, source_id,
// idempotency_key).
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if !httpx.DecodeOptional(w, r, &req) {
		return
	}
	q := r.URL.Query()
	if req.SourceID == "" {
		req.SourceID = q.Get("source_id")
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = q.Get("idempotency_key")
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}
	amount := req.Amount
	if req.AmountMoney != nil {
		amount = req.AmountMoney.Amount
		if c := req.AmountMoney.Currency; c != "" && !strings.EqualFold(c, h.currency) {
			httpx.Error(w, r, errs.Validation("create payment", "Payment", map[string]string{"currency": "unsupported_currency"}))
			return
		}
	}
	if amount == 0 && q.Get("amount") != "" {
		v, err := strconv.ParseInt(q.Get("amount"), 10, 64)
		if err != nil {
			httpx.Error(w, r, errs.Validation("create payment", "Payment", map[string]string{"amount": "invalid_number"}))
			return
		}
		amount = v
	}

	body, err := h.gateway.CreatePayment(r.Context(), amount, req.SourceID, req.IdempotencyKey)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Raw(w, http.StatusOK, body)
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	body, err := h.gateway.GetPayment(r.Context(), r.PathValue("id"))
	h.pass(w, r, body, err)
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	body, err := h.gateway.ListPayments(r.Context())
	h.pass(w, r, body, err)
}

func (h *PaymentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	body, err := h.gateway.CompletePayment(r.Context(), r.PathValue("id"))
	h.pass(w, r, body, err)
}

func (h *PaymentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	body, err := h.gateway.CancelPayment(r.Context(), r.PathValue("id"))
	h.pass(w, r, body, err)
}

type payInvoiceRequest struct {
	SourceID       string `json:"source_id"`
	IdempotencyKey string `json:"idempotency_key"`
}

// PayInvoice charges the invoice's total due and marks it paid.
func (h *PaymentHandler) PayInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"), "Invoice")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req payInvoiceRequest
	if !httpx.Decode(w, r, &req) {
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}
	body, err := h.invoices.Pay(r.Context(), id, req.SourceID, req.IdempotencyKey)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Raw(w, http.StatusOK, body)
}

func (h *PaymentHandler) pass(w http.ResponseWriter, r *http.Request, body json.RawMessage, err error) {
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Raw(w, http.StatusOK, body)
}
