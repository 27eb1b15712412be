// Package payments forwards card payment operations to a Square compatible
// processor. Nothing is stored locally: the processor is the system of record
// and idempotency keys are passed through untouched.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/diewo77/fieldservice/internal/errs"
	"github.com/diewo77/fieldservice/internal/metrics"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	SandboxURL    = "https://connect.squareupsandbox.com/v2"
	ProductionURL = "https://connect.squareup.com/v2"

	defaultTimeout  = 30 * time.Second
	maxListPages    = 100
	maxResponseBody = 4 << 20
)

type Config struct {
	BaseURL     string // overrides Environment when set
	Environment string // "sandbox" or "production"
	AccessToken string
	Currency    string // ISO 4217, e.g. "USD"
	Version     string // Square-Version header, optional
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      logrus.FieldLogger
}

type Client struct {
	baseURL  string
	token    string
	currency string
	version  string
	http     *http.Client
	log      logrus.FieldLogger
}

func New(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = SandboxURL
		if strings.EqualFold(cfg.Environment, "production") {
			base = ProductionURL
		}
	}
	currency := strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "USD"
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{baseURL: base, token: cfg.AccessToken, currency: currency, version: cfg.Version, http: hc, log: log}
}

type money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type createPaymentRequest struct {
	SourceID       string `json:"source_id"`
	IdempotencyKey string `json:"idempotency_key"`
	AmountMoney    money  `json:"amount_money"`
}

// CreatePayment charges amountMinorUnits (cents) to sourceID. The provider's
// body is returned verbatim. Retrying with the same idempotencyKey is safe:
// the provider returns the original payment instead of charging twice.
func (c *Client) CreatePayment(ctx context.Context, amountMinorUnits int64, sourceID, idempotencyKey string) (json.RawMessage, error) {
	fields := map[string]string{}
	if amountMinorUnits <= 0 {
		fields["amount"] = "must_be_positive"
	}
	if strings.TrimSpace(sourceID) == "" {
		fields["source_id"] = "required"
	}
	if strings.TrimSpace(idempotencyKey) == "" {
		fields["idempotency_key"] = "required"
	}
	if len(fields) > 0 {
		return nil, errs.Validation("create payment", "Payment", fields)
	}

	payload, err := json.Marshal(createPaymentRequest{
		SourceID:       sourceID,
		IdempotencyKey: idempotencyKey,
		AmountMoney:    money{Amount: amountMinorUnits, Currency: c.currency},
	})
	if err != nil {
		return nil, err
	}
	status, body, err := c.do(ctx, http.MethodPost, "/payments", payload)
	if err != nil {
		return nil, c.fail("create", errs.Unavailable("create payment", "Payment provider", 0, err))
	}
	if status/100 != 2 {
		return nil, c.fail("create", errs.PaymentFailed("create payment", status, providerDetail(body)))
	}
	metrics.RecordPayment("create", "ok")
	c.log.WithFields(logrus.Fields{
		"payment_id": gjson.GetBytes(body, "payment.id").String(),
		"amount":     amountMinorUnits,
	}).Info("payment created")
	return json.RawMessage(body), nil
}

// GetPayment fetches one payment. 404 is NotFound, 429/5xx and transport
// failures are UpstreamUnavailable, any other non-200 is PaymentFailed.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (json.RawMessage, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, errs.Validation("get payment", "Payment", map[string]string{"payment_id": "required"})
	}
	status, body, err := c.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(paymentID), nil)
	if err != nil {
		return nil, c.fail("get", errs.Unavailable("get payment", "Payment provider", 0, err))
	}
	if status == http.StatusOK {
		metrics.RecordPayment("get", "ok")
		return json.RawMessage(body), nil
	}
	if status == http.StatusNotFound {
		e := errs.NotFound("get payment", "Payment")
		e.Detail = fmt.Sprintf("Payment not found with payment_id %s", paymentID)
		return nil, c.fail("get", e)
	}
	return nil, c.fail("get", statusError("get payment", status, body))
}

// ListPayments returns the provider's payments array, following cursors
// until the last page.
func (c *Client) ListPayments(ctx context.Context) (json.RawMessage, error) {
	all := []json.RawMessage{}
	cursor := ""
	for page := 0; page < maxListPages; page++ {
		path := "/payments"
		if cursor != "" {
			path += "?cursor=" + url.QueryEscape(cursor)
		}
		status, body, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, c.fail("list", errs.Unavailable("list payments", "Payment provider", 0, err))
		}
		if status != http.StatusOK {
			return nil, c.fail("list", statusError("list payments", status, body))
		}
		gjson.GetBytes(body, "payments").ForEach(func(_, v gjson.Result) bool {
			all = append(all, json.RawMessage(v.Raw))
			return true
		})
		cursor = gjson.GetBytes(body, "cursor").String()
		if cursor == "" {
			break
		}
	}
	out, err := json.Marshal(all)
	if err != nil {
		return nil, err
	}
	metrics.RecordPayment("list", "ok")
	return out, nil
}

// CompletePayment captures an approved payment.
func (c *Client) CompletePayment(ctx context.Context, paymentID string) (json.RawMessage, error) {
	return c.action(ctx, "complete", paymentID)
}

// CancelPayment voids an approved payment.
func (c *Client) CancelPayment(ctx context.Context, paymentID string) (json.RawMessage, error) {
	return c.action(ctx, "cancel", paymentID)
}

func (c *Client) action(ctx context.Context, verb, paymentID string) (json.RawMessage, error) {
	op := verb + " payment"
	if strings.TrimSpace(paymentID) == "" {
		return nil, errs.Validation(op, "Payment", map[string]string{"payment_id": "required"})
	}
	status, body, err := c.do(ctx, http.MethodPost, "/payments/"+url.PathEscape(paymentID)+"/"+verb, []byte("{}"))
	if err != nil {
		return nil, c.fail(verb, errs.Unavailable(op, "Payment provider", 0, err))
	}
	switch {
	case status/100 == 2:
		metrics.RecordPayment(verb, "ok")
		return json.RawMessage(body), nil
	case status == http.StatusNotFound:
		return nil, c.fail(verb, errs.NotFound(op, "Payment"))
	}
	return nil, c.fail(verb, statusError(op, status, body))
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.version != "" {
		req.Header.Set("Square-Version", c.version)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

func (c *Client) fail(op string, err error) error {
	outcome := "error"
	switch {
	case errors.Is(err, errs.ErrPaymentFailed):
		outcome = "failed"
	case errors.Is(err, errs.ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, errs.ErrUpstreamUnavailable):
		outcome = "unavailable"
	}
	metrics.RecordPayment(op, outcome)
	c.log.WithError(err).WithField("op", op).Warn("payment provider call failed")
	return err
}

func statusError(op string, status int, body []byte) error {
	if status == http.StatusTooManyRequests || status >= 500 {
		e := errs.Unavailable(op, "Payment provider", status, nil)
		if d := providerDetail(body); d != "" {
			e.Detail = d
		}
		return e
	}
	return errs.PaymentFailed(op, status, providerDetail(body))
}

// providerDetail extracts errors[0].detail, falling back to the raw body.
func providerDetail(body []byte) string {
	if d := gjson.GetBytes(body, "errors.0.detail"); d.Exists() && d.String() != "" {
		return d.String()
	}
	return strings.TrimSpace(string(body))
}
