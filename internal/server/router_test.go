package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/fieldservice/internal/middleware"
	"github.com/diewo77/fieldservice/internal/models"
	"github.com/diewo77/fieldservice/internal/payments"
	"github.com/diewo77/fieldservice/internal/store"
	"github.com/sirupsen/logrus/hooks/test"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestServer(t *testing.T, provider http.Handler) http.Handler {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log, _ := test.NewNullLogger()
	deps := Deps{Store: store.New(db), Currency: "USD", Log: log}
	if provider != nil {
		srv := httptest.NewServer(provider)
		t.Cleanup(srv.Close)
		deps.Payments = payments.New(payments.Config{BaseURL: srv.URL, AccessToken: "tok", Logger: log})
		deps.Limiter = middleware.NewRateLimiter(100, 100, log)
	}
	return New(deps)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return out
}

var bob = map[string]any{
	"fName": "Bob", "lName": "Johnson", "phoneNumber": "555-0100", "email": "bob@example.com",
	"billingAddress": "1 Main St", "physicalAddress": "1 Main St",
	"lastPaymentDate": "2024-05-01", "lastServiceDate": "2024-05-02", "isResidential": true,
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, nil)
	for _, path := range []string{"/health", "/healthz"} {
		rr := do(t, h, http.MethodGet, path, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, rr.Code)
		}
	}
	rr := do(t, h, http.MethodGet, "/health", nil)
	if rr.Header().Get(middleware.HeaderRequestID) == "" {
		t.Fatal("missing request id header")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, nil)
	do(t, h, http.MethodGet, "/services", nil)
	rr := do(t, h, http.MethodGet, "/metrics", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "fieldservice_http_requests_total") {
		t.Fatalf("metrics: %d", rr.Code)
	}
}

func TestCreateCustomerThenList(t *testing.T) {
	h := newTestServer(t, nil)

	rr := do(t, h, http.MethodPost, "/customer", bob)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rr.Code, rr.Body.String())
	}
	created := decode[map[string]any](t, rr)
	if created["customerId"] == float64(0) {
		t.Fatal("customerId not assigned")
	}

	rr = do(t, h, http.MethodGet, "/customer", nil)
	list := decode[[]map[string]any](t, rr)
	if len(list) != 1 {
		t.Fatalf("expected 1 customer got %d", len(list))
	}
	if list[0]["fName"] != "Bob" || list[0]["lName"] != "Johnson" || list[0]["isResidential"] != true {
		t.Fatalf("unexpected customer %v", list[0])
	}
	if list[0]["customerId"] != created["customerId"] {
		t.Fatalf("id mismatch %v vs %v", list[0]["customerId"], created["customerId"])
	}
}

func TestGetMissingService(t *testing.T) {
	h := newTestServer(t, nil)
	rr := do(t, h, http.MethodGet, "/services/999", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}
	if got := decode[map[string]any](t, rr)["detail"]; got != "Service not found" {
		t.Fatalf("detail = %v", got)
	}

	rr = do(t, h, http.MethodGet, "/services?id=999", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("query lookup: expected 404 got %d", rr.Code)
	}
}

func TestEntityLifecycle(t *testing.T) {
	h := newTestServer(t, nil)

	rr := do(t, h, http.MethodPut, "/services/7", map[string]any{"service": "Mowing"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("upsert create: %d", rr.Code)
	}
	rr = do(t, h, http.MethodPut, "/services/7", map[string]any{"service": "Aeration"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("upsert update: %d", rr.Code)
	}

	rr = do(t, h, http.MethodGet, "/services?id=7", nil)
	one := decode[[]map[string]any](t, rr)
	if len(one) != 1 || one[0]["service"] != "Aeration" || one[0]["serviceId"] != float64(7) {
		t.Fatalf("unexpected %v", one)
	}

	rr = do(t, h, http.MethodDelete, "/services/7", nil)
	if rr.Code != http.StatusOK || decode[map[string]any](t, rr)["detail"] != "Service Deleted" {
		t.Fatalf("delete: %d %s", rr.Code, rr.Body.String())
	}
	rr = do(t, h, http.MethodDelete, "/services/7", nil)
	if rr.Code != http.StatusNotFound || decode[map[string]any](t, rr)["detail"] != "Service not found" {
		t.Fatalf("second delete: %d %s", rr.Code, rr.Body.String())
	}
}

func TestValidationAndBadInput(t *testing.T) {
	h := newTestServer(t, nil)

	bad := map[string]any{}
	for k, v := range bob {
		bad[k] = v
	}
	bad["email"] = "bob-at-example"
	rr := do(t, h, http.MethodPost, "/customer", bad)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
	body := decode[map[string]any](t, rr)
	details, _ := body["details"].(map[string]any)
	if body["error"] != "validation_failed" || details["email"] == nil {
		t.Fatalf("unexpected body %v", body)
	}

	rr = do(t, h, http.MethodPost, "/customer", "{not json")
	if rr.Code != http.StatusBadRequest || decode[map[string]any](t, rr)["error"] != "invalid_json" {
		t.Fatalf("malformed json: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, h, http.MethodGet, "/customer/abc", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad id: %d", rr.Code)
	}
}

func TestUserPasswordNeverReturned(t *testing.T) {
	h := newTestServer(t, nil)
	rr := do(t, h, http.MethodPost, "/user", map[string]any{"email": "ann@example.com", "password": "hunter22"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create user: %d %s", rr.Code, rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "password") {
		t.Fatalf("password leaked: %s", rr.Body.String())
	}
	rr = do(t, h, http.MethodGet, "/user", nil)
	if strings.Contains(rr.Body.String(), "hunter22") || strings.Contains(rr.Body.String(), "password") {
		t.Fatalf("password leaked in list: %s", rr.Body.String())
	}

	rr = do(t, h, http.MethodPost, "/user", map[string]any{"email": "ann@example.com", "password": "other"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate email: expected 409 got %d", rr.Code)
	}
}

func TestLinksAndRelations(t *testing.T) {
	h := newTestServer(t, nil)

	cust := decode[map[string]any](t, do(t, h, http.MethodPost, "/customer", bob))
	emp := decode[map[string]any](t, do(t, h, http.MethodPost, "/employee", map[string]any{
		"fName": "Ann", "lName": "Lee", "birthDate": "1990-01-31", "phoneNumber": "555-0101",
		"email": "ann@example.com", "address": "2 Elm St", "laborRate": 22.5, "weeklyHours": 40,
	}))
	job := decode[map[string]any](t, do(t, h, http.MethodPost, "/job", map[string]any{
		"arrivalWindow": "8-10", "employeeId": emp["empId"],
	}))

	rr := do(t, h, http.MethodPost, "/customerjobslink", map[string]any{"customerId": 999, "jobId": job["jobId"]})
	if rr.Code != http.StatusConflict {
		t.Fatalf("link to missing customer: expected 409 got %d", rr.Code)
	}
	rr = do(t, h, http.MethodPost, "/customerjobslink", map[string]any{"customerId": cust["customerId"], "jobId": job["jobId"]})
	if rr.Code != http.StatusCreated {
		t.Fatalf("link: %d %s", rr.Code, rr.Body.String())
	}

	path := fmt.Sprintf("/customer/%v/jobs", cust["customerId"])
	jobs := decode[[]map[string]any](t, do(t, h, http.MethodGet, path, nil))
	if len(jobs) != 1 || jobs[0]["jobId"] != job["jobId"] {
		t.Fatalf("customer jobs = %v", jobs)
	}
	empOfJob := decode[map[string]any](t, do(t, h, http.MethodGet, fmt.Sprintf("/job/%v/employee", job["jobId"]), nil))
	if empOfJob["fName"] != "Ann" {
		t.Fatalf("job employee = %v", empOfJob)
	}
	rr = do(t, h, http.MethodGet, fmt.Sprintf("/job/%v/invoice", job["jobId"]), nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("job without invoice: %d", rr.Code)
	}

	rr = do(t, h, http.MethodDelete, fmt.Sprintf("/employee/%v", emp["empId"]), nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("delete referenced employee: expected 409 got %d", rr.Code)
	}

	rr = do(t, h, http.MethodDelete, "/customerjobslink", map[string]any{"customerId": cust["customerId"], "jobId": job["jobId"]})
	if rr.Code != http.StatusOK {
		t.Fatalf("unlink: %d %s", rr.Code, rr.Body.String())
	}
	links := decode[[]map[string]any](t, do(t, h, http.MethodGet, "/customerjobslink", nil))
	if len(links) != 0 {
		t.Fatalf("links left: %v", links)
	}
}

func TestLinkToMissingEndpointConflicts(t *testing.T) {
	h := newTestServer(t, nil)
	bodies := map[string]map[string]any{
		"/servicelink":             {"serviceId": 7, "invoiceId": 7, "customerId": 7, "jobId": 7},
		"/customerjobslink":        {"customerId": 7, "jobId": 7},
		"/customerfrequencylink":   {"customerId": 7, "frequencyId": 7},
		"/customerservicearealink": {"customerId": 7, "serviceAreaId": 7},
	}
	for path, body := range bodies {
		rr := do(t, h, http.MethodPost, path, body)
		if rr.Code != http.StatusConflict {
			t.Errorf("%s: expected 409 got %d %s", path, rr.Code, rr.Body.String())
			continue
		}
		if got := decode[map[string]any](t, rr)["error"]; got != "constraint_violation" {
			t.Errorf("%s: error code %v", path, got)
		}
		if links := decode[[]map[string]any](t, do(t, h, http.MethodGet, path, nil)); len(links) != 0 {
			t.Errorf("%s: dangling link stored: %v", path, links)
		}
	}
}

// squareDouble answers like the processor and charges once per idempotency key.
type squareDouble struct {
	charges map[string]int
}

func (s *squareDouble) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/payments":
		var req struct {
			SourceID       string `json:"source_id"`
			IdempotencyKey string `json:"idempotency_key"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.SourceID == "cnon:card-nonce-declined" {
			w.WriteHeader(http.StatusPaymentRequired)
			_, _ = io.WriteString(w, `{"errors":[{"detail":"Card declined"}]}`)
			return
		}
		s.charges[req.IdempotencyKey]++
		_, _ = io.WriteString(w, `{"payment":{"id":"p1"}}`)
	case r.Method == http.MethodGet && r.URL.Path == "/payments/p1":
		_, _ = io.WriteString(w, `{"payment":{"id":"p1"}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"errors":[{"detail":"not found"}]}`)
	}
}

func TestPaymentsRoutes(t *testing.T) {
	double := &squareDouble{charges: map[string]int{}}
	h := newTestServer(t, double)

	rr := do(t, h, http.MethodPost, "/payments", map[string]any{
		"source_id": "tok_abc", "idempotency_key": "k1",
		"amount_money": map[string]any{"amount": 100, "currency": "USD"},
	})
	if rr.Code != http.StatusOK || rr.Body.String() != `{"payment":{"id":"p1"}}` {
		t.Fatalf("create: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, h, http.MethodPost, "/payments?amount=100&source_id=tok_abc&idempotency_key=k2", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("query-style create: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, h, http.MethodPost, "/payments", map[string]any{
		"source_id": "cnon:card-nonce-declined", "idempotency_key": "k3", "amount": 100,
	})
	if rr.Code != http.StatusPaymentRequired || decode[map[string]any](t, rr)["detail"] != "Card declined" {
		t.Fatalf("declined: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, h, http.MethodPost, "/payments", map[string]any{
		"source_id": "tok_abc", "idempotency_key": "k4",
		"amount_money": map[string]any{"amount": 100, "currency": "EUR"},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("foreign currency: %d", rr.Code)
	}

	if rr = do(t, h, http.MethodGet, "/payments/p1", nil); rr.Code != http.StatusOK {
		t.Fatalf("get: %d", rr.Code)
	}
	if rr = do(t, h, http.MethodGet, "/payments/zzz", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("get missing: %d", rr.Code)
	}
}

func TestPayInvoice(t *testing.T) {
	double := &squareDouble{charges: map[string]int{}}
	h := newTestServer(t, double)

	inv := decode[map[string]any](t, do(t, h, http.MethodPost, "/invoice", map[string]any{
		"lotSize": "0.5 acre", "invoiceDate": "2024-05-01", "dueDate": "2024-05-31",
		"productsUsed": "Fertilizer", "acceptedBy": "Bob", "totalEstimate": 120,
	}))
	path := fmt.Sprintf("/invoice/%v/payments", inv["invoiceId"])

	rr := do(t, h, http.MethodPost, path, map[string]any{"source_id": "cnon:card-nonce-ok", "idempotency_key": "inv-1"})
	if rr.Code != http.StatusOK {
		t.Fatalf("pay: %d %s", rr.Code, rr.Body.String())
	}
	got := decode[map[string]any](t, do(t, h, http.MethodGet, fmt.Sprintf("/invoice/%v", inv["invoiceId"]), nil))
	if got["paid"] != true {
		t.Fatalf("invoice not marked paid: %v", got)
	}

	rr = do(t, h, http.MethodPost, path, map[string]any{"source_id": "cnon:card-nonce-ok", "idempotency_key": "inv-2"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("second payment: expected 400 got %d", rr.Code)
	}
	if double.charges["inv-1"] != 1 || len(double.charges) != 1 {
		t.Fatalf("charges = %v", double.charges)
	}
}
