package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/diewo77/fieldservice/internal/errs"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Detail  string `json:"detail,omitempty"`
	Details any    `json:"details,omitempty"`
}

// DetailResponse is the body of delete confirmations.
type DetailResponse struct {
	Detail string `json:"detail"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Raw writes an already encoded JSON body unchanged.
func Raw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func JSONError(w http.ResponseWriter, status int, code, detail string, details any) {
	JSON(w, status, ErrorResponse{Error: code, Detail: detail, Details: details})
}

// Error maps err onto the HTTP error body. Unclassified errors are logged and
// reported as 500 without leaking their text.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := errs.As(err)
	if !ok {
		logrus.WithContext(r.Context()).WithError(err).WithField("path", r.URL.Path).Error("unhandled error")
		JSONError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
		return
	}
	switch {
	case errors.Is(err, errs.ErrNotFound):
		JSONError(w, http.StatusNotFound, "not_found", e.Detail, nil)
	case errors.Is(err, errs.ErrValidation):
		JSONError(w, http.StatusBadRequest, "validation_failed", e.Detail, e.Fields)
	case errors.Is(err, errs.ErrConstraint):
		var details map[string]string
		if e.Constraint != "" || e.Column != "" {
			details = map[string]string{}
			if e.Constraint != "" {
				details["constraint"] = e.Constraint
			}
			if e.Column != "" {
				details["column"] = e.Column
			}
		}
		JSONError(w, http.StatusConflict, "constraint_violation", e.Detail, details)
	case errors.Is(err, errs.ErrPaymentFailed):
		JSONError(w, http.StatusPaymentRequired, "payment_failed", e.Detail, map[string]int{"status": e.Status})
	case errors.Is(err, errs.ErrUpstreamUnavailable):
		logrus.WithContext(r.Context()).WithError(err).Warn("upstream unavailable")
		JSONError(w, http.StatusBadGateway, "upstream_unavailable", e.Detail, nil)
	default:
		JSONError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}

// Decode reads a JSON body into dst. A malformed body is written as a 400
// invalid_json response and false is returned.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		JSONError(w, http.StatusBadRequest, "invalid_json", err.Error(), nil)
		return false
	}
	return true
}

// DecodeOptional is Decode for endpoints whose body may be omitted. An empty
// body, chunked or not, leaves dst untouched.
func DecodeOptional(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		JSONError(w, http.StatusBadRequest, "invalid_json", err.Error(), nil)
		return false
	}
	return true
}
