package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/tessera-contracts/tessera/internal/errs"
)

// errorEnvelope is the uniform error shape of spec.md §6.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	RequestID string                 `json:"request_id"`
	Timestamp string                 `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// listEnvelope is the paginated success shape of spec.md §6.
type listEnvelope struct {
	Results interface{} `json:"results"`
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeList(w http.ResponseWriter, results interface{}, total, limit, offset int) {
	writeJSON(w, http.StatusOK, listEnvelope{Results: results, Total: total, Limit: limit, Offset: offset})
}

// writeError renders err as the standard envelope, translating a bare
// *errs.Error directly and falling back to INTERNAL_ERROR for anything
// else (a handler returning a raw infrastructure error is a bug, not a
// caller-visible detail).
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *errs.Error
	if !errors.As(err, &de) {
		de = errs.Wrap(errs.CodeInternal, "internal error", err)
	}

	writeJSON(w, de.Status(), errorEnvelope{Error: errorBody{
		Code:      string(de.Code),
		Message:   de.Message,
		RequestID: requestIDFrom(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Details:   de.Details,
	}})
}
