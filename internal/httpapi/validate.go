package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tessera-contracts/tessera/internal/errs"
)

var validate = validator.New()

// decodeAndValidate parses the request body into dst and runs struct tag
// validation, collecting every field problem (not just the first) into
// the error's details map, per spec.md §7 "Validation errors collect all
// field problems".
func decodeAndValidate(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errs.Wrap(errs.CodeValidation, "malformed request body", err)
	}

	if err := validate.Struct(dst); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return errs.Wrap(errs.CodeValidation, "invalid request body", err)
		}
		details := make(map[string]interface{}, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fmt.Sprintf("failed '%s' validation", fe.Tag())
		}
		return errs.New(errs.CodeValidation, "invalid request body").WithDetails(details)
	}
	return nil
}

// routePattern returns the chi route pattern ("/assets/{id}") matched for
// r, falling back to the raw path when no router context is present (e.g.
// in unit tests that call a handler directly).
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
