package httpapi

import (
	"net/http"
	"time"

	"github.com/tessera-contracts/tessera/internal/errs"
	"github.com/tessera-contracts/tessera/internal/store"
)

// listAuditEvents parses spec.md §4.7's filter set (entity, actor, action,
// time range) from the query string; every parameter is optional.
func (h *handlers) listAuditEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := store.AuditFilter{
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
		ActorID:    q.Get("actor_id"),
		Action:     q.Get("action"),
	}
	if raw := q.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, r, errs.New(errs.CodeValidation, "since must be an RFC3339 timestamp"))
			return
		}
		filter.Since = since
	}
	if raw := q.Get("until"); raw != "" {
		until, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, r, errs.New(errs.CodeValidation, "until must be an RFC3339 timestamp"))
			return
		}
		filter.Until = until
	}

	page := parsePage(r, h.deps.Pagination)
	res, err := h.deps.Store.ListAuditEvents(r.Context(), filter, page)
	if err != nil {
		writeError(w, r, errs.Wrap(errs.CodeInternal, "list audit events", err))
		return
	}
	writeList(w, res.Items, res.Total, page.Limit, page.Offset)
}
