package httpapi

import (
	"net/http"
	"strconv"

	"github.com/tessera-contracts/tessera/internal/config"
	"github.com/tessera-contracts/tessera/internal/store"
)

// parsePage reads ?limit=&offset= from the query string, applying cfg's
// default and clamping to its configured maximum, per spec.md §6
// "pagination defaults ... have production-safe defaults".
func parsePage(r *http.Request, cfg config.PaginationConfig) store.Page {
	limit := cfg.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}

	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}

	return store.Page{Offset: offset, Limit: limit}
}
