package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/tessera-contracts/tessera/internal/errs"
)

type analyzeImpactRequest struct {
	ProposedSchema json.RawMessage `json:"proposed_schema" validate:"required"`
}

func (h *handlers) analyzeImpact(w http.ResponseWriter, r *http.Request) {
	assetID := urlParam(r, "id")
	if _, err := h.deps.Store.GetAsset(r.Context(), assetID); err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeAssetNotFound, "asset"))
		return
	}

	var req analyzeImpactRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	depth := 0
	if raw := r.URL.Query().Get("depth"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			depth = n
		}
	}

	res, err := h.deps.Impact.Analyze(r.Context(), assetID, req.ProposedSchema, depth)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) getLineage(w http.ResponseWriter, r *http.Request) {
	assetID := urlParam(r, "id")
	if _, err := h.deps.Store.GetAsset(r.Context(), assetID); err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeAssetNotFound, "asset"))
		return
	}

	deps, err := h.deps.Store.ListDependenciesOf(r.Context(), assetID)
	if err != nil {
		writeError(w, r, errs.Wrap(errs.CodeInternal, "list dependencies", err))
		return
	}
	dependents, err := h.deps.Store.ListDependentsOf(r.Context(), assetID)
	if err != nil {
		writeError(w, r, errs.Wrap(errs.CodeInternal, "list dependents", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"dependencies": deps,
		"dependents":   dependents,
	})
}
