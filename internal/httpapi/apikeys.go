package httpapi

import (
	"net/http"
	"time"

	"github.com/tessera-contracts/tessera/internal/auth"
	"github.com/tessera-contracts/tessera/internal/domain"
	"github.com/tessera-contracts/tessera/internal/errs"
	"github.com/tessera-contracts/tessera/internal/idutil"
)

type createAPIKeyRequest struct {
	Name      string          `json:"name" validate:"required,min=1,max=200"`
	TeamID    string          `json:"team_id" validate:"required"`
	Scopes    []domain.Scope  `json:"scopes" validate:"required,min=1,dive,oneof=read write admin"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

type createAPIKeyResponse struct {
	*domain.APIKey
	Key string `json:"key"`
}

func (h *handlers) createAPIKey(w http.ResponseWriter, r *http.Request) {
	var req createAPIKeyRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := auth.RequireTeam(principalFrom(r.Context()), req.TeamID); err != nil {
		writeError(w, r, err)
		return
	}

	generated, err := auth.GenerateKey(h.deps.BootstrapEnv)
	if err != nil {
		writeError(w, r, errs.Wrap(errs.CodeInternal, "generate api key", err))
		return
	}

	k := &domain.APIKey{
		ID:        idutil.New(),
		KeyHash:   generated.KeyHash,
		KeyPrefix: generated.KeyPrefix,
		Name:      req.Name,
		TeamID:    req.TeamID,
		Scopes:    domain.ScopeList(req.Scopes),
		ExpiresAt: req.ExpiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.deps.Store.CreateAPIKey(r.Context(), k); err != nil {
		writeError(w, r, errs.Wrap(errs.CodeInternal, "create api key", err))
		return
	}

	writeJSON(w, http.StatusCreated, createAPIKeyResponse{APIKey: k, Key: generated.Raw})
}

func (h *handlers) listAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.deps.Store.ListAPIKeysByTeam(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, errs.Wrap(errs.CodeInternal, "list api keys", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": keys, "total": len(keys)})
}

func (h *handlers) revokeAPIKey(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Store.RevokeAPIKey(r.Context(), urlParam(r, "id"), time.Now().UTC()); err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeAPIKeyNotFound, "api key"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
