package httpapi

import (
	"net/http"
	"time"

	"github.com/tessera-contracts/tessera/internal/auth"
	"github.com/tessera-contracts/tessera/internal/domain"
	"github.com/tessera-contracts/tessera/internal/errs"
	"github.com/tessera-contracts/tessera/internal/idutil"
)

type createAssetRequest struct {
	FQN           string                 `json:"fqn" validate:"required"`
	OwnerTeamID   string                 `json:"owner_team_id" validate:"required"`
	Environment   string                 `json:"environment"`
	ResourceType  domain.ResourceType    `json:"resource_type" validate:"required,oneof=table endpoint stream file"`
	GuaranteeMode domain.GuaranteeMode   `json:"guarantee_mode"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

func (h *handlers) createAsset(w http.ResponseWriter, r *http.Request) {
	var req createAssetRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if !domain.ValidFQN(req.FQN) {
		writeError(w, r, errs.New(errs.CodeInvalidFQN, "fqn must be two or more dot-separated identifier segments"))
		return
	}

	p := principalFrom(r.Context())
	if err := auth.RequireTeam(p, req.OwnerTeamID); err != nil {
		writeError(w, r, err)
		return
	}

	env := req.Environment
	if env == "" {
		env = domain.DefaultEnvironment
	}
	guaranteeMode := req.GuaranteeMode
	if guaranteeMode == "" {
		guaranteeMode = domain.GuaranteeModeNotify
	}

	a := &domain.Asset{
		ID:            idutil.New(),
		FQN:           req.FQN,
		OwnerTeamID:   req.OwnerTeamID,
		Environment:   env,
		ResourceType:  req.ResourceType,
		GuaranteeMode: guaranteeMode,
		Metadata:      req.Metadata,
		CreatedAt:     time.Now().UTC(),
	}
	if p.UserID != "" {
		a.OwnerUserID = &p.UserID
	}

	if err := h.deps.Store.CreateAsset(r.Context(), a); err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeAssetNotFound, "asset"))
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *handlers) getAsset(w http.ResponseWriter, r *http.Request) {
	a, err := h.deps.Store.GetAsset(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeAssetNotFound, "asset"))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type updateAssetRequest struct {
	GuaranteeMode domain.GuaranteeMode   `json:"guarantee_mode"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

func (h *handlers) updateAsset(w http.ResponseWriter, r *http.Request) {
	a, err := h.deps.Store.GetAsset(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeAssetNotFound, "asset"))
		return
	}
	if err := auth.RequireAssetOwner(principalFrom(r.Context()), a); err != nil {
		writeError(w, r, err)
		return
	}

	var req updateAssetRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.GuaranteeMode != "" {
		a.GuaranteeMode = req.GuaranteeMode
	}
	if req.Metadata != nil {
		a.Metadata = req.Metadata
	}

	if err := h.deps.Store.UpdateAsset(r.Context(), a); err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeAssetNotFound, "asset"))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *handlers) deleteAsset(w http.ResponseWriter, r *http.Request) {
	a, err := h.deps.Store.GetAsset(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeAssetNotFound, "asset"))
		return
	}
	if err := auth.RequireAssetOwner(principalFrom(r.Context()), a); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.deps.Store.SoftDeleteAsset(r.Context(), a.ID, time.Now().UTC()); err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeAssetNotFound, "asset"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) listAssetsByTeam(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r, h.deps.Pagination)
	res, err := h.deps.Store.ListAssetsByTeam(r.Context(), urlParam(r, "id"), page)
	if err != nil {
		writeError(w, r, errs.Wrap(errs.CodeInternal, "list assets by team", err))
		return
	}
	writeList(w, res.Items, res.Total, page.Limit, page.Offset)
}

func (h *handlers) searchAssets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, r, errs.New(errs.CodeValidation, "q is required"))
		return
	}
	page := parsePage(r, h.deps.Pagination)
	res, err := h.deps.Store.SearchAssets(r.Context(), q, page)
	if err != nil {
		writeError(w, r, errs.Wrap(errs.CodeInternal, "search assets", err))
		return
	}
	writeList(w, res.Items, res.Total, page.Limit, page.Offset)
}
