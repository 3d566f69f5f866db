package httpapi

import (
	"net/http"
	"time"

	"github.com/tessera-contracts/tessera/internal/auth"
	"github.com/tessera-contracts/tessera/internal/domain"
	"github.com/tessera-contracts/tessera/internal/errs"
	"github.com/tessera-contracts/tessera/internal/idutil"
)

type createDependencyRequest struct {
	DependencyAssetID string                `json:"dependency_asset_id" validate:"required"`
	DependencyType    domain.DependencyType `json:"dependency_type" validate:"required,oneof=consumes references transforms"`
}

func (h *handlers) createDependency(w http.ResponseWriter, r *http.Request) {
	dependentAssetID := urlParam(r, "id")
	dependent, err := h.deps.Store.GetAsset(r.Context(), dependentAssetID)
	if err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeAssetNotFound, "asset"))
		return
	}
	if err := auth.RequireAssetOwner(principalFrom(r.Context()), dependent); err != nil {
		writeError(w, r, err)
		return
	}

	var req createDependencyRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.DependencyAssetID == dependentAssetID {
		writeError(w, r, errs.New(errs.CodeSelfDependency, "an asset cannot depend on itself"))
		return
	}
	if _, err := h.deps.Store.GetAsset(r.Context(), req.DependencyAssetID); err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeAssetNotFound, "dependency asset"))
		return
	}

	d := &domain.AssetDependency{
		ID:                idutil.New(),
		DependentAssetID:  dependentAssetID,
		DependencyAssetID: req.DependencyAssetID,
		DependencyType:    req.DependencyType,
		CreatedAt:         time.Now().UTC(),
	}
	if err := h.deps.Store.CreateDependency(r.Context(), d); err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeDependencyNotFound, "dependency"))
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *handlers) deleteDependency(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Store.DeleteDependency(r.Context(), urlParam(r, "id")); err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeDependencyNotFound, "dependency"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
