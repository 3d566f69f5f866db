package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/tessera-contracts/tessera/internal/auth"
	"github.com/tessera-contracts/tessera/internal/domain"
	"github.com/tessera-contracts/tessera/internal/errs"
	"github.com/tessera-contracts/tessera/internal/publication"
	"github.com/tessera-contracts/tessera/internal/schemadiff"
)

type publishContractRequest struct {
	Version           string              `json:"version"`
	SchemaDef         json.RawMessage     `json:"schema_def" validate:"required"`
	CompatibilityMode domain.CompatibilityMode `json:"compatibility_mode" validate:"required,oneof=backward forward full none"`
	Guarantees        *domain.Guarantees  `json:"guarantees,omitempty"`
	Force             bool                `json:"force"`
}

type publishContractResponse struct {
	Action          publication.Action          `json:"action"`
	Contract        *domain.Contract            `json:"contract,omitempty"`
	Proposal        *domain.Proposal            `json:"proposal,omitempty"`
	ChangeType      schemadiff.ChangeType       `json:"change_type"`
	BreakingChanges []schemadiff.ChangeRecord   `json:"breaking_changes,omitempty"`
}

func (h *handlers) publishContract(w http.ResponseWriter, r *http.Request) {
	assetID := urlParam(r, "id")
	a, err := h.deps.Store.GetAsset(r.Context(), assetID)
	if err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeAssetNotFound, "asset"))
		return
	}

	var req publishContractRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	p := principalFrom(r.Context())
	if err := auth.RequireAssetOwner(p, a); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.deps.Publication.Publish(r.Context(), publication.Request{
		AssetID:           assetID,
		Version:           req.Version,
		SchemaDef:         req.SchemaDef,
		CompatibilityMode: req.CompatibilityMode,
		Guarantees:        req.Guarantees,
		PublishedBy:       p.TeamID,
		Force:             req.Force,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusCreated
	if res.Action == publication.ActionProposalCreated {
		status = http.StatusAccepted
	}
	writeJSON(w, status, publishContractResponse{
		Action:          res.Action,
		Contract:        res.Contract,
		Proposal:        res.Proposal,
		ChangeType:      res.ChangeType,
		BreakingChanges: res.BreakingChanges,
	})
}

func (h *handlers) listContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.deps.Store.ListContractsByAsset(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, errs.Wrap(errs.CodeInternal, "list contracts", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": contracts, "total": len(contracts)})
}

type compareContractsRequest struct {
	OldSchema json.RawMessage `json:"old_schema" validate:"required"`
	NewSchema json.RawMessage `json:"new_schema" validate:"required"`
}

func (h *handlers) compareContracts(w http.ResponseWriter, r *http.Request) {
	var req compareContractsRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	diff, err := schemadiff.Diff(req.OldSchema, req.NewSchema)
	if err != nil {
		writeError(w, r, errs.Wrap(errs.CodeInvalidSchema, "diff schemas", err))
		return
	}
	writeJSON(w, http.StatusOK, diff)
}
