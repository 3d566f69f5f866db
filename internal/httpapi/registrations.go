package httpapi

import (
	"net/http"
	"time"

	"github.com/tessera-contracts/tessera/internal/auth"
	"github.com/tessera-contracts/tessera/internal/domain"
	"github.com/tessera-contracts/tessera/internal/errs"
	"github.com/tessera-contracts/tessera/internal/idutil"
)

type createRegistrationRequest struct {
	ContractID     string  `json:"contract_id" validate:"required"`
	ConsumerTeamID string  `json:"consumer_team_id" validate:"required"`
	PinnedVersion  *string `json:"pinned_version,omitempty"`
}

func (h *handlers) createRegistration(w http.ResponseWriter, r *http.Request) {
	var req createRegistrationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := auth.RequireTeam(principalFrom(r.Context()), req.ConsumerTeamID); err != nil {
		writeError(w, r, err)
		return
	}

	reg := &domain.Registration{
		ID:             idutil.New(),
		ContractID:     req.ContractID,
		ConsumerTeamID: req.ConsumerTeamID,
		PinnedVersion:  req.PinnedVersion,
		Status:         domain.RegistrationStatusActive,
		RegisteredAt:   time.Now().UTC(),
	}
	if err := h.deps.Store.CreateRegistration(r.Context(), reg); err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeRegistrationNotFound, "registration"))
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

func (h *handlers) getRegistration(w http.ResponseWriter, r *http.Request) {
	reg, err := h.deps.Store.GetRegistration(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeRegistrationNotFound, "registration"))
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

type updateRegistrationRequest struct {
	Status        domain.RegistrationStatus `json:"status" validate:"omitempty,oneof=active migrating inactive"`
	PinnedVersion *string                   `json:"pinned_version,omitempty"`
}

func (h *handlers) updateRegistration(w http.ResponseWriter, r *http.Request) {
	reg, err := h.deps.Store.GetRegistration(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeRegistrationNotFound, "registration"))
		return
	}
	if err := auth.RequireTeam(principalFrom(r.Context()), reg.ConsumerTeamID); err != nil {
		writeError(w, r, err)
		return
	}

	var req updateRegistrationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Status != "" {
		reg.Status = req.Status
	}
	if req.PinnedVersion != nil {
		reg.PinnedVersion = req.PinnedVersion
	}

	if err := h.deps.Store.UpdateRegistration(r.Context(), reg); err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeRegistrationNotFound, "registration"))
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

func (h *handlers) deleteRegistration(w http.ResponseWriter, r *http.Request) {
	reg, err := h.deps.Store.GetRegistration(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeRegistrationNotFound, "registration"))
		return
	}
	if err := auth.RequireTeam(principalFrom(r.Context()), reg.ConsumerTeamID); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.deps.Store.DeleteRegistration(r.Context(), reg.ID); err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeRegistrationNotFound, "registration"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) listRegistrationsByConsumer(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r, h.deps.Pagination)
	res, err := h.deps.Store.ListRegistrationsByConsumer(r.Context(), urlParam(r, "id"), page)
	if err != nil {
		writeError(w, r, errs.Wrap(errs.CodeInternal, "list registrations by consumer", err))
		return
	}
	writeList(w, res.Items, res.Total, page.Limit, page.Offset)
}
