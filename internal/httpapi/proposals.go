package httpapi

import (
	"net/http"
	"time"

	"github.com/tessera-contracts/tessera/internal/auth"
	"github.com/tessera-contracts/tessera/internal/domain"
	"github.com/tessera-contracts/tessera/internal/errs"
	"github.com/tessera-contracts/tessera/internal/proposal"
)

type acknowledgeProposalRequest struct {
	ConsumerTeamID    string                        `json:"consumer_team_id" validate:"required"`
	Response          domain.AcknowledgmentResponse `json:"response" validate:"required,oneof=approved blocked migrating"`
	MigrationDeadline *time.Time                    `json:"migration_deadline,omitempty"`
	Notes             string                        `json:"notes,omitempty"`
}

func (h *handlers) acknowledgeProposal(w http.ResponseWriter, r *http.Request) {
	var req acknowledgeProposalRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := auth.RequireTeam(principalFrom(r.Context()), req.ConsumerTeamID); err != nil {
		writeError(w, r, err)
		return
	}

	ack, err := h.deps.Proposal.Acknowledge(r.Context(), proposal.AcknowledgeRequest{
		ProposalID:        urlParam(r, "id"),
		ConsumerTeamID:    req.ConsumerTeamID,
		Response:          req.Response,
		MigrationDeadline: req.MigrationDeadline,
		Notes:             req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ack)
}

func (h *handlers) withdrawProposal(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	id := urlParam(r, "id")

	existing, err := h.deps.Store.GetProposal(r.Context(), id)
	if err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeProposalNotFound, "proposal"))
		return
	}
	if err := auth.RequireTeam(p, existing.ProposedBy); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.deps.Proposal.Withdraw(r.Context(), id, p.TeamID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) forceApproveProposal(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	actor := p.UserID
	if actor == "" {
		actor = p.KeyID
	}
	if err := h.deps.Proposal.ForceApprove(r.Context(), urlParam(r, "id"), actor); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) getProposal(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.Store.GetProposal(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeProposalNotFound, "proposal"))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) listProposalsByAsset(w http.ResponseWriter, r *http.Request) {
	proposals, err := h.deps.Store.ListProposalsByAsset(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, errs.Wrap(errs.CodeInternal, "list proposals", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": proposals, "total": len(proposals)})
}
