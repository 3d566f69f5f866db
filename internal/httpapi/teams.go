package httpapi

import (
	"net/http"
	"time"

	"github.com/tessera-contracts/tessera/internal/domain"
	"github.com/tessera-contracts/tessera/internal/errs"
	"github.com/tessera-contracts/tessera/internal/idutil"
	"github.com/tessera-contracts/tessera/internal/store"
)

type createTeamRequest struct {
	Name     string                 `json:"name" validate:"required,min=1,max=200"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func (h *handlers) createTeam(w http.ResponseWriter, r *http.Request) {
	var req createTeamRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	t := &domain.Team{
		ID:        idutil.New(),
		Name:      req.Name,
		Metadata:  req.Metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.deps.Store.CreateTeam(r.Context(), t); err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeDuplicateTeam, "team"))
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *handlers) getTeam(w http.ResponseWriter, r *http.Request) {
	t, err := h.deps.Store.GetTeam(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, mapStoreErr(err, errs.CodeTeamNotFound, "team"))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *handlers) listTeams(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r, h.deps.Pagination)
	res, err := h.deps.Store.ListTeams(r.Context(), page)
	if err != nil {
		writeError(w, r, errs.Wrap(errs.CodeInternal, "list teams", err))
		return
	}
	writeList(w, res.Items, res.Total, page.Limit, page.Offset)
}

// mapStoreErr translates a bare store sentinel error into a domain error,
// leaving an already-typed *errs.Error untouched.
func mapStoreErr(err error, notFoundCode errs.Code, entity string) error {
	switch err {
	case store.ErrNotFound:
		return errs.NotFound(notFoundCode, entity, "")
	case store.ErrAlreadyExists:
		return errs.New(dupCodeFor(notFoundCode), entity+" already exists")
	default:
		if de, ok := err.(*errs.Error); ok {
			return de
		}
		return errs.Wrap(errs.CodeInternal, "store operation failed", err)
	}
}

// dupCodeFor maps a NOT_FOUND code to its DUPLICATE_ counterpart for the
// same entity family, since store.ErrAlreadyExists carries no entity
// context of its own.
func dupCodeFor(notFoundCode errs.Code) errs.Code {
	switch notFoundCode {
	case errs.CodeTeamNotFound:
		return errs.CodeDuplicateTeam
	case errs.CodeUserNotFound:
		return errs.CodeDuplicateUser
	case errs.CodeAssetNotFound:
		return errs.CodeDuplicateAsset
	case errs.CodeRegistrationNotFound:
		return errs.CodeDuplicateRegistration
	case errs.CodeDependencyNotFound:
		return errs.CodeDuplicateDependency
	default:
		return errs.CodeConflict
	}
}
