package errs

import "net/http"

// Code is one of the machine-readable error identifiers in spec.md §7.
type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeInvalidSchema Code = "INVALID_SCHEMA"
	CodeInvalidVersion Code = "INVALID_VERSION"
	CodeInvalidFQN    Code = "INVALID_FQN"

	CodeTeamNotFound         Code = "TEAM_NOT_FOUND"
	CodeUserNotFound         Code = "USER_NOT_FOUND"
	CodeAssetNotFound        Code = "ASSET_NOT_FOUND"
	CodeContractNotFound     Code = "CONTRACT_NOT_FOUND"
	CodeRegistrationNotFound Code = "REGISTRATION_NOT_FOUND"
	CodeProposalNotFound     Code = "PROPOSAL_NOT_FOUND"
	CodeAcknowledgmentNotFound Code = "ACKNOWLEDGMENT_NOT_FOUND"
	CodeAPIKeyNotFound       Code = "API_KEY_NOT_FOUND"
	CodeDependencyNotFound   Code = "DEPENDENCY_NOT_FOUND"

	CodeDuplicateTeam         Code = "DUPLICATE_TEAM"
	CodeDuplicateUser         Code = "DUPLICATE_USER"
	CodeDuplicateAsset        Code = "DUPLICATE_ASSET"
	CodeDuplicateRegistration Code = "DUPLICATE_REGISTRATION"
	CodeDuplicateAcknowledgment Code = "DUPLICATE_ACKNOWLEDGMENT"
	CodeDuplicateDependency   Code = "DUPLICATE_DEPENDENCY"
	CodeBreakingChangeRequiresProposal Code = "BREAKING_CHANGE_REQUIRES_PROPOSAL"
	CodeSelfDependency        Code = "SELF_DEPENDENCY"
	CodeIncompatibleSchema    Code = "INCOMPATIBLE_SCHEMA"
	CodeConflict              Code = "CONFLICT"

	CodeMissingAPIKey     Code = "MISSING_API_KEY"
	CodeInvalidAuthHeader Code = "INVALID_AUTH_HEADER"
	CodeInvalidAPIKey     Code = "INVALID_API_KEY"
	CodeInsufficientScope Code = "INSUFFICIENT_SCOPE"
	CodeUnauthorizedTeam  Code = "UNAUTHORIZED_TEAM"
	CodeRateLimited       Code = "RATE_LIMITED"

	CodeInternal Code = "INTERNAL_ERROR"
)

// statusForCode maps each code to its HTTP status per spec.md §6.
var statusForCode = map[Code]int{
	CodeValidation:     http.StatusBadRequest,
	CodeInvalidSchema:  http.StatusUnprocessableEntity,
	CodeInvalidVersion: http.StatusBadRequest,
	CodeInvalidFQN:     http.StatusBadRequest,

	CodeTeamNotFound:           http.StatusNotFound,
	CodeUserNotFound:           http.StatusNotFound,
	CodeAssetNotFound:          http.StatusNotFound,
	CodeContractNotFound:       http.StatusNotFound,
	CodeRegistrationNotFound:   http.StatusNotFound,
	CodeProposalNotFound:       http.StatusNotFound,
	CodeAcknowledgmentNotFound: http.StatusNotFound,
	CodeAPIKeyNotFound:         http.StatusNotFound,
	CodeDependencyNotFound:     http.StatusNotFound,

	CodeDuplicateTeam:                  http.StatusConflict,
	CodeDuplicateUser:                  http.StatusConflict,
	CodeDuplicateAsset:                 http.StatusConflict,
	CodeDuplicateRegistration:          http.StatusConflict,
	CodeDuplicateAcknowledgment:        http.StatusConflict,
	CodeDuplicateDependency:            http.StatusConflict,
	CodeBreakingChangeRequiresProposal: http.StatusConflict,
	CodeSelfDependency:                 http.StatusConflict,
	CodeIncompatibleSchema:             http.StatusConflict,
	CodeConflict:                       http.StatusConflict,

	CodeMissingAPIKey:     http.StatusUnauthorized,
	CodeInvalidAuthHeader: http.StatusUnauthorized,
	CodeInvalidAPIKey:     http.StatusUnauthorized,
	CodeInsufficientScope: http.StatusForbidden,
	CodeUnauthorizedTeam:  http.StatusForbidden,
	CodeRateLimited:       http.StatusTooManyRequests,

	CodeInternal: http.StatusInternalServerError,
}

// Error is a typed domain failure that the HTTP boundary renders directly
// into the standard error envelope. Domain and workflow packages return
// *Error (or wrap one) instead of ad hoc fmt.Errorf values whenever the
// failure is meant to be visible to a caller.
type Error struct {
	Code    Code
	Message string
	Details map[string]interface{}
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Status returns the HTTP status code for this error's Code, defaulting to
// 500 for unrecognized codes (a defensive fallback, never expected to fire
// for codes defined in this package).
func (e *Error) Status() int {
	if s, ok := statusForCode[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// New builds a domain error with no field-level details.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds a domain error that preserves an underlying cause for logging
// (via Unwrap/errors.Is) without leaking it into the HTTP response message.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// WithDetails attaches field-level validation detail to an error and
// returns the same instance for chaining at the call site.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	e.Details = details
	return e
}

// NotFound is a convenience constructor for the "<entity>_NOT_FOUND" family.
func NotFound(code Code, entity, id string) *Error {
	return New(code, entity+" not found: "+id)
}
