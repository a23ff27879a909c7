package client

// ErrorCode is the machine-readable code in an error response body.
type ErrorCode string

const (
	CodeUnauthenticated      ErrorCode = "unauthenticated"
	CodePermissionDenied     ErrorCode = "permission_denied"
	CodeNotFound             ErrorCode = "not_found"
	CodeAlreadyMember        ErrorCode = "already_member"
	CodeSelfRemovalForbidden ErrorCode = "self_removal_forbidden"
	CodeValidationFailure    ErrorCode = "validation_failure"
	CodeRemoteServiceError   ErrorCode = "remote_service_error"
	CodeUnexpectedError      ErrorCode = "unexpected_error"
)

// ActionResult is the outcome of a membership action. A failed action is
// reported here rather than as an error.
type ActionResult struct {
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
	Code    ErrorCode `json:"code,omitempty"`
}
