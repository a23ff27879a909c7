package service

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a service failure.
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

// Error is a classified failure with a message fit to show the user.
// errors.Is matches two *Error values by code.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrUnauthenticated      = &Error{Code: CodeUnauthenticated, Message: "Authentication required."}
	ErrPermissionDenied     = &Error{Code: CodePermissionDenied, Message: "Permission denied."}
	ErrNotFound             = &Error{Code: CodeNotFound, Message: "Not found."}
	ErrAlreadyMember        = &Error{Code: CodeAlreadyMember, Message: "User is already a member of this project."}
	ErrSelfRemovalForbidden = &Error{Code: CodeSelfRemovalForbidden, Message: "Project owners cannot remove themselves."}
	ErrValidation           = &Error{Code: CodeValidationFailure, Message: "Invalid input."}
	ErrRemoteService        = &Error{Code: CodeRemoteServiceError, Message: "The data service failed."}
	ErrUnexpected           = &Error{Code: CodeUnexpectedError, Message: "An unexpected server error occurred."}

	// ErrGitHubEmailUnverified is returned when a GitHub login without a
	// verified email would land on an existing account.
	ErrGitHubEmailUnverified = &Error{Code: CodeValidationFailure, Message: "An account with this email already exists. Sign in with your password instead."}
)

func newError(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// remoteError wraps a storage failure, keeping the underlying message visible.
func remoteError(msg string, err error) *Error {
	return &Error{Code: CodeRemoteServiceError, Message: msg, Err: err}
}

// CodeOf returns the code carried by err, CodeUnexpectedError for
// unclassified errors and "" for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeUnexpectedError
}

// ActionResult is what membership actions return instead of an error.
type ActionResult struct {
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
	Code    ErrorCode `json:"code,omitempty"`
}

// Succeeded is the result of a completed action.
func Succeeded() ActionResult { return ActionResult{Success: true} }

// Failed converts err into a failed result. Unclassified errors are reported
// with the generic message so internals do not leak.
func Failed(err error) ActionResult {
	var se *Error
	if errors.As(err, &se) {
		return ActionResult{Error: se.Error(), Code: se.Code}
	}
	return ActionResult{Error: ErrUnexpected.Message, Code: CodeUnexpectedError}
}
