package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zippyboards/backend/internal/service"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string            `json:"error"`
	Code  service.ErrorCode `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, code service.ErrorCode) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// statusFor maps a service error code to an HTTP status.
func statusFor(code service.ErrorCode) int {
	switch code {
	case "":
		return http.StatusOK
	case service.CodeUnauthenticated:
		return http.StatusUnauthorized
	case service.CodePermissionDenied:
		return http.StatusForbidden
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeAlreadyMember:
		return http.StatusConflict
	case service.CodeSelfRemovalForbidden, service.CodeValidationFailure:
		return http.StatusUnprocessableEntity
	case service.CodeRemoteServiceError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err using its service code. Unclassified errors
// are logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		slog.Error("unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, service.ErrUnexpected.Message, service.CodeUnexpectedError)
		return
	}
	if se.Code == service.CodeRemoteServiceError || se.Code == service.CodeUnexpectedError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, statusFor(se.Code), se.Error(), se.Code)
}

// writeResult writes an action result with the status of its code.
func writeResult(w http.ResponseWriter, res service.ActionResult) {
	writeJSON(w, statusFor(res.Code), res)
}

// decodeJSON reads a JSON body of at most 1 MiB into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", service.CodeValidationFailure)
		return false
	}
	return true
}
