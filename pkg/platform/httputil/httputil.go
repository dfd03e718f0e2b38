// Package httputil centralizes JSON response writing and request decoding so
// handlers stay thin and error responses are uniform across modules.
package httputil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	derrors "convoy/pkg/domain-errors"
)

// codeStatus maps domain error codes to HTTP status codes.
var codeStatus = map[derrors.Code]int{
	derrors.CodeValidation:         http.StatusBadRequest,
	derrors.CodeInvalidInput:       http.StatusBadRequest,
	derrors.CodeBadRequest:         http.StatusBadRequest,
	derrors.CodeNotFound:           http.StatusNotFound,
	derrors.CodeConflict:           http.StatusConflict,
	derrors.CodeInvariantViolation: http.StatusConflict,
	derrors.CodeUnauthorized:       http.StatusUnauthorized,
	derrors.CodeForbidden:          http.StatusForbidden,
	derrors.CodeUnavailable:        http.StatusServiceUnavailable,
	derrors.CodeTimeout:            http.StatusGatewayTimeout,
	derrors.CodeInternal:           http.StatusInternalServerError,
}

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteError translates a domain error into a JSON error response. Internal
// errors omit the description so persistence details never leak to callers.
func WriteError(w http.ResponseWriter, err error) {
	code := derrors.CodeOf(err)
	status, ok := codeStatus[code]
	if !ok {
		status = http.StatusInternalServerError
		code = derrors.CodeInternal
	}

	body := errorBody{Error: string(code)}
	if code != derrors.CodeInternal {
		body.Description = derrors.MessageOf(err)
	}

	WriteJSON(w, status, body)
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Validatable is implemented by request types. Validate both checks the
// payload and parses derived fields, so it must run before the request is
// handed to a service.
type Validatable interface {
	Validate() error
}

// DecodeAndPrepare decodes the request body into T and runs its Validate
// method, writing the error response and returning ok=false on malformed or
// invalid input.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "failed to decode request body",
				"request_id", requestID,
				"error", err,
			)
		}
		WriteError(w, derrors.New(derrors.CodeBadRequest, "malformed request body"))
		return req, false
	}
	if err := PT(&req).Validate(); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "request validation failed",
				"request_id", requestID,
				"error", err,
			)
		}
		WriteError(w, err)
		return req, false
	}
	return req, true
}
