package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	dErrors "pbd/pkg/domain-errors"
	"pbd/pkg/requestcontext"
)

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already out; an encode failure cannot be reported.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError maps a domain error to a JSON error response. Anything that is
// not a domain error becomes a bare 500.
func WriteError(w http.ResponseWriter, err error) {
	code, ok := dErrors.CodeOf(err)
	if !ok {
		WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error": ErrorCode(dErrors.CodeInternal),
		})
		return
	}
	response := map[string]string{"error": ErrorCode(code)}
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) && domainErr.Message != "" {
		response["error_description"] = domainErr.Message
	}
	WriteJSON(w, StatusCode(code), response)
}

// StatusCode is the HTTP status for a domain error code.
func StatusCode(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode is the "error" field value for a domain error code.
func ErrorCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeBadRequest:
		return "bad_request"
	case dErrors.CodeValidation:
		return "validation_error"
	case dErrors.CodeUnauthorized:
		return "unauthorized"
	case dErrors.CodeForbidden:
		return "forbidden"
	case dErrors.CodeTimeout:
		return "timeout"
	case dErrors.CodeUnavailable:
		return "unavailable"
	default:
		return "internal_error"
	}
}

// RequireAppID returns the calling app set by the auth middleware.
func RequireAppID(ctx context.Context) (string, error) {
	appID := requestcontext.AppID(ctx)
	if appID == "" {
		return "", dErrors.New(dErrors.CodeInternal, "app context missing")
	}
	return appID, nil
}
