package common

import (
	"encoding/json"
	"net/http"

	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	response := APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// RespondError maps an error to its HTTP status and renders it. Unclassified
// errors flatten to a generic 500 so internals never leak to callers.
func RespondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	info := &ErrorInfo{
		Code:    string(apperrors.ErrorTypeUnknown),
		Message: "internal error",
	}
	if appErr := apperrors.Get(err); appErr != nil {
		status = appErr.HTTPStatus
		info.Code = string(appErr.Type)
		info.Message = appErr.Message
		info.Details = appErr.Details
		if status >= 500 {
			info.Message = "internal error"
			info.Details = nil
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{Success: false, Error: info})
}

// ExtractRequestID extracts the request ID from the request context
func ExtractRequestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	if id := r.Header.Get("X-Amzn-Trace-Id"); id != "" {
		return id
	}
	if id, ok := GetRequestID(r.Context()); ok {
		return id
	}
	return ""
}

// ParseJSONBody parses JSON request body with size limit
func ParseJSONBody(r *http.Request, v interface{}, maxBytes int64) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		return apperrors.NewValidation("request body is not valid JSON").WithCause(err)
	}

	return nil
}
