// internal/utils/response.go
package utils

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Error codes only travel to the logs. Every failure body has the same
// {message, errors?} shape regardless of the code.
const (
	ErrCodeInvalidPayload = "invalid_payload"
	ErrCodeValidation     = "validation_error"
	ErrCodeMissingID      = "missing_id"
	ErrCodeNotFound       = "not_found"
	ErrCodeInternal       = "internal_server_error"
)

// ErrorResponse is the single failure shape returned by every endpoint.
// Errors lists the names of the fields that failed validation, if any.
type ErrorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// RespondErrorWithCode writes a JSON error body with the public message and
// the optional failing field names. The code and the dev error are logged.
func RespondErrorWithCode(
	w http.ResponseWriter,
	status int,
	errorCode string,
	publicMessage string,
	fieldErrors []string,
	devErrs ...error,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errBody := ErrorResponse{Message: publicMessage}
	if len(fieldErrors) > 0 {
		errBody.Errors = fieldErrors
	}
	_ = json.NewEncoder(w).Encode(errBody)

	fields := logrus.Fields{
		"status": status,
		"code":   errorCode,
	}
	if len(devErrs) > 0 && devErrs[0] != nil {
		fields["error"] = devErrs[0].Error()
	}
	if status >= http.StatusInternalServerError {
		Logger.WithFields(fields).Error(publicMessage)
	} else {
		Logger.WithFields(fields).Warn(publicMessage)
	}
}

// RespondWithJSON for successful cases
func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
