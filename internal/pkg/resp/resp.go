/*
Package resp provides helpers for constructing and sending standardized HTTP JSON responses.

Successful responses carry their payload fields at the top level next to
"success": true. Every handler-level failure is converted to the uniform
{"success": false, "message": ...} body with the status mapped from the error.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"chirp/internal/pkg/errs"
	"chirp/internal/pkg/logx"
)

// RespondJSON sets the Content-Type and sends the JSON payload with the given status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(
			err,
			"Error encoding JSON response",
			"http_status", httpStatus,
		)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	w.Write(response)
}

// RespondSuccess sends an HTTP 200 response with "success": true merged into
// the payload fields.
func RespondSuccess(w http.ResponseWriter, r *http.Request, data map[string]any) {
	respondSuccessStatus(w, r, http.StatusOK, data)
}

// RespondCreated sends an HTTP 201 response with "success": true merged into
// the payload fields.
func RespondCreated(w http.ResponseWriter, r *http.Request, data map[string]any) {
	respondSuccessStatus(w, r, http.StatusCreated, data)
}

func respondSuccessStatus(w http.ResponseWriter, r *http.Request, httpStatus int, data map[string]any) {
	body := make(map[string]any, len(data)+1)
	for k, v := range data {
		body[k] = v
	}
	body["success"] = true

	RespondJSON(w, r, httpStatus, body)
}

// RespondError sends the uniform error body for a CustomError.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	body := map[string]any{
		"success": false,
		"message": customErr.Message,
	}
	RespondJSON(w, r, customErr.Status, body)
}
