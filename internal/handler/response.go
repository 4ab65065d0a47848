package handler

// RESPONSE SHAPES:
//
//	reads:      the resource itself, e.g. {"id": "...", "breakfast": "Poha", ...}
//	mutations:  {"notice": "Food item added successfully!", "data": {...}}
//	errors:     {"error": "validation_error", "message": "Please enter a food name", "field": "name"}
//
// The notice is the short confirmation the UI shows as a toast. It is omitted
// when a mutation has nothing worth announcing.

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"

	"github.com/sakif/family-meal-planner/internal/apperror"
)

// maxBodyBytes caps request bodies; every request here is a small form.
const maxBodyBytes = 64 << 10

// ErrorResponse is the error body of every API endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`           // machine-readable, e.g. "not_found"
	Message string `json:"message"`         // shown to the user
	Field   string `json:"field,omitempty"` // the offending input, when there is one
}

// NoticeResponse wraps the result of a mutation.
type NoticeResponse struct {
	Notice string `json:"notice,omitempty"`
	Data   any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are gone already; logging is all that is left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

func writeNotice(w http.ResponseWriter, status int, notice string, data any) {
	writeJSON(w, status, NoticeResponse{Notice: notice, Data: data})
}

// writeError maps a domain error to its HTTP status.
//
//	ErrValidation → 400   ErrNoSession → 401
//	ErrNotFound   → 404   ErrConflict  → 409
//
// Anything else is a 500 with a generic message; the real error is logged by
// the caller and, when error reporting is on, sent to Sentry.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrNoSession):
			status = http.StatusUnauthorized
			errorType = "no_session"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
			Field:   appErr.Field,
		})
		return
	}

	if ctxErr := r.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		// The client went away; nobody is reading the response.
		return
	}

	if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
		hub.CaptureException(err)
	}
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads a JSON body into dst. Malformed bodies come back as
// validation errors so writeError answers them with a 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("body", fmt.Sprintf("invalid JSON body: %v", err))
	}
	return nil
}

// isInternal reports whether err is an unexpected failure rather than a
// domain error the user caused.
func isInternal(err error) bool {
	var appErr *apperror.AppError
	return !errors.As(err, &appErr)
}
