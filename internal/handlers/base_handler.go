package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/starterkit/backend/internal/apperrors"
	"github.com/starterkit/backend/internal/middleware"
	"github.com/starterkit/backend/internal/models"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, models.ErrorResponse{Message: message})
}

// RespondValidationError sends per-field validation messages with status 400
func (h *BaseHandler) RespondValidationError(w http.ResponseWriter, fields map[string]string) {
	h.RespondJSON(w, http.StatusBadRequest, models.ValidationErrorResponse{Errors: fields})
}

// RespondServiceError translates an error returned by a service into a response.
// Errors outside the apperrors taxonomy are logged and answered with the generic 500 body.
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		h.RespondValidationError(w, validationErr.Fields)
		return
	}

	if !apperrors.IsExpected(err) {
		h.Logger.Error(op+" failed",
			zap.Error(err),
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Stack("stack"),
		)
		h.RespondError(w, http.StatusInternalServerError, apperrors.GenericMessage)
		return
	}

	h.RespondError(w, apperrors.GetStatus(err), apperrors.GetMessage(err))
}

// decodeJSON reads the request body into dst.
// An undecodable body is answered with a 400 and false is returned.
func (h *BaseHandler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.RespondError(w, apperrors.ErrRequestTooLarge.Code, apperrors.ErrRequestTooLarge.Message)
			return false
		}
		h.Logger.Debug("failed to decode request body", zap.Error(err))
		h.RespondValidationError(w, map[string]string{"non_field_errors": "Invalid request body."})
		return false
	}
	return true
}
