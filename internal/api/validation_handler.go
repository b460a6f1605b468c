package api

import (
	"net/http"

	"github.com/thermoledger/thermoledger/internal/api/shared"
	"github.com/thermoledger/thermoledger/internal/service"
)

// ValidationHandler handles proposal validation HTTP requests
type ValidationHandler struct {
	service *service.ValidationService
}

// NewValidationHandler creates a new ValidationHandler
func NewValidationHandler(svc *service.ValidationService) *ValidationHandler {
	return &ValidationHandler{service: svc}
}

// ValidateQuantum handles POST /api/validate/quantum requests
func (h *ValidationHandler) ValidateQuantum(w http.ResponseWriter, r *http.Request) {
	validatorID, ok := r.Context().Value(shared.ValidatorIDContextKey).(string)
	if !ok || validatorID == "" {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Validator identity not found")
		return
	}

	var req QuantumTransitionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	outcome, err := h.service.ValidateQuantum(r.Context(), validatorID, req.ToDomain())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, outcomeToResponse(outcome))
}

// ValidateThermo handles POST /api/validate/thermo requests
func (h *ValidationHandler) ValidateThermo(w http.ResponseWriter, r *http.Request) {
	validatorID, ok := r.Context().Value(shared.ValidatorIDContextKey).(string)
	if !ok || validatorID == "" {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Validator identity not found")
		return
	}

	var req StateChangeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	outcome, err := h.service.ValidateThermo(r.Context(), validatorID, req.ToDomain())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, outcomeToResponse(outcome))
}
