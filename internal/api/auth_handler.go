package api

import (
	"net/http"

	"github.com/thermoledger/thermoledger/internal/api/shared"
	"github.com/thermoledger/thermoledger/internal/service/auth"
)

// AuthHandler handles validator authentication HTTP requests
type AuthHandler struct {
	checker    *auth.CredentialChecker
	jwtService auth.JWTService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(checker *auth.CredentialChecker, jwtService auth.JWTService) *AuthHandler {
	return &AuthHandler{
		checker:    checker,
		jwtService: jwtService,
	}
}

// Token handles POST /api/auth/token requests, exchanging a validator's
// shared secret for a bearer token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	if err := h.checker.Check(req.ValidatorID, req.Secret); err != nil {
		// Failed credential checks are logged at WARN; repeated failures are
		// an operational signal.
		shared.RespondWithErrorAndLog(
			w, r,
			MapErrorToStatusCode(err),
			GetSafeErrorMessage(err),
			err,
			shared.WithElevatedLogLevel(),
		)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), req.ValidatorID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{Token: token})
}
