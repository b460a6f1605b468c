package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/thermoledger/thermoledger/internal/consensus"
	"github.com/thermoledger/thermoledger/internal/domain"
	"github.com/thermoledger/thermoledger/internal/ledger"
	"github.com/thermoledger/thermoledger/internal/service/auth"
	"github.com/thermoledger/thermoledger/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrUnknownValidator),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, consensus.ErrProposalNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, consensus.ErrProposalExists),
		errors.Is(err, consensus.ErrProposalFinalized),
		errors.Is(err, consensus.ErrAlreadyFinalized),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrTransitionSystemIDEmpty),
		errors.Is(err, domain.ErrTransitionEnergyNotFinite),
		errors.Is(err, domain.ErrTransitionDegenerate),
		errors.Is(err, domain.ErrTransitionPartialQuantumNumbers),
		errors.Is(err, domain.ErrUnknownPhase),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrVoteConfidenceOutOfRange),
		errors.Is(err, domain.ErrVoteVerdictInvalid):
		return http.StatusBadRequest

	// Ledger halted is a service-level outage for writes
	case errors.Is(err, ledger.ErrLedgerHalted):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, auth.ErrUnknownValidator),
		errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	// Not found errors
	case errors.Is(err, consensus.ErrProposalNotFound):
		return "Proposal not found"

	case errors.Is(err, store.ErrEntryNotFound):
		return "Ledger entry not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	// Conflict errors
	case errors.Is(err, consensus.ErrProposalExists):
		return "Proposal already registered"

	case errors.Is(err, consensus.ErrProposalFinalized):
		return "Proposal already finalized; vote recorded as audit note"

	case errors.Is(err, consensus.ErrAlreadyFinalized):
		return "Proposal already finalized"

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, domain.ErrTransitionSystemIDEmpty),
		errors.Is(err, domain.ErrTransitionEnergyNotFinite),
		errors.Is(err, domain.ErrTransitionDegenerate),
		errors.Is(err, domain.ErrTransitionPartialQuantumNumbers):
		return "Invalid transition data"

	case errors.Is(err, domain.ErrUnknownPhase),
		errors.Is(err, domain.ErrInvalidState):
		return "Invalid state data"

	case errors.Is(err, domain.ErrVoteConfidenceOutOfRange),
		errors.Is(err, domain.ErrVoteVerdictInvalid):
		return "Invalid vote data"

	case errors.Is(err, ledger.ErrLedgerHalted):
		return "Ledger is halted pending investigation"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'VoteRequest.Verdict' Error:Field validation
		// for 'Verdict' failed on the 'oneof' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "gte", "lte":
		return "out of range"
	default:
		return "validation failed"
	}
}
